package adapters

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"roster-scraper/internal/types"
	"roster-scraper/utils"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// RosterAdapter defines the interface for source-specific extraction logic
type RosterAdapter interface {
	// GetSourceName returns the tag used for this source's image directory
	GetSourceName() string

	// ExtractPlayers extracts player records from an already parsed team page
	ExtractPlayers(ctx context.Context, doc *goquery.Document, ectx *types.ExtractionContext) ([]types.PlayerRecord, error)
}

// BaseAdapter provides common functionality for roster adapters.
// Source-specific adapters embed it to share the page fetcher and the
// markup query helpers.
type BaseAdapter struct {
	config     *types.Config      // Timeouts and client settings
	logger     types.Logger       // Structured logging interface
	httpClient *utils.HTTPClient  // HTTP client for page and API requests
}

// NewBaseAdapter creates a new base adapter around a shared HTTP client.
func NewBaseAdapter(config *types.Config, logger types.Logger, httpClient *utils.HTTPClient) *BaseAdapter {
	return &BaseAdapter{
		config:     config,
		logger:     logger,
		httpClient: httpClient,
	}
}

// GetPageContent retrieves the raw bytes of a page using the page timeout.
func (b *BaseAdapter) GetPageContent(ctx context.Context, pageURL string) ([]byte, error) {
	return b.httpClient.Fetch(ctx, pageURL, b.config.PageTimeout)
}

// ParseHTML parses page bytes into a goquery document
func (b *BaseAdapter) ParseHTML(content []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, &types.DecodeError{Err: err}
	}
	return doc, nil
}

// ExtractText extracts trimmed text from the first element matching selector
func (b *BaseAdapter) ExtractText(doc *goquery.Document, selector string) (string, error) {
	element := doc.Find(selector).First()
	if element.Length() == 0 {
		return "", fmt.Errorf("element not found with selector: %s", selector)
	}

	return strings.TrimSpace(element.Text()), nil
}

// JoinedText returns the trimmed text nodes under s joined by single spaces,
// so "<b>Andreas</b><span>WOLFF</span>" reads "Andreas WOLFF".
func JoinedText(s *goquery.Selection) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return strings.Join(parts, " ")
}

// AbsoluteURL resolves ref against base. ref is returned unchanged if it
// cannot be parsed.
func AbsoluteURL(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

// LastPathSegment returns the final non-empty path element of rawURL
func LastPathSegment(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	p := strings.TrimRight(u.Path, "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}

// IsDigits reports whether s is non-empty and made only of ASCII digits
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
