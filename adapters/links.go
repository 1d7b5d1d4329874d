package adapters

import (
	"context"
	"strings"
	"unicode/utf8"

	"roster-scraper/internal/types"
	"roster-scraper/utils"

	"github.com/PuerkitoBio/goquery"
)

const (
	playersPathMarker = "/players/"
	clubMarker        = "Club:"
	maxPositionLength = 40
)

// imageSourceAttrs are read in order to find an image's URL
var imageSourceAttrs = []string{"src", "data-src", "data-original"}

// LinkAdapter handles pages that list players as links rather than tables
type LinkAdapter struct {
	*BaseAdapter
}

// NewLinkAdapter creates a new player link adapter
func NewLinkAdapter(config *types.Config, logger types.Logger, httpClient *utils.HTTPClient) *LinkAdapter {
	return &LinkAdapter{
		BaseAdapter: NewBaseAdapter(config, logger, httpClient),
	}
}

// GetSourceName returns the source tag
func (l *LinkAdapter) GetSourceName() string {
	return types.SourceLinks
}

// ExtractPlayers turns every player link into a record keyed by its raw href.
// The first link for an href wins.
func (l *LinkAdapter) ExtractPlayers(ctx context.Context, doc *goquery.Document, ectx *types.ExtractionContext) ([]types.PlayerRecord, error) {
	var records []types.PlayerRecord
	duplicates := 0

	PlayerLinks(doc).Each(func(i int, a *goquery.Selection) {
		href, _ := a.Attr("href")

		// Link text example: "Andreas WOLFF Club: THW Kiel Germany - Goalkeeper"
		text := JoinedText(a)
		if text == "" {
			return
		}

		if !ectx.MarkSeen(href) {
			duplicates++
			return
		}

		record := ParsePlayerLinkText(text)
		record.Key = href
		record.PlayerID = LastPathSegment(href)
		record.ImagePath = types.String("")
		if src := FindLinkImage(a); src != "" {
			record.Photo = types.NewImageCandidate(AbsoluteURL(ectx.BaseURL, src))
		}

		records = append(records, record)
	})

	l.logger.Debugf("Found %d player links (%d duplicates skipped)", len(records), duplicates)
	return records, nil
}

// PlayerLinks returns the anchors whose href points at a player page
func PlayerLinks(doc *goquery.Document) *goquery.Selection {
	return doc.Find("a[href]").FilterFunction(func(i int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		return strings.Contains(href, playersPathMarker)
	})
}

// ParsePlayerLinkText splits link text into name and position. The name is
// cut before "Club:"; a short trailing "- <token>" becomes the position.
func ParsePlayerLinkText(text string) types.PlayerRecord {
	name := text
	if idx := strings.Index(text, clubMarker); idx >= 0 {
		name = strings.TrimSpace(text[:idx])
	}

	position := ""
	if idx := strings.LastIndex(text, "-"); idx >= 0 {
		pos := strings.TrimSpace(text[idx+1:])
		if pos != "" && utf8.RuneCountInString(pos) < maxPositionLength {
			position = pos
		}
	}

	return types.PlayerRecord{
		Name:     name,
		Position: types.String(position),
	}
}

// FindLinkImage locates the photo for a player link: the parent's first
// image, then an image inside the link, then the image right before it.
func FindLinkImage(a *goquery.Selection) string {
	candidates := []*goquery.Selection{
		a.Parent().Find("img").First(),
		a.Find("img").First(),
		a.PrevFiltered("img"),
	}

	for _, img := range candidates {
		if img.Length() == 0 {
			continue
		}
		for _, attr := range imageSourceAttrs {
			if src := strings.TrimSpace(img.AttrOr(attr, "")); src != "" {
				return src
			}
		}
		// First image found wins even when it carries no usable source
		return ""
	}
	return ""
}
