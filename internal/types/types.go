package types

import (
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"
)

// Column names used in every output format
const (
	ColumnJerseyNumber = "jerseyNumber"
	ColumnName         = "name"
	ColumnPosition     = "position"
	ColumnAge          = "age"
	ColumnImagePath    = "imagePath"
)

// PreferredColumns is the column order output writers put first
var PreferredColumns = []string{ColumnJerseyNumber, ColumnName, ColumnPosition, ColumnAge, ColumnImagePath}

// PlayerRecord represents a single roster entry.
// Optional fields are nil when the source never carries them, which is
// different from a field that was looked for and came back empty.
type PlayerRecord struct {
	JerseyNumber string  `json:"jerseyNumber" yaml:"jerseyNumber"`
	Name         string  `json:"name" yaml:"name"`
	Position     *string `json:"position,omitempty" yaml:"position,omitempty"`
	Age          *string `json:"age,omitempty" yaml:"age,omitempty"`
	ImagePath    *string `json:"imagePath,omitempty" yaml:"imagePath,omitempty"`

	// Key deduplicates records within one page; empty means no dedupe
	Key string `json:"-" yaml:"-"`
	// PlayerID prefixes stored image filenames
	PlayerID string          `json:"-" yaml:"-"`
	Photo    *ImageCandidate `json:"-" yaml:"-"`
}

// Field is a single (column, value) pair of a record
type Field struct {
	Column string
	Value  string
}

// Fields returns the fields the record carries, in preferred column order
func (p PlayerRecord) Fields() []Field {
	fields := []Field{
		{Column: ColumnJerseyNumber, Value: p.JerseyNumber},
		{Column: ColumnName, Value: p.Name},
	}
	if p.Position != nil {
		fields = append(fields, Field{Column: ColumnPosition, Value: *p.Position})
	}
	if p.Age != nil {
		fields = append(fields, Field{Column: ColumnAge, Value: *p.Age})
	}
	if p.ImagePath != nil {
		fields = append(fields, Field{Column: ColumnImagePath, Value: *p.ImagePath})
	}
	return fields
}

// String returns a pointer to s, for filling optional record fields
func String(s string) *string {
	return &s
}

// Value dereferences an optional field, returning "" for nil
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ImageCandidate is a photo URL discovered at extraction time
type ImageCandidate struct {
	SourceURL string
	// ResolutionToken is the width marker (e.g. "w180") found in SourceURL
	ResolutionToken string
}

// Strategy is the extraction approach chosen once per page
type Strategy int

const (
	StrategyFallback Strategy = iota
	StrategyStructured
)

func (s Strategy) String() string {
	switch s {
	case StrategyStructured:
		return "structured"
	case StrategyFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// StructuredParams are the API coordinates discovered in the club details container
type StructuredParams struct {
	APIPath       string
	ClubID        string
	CompetitionID string
	RoundID       string
}

// Source tags used for the image directory layout
const (
	SourceStructured = "ehf"
	SourceLinks      = "ihf"
	SourceTable      = "table"
)

// ExtractionContext holds the state of a single page scrape.
// It is owned by one run and discarded afterwards.
type ExtractionContext struct {
	BaseURL   *url.URL
	Strategy  Strategy
	Params    StructuredParams
	SourceTag string

	mu       sync.Mutex
	seenKeys map[string]struct{}
}

// NewExtractionContext creates a context for the page at base
func NewExtractionContext(base *url.URL) *ExtractionContext {
	return &ExtractionContext{
		BaseURL:  base,
		Strategy: StrategyFallback,
		seenKeys: make(map[string]struct{}),
	}
}

// MarkSeen records key and reports whether it was new.
// Check and insert happen under one lock so concurrent callers agree on the winner.
func (e *ExtractionContext) MarkSeen(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.seenKeys == nil {
		e.seenKeys = make(map[string]struct{})
	}
	if _, ok := e.seenKeys[key]; ok {
		return false
	}
	e.seenKeys[key] = struct{}{}
	return true
}

// ScrapeResult is the outcome of one page scrape
type ScrapeResult struct {
	URL      string         `json:"url" yaml:"url"`
	Strategy string         `json:"strategy" yaml:"strategy"`
	Players  []PlayerRecord `json:"players" yaml:"players"`
	Error    string         `json:"error,omitempty" yaml:"error,omitempty"`
}

// Config holds the configuration for the scraper
type Config struct {
	PageTimeout     time.Duration `mapstructure:"page_timeout" validate:"gt=0"`
	ProbeTimeout    time.Duration `mapstructure:"probe_timeout" validate:"gt=0"`
	DownloadTimeout time.Duration `mapstructure:"download_timeout" validate:"gt=0"`
	ImagesDir       string        `mapstructure:"images_dir"`
	DownloadImages  bool          `mapstructure:"download_images"`
	ImageWorkers    int           `mapstructure:"image_workers" validate:"gte=1,lte=64"`
	MinImageSize    int           `mapstructure:"min_image_size" validate:"gte=0"`
	JPEGQuality     int           `mapstructure:"jpeg_quality" validate:"gte=1,lte=100"`
	UserAgent       string        `mapstructure:"user_agent" validate:"required"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		PageTimeout:     10 * time.Second,
		ProbeTimeout:    5 * time.Second,
		DownloadTimeout: 15 * time.Second,
		ImagesDir:       "images",
		DownloadImages:  true,
		ImageWorkers:    1,
		MinImageSize:    800,
		JPEGQuality:     95,
		UserAgent:       "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
}

// Logger defines the logging interface
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// ResolutionPriority lists photo size keys from highest to lowest resolution
var ResolutionPriority = []string{"original", "w2048", "w1536", "w1280", "w1024", "w512", "w360", "w180"}

// resolutionTokenPattern matches a width marker such as "w180" that is not
// glued to other letters or digits, so hosts like "www2" never match.
var resolutionTokenPattern = regexp.MustCompile(`(?:^|[^A-Za-z0-9])(w\d+)(?:[^A-Za-z0-9]|$)`)

// FindResolutionToken returns the last width marker in the path of rawURL and
// its byte offsets within rawURL, or ok=false when the path carries none.
// Host, query and fragment are never searched.
func FindResolutionToken(rawURL string) (token string, start, end int, ok bool) {
	pathStart, pathEnd := pathBounds(rawURL)
	matches := resolutionTokenPattern.FindAllStringSubmatchIndex(rawURL[pathStart:pathEnd], -1)
	if len(matches) == 0 {
		return "", 0, 0, false
	}
	last := matches[len(matches)-1]
	start, end = pathStart+last[2], pathStart+last[3]
	return rawURL[start:end], start, end, true
}

// pathBounds returns the byte range of the path component of rawURL,
// working on the raw text so offsets stay valid for substitution.
func pathBounds(rawURL string) (int, int) {
	end := len(rawURL)
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		end = i
	}

	authority := -1
	if i := strings.Index(rawURL[:end], "://"); i >= 0 {
		authority = i + len("://")
	} else if strings.HasPrefix(rawURL, "//") {
		authority = len("//")
	}
	if authority < 0 {
		return 0, end
	}

	slash := strings.IndexByte(rawURL[authority:end], '/')
	if slash < 0 {
		return end, end
	}
	return authority + slash, end
}

// NewImageCandidate wraps a discovered photo URL, noting its width marker
func NewImageCandidate(sourceURL string) *ImageCandidate {
	sourceURL = strings.TrimSpace(sourceURL)
	if sourceURL == "" {
		return nil
	}
	token, _, _, _ := FindResolutionToken(sourceURL)
	return &ImageCandidate{SourceURL: sourceURL, ResolutionToken: token}
}
