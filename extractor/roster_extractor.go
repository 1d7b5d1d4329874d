package extractor

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"roster-scraper/adapters"
	"roster-scraper/images"
	"roster-scraper/internal/types"
	"roster-scraper/output"
	"roster-scraper/utils"
)

// RosterExtractor runs the full scrape of one team page: fetch, strategy
// selection, extraction, image handling and assembly.
type RosterExtractor struct {
	config     *types.Config
	logger     types.Logger
	httpClient *utils.HTTPClient
	base       *adapters.BaseAdapter
	adapters   map[string]adapters.RosterAdapter
	resolver   *images.Resolver
	processor  *images.Processor
}

// NewRosterExtractor creates a new roster extractor sharing one HTTP client
// across the page fetch, the API call and all image requests.
func NewRosterExtractor(config *types.Config, logger types.Logger) *RosterExtractor {
	httpClient := utils.NewHTTPClient(config, logger)

	return &RosterExtractor{
		config:     config,
		logger:     logger,
		httpClient: httpClient,
		base:       adapters.NewBaseAdapter(config, logger, httpClient),
		adapters: map[string]adapters.RosterAdapter{
			types.SourceStructured: adapters.NewStructuredAdapter(config, logger, httpClient),
			types.SourceLinks:      adapters.NewLinkAdapter(config, logger, httpClient),
			types.SourceTable:      adapters.NewTableAdapter(config, logger, httpClient),
		},
		resolver:  images.NewResolver(httpClient, logger),
		processor: images.NewProcessor(httpClient, config, logger),
	}
}

// Scrape extracts the roster of pageURL. It also returns the raw page bytes
// so callers can keep them for debugging. Only a failure to fetch the page
// itself is returned as an error (wrapping types.ErrNoData); every later
// failure yields a result with fewer or no players.
func (r *RosterExtractor) Scrape(ctx context.Context, pageURL string) (*types.ScrapeResult, []byte, error) {
	startTime := time.Now()
	r.pageLogger(pageURL).Infof("Starting roster extraction at %v", startTime.Format("15:04:05.000"))

	base, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		if err == nil {
			err = fmt.Errorf("missing scheme or host")
		}
		return nil, nil, fmt.Errorf("%w: invalid page URL %q: %w", types.ErrNoData, pageURL, err)
	}

	r.logger.Info("Step 1: Fetching team page...")
	page, err := r.base.GetPageContent(ctx, base.String())
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to fetch team page: %w", types.ErrNoData, err)
	}

	result := &types.ScrapeResult{URL: base.String(), Strategy: types.StrategyFallback.String()}

	doc, err := r.base.ParseHTML(page)
	if err != nil {
		r.logger.Warnf("Failed to parse team page: %v", err)
		result.Error = err.Error()
		return result, page, nil
	}

	r.logger.Info("Step 2: Selecting extraction strategy...")
	ectx := types.NewExtractionContext(base)
	adapter := r.selectAdapter(doc, ectx)
	result.Strategy = ectx.Strategy.String()
	r.logger.Infof("Using %s strategy (source %s)", ectx.Strategy, ectx.SourceTag)

	r.logger.Info("Step 3: Extracting players...")
	records, err := adapter.ExtractPlayers(ctx, doc, ectx)
	if err != nil {
		// The strategy decision is final: a failed API call does not fall
		// back to markup parsing.
		r.logger.Warnf("Failed to extract players: %v", err)
		result.Error = err.Error()
		records = nil
	}
	r.logger.Infof("Extracted %d candidate records", len(records))

	var imagePaths []string
	if r.config.DownloadImages && len(records) > 0 {
		r.logger.Info("Step 4: Processing player images...")
		imagePaths = r.processImages(ctx, records, ectx)
	}

	result.Players = Assemble(records, imagePaths)

	r.logger.Infof("Roster extraction completed in %v", time.Since(startTime))
	r.logger.Infof("Successfully assembled %d/%d players", len(result.Players), len(records))
	return result, page, nil
}

// selectAdapter makes the one-way strategy decision for the page and
// records it on ectx.
func (r *RosterExtractor) selectAdapter(doc *goquery.Document, ectx *types.ExtractionContext) adapters.RosterAdapter {
	strategy, params := adapters.SelectStrategy(doc)
	ectx.Strategy = strategy
	ectx.Params = params

	source := types.SourceStructured
	if strategy == types.StrategyFallback {
		source = adapters.SelectFallback(doc, ectx.BaseURL)
	}

	adapter := r.adapters[source]
	ectx.SourceTag = adapter.GetSourceName()
	return adapter
}

// processImages resolves and stores the photo of every record, returning
// the local paths by record index. Records are processed by at most
// ImageWorkers goroutines; an image failure only empties that record's path.
func (r *RosterExtractor) processImages(ctx context.Context, records []types.PlayerRecord, ectx *types.ExtractionContext) []string {
	paths := make([]string, len(records))
	dir := filepath.Join(r.config.ImagesDir, ectx.SourceTag)

	workers := r.config.ImageWorkers
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, record := range records {
		if record.Photo == nil || strings.TrimSpace(record.Name) == "" {
			continue
		}
		// Nothing to name the file after, so resolving would only waste requests
		if images.FileStem(record.Name, record.PlayerID) == "" {
			r.logger.Debugf("Skipping photo of %q: no usable filename", record.Name)
			continue
		}

		i, record := i, record
		g.Go(func() error {
			imageURL := r.resolver.Resolve(gctx, record.Photo, ectx.BaseURL)
			paths[i] = r.processor.Process(gctx, imageURL, dir, record.Name, record.PlayerID)
			return nil
		})
	}

	_ = g.Wait()

	stored := 0
	for _, p := range paths {
		if p != "" {
			stored++
		}
	}
	r.logger.Infof("Stored %d player images under %s", stored, dir)
	return paths
}

// ExtractToFile scrapes pageURL and writes the players to filename in the
// given format. When nothing was found no output file is produced and, with
// debugPath set, the raw page is saved there instead.
func (r *RosterExtractor) ExtractToFile(ctx context.Context, pageURL, filename string, format output.Format, debugPath string, opts ...output.WriterOption) (*types.ScrapeResult, error) {
	result, page, err := r.Scrape(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	if len(result.Players) == 0 {
		r.logger.Warn("No player data found")
		if debugPath != "" && page != nil {
			if err := r.SaveDebugPage(debugPath, page); err != nil {
				r.logger.Warnf("Failed to save debug page: %v", err)
			}
		}
		return result, types.ErrNoData
	}

	written, err := output.WriteFile(filename, format, result.Players, opts...)
	if err != nil {
		return result, fmt.Errorf("failed to write results to file: %w", err)
	}
	if written {
		r.logger.Infof("Results saved to %s", filename)
	}
	return result, nil
}

// SaveDebugPage persists the raw bytes of a page for offline inspection
func (r *RosterExtractor) SaveDebugPage(filename string, page []byte) error {
	if err := writeToFile(filename, page); err != nil {
		return fmt.Errorf("failed to write debug page: %w", err)
	}
	r.logger.Infof("Saved raw page to %s", filename)
	return nil
}

// pageLogger tags log lines with the page being scraped when the logger
// supports structured fields.
func (r *RosterExtractor) pageLogger(pageURL string) types.Logger {
	if fl, ok := r.logger.(logrus.FieldLogger); ok {
		return fl.WithField("url", pageURL)
	}
	return r.logger
}

// Close cleans up resources
func (r *RosterExtractor) Close() {
	if r.httpClient != nil {
		r.httpClient.Close()
	}
}

func writeToFile(filename string, data []byte) error {
	return os.WriteFile(filename, data, 0644)
}
