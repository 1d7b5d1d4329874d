package adapters

import (
	"context"
	"strings"

	"roster-scraper/internal/types"
	"roster-scraper/utils"

	"github.com/PuerkitoBio/goquery"
)

// TableAdapter recovers number and name pairs from generic table rows
type TableAdapter struct {
	*BaseAdapter
}

// NewTableAdapter creates a new table fallback adapter
func NewTableAdapter(config *types.Config, logger types.Logger, httpClient *utils.HTTPClient) *TableAdapter {
	return &TableAdapter{
		BaseAdapter: NewBaseAdapter(config, logger, httpClient),
	}
}

// GetSourceName returns the source tag
func (t *TableAdapter) GetSourceName() string {
	return types.SourceTable
}

// ExtractPlayers walks every row of the page. Rows that do not look like
// "<number> <name> ..." are skipped; this is a heuristic, not a validator.
func (t *TableAdapter) ExtractPlayers(ctx context.Context, doc *goquery.Document, ectx *types.ExtractionContext) ([]types.PlayerRecord, error) {
	records := ExtractTableRows(doc)
	t.logger.Debugf("Found %d qualifying table rows", len(records))
	return records, nil
}

// ExtractTableRows returns a record for each row whose first cell is numeric
// and whose second cell is non-empty.
func ExtractTableRows(doc *goquery.Document) []types.PlayerRecord {
	var records []types.PlayerRecord

	doc.Find("tr").Each(func(i int, row *goquery.Selection) {
		// Only direct cells, so nested tables are judged on their own rows
		cells := row.ChildrenFiltered("td, th")
		if cells.Length() < 2 {
			return
		}

		number := strings.TrimSpace(cells.Eq(0).Text())
		name := strings.TrimSpace(cells.Eq(1).Text())
		if !IsDigits(number) || name == "" {
			return
		}

		records = append(records, types.PlayerRecord{
			JerseyNumber: number,
			Name:         name,
		})
	})

	return records
}
