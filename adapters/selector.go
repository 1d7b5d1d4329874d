package adapters

import (
	"net/url"
	"strings"

	"roster-scraper/internal/types"

	"github.com/PuerkitoBio/goquery"
)

const (
	clubDetailsID   = "vue-container-clubDetails"
	attrAPIPath     = "data-club-details-url"
	attrClubID      = "data-club-id"
	attrCompetition = "data-competition-id"
	attrRound       = "data-round-id"
)

// FindClubDetails returns the club details container, located either by its
// well-known id or by the first element naming an API path.
func FindClubDetails(doc *goquery.Document) *goquery.Selection {
	container := doc.Find("#" + clubDetailsID).First()
	if container.Length() > 0 {
		return container
	}
	return doc.Find("[" + attrAPIPath + "]").First()
}

// SelectStrategy decides once per page between structured API extraction and
// the markup fallback. STRUCTURED requires both an API path and a club id.
func SelectStrategy(doc *goquery.Document) (types.Strategy, types.StructuredParams) {
	container := FindClubDetails(doc)
	if container.Length() == 0 {
		return types.StrategyFallback, types.StructuredParams{}
	}

	params := types.StructuredParams{
		APIPath:       strings.TrimSpace(container.AttrOr(attrAPIPath, "")),
		ClubID:        strings.TrimSpace(container.AttrOr(attrClubID, "")),
		CompetitionID: strings.TrimSpace(container.AttrOr(attrCompetition, "")),
		RoundID:       strings.TrimSpace(container.AttrOr(attrRound, "")),
	}

	if params.APIPath == "" || params.ClubID == "" {
		return types.StrategyFallback, params
	}
	return types.StrategyStructured, params
}

// SelectFallback picks the markup variant for a FALLBACK page: player links
// for hosts known to list players that way, or when the page has no usable
// table rows but does have player links; table rows otherwise.
func SelectFallback(doc *goquery.Document, base *url.URL) string {
	if base != nil && strings.Contains(strings.ToLower(base.Host), "ihf.info") {
		return types.SourceLinks
	}
	if len(ExtractTableRows(doc)) == 0 && PlayerLinks(doc).Length() > 0 {
		return types.SourceLinks
	}
	return types.SourceTable
}
