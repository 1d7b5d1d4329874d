package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"roster-scraper/internal/types"
	"roster-scraper/utils"

	"github.com/PuerkitoBio/goquery"
)

// rosterSections are read in this order; it only affects emission order
var rosterSections = []string{"players", "goalKeepers", "playersLeft"}

// StructuredAdapter handles pages that embed a club details API
type StructuredAdapter struct {
	*BaseAdapter
}

// NewStructuredAdapter creates a new structured API adapter
func NewStructuredAdapter(config *types.Config, logger types.Logger, httpClient *utils.HTTPClient) *StructuredAdapter {
	return &StructuredAdapter{
		BaseAdapter: NewBaseAdapter(config, logger, httpClient),
	}
}

// GetSourceName returns the source tag
func (s *StructuredAdapter) GetSourceName() string {
	return types.SourceStructured
}

type apiPerson struct {
	FirstName json.RawMessage `json:"firstName"`
	LastName  json.RawMessage `json:"lastName"`
	Age       json.RawMessage `json:"age"`
	ID        json.RawMessage `json:"id"`
	NewPhoto  json.RawMessage `json:"newPhoto"`
	Photos    json.RawMessage `json:"photos"`
}

type apiEntity struct {
	Person          apiPerson       `json:"person"`
	ShirtNumber     json.RawMessage `json:"shirtNumber"`
	PlayingPosition json.RawMessage `json:"playingPosition"`
	URL             json.RawMessage `json:"url"`
	NewPhoto        json.RawMessage `json:"newPhoto"`
	Photos          json.RawMessage `json:"photos"`
}

// BuildAPIURL joins the page's scheme and host with the discovered API path
// and returns the query parameters to attach.
func BuildAPIURL(base *url.URL, params types.StructuredParams) (string, map[string]string) {
	apiPath := params.APIPath
	if !strings.HasPrefix(apiPath, "/") {
		apiPath = "/" + apiPath
	}
	apiURL := fmt.Sprintf("%s://%s%s", base.Scheme, base.Host, apiPath)

	query := map[string]string{"clubId": params.ClubID}
	if params.CompetitionID != "" {
		query["competitionId"] = params.CompetitionID
	}
	if params.RoundID != "" {
		query["roundId"] = params.RoundID
	}
	return apiURL, query
}

// ExtractPlayers fetches the club details JSON and maps its sections into records.
// A fetch or decode failure aborts the whole structured run; the caller does
// not fall back to markup parsing.
func (s *StructuredAdapter) ExtractPlayers(ctx context.Context, doc *goquery.Document, ectx *types.ExtractionContext) ([]types.PlayerRecord, error) {
	apiURL, query := BuildAPIURL(ectx.BaseURL, ectx.Params)
	s.logger.Debugf("Fetching club details from %s with %v", apiURL, query)

	body, err := s.httpClient.FetchWithParams(ctx, apiURL, query, s.config.PageTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to call club details API: %w", err)
	}

	return s.ParseClubDetails(apiURL, body)
}

// ParseClubDetails maps a club details JSON document into player records
func (s *StructuredAdapter) ParseClubDetails(apiURL string, body []byte) ([]types.PlayerRecord, error) {
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(body, &sections); err != nil {
		return nil, &types.DecodeError{URL: apiURL, Err: err}
	}

	var records []types.PlayerRecord
	for _, section := range rosterSections {
		raw, ok := sections[section]
		if !ok || isJSONNull(raw) {
			continue
		}

		var entities []apiEntity
		if err := json.Unmarshal(raw, &entities); err != nil {
			return nil, &types.DecodeError{URL: apiURL, Err: fmt.Errorf("section %s: %w", section, err)}
		}

		s.logger.Debugf("Section %s has %d entries", section, len(entities))
		for _, entity := range entities {
			records = append(records, entity.toRecord())
		}
	}

	return records, nil
}

func (e apiEntity) toRecord() types.PlayerRecord {
	first := looseString(e.Person.FirstName)
	last := looseString(e.Person.LastName)
	entityURL := looseString(e.URL)

	var name string
	if first != "" || last != "" {
		name = strings.TrimSpace(first + " " + last)
	} else {
		name = entityURL
	}

	playerID := looseString(e.Person.ID)
	if playerID == "" {
		playerID = LastPathSegment(entityURL)
	}

	return types.PlayerRecord{
		JerseyNumber: looseString(e.ShirtNumber),
		Name:         name,
		Position:     types.String(looseString(e.PlayingPosition)),
		Age:          types.String(looseString(e.Person.Age)),
		ImagePath:    types.String(""),
		PlayerID:     playerID,
		Photo:        types.NewImageCandidate(e.photoURL()),
	}
}

// photoURL picks the photo source: the size-keyed "newPhoto" mapping first,
// then the generic "photos" field, person-level before entity-level.
func (e apiEntity) photoURL() string {
	for _, raw := range []json.RawMessage{e.Person.NewPhoto, e.NewPhoto} {
		if u := sizedPhoto(raw); u != "" {
			return u
		}
	}
	for _, raw := range []json.RawMessage{e.Person.Photos, e.Photos} {
		if u := photosEntry(raw); u != "" {
			return u
		}
	}
	return ""
}

// sizedPhoto returns the highest-priority URL of a size-keyed mapping
func sizedPhoto(raw json.RawMessage) string {
	var sizes map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &sizes) != nil {
		return ""
	}
	for _, key := range types.ResolutionPriority {
		if u := looseString(sizes[key]); u != "" {
			return u
		}
	}
	return ""
}

// photosEntry handles a "photos" field that is a mapping, a sequence of
// entries (the first one is used) or a bare URL string.
func photosEntry(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}

	switch raw[0] {
	case '"':
		return looseString(raw)
	case '{':
		return sizedPhoto(raw)
	case '[':
		var entries []json.RawMessage
		if json.Unmarshal(raw, &entries) != nil || len(entries) == 0 {
			return ""
		}
		first := bytes.TrimSpace(entries[0])
		if len(first) > 0 && first[0] == '"' {
			return looseString(first)
		}
		return sizedPhoto(first)
	}
	return ""
}

// looseString renders a JSON scalar as a string. Falsy values (null, false,
// 0, "") and non-scalars come back empty.
func looseString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}

	switch raw[0] {
	case '"':
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return ""
		}
		return strings.TrimSpace(s)
	case 't':
		return "true"
	case 'f', 'n', '{', '[':
		return ""
	}

	var n json.Number
	if json.Unmarshal(raw, &n) != nil {
		return ""
	}
	if f, err := n.Float64(); err == nil && f == 0 {
		return ""
	}
	return n.String()
}

func isJSONNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
