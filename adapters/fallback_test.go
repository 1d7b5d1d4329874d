package adapters

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roster-scraper/internal/types"
	"roster-scraper/utils"
)

func TestExtractTableRows(t *testing.T) {
	html := `
	<table>
	  <tr><th>No.</th><th>Name</th><th>Pos</th></tr>
	  <tr><td> 7 </td><td> Anna Vesela </td><td>LW</td></tr>
	  <tr><th>12</th><td>Sandra Toft</td></tr>
	  <tr><td>9a</td><td>Not A Number</td></tr>
	  <tr><td>3</td><td>   </td></tr>
	  <tr><td>15</td></tr>
	  <tr><td>-1</td><td>Negative</td></tr>
	  <tr><td>²</td><td>Superscript</td></tr>
	</table>`

	records := ExtractTableRows(mustDoc(t, html))

	require.Len(t, records, 2)
	assert.Equal(t, types.PlayerRecord{JerseyNumber: "7", Name: "Anna Vesela"}, records[0])
	assert.Equal(t, types.PlayerRecord{JerseyNumber: "12", Name: "Sandra Toft"}, records[1])
}

func TestExtractTableRows_ArbitraryCells(t *testing.T) {
	digits := regexp.MustCompile(`^[0-9]+$`)
	pieces := []string{"", " ", "7", "12", "x", "3b", "Ana", "  Bo  ", "-", "٣", "0", "&nbsp;", "<b>5</b>"}
	rng := rand.New(rand.NewSource(1))

	var sb strings.Builder
	sb.WriteString("<table>")
	for i := 0; i < 300; i++ {
		sb.WriteString("<tr>")
		for c := 0; c < rng.Intn(4); c++ {
			fmt.Fprintf(&sb, "<td>%s%s</td>", pieces[rng.Intn(len(pieces))], pieces[rng.Intn(len(pieces))])
		}
		sb.WriteString("</tr>")
	}
	sb.WriteString("</table>")

	for _, record := range ExtractTableRows(mustDoc(t, sb.String())) {
		assert.Regexp(t, digits, record.JerseyNumber)
		assert.NotEmpty(t, record.Name)
	}
}

func TestParsePlayerLinkText(t *testing.T) {
	record := ParsePlayerLinkText("Andreas WOLFF Club: THW Kiel Germany - Goalkeeper")
	assert.Equal(t, "Andreas WOLFF", record.Name)
	assert.Equal(t, "Goalkeeper", types.Value(record.Position))

	record = ParsePlayerLinkText("Jane DOE")
	assert.Equal(t, "Jane DOE", record.Name)
	require.NotNil(t, record.Position)
	assert.Equal(t, "", *record.Position)

	record = ParsePlayerLinkText("Someone - " + strings.Repeat("x", 40))
	assert.Equal(t, "", types.Value(record.Position), "tokens of 40 characters or more are not positions")
}

func TestLinkAdapter_ExtractPlayers(t *testing.T) {
	html := `
	<div class="card"><img data-src="/img/wolff_w180.jpg"><a href="/teams/ger/players/123">Andreas <b>WOLFF</b> Club: THW Kiel - Goalkeeper</a></div>
	<div class="card"><a href="/teams/ger/players/123">Andreas WOLFF again</a></div>
	<p><img src="https://cdn.example.com/knorr.png"><a href="https://www.ihf.info/players/456/">Juri KNORR</a><span><img src="/ignored.png"></span></p>
	<a href="/teams/ger/players/789"><span></span></a>
	<a href="/teams/ger/staff/1">Coach</a>
	<ul><li><a href="/players/321"><img src="/img/inside.jpg">Inside Image</a></li></ul>`

	base, _ := url.Parse("https://www.ihf.info/competitions/men/team")
	ectx := types.NewExtractionContext(base)

	config := types.DefaultConfig()
	logger := logrus.New()
	adapter := NewLinkAdapter(config, logger, utils.NewHTTPClient(config, logger))

	records, err := adapter.ExtractPlayers(context.Background(), mustDoc(t, html), ectx)
	require.NoError(t, err)
	require.Len(t, records, 3)

	wolff := records[0]
	assert.Equal(t, "Andreas WOLFF", wolff.Name)
	assert.Equal(t, "Goalkeeper", types.Value(wolff.Position))
	assert.Equal(t, "/teams/ger/players/123", wolff.Key)
	assert.Equal(t, "123", wolff.PlayerID)
	assert.Empty(t, wolff.JerseyNumber)
	require.NotNil(t, wolff.Photo)
	assert.Equal(t, "https://www.ihf.info/img/wolff_w180.jpg", wolff.Photo.SourceURL)
	assert.Equal(t, "w180", wolff.Photo.ResolutionToken)

	knorr := records[1]
	assert.Equal(t, "Juri KNORR", knorr.Name)
	assert.Equal(t, "456", knorr.PlayerID)
	require.NotNil(t, knorr.Photo)
	assert.Equal(t, "https://cdn.example.com/knorr.png", knorr.Photo.SourceURL, "parent image wins")

	inside := records[2]
	require.NotNil(t, inside.Photo)
	assert.Equal(t, "https://www.ihf.info/img/inside.jpg", inside.Photo.SourceURL)
}

func TestLinkAdapter_DuplicateHrefKeepsFirst(t *testing.T) {
	html := `<a href="players/1">First Name</a><a href="players/1">Second Name</a><a href="/players/1">Absolute Form</a>`

	base, _ := url.Parse("https://example.com/team/")
	ectx := types.NewExtractionContext(base)
	config := types.DefaultConfig()
	logger := logrus.New()
	adapter := NewLinkAdapter(config, logger, utils.NewHTTPClient(config, logger))

	records, err := adapter.ExtractPlayers(context.Background(), mustDoc(t, html), ectx)
	require.NoError(t, err)

	// "players/1" has no leading slash so it does not contain "/players/"
	require.Len(t, records, 1)
	assert.Equal(t, "Absolute Form", records[0].Name)

	html = `<a href="/x/players/1">First Name</a><a href="/x/players/1">Second Name</a>`
	records, err = adapter.ExtractPlayers(context.Background(), mustDoc(t, html), types.NewExtractionContext(base))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "First Name", records[0].Name)
}

func TestHelpers(t *testing.T) {
	assert.True(t, IsDigits("0123"))
	assert.False(t, IsDigits(""))
	assert.False(t, IsDigits("1 2"))

	assert.Equal(t, "456", LastPathSegment("https://www.ihf.info/players/456/"))
	assert.Equal(t, "", LastPathSegment("/"))

	base, _ := url.Parse("https://example.com/a/b")
	assert.Equal(t, "https://example.com/img/x.jpg", AbsoluteURL(base, "/img/x.jpg"))
	assert.Equal(t, "https://example.com/a/x.jpg", AbsoluteURL(base, "x.jpg"))
	assert.Equal(t, "https://cdn.com/y.png", AbsoluteURL(base, "https://cdn.com/y.png"))

	assert.Equal(t, "Andreas WOLFF", JoinedText(mustDoc(t, "<a><b>Andreas</b><span> WOLFF </span></a>").Find("a")))
}

func TestBaseAdapter_ExtractText(t *testing.T) {
	config := types.DefaultConfig()
	logger := logrus.New()
	base := NewBaseAdapter(config, logger, utils.NewHTTPClient(config, logger))
	doc := mustDoc(t, "<html><head><title>  Germany - Squad  </title></head><body></body></html>")

	title, err := base.ExtractText(doc, "title")
	require.NoError(t, err)
	assert.Equal(t, "Germany - Squad", title)

	_, err = base.ExtractText(doc, "h1")
	assert.ErrorContains(t, err, "element not found")
}
