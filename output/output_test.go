package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"roster-scraper/internal/types"
)

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestNewWriter(t *testing.T) {
	buf := &bytes.Buffer{}

	w, err := NewWriter(buf, FormatCSV)
	require.NoError(t, err)
	assert.IsType(t, &CSVWriter{}, w)

	w, err = NewWriter(buf, FormatJSON)
	require.NoError(t, err)
	assert.IsType(t, &JSONWriter{}, w)

	w, err = NewWriter(buf, FormatYAML)
	require.NoError(t, err)
	assert.IsType(t, &YAMLWriter{}, w)

	_, err = NewWriter(buf, Format("xml"))
	assert.ErrorContains(t, err, "unsupported")
}

func TestParseFormat(t *testing.T) {
	cases := []struct {
		name, filename string
		want           Format
	}{
		{"", "player_roster.csv", FormatCSV},
		{"", "roster.json", FormatJSON},
		{"", "roster.YML", FormatYAML},
		{"", "roster", FormatCSV},
		{"JSON", "roster.csv", FormatJSON},
		{"yml", "", FormatYAML},
	}
	for _, tc := range cases {
		got, err := ParseFormat(tc.name, tc.filename)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%q %q", tc.name, tc.filename)
	}

	_, err := ParseFormat("xlsx", "")
	assert.Error(t, err)
}

func TestColumns_OnlyRequiredFields(t *testing.T) {
	records := []types.PlayerRecord{
		{JerseyNumber: "1", Name: "Andreas Wolff"},
		{JerseyNumber: "4", Name: "Johannes Golla"},
	}

	assert.Equal(t, []string{"jerseyNumber", "name"}, Columns(records))
}

func TestColumns_ObservedFieldExtendsHeader(t *testing.T) {
	records := []types.PlayerRecord{
		{JerseyNumber: "1", Name: "Andreas Wolff"},
		{JerseyNumber: "4", Name: "Johannes Golla", Position: types.String("")},
	}

	assert.Equal(t, []string{"jerseyNumber", "name", "position"}, Columns(records))
}

func TestColumns_PreferredOrder(t *testing.T) {
	records := []types.PlayerRecord{
		{Name: "A", ImagePath: types.String("images/ehf/a.jpg")},
		{Name: "B", Age: types.String("24"), Position: types.String("LB")},
	}

	assert.Equal(t, []string{"jerseyNumber", "name", "position", "age", "imagePath"}, Columns(records))
}

func TestCSVWriter_MissingValuesAreEmptyCells(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewCSVWriter(buf)
	require.NoError(t, w.WriteAll([]types.PlayerRecord{
		{JerseyNumber: "7", Name: "Juri Knorr", Position: types.String("CB")},
		{JerseyNumber: "", Name: "Renars Uscins"},
	}))
	require.NoError(t, w.Close())

	rows := readCSV(t, buf.Bytes())
	assert.Equal(t, [][]string{
		{"jerseyNumber", "name", "position"},
		{"7", "Juri Knorr", "CB"},
		{"", "Renars Uscins", ""},
	}, rows)
}

func TestCSVWriter_EmptyWritesNothing(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewCSVWriter(buf)
	require.NoError(t, w.Close())
	assert.Zero(t, buf.Len())
}

func TestCSVWriter_CloseAfterFlushDoesNotRepeat(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewCSVWriter(buf)
	require.NoError(t, w.Write(types.PlayerRecord{JerseyNumber: "1", Name: "A"}))
	require.NoError(t, w.Flush())
	require.NoError(t, w.Close())

	assert.Len(t, readCSV(t, buf.Bytes()), 2)
}

func TestJSONWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, false, "")
	require.NoError(t, w.Write(types.PlayerRecord{JerseyNumber: "1", Name: "A", Age: types.String("30")}))
	require.NoError(t, w.Close())

	var got []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []map[string]string{{"jerseyNumber": "1", "name": "A", "age": "30"}}, got)
}

func TestYAMLWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewYAMLWriter(buf)
	require.NoError(t, w.WriteAll([]types.PlayerRecord{{JerseyNumber: "1", Name: "A"}, {Name: "B"}}))
	require.NoError(t, w.Close())

	var got []map[string]string
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[1]["name"])
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "empty.csv")
	written, err := WriteFile(path, FormatCSV, nil)
	require.NoError(t, err)
	assert.False(t, written)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "no file for empty records")

	path = filepath.Join(dir, "out", "player_roster.csv")
	written, err = WriteFile(path, FormatCSV, []types.PlayerRecord{{JerseyNumber: "3", Name: "C"}})
	require.NoError(t, err)
	assert.True(t, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"jerseyNumber", "name"}, {"3", "C"}}, readCSV(t, data))
}

func TestNewWriter_Options(t *testing.T) {
	records := []types.PlayerRecord{{JerseyNumber: "1", Name: "A"}}

	buf := &bytes.Buffer{}
	w, err := NewWriter(buf, FormatJSON, WithPretty(false))
	require.NoError(t, err)
	require.NoError(t, w.WriteAll(records))
	require.NoError(t, w.Close())
	assert.Equal(t, `[{"jerseyNumber":"1","name":"A"}]`+"\n", buf.String())

	buf.Reset()
	w, err = NewWriter(buf, FormatJSON, WithIndent("\t"))
	require.NoError(t, err)
	require.NoError(t, w.WriteAll(records))
	require.NoError(t, w.Close())
	assert.Contains(t, buf.String(), "\n\t{\n\t\t\"jerseyNumber\": \"1\"")
}
