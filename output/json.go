package output

import (
	"bufio"
	"encoding/json"
	"io"

	"roster-scraper/internal/types"
)

// JSONWriter writes records as a JSON array.
type JSONWriter struct {
	w       *bufio.Writer
	pretty  bool
	indent  string
	records []types.PlayerRecord
	flushed bool
}

// NewJSONWriter creates a JSON writer.
func NewJSONWriter(w io.Writer, pretty bool, indent string) *JSONWriter {
	return &JSONWriter{
		w:       bufio.NewWriter(w),
		pretty:  pretty,
		indent:  indent,
		records: make([]types.PlayerRecord, 0),
	}
}

// Write buffers a single record.
func (w *JSONWriter) Write(record types.PlayerRecord) error {
	w.records = append(w.records, record)
	return nil
}

// WriteAll buffers multiple records.
func (w *JSONWriter) WriteAll(records []types.PlayerRecord) error {
	w.records = append(w.records, records...)
	return nil
}

// Flush writes the buffered records as a JSON array.
func (w *JSONWriter) Flush() error {
	w.flushed = true

	var output []byte
	var err error
	if w.pretty {
		output, err = json.MarshalIndent(w.records, "", w.indent)
	} else {
		output, err = json.Marshal(w.records)
	}
	if err != nil {
		return err
	}

	if _, err := w.w.Write(output); err != nil {
		return err
	}
	if _, err := w.w.WriteString("\n"); err != nil {
		return err
	}

	w.records = w.records[:0]
	return w.w.Flush()
}

// Close flushes any records not yet written.
func (w *JSONWriter) Close() error {
	if w.flushed && len(w.records) == 0 {
		return nil
	}
	return w.Flush()
}
