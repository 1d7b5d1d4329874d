package output

import (
	"bufio"
	"io"

	"gopkg.in/yaml.v3"

	"roster-scraper/internal/types"
)

// YAMLWriter writes records as a YAML sequence.
type YAMLWriter struct {
	w       *bufio.Writer
	records []types.PlayerRecord
	flushed bool
}

// NewYAMLWriter creates a YAML writer.
func NewYAMLWriter(w io.Writer) *YAMLWriter {
	return &YAMLWriter{
		w:       bufio.NewWriter(w),
		records: make([]types.PlayerRecord, 0),
	}
}

// Write buffers a single record.
func (w *YAMLWriter) Write(record types.PlayerRecord) error {
	w.records = append(w.records, record)
	return nil
}

// WriteAll buffers multiple records.
func (w *YAMLWriter) WriteAll(records []types.PlayerRecord) error {
	w.records = append(w.records, records...)
	return nil
}

// Flush writes the buffered records as YAML.
func (w *YAMLWriter) Flush() error {
	w.flushed = true

	encoder := yaml.NewEncoder(w.w)
	encoder.SetIndent(2)
	if err := encoder.Encode(w.records); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}

	w.records = w.records[:0]
	return w.w.Flush()
}

// Close flushes any records not yet written.
func (w *YAMLWriter) Close() error {
	if w.flushed && len(w.records) == 0 {
		return nil
	}
	return w.Flush()
}
