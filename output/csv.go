package output

import (
	"bufio"
	"encoding/csv"
	"io"

	"roster-scraper/internal/types"
)

// CSVWriter writes one row per record under a header of observed columns.
type CSVWriter struct {
	w       *bufio.Writer
	records []types.PlayerRecord
	flushed bool
}

// NewCSVWriter creates a CSV writer.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{
		w:       bufio.NewWriter(w),
		records: make([]types.PlayerRecord, 0),
	}
}

// Write buffers a single record.
func (w *CSVWriter) Write(record types.PlayerRecord) error {
	w.records = append(w.records, record)
	return nil
}

// WriteAll buffers multiple records.
func (w *CSVWriter) WriteAll(records []types.PlayerRecord) error {
	w.records = append(w.records, records...)
	return nil
}

// Flush writes the header and all buffered rows. An empty buffer writes
// nothing, not even a header.
func (w *CSVWriter) Flush() error {
	w.flushed = true
	if len(w.records) == 0 {
		return nil
	}

	columns := Columns(w.records)
	cw := csv.NewWriter(w.w)
	if err := cw.Write(columns); err != nil {
		return err
	}

	for _, record := range w.records {
		values := make(map[string]string, len(columns))
		for _, field := range record.Fields() {
			values[field.Column] = field.Value
		}
		row := make([]string, len(columns))
		for i, column := range columns {
			row[i] = values[column]
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	w.records = w.records[:0]
	return w.w.Flush()
}

// Close flushes any records not yet written.
func (w *CSVWriter) Close() error {
	if w.flushed && len(w.records) == 0 {
		return nil
	}
	return w.Flush()
}

// Columns returns the header for records: every column carried by at least
// one record, preferred columns first in their fixed order, then the rest in
// first-seen order.
func Columns(records []types.PlayerRecord) []string {
	observed := make(map[string]bool)
	var seenOrder []string
	for _, record := range records {
		for _, field := range record.Fields() {
			if !observed[field.Column] {
				observed[field.Column] = true
				seenOrder = append(seenOrder, field.Column)
			}
		}
	}

	preferred := make(map[string]bool, len(types.PreferredColumns))
	columns := make([]string, 0, len(seenOrder))
	for _, column := range types.PreferredColumns {
		preferred[column] = true
		if observed[column] {
			columns = append(columns, column)
		}
	}
	for _, column := range seenOrder {
		if !preferred[column] {
			columns = append(columns, column)
		}
	}
	return columns
}
