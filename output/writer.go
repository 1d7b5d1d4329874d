// Package output serializes player records to CSV, JSON or YAML.
package output

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"roster-scraper/internal/types"
)

// Format represents output format types.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Writer handles record serialization. Records are buffered until Flush.
type Writer interface {
	// Write buffers a single record.
	Write(record types.PlayerRecord) error

	// WriteAll buffers multiple records.
	WriteAll(records []types.PlayerRecord) error

	// Flush writes the buffered records.
	Flush() error

	// Close flushes if needed and releases resources.
	Close() error
}

// WriterOption configures a writer.
type WriterOption func(*writerConfig)

type writerConfig struct {
	pretty bool
	indent string
}

// WithPretty enables pretty-printing for JSON.
func WithPretty(enabled bool) WriterOption {
	return func(c *writerConfig) {
		c.pretty = enabled
	}
}

// WithIndent sets the JSON indentation string.
func WithIndent(indent string) WriterOption {
	return func(c *writerConfig) {
		c.indent = indent
	}
}

// NewWriter creates a writer for the specified format.
func NewWriter(w io.Writer, format Format, opts ...WriterOption) (Writer, error) {
	cfg := &writerConfig{
		pretty: true,
		indent: "  ",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	switch format {
	case FormatCSV:
		return NewCSVWriter(w), nil
	case FormatJSON:
		return NewJSONWriter(w, cfg.pretty, cfg.indent), nil
	case FormatYAML:
		return NewYAMLWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// ParseFormat validates a format name. An empty name is inferred from the
// extension of filename, defaulting to CSV.
func ParseFormat(name, filename string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".json":
			return FormatJSON, nil
		case ".yaml", ".yml":
			return FormatYAML, nil
		default:
			return FormatCSV, nil
		}
	}

	switch Format(name) {
	case FormatCSV, FormatJSON, FormatYAML:
		return Format(name), nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", name)
	}
}

// WriteFile serializes records to filename. Nothing is written for an empty
// record list; the returned bool reports whether a file was produced.
func WriteFile(filename string, format Format, records []types.PlayerRecord, opts ...WriterOption) (bool, error) {
	if len(records) == 0 {
		return false, nil
	}

	var buf bytes.Buffer
	w, err := NewWriter(&buf, format, opts...)
	if err != nil {
		return false, err
	}
	if err := w.WriteAll(records); err != nil {
		return false, fmt.Errorf("failed to buffer records: %w", err)
	}
	if err := w.Close(); err != nil {
		return false, fmt.Errorf("failed to encode %s output: %w", format, err)
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(filename, buf.Bytes(), 0644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return true, nil
}
