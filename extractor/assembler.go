package extractor

import (
	"strings"

	"roster-scraper/adapters"
	"roster-scraper/internal/types"
)

// Assembler merges extracted records with their image results, dropping
// nameless records and duplicate identity keys while keeping first-seen order.
type Assembler struct {
	seen    map[string]struct{}
	records []types.PlayerRecord
}

// NewAssembler creates an empty assembler
func NewAssembler() *Assembler {
	return &Assembler{seen: make(map[string]struct{})}
}

// Add merges imagePath into record and appends it. It reports whether the
// record was kept.
func (a *Assembler) Add(record types.PlayerRecord, imagePath string) bool {
	record.Name = strings.TrimSpace(record.Name)
	if record.Name == "" {
		return false
	}

	record.JerseyNumber = strings.TrimSpace(record.JerseyNumber)
	if record.JerseyNumber != "" && !adapters.IsDigits(record.JerseyNumber) {
		record.JerseyNumber = ""
	}

	if record.Key != "" {
		if _, dup := a.seen[record.Key]; dup {
			return false
		}
		a.seen[record.Key] = struct{}{}
	}

	if imagePath != "" || record.ImagePath != nil {
		record.ImagePath = types.String(imagePath)
	}

	a.records = append(a.records, record)
	return true
}

// Records returns the assembled records in first-seen order
func (a *Assembler) Records() []types.PlayerRecord {
	return a.records
}

// Assemble is a convenience wrapper running records and their image paths
// (matched by index) through a fresh assembler.
func Assemble(records []types.PlayerRecord, imagePaths []string) []types.PlayerRecord {
	a := NewAssembler()
	for i, record := range records {
		var imagePath string
		if i < len(imagePaths) {
			imagePath = imagePaths[i]
		}
		a.Add(record, imagePath)
	}
	return a.Records()
}
