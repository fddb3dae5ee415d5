package schemes

import (
	"github.com/agentstation/utc"
	"github.com/google/uuid"
)

// RawRow is one feed row stored verbatim with its import provenance.
// No transformation happens at this layer; the normalizer reads rows
// back out of the raw store.
type RawRow struct {
	ID         uuid.UUID         `json:"id" yaml:"id"`
	Source     Source            `json:"source" yaml:"source"`
	Batch      uuid.UUID         `json:"batch" yaml:"batch"`
	SourceFile string            `json:"source_file" yaml:"source_file"`
	Line       int               `json:"line" yaml:"line"` // 1-based line in the source file, header is line 1
	ImportedAt utc.Time          `json:"imported_at" yaml:"imported_at"`
	Fields     map[string]string `json:"fields" yaml:"fields"` // header -> cell, verbatim
}

// ImportBatch marks the latest import for a source: which file it came
// from, when, and how many rows it carried. The marker is provenance for
// reporting; supersession of stored records is decided per record by
// import timestamp, not by comparing against this marker.
type ImportBatch struct {
	ID         uuid.UUID `json:"id" yaml:"id"`
	Source     Source    `json:"source" yaml:"source"`
	SourceFile string    `json:"source_file" yaml:"source_file"`
	ImportedAt utc.Time  `json:"imported_at" yaml:"imported_at"`
	RowCount   int       `json:"row_count" yaml:"row_count"`
}

// NewImportBatch stamps a new batch marker for a source file.
func NewImportBatch(source Source, sourceFile string, rows int) ImportBatch {
	return ImportBatch{
		ID:         uuid.New(),
		Source:     source,
		SourceFile: sourceFile,
		ImportedAt: utc.Now(),
		RowCount:   rows,
	}
}
