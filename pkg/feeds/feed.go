// Package feeds converts raw source rows into the common record shapes.
// Each source format gets its own adapter emitting either CatalogScheme
// (association feed) or RtaSchemeRecord (registrar feeds); there is no
// shared wide base type with per-source optional columns.
//
// Adapters construct records only. Persisting rows and records is the
// ingestion job's responsibility.
package feeds

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/utc"
	"github.com/google/uuid"

	"github.com/openfolio/schememaster/pkg/errors"
	"github.com/openfolio/schememaster/pkg/schemes"
)

// CatalogAdapter normalizes association catalog rows.
type CatalogAdapter interface {
	// Source returns the feed source this adapter understands.
	Source() schemes.Source

	// Normalize converts one raw row into a catalog scheme, or fails with
	// a MalformedRowError naming the offending column.
	Normalize(row *schemes.RawRow) (*schemes.CatalogScheme, error)
}

// RtaAdapter normalizes registrar feed rows.
type RtaAdapter interface {
	// Source returns the feed source this adapter understands.
	Source() schemes.Source

	// Normalize converts one raw row into an RTA scheme record, or fails
	// with a MalformedRowError naming the offending column.
	Normalize(row *schemes.RawRow) (*schemes.RtaSchemeRecord, error)
}

// RtaAdapterFor returns the adapter for an RTA feed source.
func RtaAdapterFor(source schemes.Source) (RtaAdapter, error) {
	switch source {
	case schemes.SourceCAMS:
		return NewCAMS(), nil
	case schemes.SourceKFin:
		return NewKFin(), nil
	default:
		return nil, &errors.ValidationError{
			Field:   "source",
			Value:   string(source),
			Message: "no RTA adapter for source",
		}
	}
}

// ReadFile reads a delimited feed file into verbatim raw rows, stamping
// each with the source, batch, and import time. The first line is the
// header; cells are stored untransformed under their header names.
func ReadFile(path string, source schemes.Source, batch uuid.UUID) ([]*schemes.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	rows, err := ReadRows(f, source, batch)
	if err != nil {
		return nil, errors.WrapParse("csv", path, err)
	}

	name := filepath.Base(path)
	importedAt := utc.Now()
	for _, row := range rows {
		row.SourceFile = name
		row.ImportedAt = importedAt
	}
	return rows, nil
}

// ReadRows reads delimited rows from r. Exposed separately so tests and
// non-file ingestion can feed readers directly.
func ReadRows(r io.Reader, source schemes.Source, batch uuid.UUID) ([]*schemes.RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // registrar files pad trailing columns inconsistently
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	var rows []*schemes.RawRow
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		fields := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(record) {
				fields[h] = record[i]
			}
		}
		rows = append(rows, &schemes.RawRow{
			ID:     uuid.New(),
			Source: source,
			Batch:  batch,
			Line:   line,
			Fields: fields,
		})
	}
	return rows, nil
}

// field returns a trimmed cell value.
func field(row *schemes.RawRow, column string) string {
	return strings.TrimSpace(row.Fields[column])
}

// required returns a trimmed cell value or a MalformedRowError when the
// column is absent or empty.
func required(row *schemes.RawRow, source schemes.Source, column string) (string, error) {
	v := field(row, column)
	if v == "" {
		return "", &errors.MalformedRowError{
			Source: string(source),
			File:   row.SourceFile,
			Line:   row.Line,
			Column: column,
			Reason: "required field is empty",
		}
	}
	return v, nil
}

// parseFloat parses an optional numeric cell. Empty cells stay nil:
// unknown is distinct from zero.
func parseFloat(v string) *float64 {
	v = strings.ReplaceAll(strings.TrimSpace(v), ",", "")
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

// parseBool parses the flag vocabularies the registrars use (Y/N, YES/NO,
// TRUE/FALSE, 1/0). Anything else stays nil.
func parseBool(v string) *bool {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "Y", "YES", "TRUE", "1":
		b := true
		return &b
	case "N", "NO", "FALSE", "0":
		b := false
		return &b
	default:
		return nil
	}
}

// dateLayouts are the date spellings seen across the feeds.
var dateLayouts = []string{
	"02-Jan-2006",
	"02-Jan-06",
	"2006-01-02",
	"02/01/2006",
	"01-02-2006",
}

// parseDate parses an optional date cell. Unparseable cells stay nil.
func parseDate(v string) *utc.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			u := utc.Time{Time: t.UTC()}
			return &u
		}
	}
	return nil
}

// parseCutoff normalizes a cutoff time cell to HH:MM, or "" when absent
// or unparseable.
func parseCutoff(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	for _, layout := range []string{"15:04", "15:04:05", "3:04 PM", "3.04 PM"} {
		if t, err := time.Parse(layout, strings.ToUpper(v)); err == nil {
			return t.Format("15:04")
		}
	}
	return ""
}
