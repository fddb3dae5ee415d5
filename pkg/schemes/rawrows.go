package schemes

import (
	"sync"

	"github.com/google/uuid"
)

// RawRows is an append-friendly store of verbatim feed rows, one bucket
// per source. Rows are never transformed here, only accumulated with
// their import provenance.
type RawRows struct {
	mu   sync.RWMutex
	rows map[Source][]*RawRow
}

// NewRawRows creates a new RawRows store.
func NewRawRows() *RawRows {
	return &RawRows{
		rows: make(map[Source][]*RawRow),
	}
}

// Append adds rows to a source bucket in arrival order.
func (r *RawRows) Append(rows ...*RawRow) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range rows {
		if row == nil {
			continue
		}
		r.rows[row.Source] = append(r.rows[row.Source], row)
	}
}

// ListBySource returns the rows of one source in arrival order.
func (r *RawRows) ListBySource(source Source) []*RawRow {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := make([]*RawRow, len(r.rows[source]))
	copy(rows, r.rows[source])
	return rows
}

// ListByBatch returns the rows of one import batch in arrival order.
func (r *RawRows) ListByBatch(batch uuid.UUID) []*RawRow {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var rows []*RawRow
	for _, bucket := range r.rows {
		for _, row := range bucket {
			if row.Batch == batch {
				rows = append(rows, row)
			}
		}
	}
	return rows
}

// Len returns the total number of raw rows across all sources.
func (r *RawRows) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, bucket := range r.rows {
		total += len(bucket)
	}
	return total
}

// Clear removes all raw rows.
func (r *RawRows) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.rows {
		delete(r.rows, k)
	}
}
