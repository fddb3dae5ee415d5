// Package store holds the persisted collections the pipeline coordinates
// through: catalog schemes, RTA records, mappings, master rows, raw feed
// rows, and the per-source import batch markers. The store is the sole
// point of mutable shared state between batch passes; every write keyed by
// a natural key is an atomic upsert on that key.
//
// Two backends are provided: a plain in-memory store and a file-backed
// store that loads and saves the collections as YAML documents. Callers
// needing a different persistence technology implement the same interface.
package store

import (
	"sync"

	"github.com/openfolio/schememaster/pkg/schemes"
)

// Reader provides read access to the persisted collections.
type Reader interface {
	// CatalogSchemes returns the catalog scheme collection.
	CatalogSchemes() *schemes.CatalogSchemes

	// RtaRecords returns the RTA scheme record collection.
	RtaRecords() *schemes.RtaRecords

	// Mappings returns the scheme mapping collection.
	Mappings() *schemes.Mappings

	// Masters returns the published master collection.
	Masters() *schemes.Masters

	// RawRows returns the verbatim raw feed rows.
	RawRows() *schemes.RawRows

	// LatestBatch returns the most recent import batch marker for a source.
	LatestBatch(source schemes.Source) (schemes.ImportBatch, bool)
}

// Writer provides write access beyond the collection upserts.
type Writer interface {
	// SetBatch records the import batch marker for a source.
	SetBatch(batch schemes.ImportBatch)
}

// Persistence loads and saves the store contents.
type Persistence interface {
	// Load reads the collections from the backing medium.
	Load() error

	// Save writes the collections to the backing medium.
	Save() error
}

// Store combines read, write, and persistence access.
type Store interface {
	Reader
	Writer
	Persistence
}

// Compile-time interface checks.
var (
	_ Store = (*memory)(nil)
)

// memory is the in-memory store backing both NewMemory and the files store.
type memory struct {
	catalogSchemes *schemes.CatalogSchemes
	rtaRecords     *schemes.RtaRecords
	mappings       *schemes.Mappings
	masters        *schemes.Masters
	rawRows        *schemes.RawRows

	mu      sync.RWMutex
	batches map[schemes.Source]schemes.ImportBatch
}

// NewMemory creates an empty in-memory store. Useful for tests and for
// single-shot batch runs that persist elsewhere.
func NewMemory() Store {
	return newMemory()
}

func newMemory() *memory {
	return &memory{
		catalogSchemes: schemes.NewCatalogSchemes(),
		rtaRecords:     schemes.NewRtaRecords(),
		mappings:       schemes.NewMappings(),
		masters:        schemes.NewMasters(),
		rawRows:        schemes.NewRawRows(),
		batches:        make(map[schemes.Source]schemes.ImportBatch),
	}
}

// CatalogSchemes returns the catalog scheme collection.
func (m *memory) CatalogSchemes() *schemes.CatalogSchemes { return m.catalogSchemes }

// RtaRecords returns the RTA scheme record collection.
func (m *memory) RtaRecords() *schemes.RtaRecords { return m.rtaRecords }

// Mappings returns the scheme mapping collection.
func (m *memory) Mappings() *schemes.Mappings { return m.mappings }

// Masters returns the published master collection.
func (m *memory) Masters() *schemes.Masters { return m.masters }

// RawRows returns the verbatim raw feed rows.
func (m *memory) RawRows() *schemes.RawRows { return m.rawRows }

// LatestBatch returns the most recent import batch marker for a source.
func (m *memory) LatestBatch(source schemes.Source) (schemes.ImportBatch, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	batch, ok := m.batches[source]
	return batch, ok
}

// SetBatch records the import batch marker for a source.
func (m *memory) SetBatch(batch schemes.ImportBatch) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches[batch.Source] = batch
}

// Load is a no-op for the memory store.
func (m *memory) Load() error { return nil }

// Save is a no-op for the memory store.
func (m *memory) Save() error { return nil }

// batchesSnapshot returns a copy of the batch markers, for persistence.
func (m *memory) batchesSnapshot() map[schemes.Source]schemes.ImportBatch {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[schemes.Source]schemes.ImportBatch, len(m.batches))
	for k, v := range m.batches {
		out[k] = v
	}
	return out
}
