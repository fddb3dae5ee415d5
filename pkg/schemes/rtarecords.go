package schemes

import (
	"fmt"
	"maps"
	"sort"
	"sync"
)

// RtaRecords is a concurrent safe map of RTA scheme records keyed by their
// per-source natural key. Set is last-write-wins per key: a newer import
// supersedes the previous row entirely, it does not accumulate.
type RtaRecords struct {
	mu      sync.RWMutex
	records map[RtaKey]*RtaSchemeRecord
}

// NewRtaRecords creates a new RtaRecords map.
func NewRtaRecords() *RtaRecords {
	return &RtaRecords{
		records: make(map[RtaKey]*RtaSchemeRecord),
	}
}

// Get returns a record by natural key and whether it exists.
func (r *RtaRecords) Get(key RtaKey) (*RtaSchemeRecord, bool) {
	r.mu.RLock()
	record, ok := r.records[key]
	r.mu.RUnlock()
	return record, ok
}

// Set upserts a record by its natural key. Returns an error if record is
// nil or carries a zero key. An older row is only replaced by a row with
// an equal or newer import timestamp, so re-running an old file cannot
// clobber a fresher import.
func (r *RtaRecords) Set(record *RtaSchemeRecord) error {
	if record == nil {
		return fmt.Errorf("rta record cannot be nil")
	}
	if record.Key.IsZero() {
		return fmt.Errorf("rta record must carry a natural key")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.records[record.Key]; ok {
		if record.ImportedAt.Before(existing.ImportedAt) {
			return nil
		}
	}
	r.records[record.Key] = record
	return nil
}

// Delete removes a record by key. Returns an error if it doesn't exist.
func (r *RtaRecords) Delete(key RtaKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[key]; !exists {
		return fmt.Errorf("rta record with key %s not found", key)
	}

	delete(r.records, key)
	return nil
}

// Exists checks if a record exists without returning it.
func (r *RtaRecords) Exists(key RtaKey) bool {
	r.mu.RLock()
	_, exists := r.records[key]
	r.mu.RUnlock()
	return exists
}

// Len returns the number of records.
func (r *RtaRecords) Len() int {
	r.mu.RLock()
	length := len(r.records)
	r.mu.RUnlock()
	return length
}

// List returns a slice of all records in key order.
func (r *RtaRecords) List() []*RtaSchemeRecord {
	r.mu.RLock()
	records := make([]*RtaSchemeRecord, 0, len(r.records))
	for _, record := range r.records {
		records = append(records, record)
	}
	r.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		return records[i].Key.String() < records[j].Key.String()
	})
	return records
}

// ListBySource returns all records imported from one source, in key order.
func (r *RtaRecords) ListBySource(source Source) []*RtaSchemeRecord {
	r.mu.RLock()
	var records []*RtaSchemeRecord
	for _, record := range r.records {
		if record.Key.Source == source {
			records = append(records, record)
		}
	}
	r.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		return records[i].Key.String() < records[j].Key.String()
	})
	return records
}

// Map returns a copy of the underlying map.
func (r *RtaRecords) Map() map[RtaKey]*RtaSchemeRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[RtaKey]*RtaSchemeRecord, len(r.records))
	maps.Copy(result, r.records)
	return result
}

// ForEach applies fn to each record. If fn returns false, iteration stops.
func (r *RtaRecords) ForEach(fn func(key RtaKey, record *RtaSchemeRecord) bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for key, record := range r.records {
		if !fn(key, record) {
			break
		}
	}
}

// Clear removes all records.
func (r *RtaRecords) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.records {
		delete(r.records, k)
	}
}
