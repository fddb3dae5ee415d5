package schemes

import (
	"fmt"
	"maps"
	"sort"
	"sync"
)

// Mappings is a concurrent safe map of scheme mappings keyed by the RTA
// natural key. The map holds at most one live mapping per key; retired
// (rejected) mappings are kept in a side list for the audit trail.
type Mappings struct {
	mu       sync.RWMutex
	mappings map[RtaKey]*SchemeMapping
	retired  []*SchemeMapping
}

// NewMappings creates a new Mappings map.
func NewMappings() *Mappings {
	return &Mappings{
		mappings: make(map[RtaKey]*SchemeMapping),
	}
}

// Get returns the live mapping for a key and whether it exists.
func (m *Mappings) Get(key RtaKey) (*SchemeMapping, bool) {
	m.mu.RLock()
	mapping, ok := m.mappings[key]
	m.mu.RUnlock()
	return mapping, ok
}

// Set upserts the live mapping for its key. Returns an error if mapping is
// nil or carries a zero key.
func (m *Mappings) Set(mapping *SchemeMapping) error {
	if mapping == nil {
		return fmt.Errorf("mapping cannot be nil")
	}
	if mapping.Key.IsZero() {
		return fmt.Errorf("mapping must carry a natural key")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.mappings[mapping.Key] = mapping
	return nil
}

// Retire moves the live mapping for key into the retired list, making room
// for a fresh proposal. A rejected mapping itself is never resurrected.
func (m *Mappings) Retire(key RtaKey) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if mapping, ok := m.mappings[key]; ok {
		m.retired = append(m.retired, mapping)
		delete(m.mappings, key)
	}
}

// Retired returns the retired mappings, oldest first.
func (m *Mappings) Retired() []*SchemeMapping {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*SchemeMapping, len(m.retired))
	copy(out, m.retired)
	return out
}

// Delete removes a live mapping by key. Returns an error if it doesn't exist.
func (m *Mappings) Delete(key RtaKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.mappings[key]; !exists {
		return fmt.Errorf("mapping with key %s not found", key)
	}

	delete(m.mappings, key)
	return nil
}

// Exists checks if a live mapping exists without returning it.
func (m *Mappings) Exists(key RtaKey) bool {
	m.mu.RLock()
	_, exists := m.mappings[key]
	m.mu.RUnlock()
	return exists
}

// Len returns the number of live mappings.
func (m *Mappings) Len() int {
	m.mu.RLock()
	length := len(m.mappings)
	m.mu.RUnlock()
	return length
}

// List returns a slice of all live mappings in key order.
func (m *Mappings) List() []*SchemeMapping {
	m.mu.RLock()
	mappings := make([]*SchemeMapping, 0, len(m.mappings))
	for _, mapping := range m.mappings {
		mappings = append(mappings, mapping)
	}
	m.mu.RUnlock()

	sort.Slice(mappings, func(i, j int) bool {
		return mappings[i].Key.String() < mappings[j].Key.String()
	})
	return mappings
}

// ListByState returns all live mappings in the given state, in key order.
func (m *Mappings) ListByState(state VerificationState) []*SchemeMapping {
	m.mu.RLock()
	var mappings []*SchemeMapping
	for _, mapping := range m.mappings {
		if mapping.State == state {
			mappings = append(mappings, mapping)
		}
	}
	m.mu.RUnlock()

	sort.Slice(mappings, func(i, j int) bool {
		return mappings[i].Key.String() < mappings[j].Key.String()
	})
	return mappings
}

// VerifiedForCode returns the verified mappings pointing at a catalog code.
func (m *Mappings) VerifiedForCode(code int) []*SchemeMapping {
	m.mu.RLock()
	var mappings []*SchemeMapping
	for _, mapping := range m.mappings {
		if mapping.State == StateVerified && mapping.Code == code {
			mappings = append(mappings, mapping)
		}
	}
	m.mu.RUnlock()

	sort.Slice(mappings, func(i, j int) bool {
		return mappings[i].Key.String() < mappings[j].Key.String()
	})
	return mappings
}

// Map returns a copy of the underlying live map.
func (m *Mappings) Map() map[RtaKey]*SchemeMapping {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[RtaKey]*SchemeMapping, len(m.mappings))
	maps.Copy(result, m.mappings)
	return result
}

// ForEach applies fn to each live mapping. If fn returns false, iteration
// stops early.
func (m *Mappings) ForEach(fn func(key RtaKey, mapping *SchemeMapping) bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for key, mapping := range m.mappings {
		if !fn(key, mapping) {
			break
		}
	}
}

// Clear removes all mappings, live and retired.
func (m *Mappings) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.mappings {
		delete(m.mappings, k)
	}
	m.retired = nil
}
