package schemes

import (
	"fmt"
	"maps"
	"sort"
	"sync"
)

// Masters is a concurrent safe map of published master rows keyed by
// (code, plan, option).
type Masters struct {
	mu      sync.RWMutex
	masters map[MasterKey]*SchemeMasterFinal
}

// NewMasters creates a new Masters map.
func NewMasters() *Masters {
	return &Masters{
		masters: make(map[MasterKey]*SchemeMasterFinal),
	}
}

// Get returns a master row by key and whether it exists.
func (m *Masters) Get(key MasterKey) (*SchemeMasterFinal, bool) {
	m.mu.RLock()
	master, ok := m.masters[key]
	m.mu.RUnlock()
	return master, ok
}

// Set upserts a master row by its key, replacing any prior version for
// that identity. Returns an error if master is nil.
func (m *Masters) Set(master *SchemeMasterFinal) error {
	if master == nil {
		return fmt.Errorf("master row cannot be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.masters[master.Key] = master
	return nil
}

// Delete removes a master row by key. Returns an error if it doesn't exist.
func (m *Masters) Delete(key MasterKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.masters[key]; !exists {
		return fmt.Errorf("master row with key %s not found", key)
	}

	delete(m.masters, key)
	return nil
}

// Exists checks if a master row exists without returning it.
func (m *Masters) Exists(key MasterKey) bool {
	m.mu.RLock()
	_, exists := m.masters[key]
	m.mu.RUnlock()
	return exists
}

// Len returns the number of master rows.
func (m *Masters) Len() int {
	m.mu.RLock()
	length := len(m.masters)
	m.mu.RUnlock()
	return length
}

// List returns a slice of all master rows in key order.
func (m *Masters) List() []*SchemeMasterFinal {
	m.mu.RLock()
	masters := make([]*SchemeMasterFinal, 0, len(m.masters))
	for _, master := range m.masters {
		masters = append(masters, master)
	}
	m.mu.RUnlock()

	sort.Slice(masters, func(i, j int) bool {
		return masters[i].Key.String() < masters[j].Key.String()
	})
	return masters
}

// ListByCode returns every master row for a catalog code, one per
// plan/option variant, in key order.
func (m *Masters) ListByCode(code int) []*SchemeMasterFinal {
	m.mu.RLock()
	var masters []*SchemeMasterFinal
	for _, master := range m.masters {
		if master.Key.Code == code {
			masters = append(masters, master)
		}
	}
	m.mu.RUnlock()

	sort.Slice(masters, func(i, j int) bool {
		return masters[i].Key.String() < masters[j].Key.String()
	})
	return masters
}

// Map returns a copy of the underlying map.
func (m *Masters) Map() map[MasterKey]*SchemeMasterFinal {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[MasterKey]*SchemeMasterFinal, len(m.masters))
	maps.Copy(result, m.masters)
	return result
}

// ForEach applies fn to each master row. If fn returns false, iteration
// stops early.
func (m *Masters) ForEach(fn func(key MasterKey, master *SchemeMasterFinal) bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for key, master := range m.masters {
		if !fn(key, master) {
			break
		}
	}
}

// Clear removes all master rows.
func (m *Masters) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.masters {
		delete(m.masters, k)
	}
}
