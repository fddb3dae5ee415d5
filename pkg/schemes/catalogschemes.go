package schemes

import (
	"fmt"
	"maps"
	"sort"
	"sync"
)

// CatalogSchemes is a concurrent safe map of catalog schemes keyed by code.
type CatalogSchemes struct {
	mu      sync.RWMutex
	schemes map[int]*CatalogScheme
}

// NewCatalogSchemes creates a new CatalogSchemes map.
func NewCatalogSchemes() *CatalogSchemes {
	return &CatalogSchemes{
		schemes: make(map[int]*CatalogScheme),
	}
}

// Get returns a scheme by code and whether it exists.
func (c *CatalogSchemes) Get(code int) (*CatalogScheme, bool) {
	c.mu.RLock()
	scheme, ok := c.schemes[code]
	c.mu.RUnlock()
	return scheme, ok
}

// Set upserts a scheme by its code. Returns an error if scheme is nil.
// Re-importing an existing code overwrites its attributes in place.
func (c *CatalogSchemes) Set(scheme *CatalogScheme) error {
	if scheme == nil {
		return fmt.Errorf("catalog scheme cannot be nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.schemes[scheme.Code] = scheme
	return nil
}

// Delete removes a scheme by code. Returns an error if it doesn't exist.
func (c *CatalogSchemes) Delete(code int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.schemes[code]; !exists {
		return fmt.Errorf("catalog scheme with code %d not found", code)
	}

	delete(c.schemes, code)
	return nil
}

// Exists checks if a scheme exists without returning it.
func (c *CatalogSchemes) Exists(code int) bool {
	c.mu.RLock()
	_, exists := c.schemes[code]
	c.mu.RUnlock()
	return exists
}

// Len returns the number of schemes.
func (c *CatalogSchemes) Len() int {
	c.mu.RLock()
	length := len(c.schemes)
	c.mu.RUnlock()
	return length
}

// List returns a slice of all schemes ordered by code.
func (c *CatalogSchemes) List() []*CatalogScheme {
	c.mu.RLock()
	schemes := make([]*CatalogScheme, 0, len(c.schemes))
	for _, scheme := range c.schemes {
		schemes = append(schemes, scheme)
	}
	c.mu.RUnlock()

	sort.Slice(schemes, func(i, j int) bool { return schemes[i].Code < schemes[j].Code })
	return schemes
}

// Map returns a copy of the underlying map.
func (c *CatalogSchemes) Map() map[int]*CatalogScheme {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[int]*CatalogScheme, len(c.schemes))
	maps.Copy(result, c.schemes)
	return result
}

// ForEach applies fn to each scheme. If fn returns false, iteration stops.
func (c *CatalogSchemes) ForEach(fn func(code int, scheme *CatalogScheme) bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for code, scheme := range c.schemes {
		if !fn(code, scheme) {
			break
		}
	}
}

// ByISIN returns every scheme claiming the given ISIN in any of its
// variants. More than one result is the ambiguous-ISIN data-quality
// condition the matcher must not resolve automatically.
func (c *CatalogSchemes) ByISIN(isin string) []*CatalogScheme {
	if isin == "" {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var matches []*CatalogScheme
	for _, scheme := range c.schemes {
		if scheme.HasISIN(isin) {
			matches = append(matches, scheme)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Code < matches[j].Code })
	return matches
}

// Clear removes all schemes.
func (c *CatalogSchemes) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.schemes {
		delete(c.schemes, k)
	}
}
