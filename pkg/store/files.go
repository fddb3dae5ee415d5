package store

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/openfolio/schememaster/pkg/errors"
	"github.com/openfolio/schememaster/pkg/schemes"
)

// File names inside the store directory.
const (
	catalogSchemesFile = "catalog_schemes.yaml"
	rtaRecordsFile     = "rta_records.yaml"
	mappingsFile       = "mappings.yaml"
	mastersFile        = "masters.yaml"
	rawRowsFile        = "raw_rows.yaml"
	batchesFile        = "batches.yaml"
)

// files is a store persisted as YAML documents in a directory.
type files struct {
	*memory
	path     string
	autoLoad bool
}

// Option configures a files store.
type Option func(*files)

// WithAutoLoad controls whether New loads existing files immediately.
// Defaults to true.
func WithAutoLoad(enabled bool) Option {
	return func(f *files) {
		f.autoLoad = enabled
	}
}

// New creates a file-backed store rooted at path. Existing files are
// loaded unless disabled; a missing directory is created on Save.
func New(path string, opts ...Option) (Store, error) {
	if path == "" {
		return nil, &errors.ValidationError{Field: "path", Message: "path is required for files store"}
	}

	f := &files{
		memory:   newMemory(),
		path:     path,
		autoLoad: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.autoLoad {
		if err := f.Load(); err != nil {
			return nil, errors.WrapResource("load", "store", path, err)
		}
	}

	return f, nil
}

// document is the on-disk shape of the mapping file: live mappings plus
// the retired audit trail.
type mappingsDoc struct {
	Live    []*schemes.SchemeMapping `yaml:"live"`
	Retired []*schemes.SchemeMapping `yaml:"retired"`
}

// Load reads the collections from the store directory. Missing files are
// treated as empty collections so a fresh directory loads cleanly.
func (f *files) Load() error {
	var catalog []*schemes.CatalogScheme
	if err := f.loadFile(catalogSchemesFile, &catalog); err != nil {
		return err
	}
	for _, scheme := range catalog {
		if err := f.catalogSchemes.Set(scheme); err != nil {
			return errors.WrapResource("load", "catalog scheme", scheme.ID(), err)
		}
	}

	var records []*schemes.RtaSchemeRecord
	if err := f.loadFile(rtaRecordsFile, &records); err != nil {
		return err
	}
	for _, record := range records {
		if err := f.rtaRecords.Set(record); err != nil {
			return errors.WrapResource("load", "rta record", record.Key.String(), err)
		}
	}

	var mdoc mappingsDoc
	if err := f.loadFile(mappingsFile, &mdoc); err != nil {
		return err
	}
	for _, mapping := range mdoc.Live {
		if err := f.mappings.Set(mapping); err != nil {
			return errors.WrapResource("load", "mapping", mapping.Key.String(), err)
		}
	}
	for _, mapping := range mdoc.Retired {
		// Round-trip the retired trail through the live slot.
		if err := f.mappings.Set(mapping); err != nil {
			return errors.WrapResource("load", "retired mapping", mapping.Key.String(), err)
		}
		f.mappings.Retire(mapping.Key)
	}
	// Re-set live mappings last so a retired entry never shadows one.
	for _, mapping := range mdoc.Live {
		if err := f.mappings.Set(mapping); err != nil {
			return errors.WrapResource("load", "mapping", mapping.Key.String(), err)
		}
	}

	var masters []*schemes.SchemeMasterFinal
	if err := f.loadFile(mastersFile, &masters); err != nil {
		return err
	}
	for _, master := range masters {
		if err := f.masters.Set(master); err != nil {
			return errors.WrapResource("load", "master", master.Key.String(), err)
		}
	}

	var raw []*schemes.RawRow
	if err := f.loadFile(rawRowsFile, &raw); err != nil {
		return err
	}
	f.rawRows.Append(raw...)

	var batches []schemes.ImportBatch
	if err := f.loadFile(batchesFile, &batches); err != nil {
		return err
	}
	for _, batch := range batches {
		f.SetBatch(batch)
	}

	return nil
}

// Save writes the collections to the store directory atomically enough
// for single-writer batch passes: each file is written whole.
func (f *files) Save() error {
	if err := os.MkdirAll(f.path, 0o755); err != nil {
		return errors.WrapIO("create", f.path, err)
	}

	if err := f.saveFile(catalogSchemesFile, f.catalogSchemes.List()); err != nil {
		return err
	}
	if err := f.saveFile(rtaRecordsFile, f.rtaRecords.List()); err != nil {
		return err
	}
	doc := mappingsDoc{Live: f.mappings.List(), Retired: f.mappings.Retired()}
	if err := f.saveFile(mappingsFile, doc); err != nil {
		return err
	}
	if err := f.saveFile(mastersFile, f.masters.List()); err != nil {
		return err
	}

	var raw []*schemes.RawRow
	for _, source := range append(schemes.Sources(), schemes.SourceAMFI) {
		raw = append(raw, f.rawRows.ListBySource(source)...)
	}
	if err := f.saveFile(rawRowsFile, raw); err != nil {
		return err
	}

	batches := make([]schemes.ImportBatch, 0)
	for _, batch := range f.batchesSnapshot() {
		batches = append(batches, batch)
	}
	return f.saveFile(batchesFile, batches)
}

// loadFile unmarshals one YAML file into out; a missing file is empty.
func (f *files) loadFile(name string, out any) error {
	path := filepath.Join(f.path, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.WrapIO("read", path, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return errors.WrapParse("yaml", path, err)
	}
	return nil
}

// saveFile marshals v into one YAML file.
func (f *files) saveFile(name string, v any) error {
	path := filepath.Join(f.path, name)
	data, err := yaml.Marshal(v)
	if err != nil {
		return errors.WrapParse("yaml", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
