package store

import (
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfolio/schememaster/pkg/schemes"
)

func testKey() schemes.RtaKey {
	return schemes.RtaKey{
		Source:     schemes.SourceCAMS,
		SchemeCode: "ABC01",
		PlanCode:   "DP",
		OptionCode: "G",
	}
}

func TestMemoryStoreUpsertByNaturalKey(t *testing.T) {
	s := NewMemory()

	first := &schemes.RtaSchemeRecord{
		Key:        testKey(),
		SchemeName: "ABC Bluechip",
		ISIN:       "INF000X01XX5",
		ImportedAt: utc.Now(),
	}
	require.NoError(t, s.RtaRecords().Set(first))

	// Same natural key, newer import: supersedes the whole row.
	second := &schemes.RtaSchemeRecord{
		Key:        testKey(),
		SchemeName: "ABC Bluechip Equity",
		ISIN:       "INF000X01XX5",
		ImportedAt: utc.Now(),
	}
	require.NoError(t, s.RtaRecords().Set(second))

	assert.Equal(t, 1, s.RtaRecords().Len())
	got, ok := s.RtaRecords().Get(testKey())
	require.True(t, ok)
	assert.Equal(t, "ABC Bluechip Equity", got.SchemeName)
}

func TestMemoryStoreOlderImportDoesNotClobber(t *testing.T) {
	s := NewMemory()

	newer := &schemes.RtaSchemeRecord{Key: testKey(), SchemeName: "newer", ImportedAt: utc.Now()}
	require.NoError(t, s.RtaRecords().Set(newer))

	older := &schemes.RtaSchemeRecord{
		Key:        testKey(),
		SchemeName: "older",
		ImportedAt: newer.ImportedAt.Add(-time.Second),
	}
	require.NoError(t, s.RtaRecords().Set(older))

	got, ok := s.RtaRecords().Get(testKey())
	require.True(t, ok)
	assert.Equal(t, "newer", got.SchemeName)
}

func TestMemoryStoreCatalogOverwriteByCode(t *testing.T) {
	s := NewMemory()

	require.NoError(t, s.CatalogSchemes().Set(&schemes.CatalogScheme{Code: 118989, SchemeName: "ABC Bluechip"}))
	require.NoError(t, s.CatalogSchemes().Set(&schemes.CatalogScheme{Code: 118989, SchemeName: "ABC Bluechip Growth"}))

	assert.Equal(t, 1, s.CatalogSchemes().Len())
	got, ok := s.CatalogSchemes().Get(118989)
	require.True(t, ok)
	assert.Equal(t, "ABC Bluechip Growth", got.SchemeName)
}

func TestMemoryStoreBatchMarker(t *testing.T) {
	s := NewMemory()

	_, ok := s.LatestBatch(schemes.SourceCAMS)
	assert.False(t, ok)

	batch := schemes.NewImportBatch(schemes.SourceCAMS, "cams_20240901.csv", 1204)
	s.SetBatch(batch)

	got, ok := s.LatestBatch(schemes.SourceCAMS)
	require.True(t, ok)
	assert.Equal(t, "cams_20240901.csv", got.SourceFile)
	assert.Equal(t, 1204, got.RowCount)
}

func TestMappingsRetire(t *testing.T) {
	s := NewMemory()

	mapping := &schemes.SchemeMapping{
		Key:   testKey(),
		Code:  118989,
		State: schemes.StateRejected,
	}
	require.NoError(t, s.Mappings().Set(mapping))

	s.Mappings().Retire(testKey())
	assert.False(t, s.Mappings().Exists(testKey()))
	assert.Len(t, s.Mappings().Retired(), 1)

	// A fresh proposal takes the now-free slot.
	fresh := &schemes.SchemeMapping{Key: testKey(), Code: 120465, State: schemes.StateUnverified}
	require.NoError(t, s.Mappings().Set(fresh))
	assert.Equal(t, 1, s.Mappings().Len())
}

func TestCatalogSchemesByISIN(t *testing.T) {
	s := NewMemory()

	require.NoError(t, s.CatalogSchemes().Set(&schemes.CatalogScheme{Code: 1, ISINGrowth: "INF000X01XX5"}))
	require.NoError(t, s.CatalogSchemes().Set(&schemes.CatalogScheme{Code: 2, ISINDivPayout: "INF000X01XX5"}))
	require.NoError(t, s.CatalogSchemes().Set(&schemes.CatalogScheme{Code: 3, ISINGrowth: "INF000X01XX6"}))

	claims := s.CatalogSchemes().ByISIN("INF000X01XX5")
	require.Len(t, claims, 2)
	assert.Equal(t, 1, claims[0].Code)
	assert.Equal(t, 2, claims[1].Code)

	assert.Empty(t, s.CatalogSchemes().ByISIN(""))
}
