package merge

import (
	"context"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfolio/schememaster/pkg/errors"
	"github.com/openfolio/schememaster/pkg/schemes"
	"github.com/openfolio/schememaster/pkg/store"
)

func testKey() schemes.RtaKey {
	return schemes.RtaKey{Source: schemes.SourceCAMS, SchemeCode: "ABC01", PlanCode: "DP", OptionCode: "G"}
}

func seed(t *testing.T) store.Store {
	t.Helper()
	s := store.NewMemory()

	require.NoError(t, s.CatalogSchemes().Set(&schemes.CatalogScheme{
		Code:           118989,
		AMC:            "ABC Mutual Fund",
		SchemeName:     "ABC Bluechip Growth",
		Category:       "Equity Scheme",
		SubCategory:    "Large Cap Fund",
		NormalizedName: "abc bluechip",
		ISINGrowth:     "INF000X01XX5",
	}))

	min := 500.0
	require.NoError(t, s.RtaRecords().Set(&schemes.RtaSchemeRecord{
		Key:                 testKey(),
		SchemeName:          "ABC BLUECHIP FUND - DIRECT GROWTH",
		PlanName:            "Direct",
		OptionName:          "Growth",
		ISIN:                "INF000X01XX5",
		RedemptionMinAmount: &min,
		ImportedAt:          utc.Now(),
	}))

	now := utc.Now()
	require.NoError(t, s.Mappings().Set(&schemes.SchemeMapping{
		Key:             testKey(),
		Code:            118989,
		MatchConfidence: 100,
		MappingSource:   schemes.MappingISINExact,
		State:           schemes.StateVerified,
		VerifiedBy:      "system",
		VerifiedAt:      &now,
		MatchedAt:       now,
	}))
	return s
}

func TestMergePublishesMasterRow(t *testing.T) {
	s := seed(t)

	result, err := New().Merge(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Empty(t, result.Skipped)

	key := schemes.MasterKey{Code: 118989, PlanCode: "DP", OptionCode: "G"}
	master, ok := s.Masters().Get(key)
	require.True(t, ok)

	// Identity from the catalog, even though the registrar spells the
	// scheme differently.
	assert.Equal(t, "ABC Bluechip Growth", master.SchemeName)
	assert.Equal(t, "ABC Mutual Fund", master.AMC)
	assert.Equal(t, "Large Cap Fund", master.SubCategory)

	// Transactional and provenance from the RTA record.
	assert.Equal(t, "INF000X01XX5", master.ISIN)
	assert.Equal(t, schemes.SourceCAMS, master.RtaSource)
	assert.Equal(t, "ABC BLUECHIP FUND - DIRECT GROWTH", master.RtaSchemeName)
	require.NotNil(t, master.RedemptionMinAmount)
	assert.Equal(t, 500.0, *master.RedemptionMinAmount)

	assert.Equal(t, master.CreatedAt, master.UpdatedAt)
}

func TestMergeIsIdempotent(t *testing.T) {
	s := seed(t)
	merger := New()

	_, err := merger.Merge(context.Background(), s)
	require.NoError(t, err)

	key := schemes.MasterKey{Code: 118989, PlanCode: "DP", OptionCode: "G"}
	first, _ := s.Masters().Get(key)
	before := *first

	result, err := merger.Merge(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 1, result.Unchanged)

	second, _ := s.Masters().Get(key)
	if diff := cmp.Diff(before, *second); diff != "" {
		t.Errorf("master row changed on re-merge: %s", diff)
	}
}

func TestMergeUpdatesOnChangedInput(t *testing.T) {
	s := seed(t)
	merger := New()

	_, err := merger.Merge(context.Background(), s)
	require.NoError(t, err)

	key := schemes.MasterKey{Code: 118989, PlanCode: "DP", OptionCode: "G"}
	first, _ := s.Masters().Get(key)
	createdAt := first.CreatedAt

	// Registrar raises the redemption minimum in a later feed.
	record, ok := s.RtaRecords().Get(testKey())
	require.True(t, ok)
	updated := *record
	min := 1000.0
	updated.RedemptionMinAmount = &min
	updated.ImportedAt = record.ImportedAt.Add(time.Second)
	require.NoError(t, s.RtaRecords().Set(&updated))

	result, err := merger.Merge(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)

	second, _ := s.Masters().Get(key)
	assert.Equal(t, createdAt, second.CreatedAt)
	require.NotNil(t, second.RedemptionMinAmount)
	assert.Equal(t, 1000.0, *second.RedemptionMinAmount)
}

func TestMergeSkipsMissingCatalogScheme(t *testing.T) {
	s := seed(t)
	require.NoError(t, s.CatalogSchemes().Delete(118989))

	result, err := New().Merge(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	require.Len(t, result.Skipped, 1)
	assert.True(t, errors.IsMergeSource(result.Skipped[0]))
	assert.Equal(t, 0, s.Masters().Len())
}

func TestMergeFlagsMasterKeyCollision(t *testing.T) {
	s := seed(t)

	// A second registrar reports the same scheme variant, also verified
	// to code 118989. Both mappings compose the master key 118989/DP/G.
	kfinKey := schemes.RtaKey{Source: schemes.SourceKFin, SchemeCode: "ABC01", PlanCode: "DP", OptionCode: "G"}
	min := 5000.0
	require.NoError(t, s.RtaRecords().Set(&schemes.RtaSchemeRecord{
		Key:                 kfinKey,
		SchemeName:          "ABC BLUECHIP FUND - DIRECT GROWTH",
		ISIN:                "INF000X01XX5",
		RedemptionMinAmount: &min,
		ImportedAt:          utc.Now(),
	}))
	now := utc.Now()
	require.NoError(t, s.Mappings().Set(&schemes.SchemeMapping{
		Key:             kfinKey,
		Code:            118989,
		MatchConfidence: 100,
		MappingSource:   schemes.MappingISINExact,
		State:           schemes.StateVerified,
		VerifiedBy:      "system",
		VerifiedAt:      &now,
		MatchedAt:       now,
	}))

	result, err := New().Merge(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	require.Len(t, result.Skipped, 1)
	assert.True(t, errors.IsMasterConflict(result.Skipped[0]))

	// First mapping in key order published the row; the conflicting one
	// did not overwrite it.
	master, ok := s.Masters().Get(schemes.MasterKey{Code: 118989, PlanCode: "DP", OptionCode: "G"})
	require.True(t, ok)
	assert.Equal(t, schemes.SourceCAMS, master.RtaSource)
	require.NotNil(t, master.RedemptionMinAmount)
	assert.Equal(t, 500.0, *master.RedemptionMinAmount)
}

func TestMergeIgnoresUnverifiedMappings(t *testing.T) {
	s := seed(t)
	mapping, _ := s.Mappings().Get(testKey())
	mapping.State = schemes.StatePendingReview

	result, err := New().Merge(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 0, s.Masters().Len())
}

func TestMergePrunesRowsWithoutVerifiedMapping(t *testing.T) {
	s := seed(t)
	merger := New()

	_, err := merger.Merge(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Masters().Len())

	// Manual review retires the mapping; the published row must go. An
	// orphan row with no mapping at all goes with it, and the count
	// reflects both removals.
	s.Mappings().Retire(testKey())
	require.NoError(t, s.Masters().Set(&schemes.SchemeMasterFinal{
		Key:        schemes.MasterKey{Code: 999999, PlanCode: "RP", OptionCode: "D"},
		SchemeName: "orphan",
		RtaSource:  schemes.SourceKFin,
	}))

	result, err := merger.Merge(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Pruned)
	assert.Equal(t, 0, s.Masters().Len())
}

func TestAuthorityTableCoversComposedFields(t *testing.T) {
	for _, field := range []string{"scheme_name", "amc", "isin", "redemption_min_amount", "demat_allow"} {
		side, ok := Authority(field)
		require.True(t, ok, field)
		assert.NotEmpty(t, side)
	}

	side, _ := Authority("scheme_name")
	assert.Equal(t, SideCatalog, side)
	side, _ = Authority("isin")
	assert.Equal(t, SideRTA, side)

	_, ok := Authority("nonexistent")
	assert.False(t, ok)

	assert.Len(t, Fields(), len(fieldAuthority))
}
