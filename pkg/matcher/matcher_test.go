package matcher

import (
	"context"
	"testing"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfolio/schememaster/pkg/normalize"
	"github.com/openfolio/schememaster/pkg/schemes"
	"github.com/openfolio/schememaster/pkg/store"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want func(t *testing.T, score float64)
	}{
		{
			name: "identical",
			a:    "abc bluechip",
			b:    "abc bluechip",
			want: func(t *testing.T, score float64) { assert.Equal(t, 1.0, score) },
		},
		{
			name: "disjoint",
			a:    "abc bluechip",
			b:    "xyz gilt",
			want: func(t *testing.T, score float64) { assert.Equal(t, 0.0, score) },
		},
		{
			name: "near match",
			a:    "abc bluechip equity",
			b:    "abc bluechip",
			want: func(t *testing.T, score float64) {
				assert.Greater(t, score, 0.7)
				assert.Less(t, score, 1.0)
			},
		},
		{
			name: "empty",
			a:    "",
			b:    "",
			want: func(t *testing.T, score float64) { assert.Equal(t, 0.0, score) },
		},
		{
			name: "single char",
			a:    "a",
			b:    "abc",
			want: func(t *testing.T, score float64) { assert.Equal(t, 0.0, score) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want(t, Similarity(tt.a, tt.b))
		})
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	a, b := "abc bluechip equity", "abc bluechip"
	assert.Equal(t, Similarity(a, b), Similarity(b, a))
}

func seedStore(t *testing.T) store.Store {
	t.Helper()
	s := store.NewMemory()

	require.NoError(t, s.CatalogSchemes().Set(&schemes.CatalogScheme{
		Code:           118989,
		AMC:            "ABC Mutual Fund",
		SchemeName:     "ABC Bluechip Fund",
		NormalizedName: normalize.Name("ABC Bluechip Fund"),
		ISINGrowth:     "INF000X01XX5",
	}))
	require.NoError(t, s.CatalogSchemes().Set(&schemes.CatalogScheme{
		Code:           120465,
		AMC:            "XYZ Mutual Fund",
		SchemeName:     "XYZ Gilt Fund",
		NormalizedName: normalize.Name("XYZ Gilt Fund"),
		ISINGrowth:     "INF000X01XX6",
	}))
	return s
}

func camsRecord(code string, mutate func(*schemes.RtaSchemeRecord)) *schemes.RtaSchemeRecord {
	record := &schemes.RtaSchemeRecord{
		Key:        schemes.RtaKey{Source: schemes.SourceCAMS, SchemeCode: code, PlanCode: "DP", OptionCode: "G"},
		SchemeName: "ABC Bluechip Fund",
		ISIN:       "INF000X01XX5",
		ImportedAt: utc.Now(),
	}
	record.NormalizedName = normalize.Name(record.SchemeName)
	if mutate != nil {
		mutate(record)
	}
	return record
}

func TestMatchISINExact(t *testing.T) {
	s := seedStore(t)

	// The record's name points at the wrong scheme; ISIN still decides.
	require.NoError(t, s.RtaRecords().Set(camsRecord("ABC01", func(r *schemes.RtaSchemeRecord) {
		r.SchemeName = "XYZ Gilt Fund"
		r.NormalizedName = normalize.Name(r.SchemeName)
	})))

	result, err := New().Match(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, result.Proposed, 1)

	mapping := result.Proposed[0]
	assert.Equal(t, 118989, mapping.Code)
	assert.Equal(t, 100, mapping.MatchConfidence)
	assert.Equal(t, schemes.MappingISINExact, mapping.MappingSource)
	assert.Equal(t, schemes.StateUnverified, mapping.State)

	stored, ok := s.Mappings().Get(mapping.Key)
	require.True(t, ok)
	assert.Equal(t, mapping, stored)
}

func TestMatchAmbiguousISIN(t *testing.T) {
	s := seedStore(t)

	// Second catalog scheme claiming the same ISIN.
	require.NoError(t, s.CatalogSchemes().Set(&schemes.CatalogScheme{
		Code:           130001,
		AMC:            "ABC Mutual Fund",
		SchemeName:     "ABC Bluechip Fund Series II",
		NormalizedName: normalize.Name("ABC Bluechip Fund Series II"),
		ISINDivPayout:  "INF000X01XX5",
	}))
	require.NoError(t, s.RtaRecords().Set(camsRecord("ABC01", nil)))

	result, err := New().Match(context.Background(), s)
	require.NoError(t, err)

	require.Len(t, result.Ambiguous, 1)
	assert.Equal(t, "INF000X01XX5", result.Ambiguous[0].ISIN)
	assert.Equal(t, []int{118989, 130001}, result.Ambiguous[0].Codes)

	// Parked, not guessed.
	require.Len(t, result.Proposed, 1)
	mapping := result.Proposed[0]
	assert.Equal(t, 0, mapping.Code)
	assert.Equal(t, schemes.StatePendingReview, mapping.State)
	assert.NotEmpty(t, mapping.Note)
}

func TestMatchFuzzyFallback(t *testing.T) {
	s := seedStore(t)

	// ISIN unknown to the catalog; near-identical name auto-accepts.
	require.NoError(t, s.RtaRecords().Set(camsRecord("ABC01", func(r *schemes.RtaSchemeRecord) {
		r.ISIN = "INF999X99XX1"
		r.AMCName = "ABC Mutual Fund"
	})))

	result, err := New().Match(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, result.Proposed, 1)

	mapping := result.Proposed[0]
	assert.Equal(t, 118989, mapping.Code)
	assert.Equal(t, schemes.MappingNameFuzzy, mapping.MappingSource)
	assert.Equal(t, schemes.StateUnverified, mapping.State)
	assert.Equal(t, 95, mapping.MatchConfidence)
}

func TestMatchFuzzyBelowAutoAcceptParksForReview(t *testing.T) {
	s := seedStore(t)
	require.NoError(t, s.CatalogSchemes().Set(&schemes.CatalogScheme{
		Code:           140001,
		SchemeName:     "ABC Bluechip Equity Fund",
		NormalizedName: normalize.Name("ABC Bluechip Equity Fund"),
	}))

	require.NoError(t, s.RtaRecords().Set(camsRecord("ABC01", func(r *schemes.RtaSchemeRecord) {
		r.ISIN = "INF999X99XX1"
		r.SchemeName = "ABC Bluechip Equities"
		r.NormalizedName = normalize.Name(r.SchemeName)
	})))

	sim := Similarity(normalize.Name("ABC Bluechip Equities"), normalize.Name("ABC Bluechip Equity Fund"))
	require.Greater(t, sim, DefaultThreshold)
	require.Less(t, sim, DefaultAutoAccept)

	result, err := New().Match(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, result.Proposed, 1)
	assert.Equal(t, 140001, result.Proposed[0].Code)
	assert.Equal(t, schemes.StatePendingReview, result.Proposed[0].State)
	assert.Less(t, result.Proposed[0].MatchConfidence, 95)
}

func TestMatchBelowThresholdUnmatched(t *testing.T) {
	s := seedStore(t)

	require.NoError(t, s.RtaRecords().Set(camsRecord("ABC01", func(r *schemes.RtaSchemeRecord) {
		r.ISIN = "INF999X99XX1"
		r.SchemeName = "Completely Different Scheme"
		r.NormalizedName = normalize.Name(r.SchemeName)
	})))

	result, err := New().Match(context.Background(), s)
	require.NoError(t, err)
	assert.Empty(t, result.Proposed)
	require.Len(t, result.Unmatched, 1)
	assert.False(t, s.Mappings().Exists(result.Unmatched[0]))
}

func TestMatchAMCRestriction(t *testing.T) {
	s := seedStore(t)

	// Identical name, but the record names a different fund house; the
	// only same-house candidate is dissimilar, so nothing matches.
	require.NoError(t, s.RtaRecords().Set(camsRecord("ABC01", func(r *schemes.RtaSchemeRecord) {
		r.ISIN = "INF999X99XX1"
		r.AMCName = "XYZ Mutual Fund"
	})))

	result, err := New().Match(context.Background(), s)
	require.NoError(t, err)
	assert.Empty(t, result.Proposed)
	assert.Len(t, result.Unmatched, 1)
}

func TestMatchNeverDisturbsManualOrTerminal(t *testing.T) {
	s := seedStore(t)
	record := camsRecord("ABC01", nil)
	require.NoError(t, s.RtaRecords().Set(record))

	now := utc.Now()
	manual := &schemes.SchemeMapping{
		Key:             record.Key,
		Code:            120465,
		MatchConfidence: 100,
		MappingSource:   schemes.MappingManual,
		State:           schemes.StateVerified,
		VerifiedBy:      "ops@openfolio",
		VerifiedAt:      &now,
		MatchedAt:       now,
	}
	require.NoError(t, s.Mappings().Set(manual))

	result, err := New().Match(context.Background(), s)
	require.NoError(t, err)
	assert.Empty(t, result.Proposed)
	assert.Equal(t, 1, result.Skipped)

	stored, ok := s.Mappings().Get(record.Key)
	require.True(t, ok)
	assert.Equal(t, 120465, stored.Code)
	assert.Equal(t, schemes.MappingManual, stored.MappingSource)
}

func TestMatchReproposesAfterRejectionWhenCatalogChanges(t *testing.T) {
	s := seedStore(t)
	record := camsRecord("ABC01", nil)
	require.NoError(t, s.RtaRecords().Set(record))

	// A reviewer rejected an earlier fuzzy proposal pointing at the
	// wrong scheme; the record's ISIN now resolves to a different code.
	now := utc.Now()
	require.NoError(t, s.Mappings().Set(&schemes.SchemeMapping{
		Key:             record.Key,
		Code:            120465,
		MatchConfidence: 85,
		MappingSource:   schemes.MappingNameFuzzy,
		State:           schemes.StateRejected,
		VerifiedBy:      "ops@openfolio",
		VerifiedAt:      &now,
		MatchedAt:       now,
	}))

	result, err := New().Match(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, result.Proposed, 1)

	stored, ok := s.Mappings().Get(record.Key)
	require.True(t, ok)
	assert.Equal(t, 118989, stored.Code)
	assert.Equal(t, schemes.MappingISINExact, stored.MappingSource)
	assert.Equal(t, schemes.StateUnverified, stored.State)

	// The rejection stays on the audit trail.
	retired := s.Mappings().Retired()
	require.Len(t, retired, 1)
	assert.Equal(t, 120465, retired[0].Code)
	assert.Equal(t, schemes.StateRejected, retired[0].State)
}

func TestMatchRejectionStandsForSameCode(t *testing.T) {
	s := seedStore(t)
	record := camsRecord("ABC01", nil)
	require.NoError(t, s.RtaRecords().Set(record))

	// The reviewer rejected exactly the code the catalog still yields.
	require.NoError(t, s.Mappings().Set(&schemes.SchemeMapping{
		Key:             record.Key,
		Code:            118989,
		MatchConfidence: 100,
		MappingSource:   schemes.MappingISINExact,
		State:           schemes.StateRejected,
		MatchedAt:       utc.Now(),
	}))

	result, err := New().Match(context.Background(), s)
	require.NoError(t, err)
	assert.Empty(t, result.Proposed)
	assert.Equal(t, 1, result.Skipped)

	stored, ok := s.Mappings().Get(record.Key)
	require.True(t, ok)
	assert.Equal(t, schemes.StateRejected, stored.State)
	assert.Empty(t, s.Mappings().Retired())
}

func TestMatchRefreshesUnverified(t *testing.T) {
	s := seedStore(t)
	record := camsRecord("ABC01", nil)
	require.NoError(t, s.RtaRecords().Set(record))

	// Stale automatic proposal pointing at the wrong code.
	require.NoError(t, s.Mappings().Set(&schemes.SchemeMapping{
		Key:             record.Key,
		Code:            120465,
		MatchConfidence: 80,
		MappingSource:   schemes.MappingNameFuzzy,
		State:           schemes.StateUnverified,
		MatchedAt:       utc.Now(),
	}))

	result, err := New().Match(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, result.Proposed, 1)

	stored, ok := s.Mappings().Get(record.Key)
	require.True(t, ok)
	assert.Equal(t, 118989, stored.Code)
	assert.Equal(t, schemes.MappingISINExact, stored.MappingSource)
}
