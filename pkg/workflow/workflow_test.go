package workflow

import (
	"testing"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfolio/schememaster/pkg/errors"
	"github.com/openfolio/schememaster/pkg/schemes"
	"github.com/openfolio/schememaster/pkg/store"
)

func testKey() schemes.RtaKey {
	return schemes.RtaKey{Source: schemes.SourceCAMS, SchemeCode: "ABC01", PlanCode: "DP", OptionCode: "G"}
}

func seedMapping(t *testing.T, s store.Store, state schemes.VerificationState, code int) {
	t.Helper()
	require.NoError(t, s.Mappings().Set(&schemes.SchemeMapping{
		Key:             testKey(),
		Code:            code,
		MatchConfidence: 88,
		MappingSource:   schemes.MappingNameFuzzy,
		State:           state,
		MatchedAt:       utc.Now(),
	}))
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from  schemes.VerificationState
		to    schemes.VerificationState
		legal bool
	}{
		{schemes.StateUnverified, schemes.StatePendingReview, true},
		{schemes.StateUnverified, schemes.StateVerified, true},
		{schemes.StateUnverified, schemes.StateRejected, true},
		{schemes.StatePendingReview, schemes.StateVerified, true},
		{schemes.StatePendingReview, schemes.StateRejected, true},
		{schemes.StatePendingReview, schemes.StateUnverified, false},
		{schemes.StateRejected, schemes.StateVerified, false},
		{schemes.StateRejected, schemes.StatePendingReview, false},
		{schemes.StateVerified, schemes.StateRejected, false},
		{schemes.StateVerified, schemes.StateUnverified, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+" to "+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.legal, CanTransition(tt.from, tt.to))
		})
	}
}

func TestVerifyStampsReviewTrail(t *testing.T) {
	s := store.NewMemory()
	seedMapping(t, s, schemes.StatePendingReview, 118989)

	mapping, err := New(s).Verify(testKey(), "ops@openfolio")
	require.NoError(t, err)

	assert.Equal(t, schemes.StateVerified, mapping.State)
	assert.Equal(t, "ops@openfolio", mapping.VerifiedBy)
	require.NotNil(t, mapping.VerifiedAt)

	stored, ok := s.Mappings().Get(testKey())
	require.True(t, ok)
	assert.True(t, stored.Verified())
}

func TestVerifyRejectedIsIllegal(t *testing.T) {
	s := store.NewMemory()
	seedMapping(t, s, schemes.StateRejected, 118989)

	_, err := New(s).Verify(testKey(), "ops@openfolio")
	require.Error(t, err)
	assert.True(t, errors.IsInvariant(err))

	// Prior state retained.
	stored, _ := s.Mappings().Get(testKey())
	assert.Equal(t, schemes.StateRejected, stored.State)
}

func TestVerifyWithoutCodeIsIllegal(t *testing.T) {
	s := store.NewMemory()
	seedMapping(t, s, schemes.StatePendingReview, 0)

	_, err := New(s).Verify(testKey(), "ops@openfolio")
	assert.True(t, errors.IsInvariant(err))
}

func TestVerifyMissingMapping(t *testing.T) {
	s := store.NewMemory()

	_, err := New(s).Verify(testKey(), "ops@openfolio")
	assert.True(t, errors.IsNotFound(err))
}

func TestRejectRecordsNote(t *testing.T) {
	s := store.NewMemory()
	seedMapping(t, s, schemes.StateUnverified, 118989)

	mapping, err := New(s).Reject(testKey(), "ops@openfolio", "wrong fund house")
	require.NoError(t, err)
	assert.Equal(t, schemes.StateRejected, mapping.State)
	assert.Equal(t, "wrong fund house", mapping.Note)
	assert.Equal(t, "ops@openfolio", mapping.VerifiedBy)
}

func TestRequestReview(t *testing.T) {
	s := store.NewMemory()
	seedMapping(t, s, schemes.StateUnverified, 118989)

	mapping, err := New(s).RequestReview(testKey(), SystemActor, "low confidence")
	require.NoError(t, err)
	assert.Equal(t, schemes.StatePendingReview, mapping.State)
	assert.Empty(t, mapping.VerifiedBy)
}

func TestMapManually(t *testing.T) {
	s := store.NewMemory()
	require.NoError(t, s.CatalogSchemes().Set(&schemes.CatalogScheme{Code: 120465, SchemeName: "XYZ Gilt Fund"}))
	seedMapping(t, s, schemes.StateVerified, 118989)

	mapping, err := New(s).MapManually(testKey(), 120465, "ops@openfolio", "rta isin was stale")
	require.NoError(t, err)

	assert.Equal(t, 120465, mapping.Code)
	assert.Equal(t, schemes.MappingManual, mapping.MappingSource)
	assert.True(t, mapping.Verified())
	assert.Equal(t, 100, mapping.MatchConfidence)

	// The old verified mapping moved to the audit trail.
	require.Len(t, s.Mappings().Retired(), 1)
	assert.Equal(t, 118989, s.Mappings().Retired()[0].Code)
	assert.Equal(t, 1, s.Mappings().Len())
}

func TestMapManuallySameCodeIsIdempotent(t *testing.T) {
	s := store.NewMemory()
	require.NoError(t, s.CatalogSchemes().Set(&schemes.CatalogScheme{Code: 118989}))
	seedMapping(t, s, schemes.StateVerified, 118989)

	_, err := New(s).MapManually(testKey(), 118989, "ops@openfolio", "")
	require.NoError(t, err)
	assert.Empty(t, s.Mappings().Retired())
}

func TestMapManuallyValidation(t *testing.T) {
	s := store.NewMemory()
	require.NoError(t, s.CatalogSchemes().Set(&schemes.CatalogScheme{Code: 118989}))

	_, err := New(s).MapManually(testKey(), 0, "ops@openfolio", "")
	assert.True(t, errors.IsValidationError(err))

	_, err = New(s).MapManually(testKey(), 118989, SystemActor, "")
	assert.True(t, errors.IsValidationError(err))

	_, err = New(s).MapManually(testKey(), 999999, "ops@openfolio", "")
	assert.True(t, errors.IsNotFound(err))
}

func TestAutoVerify(t *testing.T) {
	s := store.NewMemory()

	keys := []schemes.RtaKey{
		{Source: schemes.SourceCAMS, SchemeCode: "ABC01", PlanCode: "DP", OptionCode: "G"},
		{Source: schemes.SourceKFin, SchemeCode: "AB", PlanCode: "DIR", OptionCode: "GR"},
	}
	for _, key := range keys {
		require.NoError(t, s.Mappings().Set(&schemes.SchemeMapping{
			Key:             key,
			Code:            118989,
			MatchConfidence: 100,
			MappingSource:   schemes.MappingISINExact,
			State:           schemes.StateUnverified,
			MatchedAt:       utc.Now(),
		}))
	}
	// Parked mapping without a code stays put.
	parked := schemes.RtaKey{Source: schemes.SourceCAMS, SchemeCode: "AMB01", PlanCode: "", OptionCode: ""}
	require.NoError(t, s.Mappings().Set(&schemes.SchemeMapping{
		Key:       parked,
		State:     schemes.StateUnverified,
		MatchedAt: utc.Now(),
	}))

	verified, err := New(s).AutoVerify()
	require.NoError(t, err)
	assert.Equal(t, 2, verified)

	for _, key := range keys {
		mapping, ok := s.Mappings().Get(key)
		require.True(t, ok)
		assert.True(t, mapping.Verified())
		assert.Equal(t, SystemActor, mapping.VerifiedBy)
	}
	stored, _ := s.Mappings().Get(parked)
	assert.Equal(t, schemes.StateUnverified, stored.State)
}
