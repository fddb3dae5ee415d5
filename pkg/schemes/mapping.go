package schemes

import (
	"github.com/agentstation/utc"
)

// MappingSource records how a mapping proposal was produced.
type MappingSource string

// String returns the string representation of a mapping source.
func (m MappingSource) String() string {
	return string(m)
}

// Mapping sources in descending order of certainty.
const (
	MappingISINExact MappingSource = "isin-exact"
	MappingNameFuzzy MappingSource = "name-fuzzy"
	MappingManual    MappingSource = "manual"
)

// VerificationState is the lifecycle state of a mapping. Transitions are
// validated by the workflow package; nothing reaches the master table
// without passing through StateVerified.
type VerificationState string

// String returns the string representation of a verification state.
func (s VerificationState) String() string {
	return string(s)
}

// Verification states.
const (
	StateUnverified    VerificationState = "unverified"
	StatePendingReview VerificationState = "pending-review"
	StateVerified      VerificationState = "verified"
	StateRejected      VerificationState = "rejected"
)

// Terminal reports whether the state admits no further transitions.
// A rejected mapping is never resurrected; a later matcher run creates a
// fresh mapping instead.
func (s VerificationState) Terminal() bool {
	return s == StateVerified || s == StateRejected
}

// SchemeMapping links one RTA natural key to at most one catalog scheme
// code. An RTA key has at most one verified mapping at any time;
// re-resolution retires the old mapping rather than adding a second one.
type SchemeMapping struct {
	Key  RtaKey `json:"key" yaml:"key"`
	Code int    `json:"code" yaml:"code"` // mapped catalog scheme code, 0 while unmapped

	MatchConfidence int               `json:"match_confidence" yaml:"match_confidence"` // 0-100
	MappingSource   MappingSource     `json:"mapping_source" yaml:"mapping_source"`
	State           VerificationState `json:"state" yaml:"state"`

	// Review trail. Every transition into verified or rejected stamps
	// both fields; automatic transitions use the system actor.
	VerifiedBy string    `json:"verified_by,omitempty" yaml:"verified_by,omitempty"`
	VerifiedAt *utc.Time `json:"verified_at,omitempty" yaml:"verified_at,omitempty"`

	// Note carries the reason a mapping was parked for review, e.g. the
	// ambiguous-ISIN condition.
	Note string `json:"note,omitempty" yaml:"note,omitempty"`

	MatchedAt utc.Time `json:"matched_at" yaml:"matched_at"`
}

// Verified reports whether the mapping is in the verified state.
func (m *SchemeMapping) Verified() bool {
	return m.State == StateVerified
}

// Manual reports whether the mapping was produced or confirmed by a human.
func (m *SchemeMapping) Manual() bool {
	return m.MappingSource == MappingManual
}
