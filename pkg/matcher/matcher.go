// Package matcher proposes mappings from RTA scheme records to catalog
// scheme codes. ISIN equality always wins; name similarity is the
// fallback; an ISIN claimed by several catalog schemes parks the record
// for human review instead of guessing.
//
// The matcher never disturbs manual or verified mappings. Automatic
// mappings still awaiting review are recomputed on every run so a
// corrected feed repairs earlier proposals. A rejected automatic mapping
// stands until the catalog yields a different code for the record; only
// then is it retired to the audit trail and a fresh proposal written.
package matcher

import (
	"context"
	"math"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"

	"github.com/openfolio/schememaster/pkg/errors"
	"github.com/openfolio/schememaster/pkg/logging"
	"github.com/openfolio/schememaster/pkg/normalize"
	"github.com/openfolio/schememaster/pkg/schemes"
	"github.com/openfolio/schememaster/pkg/store"
)

// Default similarity bounds. Names at or above AutoAccept are trusted
// like an unverified exact match; between Threshold and AutoAccept they
// park in pending review.
const (
	DefaultThreshold  = 0.82
	DefaultAutoAccept = 0.90

	// fuzzyCeiling caps fuzzy confidence below the exact-match 100.
	fuzzyCeiling = 95
)

// Matcher proposes scheme mappings over a store.
type Matcher struct {
	threshold  float64
	autoAccept float64
	logger     *zerolog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithThreshold sets the minimum name similarity for a fuzzy proposal.
func WithThreshold(threshold float64) Option {
	return func(m *Matcher) {
		m.threshold = threshold
	}
}

// WithAutoAccept sets the similarity at which a fuzzy proposal skips the
// review queue.
func WithAutoAccept(autoAccept float64) Option {
	return func(m *Matcher) {
		m.autoAccept = autoAccept
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(m *Matcher) {
		m.logger = logger
	}
}

// New creates a Matcher with the default bounds.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		threshold:  DefaultThreshold,
		autoAccept: DefaultAutoAccept,
		logger:     logging.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Result summarizes one matching pass.
type Result struct {
	// Proposed holds the mappings written this pass, new and refreshed.
	Proposed []*schemes.SchemeMapping

	// Ambiguous holds the ISIN collisions found this pass. Each also has
	// a code-less pending-review mapping in the store.
	Ambiguous []*errors.AmbiguousISINError

	// Unmatched holds the keys no rule could map.
	Unmatched []schemes.RtaKey

	// Skipped counts records whose live mapping is manual, verified, or
	// rejected with an unchanged verdict.
	Skipped int
}

// Match proposes mappings for every RTA record in the store and upserts
// them into the mapping collection. The catalog and RTA collections are
// read only.
func (m *Matcher) Match(ctx context.Context, s store.Reader) (*Result, error) {
	result := &Result{}
	matchedAt := utc.Now()

	for _, record := range s.RtaRecords().List() {
		if err := ctx.Err(); err != nil {
			return nil, errors.WrapResource("match", "rta records", record.Key.String(), err)
		}

		var mapping *schemes.SchemeMapping
		if existing, ok := s.Mappings().Get(record.Key); ok {
			switch {
			case existing.Manual() || existing.State == schemes.StateVerified:
				result.Skipped++
				continue
			case existing.State == schemes.StateRejected:
				mapping = m.repropose(s, record, existing, matchedAt)
				if mapping == nil {
					result.Skipped++
					continue
				}
				s.Mappings().Retire(record.Key)
				m.logger.Info().
					Str("key", record.Key.String()).
					Int("rejected_code", existing.Code).
					Int("code", mapping.Code).
					Msg("catalog changed since rejection, proposing a different code")
			}
		}

		if mapping == nil {
			mapping = m.propose(s, record, matchedAt, result)
		}
		if mapping == nil {
			result.Unmatched = append(result.Unmatched, record.Key)
			continue
		}

		if err := s.Mappings().Set(mapping); err != nil {
			return nil, err
		}
		result.Proposed = append(result.Proposed, mapping)
	}

	m.logger.Info().
		Int("proposed", len(result.Proposed)).
		Int("ambiguous", len(result.Ambiguous)).
		Int("unmatched", len(result.Unmatched)).
		Int("skipped", result.Skipped).
		Msg("matching pass complete")

	return result, nil
}

// propose computes the best mapping for one record, or nil when nothing
// clears the similarity threshold.
func (m *Matcher) propose(s store.Reader, record *schemes.RtaSchemeRecord, matchedAt utc.Time, result *Result) *schemes.SchemeMapping {
	if record.ISIN != "" {
		claims := s.CatalogSchemes().ByISIN(record.ISIN)
		switch len(claims) {
		case 0:
			// No catalog scheme publishes this ISIN; fall through to names.
		case 1:
			return &schemes.SchemeMapping{
				Key:             record.Key,
				Code:            claims[0].Code,
				MatchConfidence: 100,
				MappingSource:   schemes.MappingISINExact,
				State:           schemes.StateUnverified,
				MatchedAt:       matchedAt,
			}
		default:
			return m.park(record, claims, matchedAt, result)
		}
	}

	return m.fuzzy(s, record, matchedAt)
}

// repropose revisits a rejected automatic mapping. The rejection stands
// unless the catalog now yields a different concrete code for the record;
// an ambiguous or same-code outcome leaves the verdict in place.
func (m *Matcher) repropose(s store.Reader, record *schemes.RtaSchemeRecord, rejected *schemes.SchemeMapping, matchedAt utc.Time) *schemes.SchemeMapping {
	fresh := m.propose(s, record, matchedAt, &Result{})
	if fresh == nil || fresh.Code == 0 || fresh.Code == rejected.Code {
		return nil
	}
	return fresh
}

// park records an ISIN collision: a code-less pending-review mapping so
// the conflict surfaces in the review queue instead of silently matching.
func (m *Matcher) park(record *schemes.RtaSchemeRecord, claims []*schemes.CatalogScheme, matchedAt utc.Time, result *Result) *schemes.SchemeMapping {
	ambiguous := &errors.AmbiguousISINError{ISIN: record.ISIN}
	for _, claim := range claims {
		ambiguous.Codes = append(ambiguous.Codes, claim.Code)
	}
	result.Ambiguous = append(result.Ambiguous, ambiguous)

	m.logger.Warn().
		Str("key", record.Key.String()).
		Str("isin", record.ISIN).
		Ints("codes", ambiguous.Codes).
		Msg("isin claimed by multiple catalog schemes")

	return &schemes.SchemeMapping{
		Key:           record.Key,
		MappingSource: schemes.MappingISINExact,
		State:         schemes.StatePendingReview,
		Note:          ambiguous.Error(),
		MatchedAt:     matchedAt,
	}
}

// fuzzy finds the most similar catalog scheme by canonicalized name.
// When both sides name their fund house, candidates are restricted to
// the same house.
func (m *Matcher) fuzzy(s store.Reader, record *schemes.RtaSchemeRecord, matchedAt utc.Time) *schemes.SchemeMapping {
	if record.NormalizedName == "" {
		return nil
	}
	recordAMC := normalize.AMC(record.AMCName)

	var best *schemes.CatalogScheme
	var bestScore float64
	for _, candidate := range s.CatalogSchemes().List() {
		if recordAMC != "" && candidate.AMC != "" && normalize.AMC(candidate.AMC) != recordAMC {
			continue
		}
		score := Similarity(record.NormalizedName, candidate.NormalizedName)
		if score > bestScore {
			best, bestScore = candidate, score
		}
	}

	if best == nil || bestScore < m.threshold {
		return nil
	}

	state := schemes.StatePendingReview
	if bestScore >= m.autoAccept {
		state = schemes.StateUnverified
	}

	return &schemes.SchemeMapping{
		Key:             record.Key,
		Code:            best.Code,
		MatchConfidence: int(math.Round(bestScore * fuzzyCeiling)),
		MappingSource:   schemes.MappingNameFuzzy,
		State:           state,
		MatchedAt:       matchedAt,
	}
}
