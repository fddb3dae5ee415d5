// Package merge publishes master rows from verified mappings. Each row is
// composed from exactly two inputs: the catalog scheme the mapping points
// at and the RTA record behind the mapping's natural key. Field ownership
// is fixed by the authority table; a re-merge over unchanged inputs writes
// nothing.
package merge

import (
	"context"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"

	"github.com/openfolio/schememaster/pkg/errors"
	"github.com/openfolio/schememaster/pkg/logging"
	"github.com/openfolio/schememaster/pkg/schemes"
	"github.com/openfolio/schememaster/pkg/store"
)

// Merger publishes master rows over a store.
type Merger struct {
	logger *zerolog.Logger
	prune  bool
}

// Option configures a Merger.
type Option func(*Merger)

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(m *Merger) {
		m.logger = logger
	}
}

// WithPrune controls whether master rows no longer backed by a verified
// mapping are removed. Defaults to true.
func WithPrune(prune bool) Option {
	return func(m *Merger) {
		m.prune = prune
	}
}

// New creates a Merger.
func New(opts ...Option) *Merger {
	m := &Merger{
		logger: logging.Default(),
		prune:  true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Result summarizes one merge pass.
type Result struct {
	Created   int
	Updated   int
	Unchanged int
	Pruned    int

	// Skipped holds the verified mappings the pass could not publish:
	// their catalog scheme or RTA record has disappeared since
	// verification, or another verified mapping already published their
	// master key. Existing rows are left as they were.
	Skipped []error
}

// Merge composes a master row for every verified mapping. A mapping whose
// inputs are gone is skipped and flagged; the pass continues. Re-merging
// unchanged inputs leaves rows and their timestamps untouched.
func (m *Merger) Merge(ctx context.Context, s store.Reader) (*Result, error) {
	result := &Result{}
	now := utc.Now()
	published := make(map[schemes.MasterKey]schemes.RtaKey)

	for _, mapping := range s.Mappings().ListByState(schemes.StateVerified) {
		if err := ctx.Err(); err != nil {
			return nil, errors.WrapResource("merge", "mappings", mapping.Key.String(), err)
		}

		// Protect the row this mapping backs even if the pass skips it.
		backed := schemes.MasterKey{
			Code:       mapping.Code,
			PlanCode:   mapping.Key.PlanCode,
			OptionCode: mapping.Key.OptionCode,
		}

		scheme, ok := s.CatalogSchemes().Get(mapping.Code)
		if !ok {
			published[backed] = mapping.Key
			err := &errors.MergeSourceError{Key: mapping.Key.String(), Code: mapping.Code}
			result.Skipped = append(result.Skipped, err)
			m.logger.Warn().Str("key", mapping.Key.String()).Int("code", mapping.Code).
				Msg("verified mapping points at a missing catalog scheme")
			continue
		}
		record, ok := s.RtaRecords().Get(mapping.Key)
		if !ok {
			published[backed] = mapping.Key
			err := errors.NewNotFoundError("rta record", mapping.Key.String())
			result.Skipped = append(result.Skipped, err)
			m.logger.Warn().Str("key", mapping.Key.String()).
				Msg("verified mapping has no rta record behind it")
			continue
		}

		next := compose(scheme, record)
		if prior, claimed := published[next.Key]; claimed {
			err := &errors.MasterConflictError{
				MasterKey: next.Key.String(),
				Published: prior.String(),
				Conflict:  mapping.Key.String(),
			}
			result.Skipped = append(result.Skipped, err)
			m.logger.Warn().
				Str("master", next.Key.String()).
				Str("published", prior.String()).
				Str("conflict", mapping.Key.String()).
				Msg("two verified mappings compose the same master row")
			continue
		}
		published[next.Key] = mapping.Key

		existing, ok := s.Masters().Get(next.Key)
		switch {
		case ok && existing.ContentEquals(next):
			result.Unchanged++
			continue
		case ok:
			next.CreatedAt = existing.CreatedAt
			next.UpdatedAt = now
			result.Updated++
		default:
			next.CreatedAt = now
			next.UpdatedAt = now
			result.Created++
		}

		if err := s.Masters().Set(next); err != nil {
			return nil, errors.WrapResource("upsert", "master", next.Key.String(), err)
		}
	}

	if m.prune {
		result.Pruned = m.pruneStale(s, published)
	}

	m.logger.Info().
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("unchanged", result.Unchanged).
		Int("pruned", result.Pruned).
		Int("skipped", len(result.Skipped)).
		Msg("merge pass complete")

	return result, nil
}

// pruneStale removes master rows whose backing mapping is no longer
// verified, e.g. after a manual remap retired it.
func (m *Merger) pruneStale(s store.Reader, published map[schemes.MasterKey]schemes.RtaKey) int {
	var stale []schemes.MasterKey
	s.Masters().ForEach(func(key schemes.MasterKey, _ *schemes.SchemeMasterFinal) bool {
		if _, ok := published[key]; !ok {
			stale = append(stale, key)
		}
		return true
	})

	pruned := 0
	for _, key := range stale {
		if err := s.Masters().Delete(key); err != nil {
			continue
		}
		pruned++
		m.logger.Info().Str("key", key.String()).Msg("pruned master row without a verified mapping")
	}
	return pruned
}
