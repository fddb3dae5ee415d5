// Package workflow owns the verification lifecycle of scheme mappings.
// All state changes go through here so the legal-transition table and the
// one-verified-mapping-per-key invariant are enforced in a single place.
//
// Terminal states are final. A rejected mapping is never resurrected and
// a verified mapping is never edited in place; re-resolution retires the
// live mapping and verifies a fresh one.
package workflow

import (
	"strconv"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"

	"github.com/openfolio/schememaster/pkg/errors"
	"github.com/openfolio/schememaster/pkg/logging"
	"github.com/openfolio/schememaster/pkg/schemes"
	"github.com/openfolio/schememaster/pkg/store"
)

// SystemActor stamps transitions performed automatically by the pipeline.
const SystemActor = "system"

// transitions is the legal-transition table. Absent states admit nothing.
var transitions = map[schemes.VerificationState][]schemes.VerificationState{
	schemes.StateUnverified: {
		schemes.StatePendingReview,
		schemes.StateVerified,
		schemes.StateRejected,
	},
	schemes.StatePendingReview: {
		schemes.StateVerified,
		schemes.StateRejected,
	},
}

// CanTransition reports whether from -> to is a legal state change.
func CanTransition(from, to schemes.VerificationState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Workflow applies verification transitions to the mapping collection.
type Workflow struct {
	store  store.Reader
	logger *zerolog.Logger
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(w *Workflow) {
		w.logger = logger
	}
}

// New creates a Workflow over a store.
func New(s store.Reader, opts ...Option) *Workflow {
	w := &Workflow{
		store:  s,
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Verify moves the live mapping for key into the verified state, stamping
// the actor and time. A mapping without a code cannot be verified; park
// resolution happens through MapManually.
func (w *Workflow) Verify(key schemes.RtaKey, actor string) (*schemes.SchemeMapping, error) {
	mapping, err := w.get(key)
	if err != nil {
		return nil, err
	}
	if mapping.Code == 0 {
		return nil, &errors.InvariantError{
			Key:     key.String(),
			Message: "cannot verify a mapping without a catalog code",
		}
	}
	if err := w.transition(mapping, schemes.StateVerified, actor); err != nil {
		return nil, err
	}
	return mapping, nil
}

// Reject moves the live mapping for key into the rejected state. The note
// records why; the mapping stays live as the rejection of record until a
// later matcher run retires it.
func (w *Workflow) Reject(key schemes.RtaKey, actor, note string) (*schemes.SchemeMapping, error) {
	mapping, err := w.get(key)
	if err != nil {
		return nil, err
	}
	if err := w.transition(mapping, schemes.StateRejected, actor); err != nil {
		return nil, err
	}
	if note != "" {
		mapping.Note = note
	}
	return mapping, nil
}

// RequestReview parks the live mapping for key in pending review.
func (w *Workflow) RequestReview(key schemes.RtaKey, actor, note string) (*schemes.SchemeMapping, error) {
	mapping, err := w.get(key)
	if err != nil {
		return nil, err
	}
	if err := w.transition(mapping, schemes.StatePendingReview, actor); err != nil {
		return nil, err
	}
	if note != "" {
		mapping.Note = note
	}
	return mapping, nil
}

// MapManually records a human-resolved mapping for key: full confidence,
// verified immediately. An existing live mapping is retired first so the
// key never carries two mappings; a live verified mapping to the same code
// is left untouched.
func (w *Workflow) MapManually(key schemes.RtaKey, code int, actor, note string) (*schemes.SchemeMapping, error) {
	if code == 0 {
		return nil, &errors.ValidationError{Field: "code", Message: "catalog code is required"}
	}
	if actor == "" || actor == SystemActor {
		return nil, &errors.ValidationError{Field: "actor", Message: "manual mapping needs a human actor"}
	}
	if !w.store.CatalogSchemes().Exists(code) {
		return nil, errors.NewNotFoundError("catalog scheme", strconv.Itoa(code))
	}

	if existing, ok := w.store.Mappings().Get(key); ok {
		if existing.Verified() && existing.Code == code {
			return existing, nil
		}
		w.store.Mappings().Retire(key)
		w.logger.Info().
			Str("key", key.String()).
			Int("old_code", existing.Code).
			Int("new_code", code).
			Msg("retired prior mapping for manual resolution")
	}

	now := utc.Now()
	mapping := &schemes.SchemeMapping{
		Key:             key,
		Code:            code,
		MatchConfidence: 100,
		MappingSource:   schemes.MappingManual,
		State:           schemes.StateVerified,
		VerifiedBy:      actor,
		VerifiedAt:      &now,
		Note:            note,
		MatchedAt:       now,
	}
	if err := w.store.Mappings().Set(mapping); err != nil {
		return nil, err
	}
	return mapping, nil
}

// AutoVerify verifies every unverified mapping that carries a catalog
// code, as the system actor. Parked and pending-review mappings wait for
// a human. Returns the number verified.
func (w *Workflow) AutoVerify() (int, error) {
	var verified int
	for _, mapping := range w.store.Mappings().ListByState(schemes.StateUnverified) {
		if mapping.Code == 0 {
			continue
		}
		if _, err := w.Verify(mapping.Key, SystemActor); err != nil {
			return verified, err
		}
		verified++
	}
	return verified, nil
}

// get fetches the live mapping for key.
func (w *Workflow) get(key schemes.RtaKey) (*schemes.SchemeMapping, error) {
	mapping, ok := w.store.Mappings().Get(key)
	if !ok {
		return nil, errors.NewNotFoundError("mapping", key.String())
	}
	return mapping, nil
}

// transition applies one state change, enforcing the transition table and
// stamping the review trail on entry into a terminal state.
func (w *Workflow) transition(mapping *schemes.SchemeMapping, to schemes.VerificationState, actor string) error {
	if actor == "" {
		return &errors.ValidationError{Field: "actor", Message: "actor is required"}
	}

	from := mapping.State
	if !CanTransition(from, to) {
		return &errors.InvariantError{
			Key:     mapping.Key.String(),
			Message: "illegal transition " + from.String() + " -> " + to.String(),
		}
	}

	mapping.State = to
	if to.Terminal() {
		now := utc.Now()
		mapping.VerifiedBy = actor
		mapping.VerifiedAt = &now
	}

	w.logger.Info().
		Str("key", mapping.Key.String()).
		Str("from", from.String()).
		Str("to", to.String()).
		Str("actor", actor).
		Msg("mapping transition")

	return nil
}
