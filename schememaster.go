// Package schememaster is the library entry point for the scheme master
// reconciliation system. It wraps the store and batch pipeline behind a
// single handle so embedding applications do not wire the packages
// themselves; the CLI under cmd/schememaster is one such application.
package schememaster

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/openfolio/schememaster/pkg/logging"
	"github.com/openfolio/schememaster/pkg/matcher"
	"github.com/openfolio/schememaster/pkg/merge"
	"github.com/openfolio/schememaster/pkg/pipeline"
	"github.com/openfolio/schememaster/pkg/schemes"
	"github.com/openfolio/schememaster/pkg/store"
	"github.com/openfolio/schememaster/pkg/workflow"
)

// SchemeMaster manages a scheme master store with batch reconciliation
// and optional periodic re-reconciliation.
type SchemeMaster interface {
	// Store returns the underlying store.
	Store() store.Store

	// Workflow returns the verification workflow for manual review.
	Workflow() *workflow.Workflow

	// Run executes a full pass over the given feed files.
	Run(ctx context.Context, catalogPath string, rtaPaths map[schemes.Source]string) (*pipeline.RunResult, error)

	// Reconcile re-runs matching and merging over the stored records,
	// without ingesting anything.
	Reconcile(ctx context.Context) error

	// AutoReconcileOn starts periodic reconciliation if an interval is
	// configured.
	AutoReconcileOn() error

	// AutoReconcileOff stops periodic reconciliation.
	AutoReconcileOff() error
}

// schemeMaster is the internal implementation of the SchemeMaster interface.
type schemeMaster struct {
	config   *config
	store    store.Store
	pipeline *pipeline.Pipeline
	workflow *workflow.Workflow

	mu     sync.Mutex
	ticker *time.Ticker
	stopCh chan struct{}
}

// New creates a SchemeMaster instance with the given options. Without a
// store option it runs over a fresh in-memory store.
func New(opts ...Option) (SchemeMaster, error) {
	sm := &schemeMaster{
		config: defaultConfig(),
		stopCh: make(chan struct{}),
	}

	for _, opt := range opts {
		if err := opt(sm.config); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	switch {
	case sm.config.store != nil:
		sm.store = sm.config.store
	case sm.config.storePath != "":
		s, err := store.New(sm.config.storePath)
		if err != nil {
			return nil, err
		}
		sm.store = s
	default:
		sm.store = store.NewMemory()
	}

	m := matcher.New(
		matcher.WithThreshold(sm.config.threshold),
		matcher.WithAutoAccept(sm.config.autoAccept),
		matcher.WithLogger(sm.config.logger),
	)
	sm.pipeline = pipeline.New(sm.store,
		pipeline.WithMatcher(m),
		pipeline.WithMerger(merge.New(merge.WithLogger(sm.config.logger))),
		pipeline.WithLogger(sm.config.logger),
	)
	sm.workflow = sm.pipeline.Workflow()

	if sm.config.reconcileInterval > 0 {
		if err := sm.AutoReconcileOn(); err != nil {
			return nil, err
		}
	}

	return sm, nil
}

// Store returns the underlying store.
func (s *schemeMaster) Store() store.Store {
	return s.store
}

// Workflow returns the verification workflow for manual review.
func (s *schemeMaster) Workflow() *workflow.Workflow {
	return s.workflow
}

// Run executes a full pass over the given feed files.
func (s *schemeMaster) Run(ctx context.Context, catalogPath string, rtaPaths map[schemes.Source]string) (*pipeline.RunResult, error) {
	return s.pipeline.Run(ctx, catalogPath, rtaPaths)
}

// Reconcile re-runs matching and merging over the stored records.
func (s *schemeMaster) Reconcile(ctx context.Context) error {
	if _, err := s.pipeline.Match(ctx); err != nil {
		return err
	}
	if _, err := s.pipeline.Merge(ctx); err != nil {
		return err
	}
	return s.store.Save()
}

// AutoReconcileOn starts periodic reconciliation.
func (s *schemeMaster) AutoReconcileOn() error {
	if s.config.reconcileInterval <= 0 {
		return fmt.Errorf("reconcile interval must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ticker != nil {
		return nil
	}

	// A previous Off closed the stop channel; a restart needs a fresh one.
	select {
	case <-s.stopCh:
		s.stopCh = make(chan struct{})
	default:
	}

	s.ticker = time.NewTicker(s.config.reconcileInterval)
	ticker, stop := s.ticker, s.stopCh

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := s.Reconcile(context.Background()); err != nil {
					s.config.logger.Error().Err(err).Msg("periodic reconcile failed")
				}
			case <-stop:
				return
			}
		}
	}()

	return nil
}

// AutoReconcileOff stops periodic reconciliation.
func (s *schemeMaster) AutoReconcileOff() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
	select {
	case <-s.stopCh:
		// Already closed
	default:
		close(s.stopCh)
	}
	return nil
}

// config holds the assembled options.
type config struct {
	store             store.Store
	storePath         string
	threshold         float64
	autoAccept        float64
	reconcileInterval time.Duration
	logger            *zerolog.Logger
}

func defaultConfig() *config {
	return &config{
		threshold:  matcher.DefaultThreshold,
		autoAccept: matcher.DefaultAutoAccept,
		logger:     logging.Default(),
	}
}
