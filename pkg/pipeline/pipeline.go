// Package pipeline orchestrates the batch passes of the scheme master:
// ingest feed files into the store, propose and auto-verify mappings, and
// publish master rows. Row-level failures skip the row and are counted;
// only infrastructure failures abort a pass.
//
// At most one ingest runs per source at a time. A second ingest for the
// same source fails fast with ErrBatchInFlight instead of queueing.
package pipeline

import (
	"context"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/agentstation/utc"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/openfolio/schememaster/pkg/errors"
	"github.com/openfolio/schememaster/pkg/feeds"
	"github.com/openfolio/schememaster/pkg/logging"
	"github.com/openfolio/schememaster/pkg/matcher"
	"github.com/openfolio/schememaster/pkg/merge"
	"github.com/openfolio/schememaster/pkg/schemes"
	"github.com/openfolio/schememaster/pkg/store"
	"github.com/openfolio/schememaster/pkg/workflow"
)

// Pipeline runs the batch passes over one store.
type Pipeline struct {
	store    store.Store
	matcher  *matcher.Matcher
	merger   *merge.Merger
	workflow *workflow.Workflow
	logger   *zerolog.Logger

	mu       sync.Mutex
	inflight map[schemes.Source]bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMatcher sets the matcher used by the matching pass.
func WithMatcher(m *matcher.Matcher) Option {
	return func(p *Pipeline) {
		p.matcher = m
	}
}

// WithMerger sets the merger used by the merge pass.
func WithMerger(m *merge.Merger) Option {
	return func(p *Pipeline) {
		p.merger = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a Pipeline over a store.
func New(s store.Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:    s,
		logger:   logging.Default(),
		inflight: make(map[schemes.Source]bool),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.matcher == nil {
		p.matcher = matcher.New(matcher.WithLogger(p.logger))
	}
	if p.merger == nil {
		p.merger = merge.New(merge.WithLogger(p.logger))
	}
	p.workflow = workflow.New(s, workflow.WithLogger(p.logger))
	return p
}

// Workflow returns the verification workflow bound to the pipeline's
// store, for manual review operations.
func (p *Pipeline) Workflow() *workflow.Workflow {
	return p.workflow
}

// Store returns the store the pipeline operates on.
func (p *Pipeline) Store() store.Store {
	return p.store
}

// IngestResult summarizes one feed file ingest.
type IngestResult struct {
	Batch   uuid.UUID
	Source  schemes.Source
	Rows    int // rows read from the file
	Stored  int // records upserted
	Skipped int // malformed rows skipped
}

// IngestCatalog ingests an association catalog file: raw rows stored
// verbatim, then normalized into catalog schemes. Malformed rows are
// logged and skipped.
func (p *Pipeline) IngestCatalog(ctx context.Context, path string) (*IngestResult, error) {
	return p.ingest(ctx, schemes.SourceAMFI, path, func(row *schemes.RawRow) error {
		scheme, err := feeds.NewAMFI().Normalize(row)
		if err != nil {
			return err
		}
		return p.store.CatalogSchemes().Set(scheme)
	})
}

// IngestRTA ingests a registrar scheme master file for one source.
func (p *Pipeline) IngestRTA(ctx context.Context, source schemes.Source, path string) (*IngestResult, error) {
	adapter, err := feeds.RtaAdapterFor(source)
	if err != nil {
		return nil, err
	}
	return p.ingest(ctx, source, path, func(row *schemes.RawRow) error {
		record, err := adapter.Normalize(row)
		if err != nil {
			return err
		}
		return p.store.RtaRecords().Set(record)
	})
}

// ingest is the shared ingest pass: read, store raw, normalize each row
// in parallel through apply, stamp the batch marker.
func (p *Pipeline) ingest(ctx context.Context, source schemes.Source, path string, apply func(*schemes.RawRow) error) (*IngestResult, error) {
	if err := p.acquire(source); err != nil {
		return nil, err
	}
	defer p.release(source)

	batch := uuid.New()
	ctx = logging.WithBatchID(ctx, batch.String())
	logger := logging.Ctx(ctx)

	rows, err := feeds.ReadFile(path, source, batch)
	if err != nil {
		return nil, err
	}
	p.store.RawRows().Append(rows...)

	result := &IngestResult{Batch: batch, Source: source, Rows: len(rows)}

	var mu sync.Mutex
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.GOMAXPROCS(0))
	for _, row := range rows {
		row := row
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := apply(row)
			switch {
			case err == nil:
				mu.Lock()
				result.Stored++
				mu.Unlock()
				return nil
			case errors.IsMalformedRow(err):
				logger.Warn().Err(err).Msg("skipping malformed row")
				mu.Lock()
				result.Skipped++
				mu.Unlock()
				return nil
			default:
				return err
			}
		})
	}
	if err := group.Wait(); err != nil {
		return nil, errors.WrapResource("ingest", "feed", path, err)
	}

	p.store.SetBatch(schemes.ImportBatch{
		ID:         batch,
		Source:     source,
		SourceFile: filepath.Base(path),
		ImportedAt: rowsImportedAt(rows),
		RowCount:   len(rows),
	})

	logger.Info().
		Str("source", source.String()).
		Str("file", path).
		Int("rows", result.Rows).
		Int("stored", result.Stored).
		Int("skipped", result.Skipped).
		Msg("ingest complete")

	return result, nil
}

// MatchResult summarizes one matching pass, including the mappings the
// workflow auto-verified afterwards.
type MatchResult struct {
	*matcher.Result
	AutoVerified int
}

// Match proposes mappings for every stored RTA record and auto-verifies
// the unverified proposals that carry a catalog code.
func (p *Pipeline) Match(ctx context.Context) (*MatchResult, error) {
	proposed, err := p.matcher.Match(ctx, p.store)
	if err != nil {
		return nil, err
	}

	verified, err := p.workflow.AutoVerify()
	if err != nil {
		return nil, err
	}

	return &MatchResult{Result: proposed, AutoVerified: verified}, nil
}

// Merge publishes master rows from the verified mappings.
func (p *Pipeline) Merge(ctx context.Context) (*merge.Result, error) {
	return p.merger.Merge(ctx, p.store)
}

// RunResult summarizes a full pipeline run.
type RunResult struct {
	Ingests []*IngestResult
	Match   *MatchResult
	Merge   *merge.Result
}

// Run executes a full pass: ingest the catalog file and every registrar
// file in parallel, then match, then merge, then save the store.
func (p *Pipeline) Run(ctx context.Context, catalogPath string, rtaPaths map[schemes.Source]string) (*RunResult, error) {
	result := &RunResult{}

	var mu sync.Mutex
	group, gctx := errgroup.WithContext(ctx)
	if catalogPath != "" {
		group.Go(func() error {
			ingest, err := p.IngestCatalog(gctx, catalogPath)
			if err != nil {
				return err
			}
			mu.Lock()
			result.Ingests = append(result.Ingests, ingest)
			mu.Unlock()
			return nil
		})
	}
	for source, path := range rtaPaths {
		source, path := source, path
		group.Go(func() error {
			ingest, err := p.IngestRTA(gctx, source, path)
			if err != nil {
				return err
			}
			mu.Lock()
			result.Ingests = append(result.Ingests, ingest)
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	match, err := p.Match(ctx)
	if err != nil {
		return nil, err
	}
	result.Match = match

	merged, err := p.Merge(ctx)
	if err != nil {
		return nil, err
	}
	result.Merge = merged

	if err := p.store.Save(); err != nil {
		return nil, err
	}
	return result, nil
}

// acquire marks a source ingest as in flight.
func (p *Pipeline) acquire(source schemes.Source) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inflight[source] {
		return errors.WrapResource("ingest", "source", source.String(), errors.ErrBatchInFlight)
	}
	p.inflight[source] = true
	return nil
}

// release clears the in-flight marker for a source.
func (p *Pipeline) release(source schemes.Source) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inflight, source)
}

// rowsImportedAt returns the import stamp shared by a batch of rows.
func rowsImportedAt(rows []*schemes.RawRow) utc.Time {
	if len(rows) > 0 {
		return rows[0].ImportedAt
	}
	return utc.Now()
}
