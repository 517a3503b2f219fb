package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/westminster-data/parlsync/internal/core/domain"
	"github.com/westminster-data/parlsync/internal/core/ports/driven"
	"github.com/westminster-data/parlsync/internal/logger"
	"github.com/westminster-data/parlsync/internal/normalisers/question"
)

// DefaultConcurrency bounds simultaneous window fetches per sync.
const DefaultConcurrency = 8

// Syncer runs incremental syncs of the question archives: partition the span
// since the archive's high-water mark into date windows, fetch each window,
// normalise, merge into the prior archive by full-row dedup and persist
// atomically.
type Syncer struct {
	store   driven.ArchiveStore
	source  driven.QuestionSource
	journal driven.RunJournal

	dir         string
	concurrency int
	now         func() time.Time

	// Guards against two syncs of the same archive in one process.
	mu     sync.Mutex
	active map[string]bool
}

// NewSyncer creates a syncer writing archives under dir. The journal may be
// nil, in which case runs are not recorded.
func NewSyncer(store driven.ArchiveStore, source driven.QuestionSource, journal driven.RunJournal, dir string, concurrency int) *Syncer {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Syncer{
		store:       store,
		source:      source,
		journal:     journal,
		dir:         dir,
		concurrency: concurrency,
		now:         time.Now,
		active:      make(map[string]bool),
	}
}

// windowResult holds the outcome of fetching and normalising one window.
type windowResult struct {
	records []domain.Record
	fetched int
	dropped int
	err     error
}

// Sync brings one question archive up to date and returns the run report.
//
// A failed window does not abort the sync, but no window at or past the
// first failure is ingested: the high-water mark is derived from the merged
// rows, so ingesting past a gap would advance it over records the failed
// window still owes. The next run re-covers the gap.
func (s *Syncer) Sync(ctx context.Context, kind domain.ArchiveKind) (domain.SyncRun, error) {
	run := domain.SyncRun{ID: uuid.NewString(), Kind: kind, StartedAt: s.now()}

	norm, filter, err := questionPipeline(kind)
	if err != nil {
		return run, err
	}

	path := filepath.Join(s.dir, kind.Filename())
	if err := s.begin(path); err != nil {
		return run, err
	}
	defer s.end(path)

	// 1. Load the prior archive and derive the watermark.
	state, err := s.loadState(ctx, kind, path, norm.Schema())
	if err != nil {
		return run, fmt.Errorf("load archive: %w", err)
	}

	// 2. Partition the span since the watermark into fetch windows.
	windows := domain.PartitionWindows(state.Watermark(), s.now(), state.Fresh)
	logger.Info("Syncing %s: %d windows from %s", kind, len(windows), state.Watermark().Format("2006-01-02"))

	// 3. Fetch and normalise windows with bounded concurrency.
	results, err := s.fetchWindows(ctx, windows, filter, norm)
	if err != nil {
		return run, err
	}

	// 4. Ingest the successful prefix; discard everything from the first
	// failed window on.
	ingestUpTo := len(results)
	for i := range results {
		if results[i].err != nil {
			ingestUpTo = i
			break
		}
	}
	run.FailedWindows = len(results) - ingestUpTo

	var incoming []domain.Record
	for i := range results[:ingestUpTo] {
		run.Fetched += results[i].fetched
		run.Dropped += results[i].dropped
		incoming = append(incoming, results[i].records...)
	}

	// 5. Coerce the watermark column of both row sets into one textual
	// form, so fresh rows and rows read back from disk compare equal.
	field := kind.WatermarkField()
	prior, badPrior := domain.CanonicalizeDates(state.Records, field)
	incoming, badNew := domain.CanonicalizeDates(incoming, field)
	run.Dropped += len(badPrior) + len(badNew)
	if len(badPrior) > 0 {
		logger.Warn("Dropping %d archived %s rows with unparseable %s", len(badPrior), kind, field)
	}

	// 6. Merge by full-row identity and persist atomically.
	merged := domain.Dedupe(append(prior, incoming...), norm.Schema())
	if err := s.store.Save(ctx, path, norm.Schema(), merged); err != nil {
		return run, fmt.Errorf("save archive: %w", err)
	}
	run.Added = len(merged) - len(prior)
	run.FinishedAt = s.now()

	s.record(ctx, run)
	logger.Info("Synced %s: fetched %d, added %d, dropped %d, failed windows %d",
		kind, run.Fetched, run.Added, run.Dropped, run.FailedWindows)
	return run, nil
}

func (s *Syncer) fetchWindows(ctx context.Context, windows []domain.DateWindow, filter driven.QuestionFilter, norm driven.RecordNormaliser) ([]windowResult, error) {
	results := make([]windowResult, len(windows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, w := range windows {
		g.Go(func() error {
			raws, err := s.source.FetchWindow(gctx, w, filter)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logger.Warn("Window %s..%s failed: %v", w.From.Format("2006-01-02"), w.To.Format("2006-01-02"), err)
				results[i].err = err
				return nil
			}
			results[i].fetched = len(raws)
			for _, raw := range raws {
				rec, err := norm.Normalise(raw)
				if err != nil {
					results[i].dropped++
					logger.Debug("Dropping record: %v", err)
					continue
				}
				results[i].records = append(results[i].records, rec)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Syncer) loadState(ctx context.Context, kind domain.ArchiveKind, path string, schema domain.Schema) (*domain.ArchiveState, error) {
	state := &domain.ArchiveState{Kind: kind, Path: path}

	_, records, err := s.store.Load(ctx, path)
	if errors.Is(err, domain.ErrNotFound) {
		state.Fresh = true
		return state, nil
	}
	if err != nil {
		return nil, err
	}
	// A file with no rows plans like a missing one: daily windows from the
	// epoch would mean thousands of calls.
	if len(records) == 0 {
		state.Fresh = true
		return state, nil
	}

	// Older archive files may carry extra or missing columns; pin every row
	// to the current schema so dedup keys line up.
	for i := range records {
		records[i] = domain.Project(records[i], schema)
	}
	state.Records = records
	state.HighWaterMark = domain.MaxWatermark(records, kind.WatermarkField())
	return state, nil
}

func (s *Syncer) begin(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active[path] {
		return fmt.Errorf("%w: %s", domain.ErrSyncInProgress, path)
	}
	s.active[path] = true
	return nil
}

func (s *Syncer) end(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, path)
}

func (s *Syncer) record(ctx context.Context, run domain.SyncRun) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Record(ctx, run); err != nil {
		logger.Warn("Recording run %s failed: %v", run.ID, err)
	}
}

// questionPipeline pairs an archive kind with its normaliser and source filter.
func questionPipeline(kind domain.ArchiveKind) (driven.RecordNormaliser, driven.QuestionFilter, error) {
	switch kind {
	case domain.QuestionsAnswered:
		return question.NewAnswered(), driven.ByAnswered, nil
	case domain.QuestionsTabled:
		return question.NewTabled(), driven.ByTabled, nil
	default:
		return nil, 0, fmt.Errorf("%w: %s is not a question archive", domain.ErrUnsupportedKind, kind)
	}
}
