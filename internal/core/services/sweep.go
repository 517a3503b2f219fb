package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/westminster-data/parlsync/internal/core/domain"
	"github.com/westminster-data/parlsync/internal/core/ports/driven"
	"github.com/westminster-data/parlsync/internal/logger"
	"github.com/westminster-data/parlsync/internal/normalisers/constituency"
	"github.com/westminster-data/parlsync/internal/normalisers/member"
)

// Derived views rewritten in full on every member sweep.
const (
	CommonsViewFile = "active_commons.csv"
	LordsViewFile   = "active_lords.csv"
	PartiesFile     = "state_of_parties.csv"
)

// Sweeper refreshes the member and constituency archives by probing the
// remote id space. The remote offers no listing endpoint for either entity;
// ids are dense enough from 1 that a bounded probe recovers the full set,
// treating not-found as the expected gap signal.
type Sweeper struct {
	store          driven.ArchiveStore
	members        driven.MemberSource
	constituencies driven.ConstituencySource
	journal        driven.RunJournal

	dir               string
	concurrency       int
	maxMemberID       int
	maxConstituencyID int
	now               func() time.Time
}

// NewSweeper creates a sweeper writing archives under dir. The journal may
// be nil.
func NewSweeper(store driven.ArchiveStore, members driven.MemberSource, constituencies driven.ConstituencySource, journal driven.RunJournal, dir string, concurrency, maxMemberID, maxConstituencyID int) *Sweeper {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Sweeper{
		store:             store,
		members:           members,
		constituencies:    constituencies,
		journal:           journal,
		dir:               dir,
		concurrency:       concurrency,
		maxMemberID:       maxMemberID,
		maxConstituencyID: maxConstituencyID,
		now:               time.Now,
	}
}

// SweepReport summarises one id-space sweep.
type SweepReport struct {
	// Probed is the number of ids looked up; Found the number that exist.
	Probed int
	Found  int

	// ActiveAdded and FormerAdded are the net growth of the two archives.
	ActiveAdded int
	FormerAdded int

	// Dropped counts payloads discarded for schema reasons.
	Dropped int

	// FailedProbes counts lookups that failed for reasons other than
	// not-found. Those ids are simply missing from this sweep; the next
	// sweep retries them.
	FailedProbes int
}

// SweepMembers probes the member id space, classifies each member as
// sitting or former by the end date of their latest house membership, and
// merges both archives. The per-house views and the state-of-the-parties
// summary are rewritten from the merged active archive.
func (s *Sweeper) SweepMembers(ctx context.Context) (*SweepReport, error) {
	started := s.now()
	logger.Info("Sweeping members: ids 1..%d", s.maxMemberID)

	raws, failed, err := s.probe(ctx, s.maxMemberID, s.members.MemberByID)
	if err != nil {
		return nil, err
	}
	report := &SweepReport{Probed: s.maxMemberID, Found: len(raws), FailedProbes: failed}

	norm := member.New()
	var active, former []domain.Record
	for _, raw := range raws {
		rec, err := norm.Normalise(raw)
		if err != nil {
			report.Dropped++
			logger.Debug("Dropping member: %v", err)
			continue
		}
		if member.IsActive(raw) {
			active = append(active, rec)
		} else {
			former = append(former, rec)
		}
	}

	mergedActive, err := s.merge(ctx, domain.MembersActive, norm.Schema(), active, &report.ActiveAdded)
	if err != nil {
		return nil, err
	}
	if _, err := s.merge(ctx, domain.MembersFormer, norm.Schema(), former, &report.FormerAdded); err != nil {
		return nil, err
	}
	if err := s.writeHouseViews(ctx, norm.Schema(), mergedActive); err != nil {
		return nil, err
	}

	finished := s.now()
	s.record(ctx, domain.MembersActive, started, finished, report, report.ActiveAdded)
	s.record(ctx, domain.MembersFormer, started, finished, report, report.FormerAdded)
	logger.Info("Swept members: found %d, active +%d, former +%d, dropped %d, failed probes %d",
		report.Found, report.ActiveAdded, report.FormerAdded, report.Dropped, report.FailedProbes)
	return report, nil
}

// SweepConstituencies probes the constituency id space and merges the
// current and abolished archives, classifying by the end-date field.
func (s *Sweeper) SweepConstituencies(ctx context.Context) (*SweepReport, error) {
	started := s.now()
	logger.Info("Sweeping constituencies: ids 1..%d", s.maxConstituencyID)

	raws, failed, err := s.probe(ctx, s.maxConstituencyID, s.constituencies.ConstituencyByID)
	if err != nil {
		return nil, err
	}
	report := &SweepReport{Probed: s.maxConstituencyID, Found: len(raws), FailedProbes: failed}

	norm := constituency.New()
	var active, former []domain.Record
	for _, raw := range raws {
		rec, err := norm.Normalise(raw)
		if err != nil {
			report.Dropped++
			logger.Debug("Dropping constituency: %v", err)
			continue
		}
		if constituency.IsActive(raw) {
			active = append(active, rec)
		} else {
			former = append(former, rec)
		}
	}

	if _, err := s.merge(ctx, domain.ConstituenciesActive, norm.Schema(), active, &report.ActiveAdded); err != nil {
		return nil, err
	}
	if _, err := s.merge(ctx, domain.ConstituenciesFormer, norm.Schema(), former, &report.FormerAdded); err != nil {
		return nil, err
	}

	finished := s.now()
	s.record(ctx, domain.ConstituenciesActive, started, finished, report, report.ActiveAdded)
	s.record(ctx, domain.ConstituenciesFormer, started, finished, report, report.FormerAdded)
	logger.Info("Swept constituencies: found %d, active +%d, former +%d, dropped %d, failed probes %d",
		report.Found, report.ActiveAdded, report.FormerAdded, report.Dropped, report.FailedProbes)
	return report, nil
}

// probe looks up ids 1..max with bounded concurrency and returns the
// payloads that exist, in id order.
func (s *Sweeper) probe(ctx context.Context, max int, lookup func(context.Context, int) (domain.RawRecord, error)) ([]domain.RawRecord, int, error) {
	results := make([]domain.RawRecord, max+1)
	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for id := 1; id <= max; id++ {
		g.Go(func() error {
			raw, err := lookup(gctx, id)
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failed.Add(1)
				logger.Warn("Probe %d failed: %v", id, err)
				return nil
			}
			results[id] = raw
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	found := make([]domain.RawRecord, 0, max)
	for _, raw := range results {
		if raw != nil {
			found = append(found, raw)
		}
	}
	return found, int(failed.Load()), nil
}

// merge folds the sweep's rows into the archive at kind's path by full-row
// dedup, exactly as the question sync does, and returns the merged rows.
func (s *Sweeper) merge(ctx context.Context, kind domain.ArchiveKind, schema domain.Schema, incoming []domain.Record, added *int) ([]domain.Record, error) {
	path := filepath.Join(s.dir, kind.Filename())

	_, prior, err := s.store.Load(ctx, path)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("load archive: %w", err)
	}
	for i := range prior {
		prior[i] = domain.Project(prior[i], schema)
	}

	merged := domain.Dedupe(append(prior, incoming...), schema)
	if err := s.store.Save(ctx, path, schema, merged); err != nil {
		return nil, fmt.Errorf("save archive: %w", err)
	}
	*added = len(merged) - len(prior)
	return merged, nil
}

// writeHouseViews rewrites the per-house splits of the active archive. The
// views are plain projections, so they are overwritten rather than merged.
func (s *Sweeper) writeHouseViews(ctx context.Context, schema domain.Schema, active []domain.Record) error {
	var commons, lords []domain.Record
	for _, rec := range active {
		if rec["latestHouseMembershiphouse"] == "Commons" {
			commons = append(commons, rec)
		} else {
			lords = append(lords, rec)
		}
	}
	if err := s.store.Save(ctx, filepath.Join(s.dir, CommonsViewFile), schema, commons); err != nil {
		return fmt.Errorf("save commons view: %w", err)
	}
	if err := s.store.Save(ctx, filepath.Join(s.dir, LordsViewFile), schema, lords); err != nil {
		return fmt.Errorf("save lords view: %w", err)
	}

	partySchema := domain.Schema{"party", "members"}
	var parties []domain.Record
	for _, count := range PartyCounts(active) {
		parties = append(parties, domain.Record{
			"party":   count.Party,
			"members": strconv.Itoa(count.Members),
		})
	}
	if err := s.store.Save(ctx, filepath.Join(s.dir, PartiesFile), partySchema, parties); err != nil {
		return fmt.Errorf("save party counts: %w", err)
	}
	return nil
}

func (s *Sweeper) record(ctx context.Context, kind domain.ArchiveKind, started, finished time.Time, report *SweepReport, added int) {
	if s.journal == nil {
		return
	}
	run := domain.SyncRun{
		ID:            uuid.NewString(),
		Kind:          kind,
		StartedAt:     started,
		FinishedAt:    finished,
		Fetched:       report.Found,
		Added:         added,
		Dropped:       report.Dropped,
		FailedWindows: report.FailedProbes,
	}
	if err := s.journal.Record(ctx, run); err != nil {
		logger.Warn("Recording run %s failed: %v", run.ID, err)
	}
}
