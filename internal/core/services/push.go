package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/westminster-data/parlsync/internal/core/domain"
	"github.com/westminster-data/parlsync/internal/core/ports/driven"
	"github.com/westminster-data/parlsync/internal/logger"
)

// Pusher reconciles sitting Commons members into the CRM sink: every member
// not already present is upserted as a contact.
type Pusher struct {
	store driven.ArchiveStore
	sink  driven.CRMSink
	dir   string
}

// NewPusher creates a pusher reading the active-members archive under dir.
func NewPusher(store driven.ArchiveStore, sink driven.CRMSink, dir string) *Pusher {
	return &Pusher{store: store, sink: sink, dir: dir}
}

// PushReport summarises one reconciliation pass.
type PushReport struct {
	Checked        int
	Created        int
	AlreadyPresent int

	// Duplicates counts members the CRM holds more than one contact for.
	// Nothing is created for them; the conflict needs manual review.
	Duplicates int

	// Failed counts members skipped after a CRM error.
	Failed int
}

// PushActiveCommons pushes every sitting Commons member missing from the
// CRM. Per-member failures are counted and skipped; a missing archive is an
// error, since pushing requires a prior member sweep.
func (p *Pusher) PushActiveCommons(ctx context.Context) (*PushReport, error) {
	path := filepath.Join(p.dir, domain.MembersActive.Filename())
	_, records, err := p.store.Load(ctx, path)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("no active-members archive at %s; sweep members first: %w", path, err)
	}
	if err != nil {
		return nil, fmt.Errorf("load archive: %w", err)
	}

	report := &PushReport{}
	for _, rec := range latestByID(records) {
		if rec["latestHouseMembershiphouse"] != "Commons" {
			continue
		}
		report.Checked++

		id, err := strconv.Atoi(rec["id"])
		if err != nil {
			report.Failed++
			logger.Warn("Skipping member with non-numeric id %q", rec["id"])
			continue
		}

		exists, err := p.sink.Exists(ctx, id)
		if err != nil {
			report.Failed++
			logger.Warn("CRM lookup for member %d failed: %v", id, err)
			continue
		}
		if exists {
			report.AlreadyPresent++
			continue
		}

		result, err := p.sink.Upsert(ctx, contactFrom(id, rec))
		if err != nil {
			report.Failed++
			logger.Warn("CRM upsert for member %d failed: %v", id, err)
			continue
		}
		if result == driven.UpsertDuplicate {
			report.Duplicates++
			logger.Warn("Member %d has multiple CRM contacts", id)
			continue
		}
		report.Created++
		logger.Info("Created CRM contact for %s", rec["nameDisplayAs"])
	}
	return report, nil
}

// latestByID collapses the archive's row history to one row per member id,
// keeping the newest row. The archive retains superseded rows; the CRM only
// wants the current state.
func latestByID(records []domain.Record) []domain.Record {
	index := make(map[string]int)
	var out []domain.Record
	for _, rec := range records {
		id := rec["id"]
		if at, ok := index[id]; ok {
			out[at] = rec
			continue
		}
		index[id] = len(out)
		out = append(out, rec)
	}
	return out
}

func contactFrom(id int, rec domain.Record) domain.Contact {
	return domain.Contact{
		ParliamentID: id,
		DisplayName:  rec["nameDisplayAs"],
		FirstName:    rec["firstname"],
		LastName:     rec["surname"],
		Party:        rec["latestPartyname"],
		House:        rec["latestHouseMembershiphouse"],
	}
}
