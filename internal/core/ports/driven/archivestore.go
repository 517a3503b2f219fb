package driven

import (
	"context"

	"github.com/westminster-data/parlsync/internal/core/domain"
)

// ArchiveStore persists flat archives. One process owns one archive path at
// a time by convention; the store does no locking.
type ArchiveStore interface {
	// Load reads an archive. Returns domain.ErrNotFound if no file exists
	// at the path; an empty file loads as an empty archive.
	Load(ctx context.Context, path string) (domain.Schema, []domain.Record, error)

	// Save atomically replaces the archive at path with the given rows.
	// A crash mid-write must leave the prior file untouched.
	Save(ctx context.Context, path string, schema domain.Schema, records []domain.Record) error
}

// RecordNormaliser maps raw remote payloads into the fixed flat column set
// of one archive kind. A payload missing a required field returns an error
// wrapping domain.ErrSchema; the caller drops the record and continues.
type RecordNormaliser interface {
	Normalise(raw domain.RawRecord) (domain.Record, error)

	// Schema returns the fixed column set this normaliser emits.
	Schema() domain.Schema
}
