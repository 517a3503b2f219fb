package domain

import "time"

// SyncRun is the journal entry for one sync or sweep cycle.
type SyncRun struct {
	// ID is a random run identifier.
	ID string

	Kind       ArchiveKind
	StartedAt  time.Time
	FinishedAt time.Time

	// Fetched counts raw records returned by the remote across all windows.
	Fetched int

	// Added is the net growth of the archive: merged size minus prior size.
	Added int

	// Dropped counts records discarded for schema reasons.
	Dropped int

	// FailedWindows counts windows skipped after fetch errors. A non-zero
	// count means the watermark was held back and the next run will retry
	// the gap.
	FailedWindows int
}
