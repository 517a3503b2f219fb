package driven

import (
	"context"

	"github.com/westminster-data/parlsync/internal/core/domain"
)

// RunJournal records completed sync and sweep cycles.
type RunJournal interface {
	// Record appends one run.
	Record(ctx context.Context, run domain.SyncRun) error

	// Recent returns up to limit runs, newest first.
	Recent(ctx context.Context, limit int) ([]domain.SyncRun, error)

	// LatestByKind returns the most recent run per archive kind.
	LatestByKind(ctx context.Context) (map[domain.ArchiveKind]domain.SyncRun, error)

	// Close releases resources.
	Close() error
}
