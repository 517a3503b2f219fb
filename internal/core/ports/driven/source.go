package driven

import (
	"context"

	"github.com/westminster-data/parlsync/internal/core/domain"
)

// QuestionFilter selects which written questions a window fetch returns and
// which date the window bounds apply to.
type QuestionFilter int

const (
	// ByAnswered bounds the window on the answer date and returns only
	// answered questions.
	ByAnswered QuestionFilter = iota

	// ByTabled bounds the window on the tabled date and returns questions
	// regardless of answer status.
	ByTabled
)

// QuestionSource fetches written questions for one date window.
// A window with no questions yields an empty slice, not an error. Both
// window bounds are treated as inclusive by the remote.
type QuestionSource interface {
	FetchWindow(ctx context.Context, w domain.DateWindow, filter QuestionFilter) ([]domain.RawRecord, error)
}

// MemberSource looks up one legislator by integer id.
// Returns domain.ErrNotFound when no member has the id; id-space sweeps
// treat that as the expected common case. Network-level failures (timeout,
// malformed body) surface as other errors.
type MemberSource interface {
	MemberByID(ctx context.Context, id int) (domain.RawRecord, error)
}

// ConstituencySource looks up one constituency by integer id, with the same
// not-found contract as MemberSource.
type ConstituencySource interface {
	ConstituencyByID(ctx context.Context, id int) (domain.RawRecord, error)
}
