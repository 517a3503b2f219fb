package driven

import (
	"context"

	"github.com/westminster-data/parlsync/internal/core/domain"
)

// UpsertResult reports the outcome of a CRM upsert.
type UpsertResult int

const (
	// UpsertOK means the contact was created or updated.
	UpsertOK UpsertResult = iota

	// UpsertDuplicate means the CRM already holds more than one contact for
	// the parliament id. Surfaced so the caller can flag it; never fatal.
	UpsertDuplicate
)

// CRMSink is the downstream contact-management system. The core only needs
// these two operations; everything else about the CRM is opaque.
type CRMSink interface {
	Exists(ctx context.Context, parliamentID int) (bool, error)
	Upsert(ctx context.Context, contact domain.Contact) (UpsertResult, error)
}
