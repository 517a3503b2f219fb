package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist. For id-space
	// sweeps this is the expected common case and is swallowed, not logged.
	ErrNotFound = errors.New("not found")

	// ErrSchema indicates a remote payload was missing a required field.
	// The offending record is dropped from the batch; the sync continues.
	ErrSchema = errors.New("schema mismatch")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSyncInProgress indicates a sync is already running for the archive.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrUnsupportedKind indicates an unknown archive kind.
	ErrUnsupportedKind = errors.New("unsupported archive kind")

	// ErrCRMUnavailable indicates the CRM sink is not configured.
	// Contact push is disabled without site and user keys.
	ErrCRMUnavailable = errors.New("CRM sink unavailable")
)
