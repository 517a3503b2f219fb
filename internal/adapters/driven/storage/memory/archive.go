// Package memory provides an in-memory archive store used by service tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/westminster-data/parlsync/internal/core/domain"
	"github.com/westminster-data/parlsync/internal/core/ports/driven"
)

// Ensure ArchiveStore implements the interface.
var _ driven.ArchiveStore = (*ArchiveStore)(nil)

type archive struct {
	schema  domain.Schema
	records []domain.Record
}

// ArchiveStore holds archives in memory, keyed by path.
type ArchiveStore struct {
	mu       sync.RWMutex
	archives map[string]archive

	// SaveErr, when set, is returned by every Save to simulate a
	// persistence failure.
	SaveErr error

	// Saves counts successful Save calls.
	Saves int
}

// NewArchiveStore creates an empty in-memory archive store.
func NewArchiveStore() *ArchiveStore {
	return &ArchiveStore{archives: make(map[string]archive)}
}

// Load returns the archive at path, or domain.ErrNotFound.
func (s *ArchiveStore) Load(_ context.Context, path string) (domain.Schema, []domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.archives[path]
	if !ok {
		return nil, nil, fmt.Errorf("%w: archive %s", domain.ErrNotFound, path)
	}
	records := make([]domain.Record, len(a.records))
	for i, rec := range a.records {
		records[i] = rec.Clone()
	}
	return a.schema, records, nil
}

// Save replaces the archive at path.
func (s *ArchiveStore) Save(_ context.Context, path string, schema domain.Schema, records []domain.Record) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]domain.Record, len(records))
	for i, rec := range records {
		stored[i] = rec.Clone()
	}
	s.archives[path] = archive{schema: schema, records: stored}
	s.Saves++
	return nil
}

// Rows returns the current record count at path.
func (s *ArchiveStore) Rows(path string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.archives[path].records)
}
