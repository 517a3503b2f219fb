// Package csvfile implements the archive store over flat CSV files, one row
// per record with a header row of the schema's column names.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/westminster-data/parlsync/internal/core/domain"
	"github.com/westminster-data/parlsync/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ArchiveStore = (*Store)(nil)

// Store reads and writes CSV archives. Saves are write-then-rename so a
// crash mid-write cannot corrupt the prior archive.
type Store struct{}

// New creates a CSV archive store.
func New() *Store {
	return &Store{}
}

// Load reads the archive at path. The header row defines the column order;
// every data row is projected onto it. Returns domain.ErrNotFound when the
// file does not exist.
func (s *Store) Load(_ context.Context, path string) (domain.Schema, []domain.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: archive %s", domain.ErrNotFound, path)
		}
		return nil, nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			// An empty file is an empty archive.
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	schema := domain.Schema(header)

	var records []domain.Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read row: %w", err)
		}
		rec := make(domain.Record, len(schema))
		for i, col := range schema {
			if i < len(row) {
				rec[col] = row[i]
			} else {
				rec[col] = ""
			}
		}
		records = append(records, rec)
	}

	return schema, records, nil
}

// Save atomically replaces the archive at path: the merged snapshot is
// written to a temp file in the same directory, synced, then renamed over
// the target.
func (s *Store) Save(_ context.Context, path string, schema domain.Schema, records []domain.Record) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create archive directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// No-ops once the rename has succeeded.
		tmp.Close()
		os.Remove(tmpName)
	}()

	writer := csv.NewWriter(tmp)
	if err := writer.Write(schema); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(schema))
	for _, rec := range records {
		for i, col := range schema {
			row[i] = rec[col]
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush rows: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace archive: %w", err)
	}
	return nil
}
