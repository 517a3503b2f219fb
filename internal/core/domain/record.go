package domain

import "strings"

// RawRecord is one payload as returned by a remote source, before any
// flattening. It only exists between fetch and normalisation.
type RawRecord map[string]any

// Record is a flat, string-valued row of an archive. Every record of a given
// archive kind carries exactly the columns of that kind's schema; columns the
// remote omitted are present with an empty value.
type Record map[string]string

// Schema is the ordered column set of an archive kind. Column order is the
// CSV header order and is stable across syncs.
type Schema []string

// rowSep separates column values inside a dedup key. It cannot appear in
// field values because the normalisers only emit printable text.
const rowSep = "\x1f"

// Key returns the full-row identity of a record under the given schema.
// Two records are duplicates iff every column matches, not just the id:
// the same id may legitimately reappear with updated fields, in which case
// both rows are kept.
func (r Record) Key(schema Schema) string {
	var b strings.Builder
	for i, col := range schema {
		if i > 0 {
			b.WriteString(rowSep)
		}
		b.WriteString(r[col])
	}
	return b.String()
}

// Clone returns a copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Dedupe returns records with exact full-row duplicates removed, preserving
// first-seen order. The input slice is not modified.
func Dedupe(records []Record, schema Schema) []Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		key := rec.Key(schema)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}

// Project returns a record restricted to the schema's columns, filling any
// missing column with the empty string. Columns outside the schema are
// dropped.
func Project(rec Record, schema Schema) Record {
	out := make(Record, len(schema))
	for _, col := range schema {
		out[col] = rec[col]
	}
	return out
}
