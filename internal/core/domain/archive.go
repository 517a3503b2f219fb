package domain

import (
	"fmt"
	"time"
)

// ArchiveKind identifies one of the flat archives the engine maintains.
type ArchiveKind string

const (
	// MembersActive is the archive of sitting members of both houses.
	MembersActive ArchiveKind = "active_members"

	// MembersFormer is the archive of former members.
	MembersFormer ArchiveKind = "former_members"

	// ConstituenciesActive is the archive of current constituencies.
	ConstituenciesActive ArchiveKind = "active_constituencies"

	// ConstituenciesFormer is the archive of abolished constituencies.
	ConstituenciesFormer ArchiveKind = "former_constituencies"

	// QuestionsAnswered is the archive of answered written questions,
	// watermarked on the answer date.
	QuestionsAnswered ArchiveKind = "answered_questions"

	// QuestionsTabled is the archive of tabled written questions regardless
	// of answer status, watermarked on the tabled date.
	QuestionsTabled ArchiveKind = "tabled_questions"
)

// Kinds lists every archive kind in display order.
func Kinds() []ArchiveKind {
	return []ArchiveKind{
		MembersActive, MembersFormer,
		ConstituenciesActive, ConstituenciesFormer,
		QuestionsAnswered, QuestionsTabled,
	}
}

// Filename returns the archive's on-disk file name.
func (k ArchiveKind) Filename() string {
	return string(k) + ".csv"
}

// WatermarkField returns the timestamp column used to detect staleness, or
// empty for the sweep-refreshed archives which carry no watermark.
func (k ArchiveKind) WatermarkField() string {
	switch k {
	case QuestionsAnswered:
		return "dateAnswered"
	case QuestionsTabled:
		return "dateTabled"
	default:
		return ""
	}
}

// EpochStart is the beginning of the digital written-questions record.
// A fresh archive syncs forward from this date.
var EpochStart = time.Date(2014, time.May, 1, 0, 0, 0, 0, time.UTC)

// ArchiveState describes one entity archive as read from disk. A sync either
// fully commits a new merged snapshot or leaves the prior file untouched;
// ArchiveState is never partially updated.
type ArchiveState struct {
	Kind          ArchiveKind
	Path          string
	Records       []Record
	Schema        Schema
	HighWaterMark time.Time
	// Fresh is true when the archive holds no rows yet, which selects
	// bulk-mode partitioning from EpochStart.
	Fresh bool
}

// Watermark returns the lower bound for the next incremental fetch.
func (s *ArchiveState) Watermark() time.Time {
	if s.Fresh || s.HighWaterMark.IsZero() {
		return EpochStart
	}
	return s.HighWaterMark
}

// dateLayouts are the accepted textual forms of the watermark column, in
// match order. The Parliament APIs emit the first form; older archive files
// may carry any of them.
var dateLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// canonicalLayout is the single on-disk form of the watermark column.
const canonicalLayout = "2006-01-02T15:04:05"

// ParseArchiveDate parses a textual date from a watermark column.
func ParseArchiveDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable date %q", ErrSchema, s)
}

// CanonicalizeDates rewrites the named column of every record into the
// canonical layout, so that rows fetched now and rows read back from disk
// compare equal. Raw textual dates are not directly comparable; relying on a
// write/read round trip to coerce them is exactly the type-drift hazard this
// guards against. Records whose column is empty are left alone; records whose
// column cannot be parsed are returned in the second value.
func CanonicalizeDates(records []Record, field string) (ok, bad []Record) {
	if field == "" {
		return records, nil
	}
	ok = make([]Record, 0, len(records))
	for _, rec := range records {
		raw := rec[field]
		if raw == "" {
			ok = append(ok, rec)
			continue
		}
		t, err := ParseArchiveDate(raw)
		if err != nil {
			bad = append(bad, rec)
			continue
		}
		rec[field] = t.Format(canonicalLayout)
		ok = append(ok, rec)
	}
	return ok, bad
}

// MaxWatermark returns the greatest parseable value of the watermark column
// across the records, or the zero time if none parses.
func MaxWatermark(records []Record, field string) time.Time {
	var max time.Time
	if field == "" {
		return max
	}
	for _, rec := range records {
		t, err := ParseArchiveDate(rec[field])
		if err != nil {
			continue
		}
		if t.After(max) {
			max = t
		}
	}
	return max
}
