package domain

import "time"

// DateWindow is an inclusive date range used as remote-query granularity.
// Windows in one partition never overlap each other by more than the single
// boundary day; the remote treats both bounds as inclusive, so consecutive
// daily windows deliberately over-fetch the shared day and rely on
// deduplication to resolve it.
type DateWindow struct {
	From time.Time
	To   time.Time
}

// Contains reports whether the day d falls inside the window.
func (w DateWindow) Contains(d time.Time) bool {
	return !d.Before(w.From) && !d.After(w.To)
}

// PartitionWindows converts a watermark into an ordered fetch plan.
//
// Bulk mode (fresh archive): the span from the watermark is cut into
// calendar-month windows to bound the remote result-set size per call. A
// month is included while its start precedes now, so a sync landing exactly
// on a month boundary stops at the completed month; the following run picks
// up the remainder incrementally.
//
// Incremental mode: [watermark, now+1 day] is cut into single-day windows.
// The daily volume is low and the priority is not missing records at the
// boundary, so even watermark == now yields one window [now, now+1d].
func PartitionWindows(watermark, now time.Time, fresh bool) []DateWindow {
	watermark = truncateDay(watermark)
	now = truncateDay(now)

	if fresh {
		return partitionMonthly(watermark, now)
	}
	return partitionDaily(watermark, now)
}

func partitionMonthly(start, now time.Time) []DateWindow {
	var windows []DateWindow
	month := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	for month.Before(now) {
		next := month.AddDate(0, 1, 0)
		from := month
		if from.Before(start) {
			from = start
		}
		windows = append(windows, DateWindow{From: from, To: next.AddDate(0, 0, -1)})
		month = next
	}
	return windows
}

func partitionDaily(start, now time.Time) []DateWindow {
	var windows []DateWindow
	for day := start; !day.After(now); day = day.AddDate(0, 0, 1) {
		windows = append(windows, DateWindow{From: day, To: day.AddDate(0, 0, 1)})
	}
	return windows
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
