package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPartitionWindows_BulkSingleMonth(t *testing.T) {
	// A fresh archive partitioned on a month boundary yields exactly the
	// completed calendar month.
	windows := PartitionWindows(day(2014, time.May, 1), day(2014, time.June, 1), true)

	require.Len(t, windows, 1)
	assert.Equal(t, day(2014, time.May, 1), windows[0].From)
	assert.Equal(t, day(2014, time.May, 31), windows[0].To)
}

func TestPartitionWindows_BulkSpansMonths(t *testing.T) {
	windows := PartitionWindows(day(2014, time.May, 1), day(2014, time.August, 15), true)

	require.Len(t, windows, 4)
	assert.Equal(t, day(2014, time.May, 1), windows[0].From)
	assert.Equal(t, day(2014, time.May, 31), windows[0].To)
	assert.Equal(t, day(2014, time.August, 1), windows[3].From)
	assert.Equal(t, day(2014, time.August, 31), windows[3].To)

	// Consecutive months are contiguous: each window starts the day after
	// the previous one ends.
	for i := 1; i < len(windows); i++ {
		assert.Equal(t, windows[i-1].To.AddDate(0, 0, 1), windows[i].From)
	}
}

func TestPartitionWindows_BulkMidMonthWatermark(t *testing.T) {
	windows := PartitionWindows(day(2022, time.March, 10), day(2022, time.May, 2), true)

	require.Len(t, windows, 3)
	// First window is clipped to the watermark, not the month start.
	assert.Equal(t, day(2022, time.March, 10), windows[0].From)
	assert.Equal(t, day(2022, time.March, 31), windows[0].To)
	assert.Equal(t, day(2022, time.May, 1), windows[2].From)
}

func TestPartitionWindows_IncrementalCoversWithoutGaps(t *testing.T) {
	watermark := day(2023, time.January, 28)
	now := day(2023, time.February, 2)
	windows := PartitionWindows(watermark, now, false)

	require.NotEmpty(t, windows)

	// Every day in [watermark, now+1d] falls in at least one window.
	for d := watermark; !d.After(now.AddDate(0, 0, 1)); d = d.AddDate(0, 0, 1) {
		covered := false
		for _, w := range windows {
			if w.Contains(d) {
				covered = true
				break
			}
		}
		assert.True(t, covered, "day %s not covered", d.Format("2006-01-02"))
	}

	// Windows are single-day spans in order.
	for i, w := range windows {
		assert.Equal(t, w.From.AddDate(0, 0, 1), w.To)
		if i > 0 {
			assert.True(t, w.From.After(windows[i-1].From))
		}
	}
}

func TestPartitionWindows_IncrementalSameDay(t *testing.T) {
	// watermark == now still yields one window so same-day updates are not
	// missed.
	now := day(2024, time.November, 5)
	windows := PartitionWindows(now, now, false)

	require.Len(t, windows, 1)
	assert.Equal(t, now, windows[0].From)
	assert.Equal(t, now.AddDate(0, 0, 1), windows[0].To)
}

func TestDateWindow_Contains(t *testing.T) {
	w := DateWindow{From: day(2020, time.June, 1), To: day(2020, time.June, 30)}

	assert.True(t, w.Contains(day(2020, time.June, 1)))
	assert.True(t, w.Contains(day(2020, time.June, 30)))
	assert.False(t, w.Contains(day(2020, time.May, 31)))
	assert.False(t, w.Contains(day(2020, time.July, 1)))
}
