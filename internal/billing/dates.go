package billing

import (
	"time"

	"github.com/DrewDeMo/finance/internal/models"
)

// MonthWindow returns the first and last calendar day of the month containing
// t, midnight UTC. Bills due on either bound are inside the window.
func MonthWindow(t time.Time) (first, last time.Time) {
	first = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	last = first.AddDate(0, 1, -1)
	return first, last
}

// AddMonth advances a due date by one calendar month, clamping to the last
// day of the target month. Jan 31 advances to Feb 28 (or 29), not Mar 2/3.
func AddMonth(day time.Time) time.Time {
	year, month, dom := day.Year(), day.Month(), day.Day()
	firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
	lastOfNext := firstOfNext.AddDate(0, 1, -1).Day()
	if dom > lastOfNext {
		dom = lastOfNext
	}
	return time.Date(firstOfNext.Year(), firstOfNext.Month(), dom, 0, 0, 0, 0, time.UTC)
}

// DaysUntil returns the number of days from today until due, as the ceiling
// of the millisecond difference. Both arguments are normalized to calendar
// days first, so partial days round up the way the UI counts them.
func DaysUntil(today, due time.Time) int {
	diff := models.Day(due).Sub(models.Day(today))
	const day = 24 * time.Hour
	n := diff / day
	if diff%day > 0 {
		n++
	}
	return int(n)
}
