// Package analysis aggregates bill spending for the analysis view. It only
// produces data series; rendering is the frontend's concern.
package analysis

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/DrewDeMo/finance/internal/models"
)

// TimeFrame selects how far back the aggregation looks.
type TimeFrame string

const (
	TimeFrameMonth   TimeFrame = "month"
	TimeFrameQuarter TimeFrame = "quarter"
	TimeFrameYear    TimeFrame = "year"
)

// ParseTimeFrame validates a time frame string, defaulting empty to month.
func ParseTimeFrame(s string) (TimeFrame, error) {
	switch TimeFrame(s) {
	case TimeFrameMonth, "":
		return TimeFrameMonth, nil
	case TimeFrameQuarter:
		return TimeFrameQuarter, nil
	case TimeFrameYear:
		return TimeFrameYear, nil
	}
	return "", fmt.Errorf("invalid time frame %q", s)
}

// WindowStart returns the earliest due date included in the time frame,
// relative to now: start of the current month, three months back, or one
// year back.
func WindowStart(tf TimeFrame, now time.Time) time.Time {
	switch tf {
	case TimeFrameQuarter:
		return time.Date(now.Year(), now.Month()-3, 1, 0, 0, 0, 0, time.UTC)
	case TimeFrameYear:
		return time.Date(now.Year()-1, now.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

// Total is one aggregated slice of spending.
type Total struct {
	Name   string
	Amount decimal.Decimal
}

// Filter keeps bills whose due date falls on or after the time frame start.
func Filter(bills []*models.Bill, tf TimeFrame, now time.Time) []*models.Bill {
	start := WindowStart(tf, now)
	var out []*models.Bill
	for _, b := range bills {
		if !b.DueDate.Before(start) {
			out = append(out, b)
		}
	}
	return out
}

// ByCategory sums bill amounts per category, largest first.
func ByCategory(bills []*models.Bill) []Total {
	return sumBy(bills, func(b *models.Bill) string { return string(b.Category) })
}

// BySubcategory sums bill amounts per subcategory, largest first. Bills with
// no subcategory are grouped under "Other".
func BySubcategory(bills []*models.Bill) []Total {
	return sumBy(bills, func(b *models.Bill) string {
		if b.Subcategory == models.SubcategoryNone {
			return string(models.SubcategoryOther)
		}
		return string(b.Subcategory)
	})
}

func sumBy(bills []*models.Bill, key func(*models.Bill) string) []Total {
	sums := make(map[string]decimal.Decimal)
	for _, b := range bills {
		k := key(b)
		sums[k] = sums[k].Add(b.Amount)
	}

	out := make([]Total, 0, len(sums))
	for name, amount := range sums {
		out = append(out, Total{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Amount.Equal(out[j].Amount) {
			return out[i].Amount.GreaterThan(out[j].Amount)
		}
		return out[i].Name < out[j].Name
	})
	return out
}
