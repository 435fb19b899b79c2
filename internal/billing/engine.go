// Package billing implements the stateful bill workflow that runs on every
// load of the bills view: fetch bills, expand recurring bills into their next
// occurrence, then reconcile auto-pay status and raise due-soon notifications.
//
// The three steps run strictly in order. A fetch failure aborts the whole
// cycle; per-bill failures inside expansion and reconciliation are reported
// and skipped so one bad record never blocks its siblings.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/DrewDeMo/finance/internal/metrics"
	"github.com/DrewDeMo/finance/internal/models"
	"github.com/DrewDeMo/finance/internal/notify"
	"github.com/DrewDeMo/finance/internal/storage"
)

// ErrNoUser is returned when a cycle is attempted without an authenticated
// user. The engine fails closed: no fetch without a valid user ID.
var ErrNoUser = errors.New("no authenticated user")

// dueSoonDays is the look-ahead window for "due soon" notifications.
const dueSoonDays = 3

// Engine runs the fetch / expand / reconcile cycle against a Store.
type Engine struct {
	store  storage.Store
	logger *slog.Logger

	// now is the clock, swappable in tests.
	now func() time.Time
}

// NewEngine creates an engine over the given store.
func NewEngine(store storage.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// LoadMonth runs one full cycle and returns the bill set for the month
// containing target, ordered by due date.
//
// Steps, in dependency order:
//  1. Fetch the user's bills. Expansion scans the full set, so a recurring
//     bill left over from an earlier month still rolls forward no matter
//     which month is being viewed.
//  2. Expand recurring bills whose due date has passed, then re-query the
//     month window so the returned set reflects newly created rows
//     (write-then-reload, never in-memory patching).
//  3. Reconcile auto-pay bills due today and emit due-soon notifications.
func (e *Engine) LoadMonth(ctx context.Context, userID string, target time.Time, sink notify.Notifier) ([]*models.Bill, error) {
	if userID == "" {
		return nil, ErrNoUser
	}

	today := models.Day(e.now())
	first, last := MonthWindow(target)

	all, err := e.store.ListBills(ctx, userID)
	if err != nil {
		metrics.StorageErrors.WithLabelValues("fetch").Inc()
		sink.Notify("Could not load bills, please try again", notify.SeverityError)
		return nil, fmt.Errorf("failed to fetch bills: %w", err)
	}

	e.expand(ctx, all, today, sink)

	bills, err := e.store.ListBillsByRange(ctx, userID, first, last)
	if err != nil {
		metrics.StorageErrors.WithLabelValues("fetch").Inc()
		sink.Notify("Could not load bills, please try again", notify.SeverityError)
		return nil, fmt.Errorf("failed to fetch bills for %s: %w", first.Format("2006-01"), err)
	}

	e.reconcile(ctx, bills, today, sink)

	return bills, nil
}

// expand materializes the next occurrence of every recurring bill whose due
// date has passed, and returns how many new bills were created.
//
// The advancement check always compares against the stored due date of the
// bill just fetched, and the store's (user, name, due date) uniqueness guard
// turns any concurrent double-generation into a harmless no-op.
func (e *Engine) expand(ctx context.Context, bills []*models.Bill, today time.Time, sink notify.Notifier) int {
	created := 0
	for _, bill := range bills {
		if bill.Frequency != models.FrequencyMonthly {
			continue
		}

		nextDue := NextDue(bill.DueDate, today)
		if nextDue.Equal(bill.DueDate) {
			continue
		}

		next := bill.NextOccurrence(nextDue)
		if err := e.store.CreateBill(ctx, next); err != nil {
			if errors.Is(err, storage.ErrDuplicateBill) {
				// Another cycle got there first. Nothing to do.
				e.logger.Debug("Rollover already generated",
					"bill", bill.Name, "due", models.FormatDay(nextDue))
				continue
			}
			metrics.StorageErrors.WithLabelValues("insert").Inc()
			e.logger.Error("Failed to create recurring bill occurrence",
				"bill_id", bill.ID, "bill", bill.Name, "error", err)
			sink.Notify(fmt.Sprintf("Could not roll over %s", bill.Name), notify.SeverityError)
			continue
		}

		created++
		metrics.RolloversGenerated.Inc()
		e.logger.Info("Recurring bill rolled over",
			"bill", bill.Name, "from", models.FormatDay(bill.DueDate),
			"to", models.FormatDay(nextDue))
	}
	return created
}

// NextDue advances due one month at a time until it is on or after today.
// If due is already current, it is returned unchanged.
func NextDue(due, today time.Time) time.Time {
	next := models.Day(due)
	today = models.Day(today)
	for next.Before(today) {
		next = AddMonth(next)
	}
	return next
}

// reconcile marks unpaid automatic bills due today as paid and raises a
// due-soon notification for every unpaid bill due within the next 3 days.
// Update failures are reported per bill; siblings still get processed.
func (e *Engine) reconcile(ctx context.Context, bills []*models.Bill, today time.Time, sink notify.Notifier) {
	for _, bill := range bills {
		if bill.IsAutomatic && bill.Status == models.StatusUnpaid && bill.DueDate.Equal(today) {
			bill.MarkPaid(today)
			if err := e.store.UpdateBill(ctx, bill); err != nil {
				metrics.StorageErrors.WithLabelValues("update").Inc()
				e.logger.Error("Failed to mark automatic bill paid",
					"bill_id", bill.ID, "bill", bill.Name, "error", err)
				sink.Notify(fmt.Sprintf("Could not auto-pay %s", bill.Name), notify.SeverityError)
				bill.MarkUnpaid() // keep the in-memory set honest
				continue
			}
			metrics.AutopayMarked.Inc()
			sink.Notify(fmt.Sprintf("%s was paid automatically", bill.Name), notify.SeveritySuccess)
			e.logger.Info("Automatic bill marked paid", "bill_id", bill.ID, "bill", bill.Name)
		}

		if bill.Status == models.StatusUnpaid {
			days := DaysUntil(today, bill.DueDate)
			if days > 0 && days <= dueSoonDays {
				sink.Notify(fmt.Sprintf("%s is due in %d day(s)", bill.Name, days), notify.SeverityWarning)
			}
		}
	}
}
