// Package schedule runs the periodic reconciliation sweep. The bills view
// reconciles on every load, but a month can roll over or a due date arrive
// while nobody is looking; the sweep re-evaluates the current month on a
// fixed interval so auto-pay marking never waits for a page load.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/DrewDeMo/finance/internal/billing"
	"github.com/DrewDeMo/finance/internal/notify"
	"github.com/DrewDeMo/finance/internal/storage"
)

// Sweeper periodically runs the billing cycle for every known user.
type Sweeper struct {
	engine *billing.Engine
	store  storage.Store
	feed   *notify.Feed
	logger *slog.Logger
	cron   *cron.Cron
}

// NewSweeper creates a sweeper over the given engine and store. Notifications
// raised during a sweep land in the user's feed (deduplicated there) and the
// structured log.
func NewSweeper(engine *billing.Engine, store storage.Store, feed *notify.Feed, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		engine: engine,
		store:  store,
		feed:   feed,
		logger: logger,
		cron:   cron.New(),
	}
}

// Start schedules the sweep at the given interval and starts the cron runner.
func (s *Sweeper) Start(interval time.Duration) error {
	spec := fmt.Sprintf("@every %ds", int(interval.Seconds()))
	if _, err := s.cron.AddFunc(spec, s.RunOnce); err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}
	s.cron.Start()
	s.logger.Info("Reconciliation sweep scheduled", "interval", interval)
	return nil
}

// Stop halts the cron runner and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunOnce executes a single sweep across all users with bills.
func (s *Sweeper) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	userIDs, err := s.store.ListUserIDs(ctx)
	if err != nil {
		s.logger.Error("Sweep could not list users", "error", err)
		return
	}

	now := time.Now()
	for _, userID := range userIDs {
		sink := notify.Tee(s.feed.ForUser(userID), &notify.LogNotifier{Logger: s.logger})
		if _, err := s.engine.LoadMonth(ctx, userID, now, sink); err != nil {
			// Already notified; keep sweeping the remaining users.
			s.logger.Warn("Sweep cycle failed", "user_id", userID, "error", err)
		}
	}
}
