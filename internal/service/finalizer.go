package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/habitloop/habitloop/internal/clock"
)

// Finalizer watches for calendar date rollover and closes out the day
// that just ended: every active duration habit without a completion gets
// a zero-minute row, so missed days show up as zeros in the stats.
type Finalizer struct {
	completions *CompletionService
	clock       clock.Clock
	interval    time.Duration
	lastDate    string
}

func NewFinalizer(completions *CompletionService, c clock.Clock, interval time.Duration) *Finalizer {
	return &Finalizer{
		completions: completions,
		clock:       c,
		interval:    interval,
		lastDate:    clock.Today(c),
	}
}

// Run polls until the context is cancelled.
func (f *Finalizer) Run(ctx context.Context) {
	slog.Info("finalizer started", "interval", f.interval)

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("finalizer stopped")
			return
		case <-ticker.C:
			f.Tick()
		}
	}
}

// Tick checks for a date rollover and finalizes the just-ended date.
// Finalization is idempotent, so running twice for the same date is
// harmless.
func (f *Finalizer) Tick() {
	today := clock.Today(f.clock)
	if today == f.lastDate {
		return
	}

	ended := f.lastDate
	f.lastDate = today

	slog.Info("date rollover detected, finalizing", "date", ended)
	f.completions.FinalizeAllUsers(ended)
}
