// Package maintenance runs background housekeeping on a cron schedule.
// Its only job today is sweeping expired cache entries from stores that
// do not expire them natively.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vnykmshr/papertrail/internal/cache"
)

// sweepTimeout bounds a single cache sweep.
const sweepTimeout = 30 * time.Second

// Janitor periodically removes expired cache entries.
type Janitor struct {
	store    cache.Store
	schedule string
	logger   *slog.Logger
	runner   *cron.Cron
}

// NewJanitor creates a Janitor sweeping store on the given cron schedule
// (standard five-field syntax or descriptors like "@every 1h"). Panics if
// store is nil or schedule is empty.
func NewJanitor(store cache.Store, schedule string, logger *slog.Logger) (*Janitor, error) {
	if store == nil {
		panic("maintenance: store cannot be nil")
	}
	if schedule == "" {
		panic("maintenance: schedule cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	j := &Janitor{
		store:    store,
		schedule: schedule,
		logger:   logger.With(slog.String("component", "janitor")),
		runner:   cron.New(),
	}

	if _, err := j.runner.AddFunc(schedule, j.sweep); err != nil {
		return nil, err
	}
	return j, nil
}

// Start begins running scheduled sweeps in the background.
func (j *Janitor) Start() {
	j.logger.Info("cache janitor started", "schedule", j.schedule)
	j.runner.Start()
}

// Stop halts scheduling and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	stopCtx := j.runner.Stop()
	<-stopCtx.Done()
	j.logger.Info("cache janitor stopped")
}

func (j *Janitor) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	removed, err := j.store.DeleteExpired(ctx)
	if err != nil {
		j.logger.Warn("cache sweep failed", "error", err)
		return
	}

	if removed > 0 {
		j.logger.Info("cache sweep completed", "removed", removed)
	} else {
		j.logger.Debug("cache sweep completed, nothing to remove")
	}
}
