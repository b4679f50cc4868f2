package internal

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// IntervalRunner calls run once at start and then on every tick. Errors are
// logged and never stop the ticker.
type IntervalRunner struct {
	interval time.Duration
	run      func(context.Context) error
	log      zerolog.Logger
}

func NewIntervalRunner(interval time.Duration, run func(context.Context) error, log zerolog.Logger) *IntervalRunner {
	return &IntervalRunner{interval: interval, run: run, log: log}
}

// Run blocks until ctx is cancelled. A run in progress is not interrupted.
func (r *IntervalRunner) Run(ctx context.Context) error {
	r.log.Info().Dur("interval", r.interval).Msg("interval sync started")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("interval sync stopped")
			return nil
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *IntervalRunner) tick(ctx context.Context) {
	if err := r.run(context.WithoutCancel(ctx)); err != nil {
		r.log.Error().Err(err).Msg("sync failed")
	}
}
