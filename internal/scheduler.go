package internal

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DebounceState is the scheduler's view of the next run.
type DebounceState struct {
	PendingRunAt time.Time // zero when nothing is scheduled
	SyncInFlight bool
}

// DebounceScheduler delays a run until the source has been quiet for delay.
// Runs execute one at a time on a dedicated worker goroutine so the event loop
// keeps accepting notifications while git is busy.
type DebounceScheduler struct {
	delay time.Duration
	run   func(context.Context) error
	log   zerolog.Logger
	now   func() time.Time

	mu    sync.Mutex
	state DebounceState

	events chan struct{}
	done   chan error
}

func NewDebounceScheduler(delay time.Duration, run func(context.Context) error, log zerolog.Logger) *DebounceScheduler {
	return &DebounceScheduler{
		delay:  delay,
		run:    run,
		log:    log,
		now:    time.Now,
		events: make(chan struct{}, 1),
		done:   make(chan error, 1),
	}
}

// Notify records a change. It never blocks; bursts collapse into one
// reschedule.
func (s *DebounceScheduler) Notify() {
	select {
	case s.events <- struct{}{}:
	default:
	}
}

func (s *DebounceScheduler) State() DebounceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run blocks until ctx is cancelled and any in-flight run has finished.
func (s *DebounceScheduler) Run(ctx context.Context) error {
	jobs := make(chan struct{})

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.work(ctx, jobs)
		return nil
	})
	g.Go(func() error {
		defer close(jobs)
		return s.loop(ctx, jobs)
	})
	return g.Wait()
}

func (s *DebounceScheduler) loop(ctx context.Context, jobs chan<- struct{}) error {
	timer := time.NewTimer(s.delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-s.events:
			s.schedule(timer)
			s.log.Debug().Time("run_at", s.State().PendingRunAt).Msg("change detected, sync rescheduled")

		case <-timer.C:
			if s.State().SyncInFlight {
				s.schedule(timer)
				s.log.Info().Msg("sync still running, rescheduled")
				continue
			}
			s.mu.Lock()
			s.state = DebounceState{SyncInFlight: true}
			s.mu.Unlock()
			jobs <- struct{}{}

		case err := <-s.done:
			s.mu.Lock()
			s.state.SyncInFlight = false
			s.mu.Unlock()
			if err != nil {
				s.log.Error().Err(err).Msg("sync failed")
			}
			s.schedule(timer)
		}
	}
}

func (s *DebounceScheduler) work(ctx context.Context, jobs <-chan struct{}) {
	for range jobs {
		s.done <- s.run(context.WithoutCancel(ctx))
	}
}

// schedule replaces any pending fire with one at now+delay.
func (s *DebounceScheduler) schedule(timer *time.Timer) {
	s.mu.Lock()
	s.state.PendingRunAt = s.now().Add(s.delay)
	s.mu.Unlock()
	timer.Reset(s.delay)
}
