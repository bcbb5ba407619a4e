package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Scheduler owns the recurring refresh trigger. It optionally runs one
// cycle immediately on Start and then once per interval until Stop.
type Scheduler struct {
	refresher    *Refresher
	interval     time.Duration
	cycleBudget  time.Duration
	runOnStartup bool
	shutdown     chan struct{}
	stopOnce     sync.Once
}

func NewScheduler(refresher *Refresher, interval, cycleBudget time.Duration, runOnStartup bool) *Scheduler {
	return &Scheduler{
		refresher:    refresher,
		interval:     interval,
		cycleBudget:  cycleBudget,
		runOnStartup: runOnStartup,
		shutdown:     make(chan struct{}),
	}
}

// Start begins the scheduler loop. Non-blocking.
func (s *Scheduler) Start() {
	go func() {
		if s.runOnStartup {
			s.runCycle()
		}

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runCycle()
			case <-s.shutdown:
				return
			}
		}
	}()
}

// Stop terminates the loop. A cycle already in flight finishes on its own;
// there is no mid-item cancellation, the next run simply starts from page 1.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.shutdown)
	})
}

func (s *Scheduler) runCycle() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cycleBudget)
	defer cancel()

	if _, err := s.refresher.RunCycle(ctx); err != nil {
		slog.Error("Refresh cycle failed",
			slog.String("type", "scrape"),
			slog.Any("error", err))
	}
}
