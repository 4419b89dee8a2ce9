package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/famdo/internal/coordinator"
)

// DefaultInterval matches how often the chore sweeps are expected to run.
const DefaultInterval = time.Minute

// Refresher runs the overdue and recurrence sweeps.
type Refresher interface {
	Refresh(ctx context.Context) (coordinator.RefreshResult, error)
}

// Scheduler periodically refreshes chore state.
type Scheduler struct {
	mu       sync.RWMutex
	target   Refresher
	interval time.Duration
	logger   *slog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

// New creates a scheduler. A non-positive interval uses DefaultInterval.
func New(target Refresher, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		target:   target,
		interval: interval,
		logger:   logger,
	}
}

// Start runs one refresh immediately, then one per interval until Stop or
// ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.tick(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	res, err := s.target.Refresh(ctx)
	if err != nil {
		s.logger.Error("refresh failed", "error", err)
		return
	}
	s.logger.Debug("refresh", "overdue", res.Overdue, "penalized", res.Penalized, "created", res.Created)
}
