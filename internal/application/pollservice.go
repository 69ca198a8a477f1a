package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrInvalidInterval is returned when a non-positive poll interval is requested.
var ErrInvalidInterval = errors.New("poll interval must be positive")

// CycleRunner runs one fetch cycle. FetchService satisfies it.
type CycleRunner interface {
	Refresh(ctx context.Context) (*CycleResult, bool)
}

// PollService drives a CycleRunner on a fixed interval. The loop is
// sleep, fire, sleep, and so on; it never fires on start.
//
// Cancelling a loop only affects the next fire. A cycle already running
// completes against an uncancelled context.
type PollService struct {
	runner CycleRunner

	mu       sync.Mutex
	parent   context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	interval time.Duration
}

// NewPollService creates a stopped PollService.
func NewPollService(runner CycleRunner) *PollService {
	return &PollService{runner: runner}
}

// Start cancels any running loop and starts a new one with the given
// interval. The loop ends when ctx is cancelled or Stop is called.
func (s *PollService) Start(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.parent = ctx
	s.cancel = cancel
	s.done = done
	s.interval = interval

	go s.loop(loopCtx, interval, done)

	slog.Info("poll service started", "interval", interval)
	return nil
}

// SetInterval restarts the loop with a new interval, keeping the context the
// loop was last started with. It starts nothing when the service was never started.
func (s *PollService) SetInterval(interval time.Duration) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}

	s.mu.Lock()
	parent := s.parent
	s.mu.Unlock()

	if parent == nil {
		return errors.New("poll service was never started")
	}
	return s.Start(parent, interval)
}

// Stop ends the current loop. Calling Stop on a stopped service is a no-op.
func (s *PollService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
	slog.Info("poll service stopped")
}

// Running reports whether a loop is active.
func (s *PollService) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Interval returns the interval of the most recent Start.
func (s *PollService) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Done returns a channel closed when the most recently started loop exits,
// or nil when the service was never started.
func (s *PollService) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

func (s *PollService) loop(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		// The timer and cancellation can become ready together.
		if ctx.Err() != nil {
			return
		}

		if _, ran := s.runner.Refresh(context.WithoutCancel(ctx)); !ran {
			slog.Debug("scheduled fire skipped, cycle in flight")
		}

		timer.Reset(interval)
	}
}
