// Package scheduler repeatedly mirrors the source into the replica, waiting a
// fixed interval between passes.
package scheduler

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/sidkik/foldersync/pkg/mirror"
)

// Synchronizer runs a single pass. It's implemented by mirror.Reconciler.
type Synchronizer interface {
	Synchronize(ctx context.Context, source, replica string) mirror.Result
}

// Scheduler runs passes one after another until its context is cancelled.
type Scheduler struct {
	Synchronizer Synchronizer
	Source       string
	Replica      string

	// Interval is the time between the end of one pass and the start of the
	// next.
	Interval time.Duration

	// Trigger, if set, starts the next pass without waiting for the rest of
	// the interval. Passes never overlap: a trigger that arrives during a pass
	// is only acted on after the pass finishes.
	Trigger <-chan struct{}

	Clock clockwork.Clock
	Log   logrus.FieldLogger
}

// Run runs a pass immediately, and then again after every interval. It
// returns once `ctx` is cancelled.
func (s Scheduler) Run(ctx context.Context) {
	trigger := s.Trigger
	for {
		s.RunOnce(ctx)

		var ok bool
		if trigger, ok = s.wait(ctx, trigger); !ok {
			s.logShutdown()
			return
		}
	}
}

// Once runs a single pass and returns its error. A pass that's cut short
// because `ctx` was cancelled is treated as a shutdown rather than a failure.
func (s Scheduler) Once(ctx context.Context) error {
	res := s.RunOnce(ctx)
	if ctx.Err() != nil {
		s.logShutdown()
		return nil
	}
	return res.Err
}

func (s Scheduler) logShutdown() {
	s.Log.Info("Received interrupt signal, shutting down")
}

// RunOnce runs a single pass and logs its outcome. Failures are logged
// rather than returned, since the next pass retries from scratch.
func (s Scheduler) RunOnce(ctx context.Context) mirror.Result {
	start := s.Clock.Now()
	res := s.Synchronizer.Synchronize(ctx, s.Source, s.Replica)
	switch {
	case res.Err != nil && ctx.Err() != nil:
		s.Log.WithError(res.Err).Debug("Synchronization interrupted")
	case res.Err != nil:
		s.Log.Errorf("Synchronization failed: %s", res.Err)
	default:
		s.Log.WithField("duration", s.Clock.Since(start)).Debugf(
			"Synchronization complete: %s", res)
	}
	return res
}

// wait blocks until the next pass should start. It returns false if `ctx`
// was cancelled. The returned trigger is nil once the trigger channel has
// been closed.
func (s Scheduler) wait(ctx context.Context, trigger <-chan struct{}) (<-chan struct{}, bool) {
	timer := s.Clock.NewTimer(s.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return trigger, false
		case <-timer.Chan():
			return trigger, true
		case _, ok := <-trigger:
			if !ok {
				// Fall back to polling.
				trigger = nil
				continue
			}
			return trigger, true
		}
	}
}
