package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	logrusTest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidkik/foldersync/pkg/errors"
	"github.com/sidkik/foldersync/pkg/mirror"
)

const interval = 10 * time.Second

// fakeSynchronizer returns `results` in order, and then empty results. Each
// call is reported on `calls`.
type fakeSynchronizer struct {
	results []mirror.Result
	calls   chan [2]string

	// onCall runs during the pass.
	onCall func(ctx context.Context) error
}

func newFakeSynchronizer(results ...mirror.Result) *fakeSynchronizer {
	return &fakeSynchronizer{results: results, calls: make(chan [2]string, 16)}
}

func (f *fakeSynchronizer) Synchronize(ctx context.Context, source, replica string) mirror.Result {
	var res mirror.Result
	if len(f.results) > 0 {
		res, f.results = f.results[0], f.results[1:]
	}
	if f.onCall != nil {
		res.Err = f.onCall(ctx)
	}
	f.calls <- [2]string{source, replica}
	return res
}

func newScheduler(sync Synchronizer, clock clockwork.Clock) (Scheduler, *logrusTest.Hook) {
	logger, hook := logrusTest.NewNullLogger()
	return Scheduler{
		Synchronizer: sync,
		Source:       "/source",
		Replica:      "/replica",
		Interval:     interval,
		Clock:        clock,
		Log:          logger,
	}, hook
}

func waitForPass(t *testing.T, sync *fakeSynchronizer) {
	select {
	case args := <-sync.calls:
		assert.Equal(t, [2]string{"/source", "/replica"}, args)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for pass")
	}
}

func assertNoPass(t *testing.T, sync *fakeSynchronizer) {
	select {
	case <-sync.calls:
		t.Fatal("unexpected pass")
	case <-time.After(50 * time.Millisecond):
	}
}

func errorMessages(hook *logrusTest.Hook) (msgs []string) {
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.ErrorLevel {
			msgs = append(msgs, entry.Message)
		}
	}
	return msgs
}

func TestRunOnce(t *testing.T) {
	tests := []struct {
		name    string
		result  mirror.Result
		expLogs []*logrus.Entry
	}{
		{
			name:   "Success",
			result: mirror.Result{FilesCopied: 2},
			expLogs: []*logrus.Entry{
				{
					Level:   logrus.DebugLevel,
					Data:    logrus.Fields{"duration": time.Duration(0)},
					Message: "Synchronization complete: 0 folders created, 2 files copied, 0 folders removed, 0 files removed",
				},
			},
		},
		{
			name: "Failure",
			result: mirror.Result{
				Err: errors.WithContext(errors.New("permission denied"), "read source folder"),
			},
			expLogs: []*logrus.Entry{
				{
					Level:   logrus.ErrorLevel,
					Data:    logrus.Fields{},
					Message: "Synchronization failed: read source folder: permission denied",
				},
			},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			sync := newFakeSynchronizer(test.result)
			s, hook := newScheduler(sync, clockwork.NewFakeClock())
			s.Log.(*logrus.Logger).SetLevel(logrus.DebugLevel)

			res := s.RunOnce(context.Background())
			assert.Equal(t, test.result, res)
			waitForPass(t, sync)

			entries := hook.AllEntries()
			require.Len(t, entries, len(test.expLogs))
			for i, exp := range test.expLogs {
				assert.Equal(t, exp.Level, entries[i].Level)
				assert.Equal(t, exp.Data, entries[i].Data)
				assert.Equal(t, exp.Message, entries[i].Message)
			}
		})
	}
}

func TestRunWaitsForInterval(t *testing.T) {
	clock := clockwork.NewFakeClock()
	sync := newFakeSynchronizer()
	s, hook := newScheduler(sync, clock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	// The first pass runs immediately.
	waitForPass(t, sync)

	clock.BlockUntil(1)
	clock.Advance(interval - time.Second)
	assertNoPass(t, sync)

	clock.Advance(time.Second)
	waitForPass(t, sync)

	clock.BlockUntil(1)
	cancel()
	<-done

	entries := hook.AllEntries()
	require.NotEmpty(t, entries)
	assert.Equal(t, "Received interrupt signal, shutting down", entries[len(entries)-1].Message)
	assert.Empty(t, errorMessages(hook))
}

func TestRunContinuesAfterFailure(t *testing.T) {
	clock := clockwork.NewFakeClock()
	sync := newFakeSynchronizer(mirror.Result{Err: errors.New("permission denied")})
	s, hook := newScheduler(sync, clock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	waitForPass(t, sync)
	clock.BlockUntil(1)
	clock.Advance(interval)
	waitForPass(t, sync)
	clock.BlockUntil(1)

	assert.Equal(t, []string{"Synchronization failed: permission denied"}, errorMessages(hook))
}

func TestRunTrigger(t *testing.T) {
	clock := clockwork.NewFakeClock()
	sync := newFakeSynchronizer()
	s, _ := newScheduler(sync, clock)

	trigger := make(chan struct{}, 1)
	s.Trigger = trigger

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)
	waitForPass(t, sync)

	// A change starts a pass without waiting for the interval.
	trigger <- struct{}{}
	waitForPass(t, sync)

	// Once the trigger is closed, passes fall back to the interval.
	clock.BlockUntil(1)
	close(trigger)
	assertNoPass(t, sync)
	clock.Advance(interval)
	waitForPass(t, sync)
}

func TestRunInterruptedDuringPass(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	sync := newFakeSynchronizer()
	sync.onCall = func(ctx context.Context) error {
		cancel()
		return errors.WithContext(ctx.Err(), "add missing entries")
	}
	s, hook := newScheduler(sync, clockwork.NewFakeClock())

	s.Run(ctx)
	waitForPass(t, sync)

	assert.Empty(t, errorMessages(hook))
	entries := hook.AllEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "Received interrupt signal, shutting down", entries[0].Message)
}

func TestOnce(t *testing.T) {
	sync := newFakeSynchronizer(mirror.Result{Err: errors.New("permission denied")})
	s, hook := newScheduler(sync, clockwork.NewFakeClock())

	assert.EqualError(t, s.Once(context.Background()), "permission denied")
	waitForPass(t, sync)
	assert.Equal(t, []string{"Synchronization failed: permission denied"}, errorMessages(hook))

	hook.Reset()
	assert.NoError(t, s.Once(context.Background()))
	waitForPass(t, sync)
	assert.Empty(t, errorMessages(hook))
}

func TestOnceInterruptedDuringPass(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	sync := newFakeSynchronizer()
	sync.onCall = func(ctx context.Context) error {
		cancel()
		return errors.WithContext(ctx.Err(), "add missing entries")
	}
	s, hook := newScheduler(sync, clockwork.NewFakeClock())

	assert.NoError(t, s.Once(ctx))
	waitForPass(t, sync)

	assert.Empty(t, errorMessages(hook))
	entries := hook.AllEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "Received interrupt signal, shutting down", entries[0].Message)
}
