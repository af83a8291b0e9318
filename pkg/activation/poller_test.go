package activation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/clinickit/pkg/activation"
	"github.com/dmitrymomot/clinickit/pkg/scheduler"
)

var errBackend = errors.New("backend unavailable")

func startPoller(t *testing.T, script []statusReply, opts ...activation.PollerOption) (*scheduler.Manual, *scriptedStatus, *pollRecorder, *activation.PollingSession) {
	t.Helper()
	clock := scheduler.NewManual(epoch)
	status := newScriptedStatus(clock, script...)
	rec := &pollRecorder{}
	p := activation.NewPoller(status, append([]activation.PollerOption{activation.WithScheduler(clock)}, opts...)...)
	s := p.Start(context.Background(), "sub_1", rec.handlers())
	return clock, status, rec, s
}

func TestNewPoller(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { activation.NewPoller(nil) })

	p := activation.NewPoller(newScriptedStatus(scheduler.NewManual(epoch)))
	assert.Equal(t, 3, p.MaxAttempts())
	assert.Equal(t, 5*time.Second, p.Interval())

	p = activation.NewPoller(newScriptedStatus(scheduler.NewManual(epoch)),
		activation.WithMaxAttempts(0),
		activation.WithInterval(-time.Second),
	)
	assert.Equal(t, activation.DefaultMaxAttempts, p.MaxAttempts())
	assert.Equal(t, activation.DefaultPollInterval, p.Interval())
}

func TestPoller_ExhaustsAfterBudget(t *testing.T) {
	t.Parallel()

	clock, status, rec, s := startPoller(t, repeat(pending(), 10))
	assert.Equal(t, activation.PollAwaiting, s.State())

	clock.Advance(4999 * time.Millisecond)
	assert.Equal(t, 0, status.Calls(), "no query before the first interval elapses")

	clock.Advance(time.Millisecond)
	assert.Equal(t, 1, status.Calls())

	clock.Advance(10 * time.Second)
	assert.Equal(t, 3, status.Calls())

	clock.Advance(time.Hour)
	assert.Equal(t, 3, status.Calls(), "no query after the budget is spent")
	assert.Zero(t, clock.Pending())

	times := status.Times()
	require.Len(t, times, 3)
	assert.Equal(t, epoch.Add(5*time.Second), times[0])
	for i := 1; i < len(times); i++ {
		assert.GreaterOrEqual(t, times[i].Sub(times[i-1]), 5*time.Second)
	}

	results := rec.Results()
	require.Len(t, results, 1)
	assert.Equal(t, activation.PollExhausted, results[0].State)
	assert.Equal(t, 3, results[0].Attempts)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, rec.Attempts())

	select {
	case <-s.Done():
	default:
		t.Fatal("session should be done")
	}
	res, ok := s.Result()
	require.True(t, ok)
	assert.Equal(t, activation.PollExhausted, res.State)
}

func TestPoller_EarlySuccess(t *testing.T) {
	t.Parallel()

	clock, status, rec, s := startPoller(t, []statusReply{pending(), active()})

	clock.Advance(10 * time.Second)
	assert.Equal(t, 2, status.Calls())
	assert.Equal(t, activation.PollConfirmed, s.State())

	clock.Advance(time.Minute)
	assert.Equal(t, 2, status.Calls(), "confirmed session stops polling")

	results := rec.Results()
	require.Len(t, results, 1)
	assert.Equal(t, activation.PollConfirmed, results[0].State)
	assert.Equal(t, 2, results[0].Attempts)
	assert.True(t, results[0].Subscription.IsActive())
}

func TestPoller_ActiveOnLastAttempt(t *testing.T) {
	t.Parallel()

	clock, status, rec, _ := startPoller(t, []statusReply{pending(), pending(), active()})
	clock.Advance(15 * time.Second)

	assert.Equal(t, 3, status.Calls())
	results := rec.Results()
	require.Len(t, results, 1)
	assert.Equal(t, activation.PollConfirmed, results[0].State)
}

func TestPoller_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		script []statusReply
		want   activation.PollState
	}{
		{"all errors", repeat(failure(errBackend), 3), activation.PollErrored},
		{"error on last attempt", []statusReply{pending(), pending(), failure(errBackend)}, activation.PollErrored},
		{"earlier errors then pending", []statusReply{failure(errBackend), failure(errBackend), pending()}, activation.PollExhausted},
		{"error then active", []statusReply{failure(errBackend), active()}, activation.PollConfirmed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			clock, _, rec, _ := startPoller(t, tt.script)
			clock.Advance(time.Minute)

			results := rec.Results()
			require.Len(t, results, 1)
			assert.Equal(t, tt.want, results[0].State)
			if tt.want == activation.PollErrored {
				assert.ErrorIs(t, results[0].Err, errBackend)
			} else {
				assert.NoError(t, results[0].Err)
			}
		})
	}
}

func TestPoller_CustomBudget(t *testing.T) {
	t.Parallel()

	clock, status, rec, _ := startPoller(t, nil,
		activation.WithMaxAttempts(5),
		activation.WithInterval(time.Second),
	)
	clock.Advance(10 * time.Second)

	assert.Equal(t, 5, status.Calls())
	results := rec.Results()
	require.Len(t, results, 1)
	assert.Equal(t, activation.PollExhausted, results[0].State)
	assert.Equal(t, 5, results[0].Attempts)
}

func TestPollingSession_Cancel(t *testing.T) {
	t.Parallel()

	t.Run("before first attempt", func(t *testing.T) {
		t.Parallel()
		clock, status, rec, s := startPoller(t, nil)

		clock.Advance(2 * time.Second)
		assert.True(t, s.Cancel())
		assert.False(t, s.Cancel(), "second cancel is a no-op")

		clock.Advance(time.Minute)
		assert.Equal(t, 0, status.Calls())
		assert.Empty(t, rec.Results())
		assert.Empty(t, rec.Attempts())
		assert.Equal(t, activation.PollCancelled, s.State())

		res, ok := s.Result()
		require.True(t, ok)
		assert.Equal(t, activation.PollCancelled, res.State)
	})

	t.Run("between attempts", func(t *testing.T) {
		t.Parallel()
		clock, status, rec, s := startPoller(t, nil)

		clock.Advance(5 * time.Second)
		require.Equal(t, 1, status.Calls())
		require.True(t, s.Cancel())

		clock.Advance(time.Minute)
		assert.Equal(t, 1, status.Calls())
		assert.Empty(t, rec.Results())
		assert.Equal(t, 1, s.Attempt())
	})

	t.Run("after terminal state", func(t *testing.T) {
		t.Parallel()
		clock, _, rec, s := startPoller(t, []statusReply{active()})
		clock.Advance(5 * time.Second)

		assert.False(t, s.Cancel())
		assert.Equal(t, activation.PollConfirmed, s.State())
		assert.Len(t, rec.Results(), 1)
	})

	t.Run("in-flight query", func(t *testing.T) {
		t.Parallel()
		clock := scheduler.NewManual(epoch)
		status := &blockingStatus{entered: make(chan struct{}, 1), exited: make(chan error, 1)}
		rec := &pollRecorder{}
		s := activation.NewPoller(status, activation.WithScheduler(clock)).
			Start(context.Background(), "sub_1", rec.handlers())

		advanced := make(chan struct{})
		go func() {
			defer close(advanced)
			clock.Advance(5 * time.Second)
		}()

		<-status.entered
		require.True(t, s.Cancel())
		assert.ErrorIs(t, <-status.exited, context.Canceled)
		<-advanced

		clock.Advance(time.Minute)
		assert.Empty(t, rec.Results())
		assert.Equal(t, activation.PollCancelled, s.State())
	})
}
