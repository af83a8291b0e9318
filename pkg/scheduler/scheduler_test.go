package scheduler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/clinickit/pkg/scheduler"
)

func TestManual_Advance(t *testing.T) {
	t.Parallel()

	start := time.Unix(1000, 0)

	t.Run("fires only due callbacks", func(t *testing.T) {
		t.Parallel()
		clock := scheduler.NewManual(start)

		var fired []string
		clock.AfterFunc(5*time.Second, func() { fired = append(fired, "a") })
		clock.AfterFunc(10*time.Second, func() { fired = append(fired, "b") })

		clock.Advance(4 * time.Second)
		assert.Empty(t, fired)

		clock.Advance(time.Second)
		assert.Equal(t, []string{"a"}, fired)
		assert.Equal(t, start.Add(5*time.Second), clock.Now())

		clock.Advance(5 * time.Second)
		assert.Equal(t, []string{"a", "b"}, fired)
		assert.Equal(t, 0, clock.Pending())
	})

	t.Run("callbacks see their own deadline as now", func(t *testing.T) {
		t.Parallel()
		clock := scheduler.NewManual(start)

		var at time.Time
		clock.AfterFunc(3*time.Second, func() { at = clock.Now() })
		clock.Advance(time.Minute)

		assert.Equal(t, start.Add(3*time.Second), at)
		assert.Equal(t, start.Add(time.Minute), clock.Now())
	})

	t.Run("chained callbacks inside the window run", func(t *testing.T) {
		t.Parallel()
		clock := scheduler.NewManual(start)

		count := 0
		var tick func()
		tick = func() {
			count++
			if count < 3 {
				clock.AfterFunc(5*time.Second, tick)
			}
		}
		clock.AfterFunc(5*time.Second, tick)

		clock.Advance(12 * time.Second)
		assert.Equal(t, 2, count)

		clock.Advance(3 * time.Second)
		assert.Equal(t, 3, count)
	})

	t.Run("equal deadlines fire in scheduling order", func(t *testing.T) {
		t.Parallel()
		clock := scheduler.NewManual(start)

		var order []int
		for i := range 3 {
			clock.AfterFunc(time.Second, func() { order = append(order, i) })
		}
		clock.Advance(time.Second)
		assert.Equal(t, []int{0, 1, 2}, order)
	})
}

func TestManual_Stop(t *testing.T) {
	t.Parallel()
	clock := scheduler.NewManual(time.Unix(0, 0))

	fired := false
	timer := clock.AfterFunc(time.Second, func() { fired = true })
	require.Equal(t, 1, clock.Pending())

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())
	assert.Equal(t, 0, clock.Pending())

	clock.Advance(time.Hour)
	assert.False(t, fired)
}

func TestReal_AfterFunc(t *testing.T) {
	t.Parallel()
	s := scheduler.NewReal()

	done := make(chan struct{})
	s.AfterFunc(10*time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callback did not fire")
	}

	timer := s.AfterFunc(time.Hour, func() { t.Error("stopped timer fired") })
	assert.True(t, timer.Stop())
}
