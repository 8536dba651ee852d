package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger { l, _ := zap.NewDevelopment(); return l }

func counter() (*int32, TaskFn) {
	var n int32
	return &n, func() { atomic.AddInt32(&n, 1) }
}

func TestAddTicker_Fires(t *testing.T) {
	s := New(testLogger())
	defer s.Stop()

	n, fn := counter()
	s.AddTicker("tick", 20*time.Millisecond, fn)

	time.Sleep(120 * time.Millisecond)
	assert.GreaterOrEqual(t, atomic.LoadInt32(n), int32(3))
}

func TestAddTicker_ReplaceStopsOld(t *testing.T) {
	s := New(testLogger())
	defer s.Stop()

	old, oldFn := counter()
	s.AddTicker("task", 20*time.Millisecond, oldFn)
	time.Sleep(30 * time.Millisecond)

	fresh, freshFn := counter()
	s.AddTicker("task", 20*time.Millisecond, freshFn)
	time.Sleep(80 * time.Millisecond)

	snap := atomic.LoadInt32(old)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, snap, atomic.LoadInt32(old), "replaced ticker must stop")
	assert.Positive(t, atomic.LoadInt32(fresh))
}

func TestAddDelay_FiresOnce(t *testing.T) {
	s := New(testLogger())
	defer s.Stop()

	n, fn := counter()
	s.AddDelay("once", 30*time.Millisecond, fn)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(n))
}

func TestAddDelay_ReplaceCancelsOld(t *testing.T) {
	s := New(testLogger())
	defer s.Stop()

	old, oldFn := counter()
	fresh, freshFn := counter()
	s.AddDelay("d", 500*time.Millisecond, oldFn)
	s.AddDelay("d", 30*time.Millisecond, freshFn)

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(old))
	assert.Equal(t, int32(1), atomic.LoadInt32(fresh))
}

func TestRemove(t *testing.T) {
	s := New(testLogger())
	defer s.Stop()

	tick, tickFn := counter()
	s.AddTicker("tick", 20*time.Millisecond, tickFn)
	delayed, delayedFn := counter()
	s.AddDelay("later", 100*time.Millisecond, delayedFn)

	time.Sleep(50 * time.Millisecond)
	s.Remove("tick")
	s.Remove("later")
	s.Remove("never-registered")

	snap := atomic.LoadInt32(tick)
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, snap, atomic.LoadInt32(tick), "ticker must stop after Remove")
	assert.Zero(t, atomic.LoadInt32(delayed))
}

func TestStop_StopsAllTickersAndIsIdempotent(t *testing.T) {
	s := New(testLogger())

	a, aFn := counter()
	b, bFn := counter()
	s.AddTicker("a", 20*time.Millisecond, aFn)
	s.AddTicker("b", 20*time.Millisecond, bFn)
	time.Sleep(50 * time.Millisecond)

	s.Stop()
	s.Stop()
	// Goroutines need a beat to observe the stop signal.
	time.Sleep(30 * time.Millisecond)
	snapA, snapB := atomic.LoadInt32(a), atomic.LoadInt32(b)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, snapA, atomic.LoadInt32(a))
	assert.Equal(t, snapB, atomic.LoadInt32(b))
}

func TestListTickers_SortedAndTracked(t *testing.T) {
	s := New(testLogger())
	defer s.Stop()

	require.Empty(t, s.ListTickers())
	s.AddTicker("beta", time.Hour, func() {})
	s.AddTicker("alpha", time.Hour, func() {})
	assert.Equal(t, []string{"alpha", "beta"}, s.ListTickers())

	s.Remove("alpha")
	assert.Equal(t, []string{"beta"}, s.ListTickers())
}

func TestTicker_SurvivesPanic(t *testing.T) {
	s := New(testLogger())
	defer s.Stop()

	var runs int32
	s.AddTicker("panicky", 20*time.Millisecond, func() {
		atomic.AddInt32(&runs, 1)
		panic("oops")
	})
	time.Sleep(90 * time.Millisecond)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&runs), int32(2), "ticker keeps firing after a panic")
}
