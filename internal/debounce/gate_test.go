package debounce

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_SingleSchedule_RunsAfterWindow(t *testing.T) {
	// Given: a gate with a short window
	g := New(30 * time.Millisecond)
	defer g.Stop()

	// When: a callback is scheduled
	done := make(chan struct{})
	start := time.Now()
	g.Schedule(func() { close(done) })

	// Then: it runs once the window has elapsed
	select {
	case <-done:
		assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for debounced callback")
	}
}

func TestGate_Burst_RunsOnlyLastCallback(t *testing.T) {
	// Given: a gate with a 50ms window
	g := New(50 * time.Millisecond)
	defer g.Stop()

	var mu sync.Mutex
	var ran []int

	// When: five callbacks are scheduled 5ms apart
	for i := 1; i <= 5; i++ {
		i := i
		g.Schedule(func() {
			mu.Lock()
			ran = append(ran, i)
			mu.Unlock()
		})
		time.Sleep(5 * time.Millisecond)
	}

	// Then: exactly one callback ran, the last one
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(ran) == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{5}, ran)
}

func TestGate_Cancel_DropsPendingCallback(t *testing.T) {
	// Given: a scheduled callback
	g := New(30 * time.Millisecond)
	defer g.Stop()

	var calls atomic.Int32
	g.Schedule(func() { calls.Add(1) })
	require.True(t, g.Pending())

	// When: it is cancelled before the window elapses
	g.Cancel()

	// Then: it never runs
	assert.False(t, g.Pending())
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestGate_ScheduleAfterCancel_StillWorks(t *testing.T) {
	g := New(20 * time.Millisecond)
	defer g.Stop()

	var calls atomic.Int32
	g.Schedule(func() { calls.Add(100) })
	g.Cancel()
	g.Schedule(func() { calls.Add(1) })

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestGate_Stop_IsIdempotentAndDisablesSchedule(t *testing.T) {
	// Given: a stopped gate
	g := New(10 * time.Millisecond)
	g.Stop()
	g.Stop()

	// When: scheduling afterwards
	var calls atomic.Int32
	g.Schedule(func() { calls.Add(1) })

	// Then: nothing runs
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
	assert.False(t, g.Pending())
}

func TestGate_PendingClearsAfterFire(t *testing.T) {
	g := New(10 * time.Millisecond)
	defer g.Stop()

	done := make(chan struct{})
	g.Schedule(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for callback")
	}
	assert.False(t, g.Pending())
}

func TestNew_NonPositiveWindowUsesDefault(t *testing.T) {
	assert.Equal(t, DefaultWindow, New(0).Window())
	assert.Equal(t, DefaultWindow, New(-time.Second).Window())
	assert.Equal(t, 5*time.Millisecond, New(5*time.Millisecond).Window())
}

func TestGate_NilCallbackIgnored(t *testing.T) {
	g := New(10 * time.Millisecond)
	defer g.Stop()

	g.Schedule(nil)
	assert.False(t, g.Pending())
}

func TestGate_CallbackMayReschedule(t *testing.T) {
	// Given: a callback that schedules a follow-up on the same gate
	g := New(10 * time.Millisecond)
	defer g.Stop()

	done := make(chan struct{})
	g.Schedule(func() {
		g.Schedule(func() { close(done) })
	})

	// Then: the follow-up runs without deadlocking
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for rescheduled callback")
	}
}
