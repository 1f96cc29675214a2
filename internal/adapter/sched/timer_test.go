package sched

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAfterFires(t *testing.T) {
	s := NewTimerScheduler()
	fired := make(chan struct{})
	s.After(time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
}

func TestCancelPreventsFiring(t *testing.T) {
	s := NewTimerScheduler()
	var fired atomic.Bool
	cancel := s.After(20*time.Millisecond, func() { fired.Store(true) })
	cancel()

	time.Sleep(50 * time.Millisecond)
	assert.False(t, fired.Load())

	// Cancelling twice is harmless.
	cancel()
}

func TestStopCancelsEverything(t *testing.T) {
	s := NewTimerScheduler()
	var count atomic.Int32
	for i := 0; i < 5; i++ {
		s.After(20*time.Millisecond, func() { count.Add(1) })
	}
	s.Stop()

	time.Sleep(50 * time.Millisecond)
	require.Equal(t, int32(0), count.Load())
}
