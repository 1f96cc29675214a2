package sched

import (
	"sync"
	"time"
)

// TimerScheduler runs delayed work on plain timers. Swapping this for a
// durable implementation (persisted transitions, or a real payment webhook)
// should not touch the state machines that schedule through it.
type TimerScheduler struct {
	mu     sync.Mutex
	timers map[*time.Timer]struct{}
}

func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{timers: make(map[*time.Timer]struct{})}
}

// After schedules fn once after d and returns a cancel. Cancel after firing
// is a no-op.
func (s *TimerScheduler) After(d time.Duration, fn func()) func() {
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		s.forget(t)
		fn()
	})

	s.mu.Lock()
	s.timers[t] = struct{}{}
	s.mu.Unlock()

	return func() {
		t.Stop()
		s.forget(t)
	}
}

// Stop cancels all outstanding work. Used on shutdown.
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for t := range s.timers {
		t.Stop()
	}
	s.timers = make(map[*time.Timer]struct{})
}

func (s *TimerScheduler) forget(t *time.Timer) {
	s.mu.Lock()
	delete(s.timers, t)
	s.mu.Unlock()
}
