package session

import (
	"sync"
	"sync/atomic"
	"time"
)

// Timer is an owned handle to a scheduled callback.
type Timer interface {
	// Stop cancels the timer. A callback that has not started yet will not run.
	Stop()
}

// Scheduler runs callbacks later on the session's event loop.
type Scheduler interface {
	// Every runs fn every d until the returned timer is stopped.
	Every(d time.Duration, fn func()) Timer
	// After runs fn once after d unless the returned timer is stopped first.
	After(d time.Duration, fn func()) Timer
}

// LoopScheduler fires timers in background goroutines and hands the callbacks to post,
// which must run them on the event loop (for example via tea.Program.Send).
type LoopScheduler struct {
	post func(func())
}

// NewLoopScheduler creates a LoopScheduler that delivers callbacks through post.
func NewLoopScheduler(post func(func())) *LoopScheduler {
	return &LoopScheduler{post: post}
}

type loopTimer struct {
	stopped atomic.Bool
	once    sync.Once
	cancel  func()
}

func (t *loopTimer) Stop() {
	t.stopped.Store(true)
	t.once.Do(t.cancel)
}

// guard drops callbacks that were posted before Stop but delivered after it.
func (t *loopTimer) guard(fn func()) func() {
	return func() {
		if !t.stopped.Load() {
			fn()
		}
	}
}

// After implements [Scheduler].
func (s *LoopScheduler) After(d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	timer := time.AfterFunc(d, func() {
		if !t.stopped.Load() {
			s.post(t.guard(fn))
		}
	})
	t.cancel = func() { timer.Stop() }
	return t
}

// Every implements [Scheduler].
func (s *LoopScheduler) Every(d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	t.cancel = func() {
		ticker.Stop()
		close(done)
	}

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if t.stopped.Load() {
					return
				}
				s.post(t.guard(fn))
			}
		}
	}()
	return t
}
