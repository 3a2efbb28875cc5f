// Package loop provides the single execution context that owns all live state.
//
// Every callback (decoded snapshots, disconnects, reveal ticks, settle timers)
// runs on the goroutine that calls Run, one at a time and in arrival order.
package loop

import (
	"context"
	"sync/atomic"
	"time"
)

// DefaultQueueSize is the number of callbacks that can be queued before Post blocks.
const DefaultQueueSize = 64

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop cancels the callback. It reports whether the callback was still pending.
	Stop() bool
}

// Scheduler schedules callbacks onto the owning execution context.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// Loop serializes callbacks onto one goroutine.
type Loop struct {
	tasks  chan func()
	done   chan struct{}
	idle   func()
	closed atomic.Bool
}

// New creates a loop with the given queue capacity.
func New(queueSize int) *Loop {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Loop{
		tasks: make(chan func(), queueSize),
		done:  make(chan struct{}),
	}
}

// OnIdle registers fn to run on the loop after every callback.
// Must be called before Run.
func (l *Loop) OnIdle(fn func()) {
	l.idle = fn
}

// Post queues fn for execution on the loop. It reports false once the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	if l.closed.Load() {
		return false
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// AfterFunc schedules fn to be posted to the loop after d.
// A timer stopped from the loop goroutine never runs fn afterwards, even if its
// post was already queued.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.stopped.Load() {
				return
			}
			t.fired.Store(true)
			fn()
		})
	})
	return t
}

// Run executes queued callbacks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer func() {
		l.closed.Store(true)
		close(l.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.tasks:
			fn()
			if l.idle != nil {
				l.idle()
			}
		}
	}
}

type loopTimer struct {
	timer   *time.Timer
	stopped atomic.Bool
	fired   atomic.Bool
}

func (t *loopTimer) Stop() bool {
	if t.stopped.Swap(true) {
		return false
	}
	t.timer.Stop()
	return !t.fired.Load()
}
