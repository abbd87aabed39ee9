// File: loop/loop.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Loop owns the poller and runs all handle callbacks on one locked OS
// thread. Completion callbacks for dispatched operations are queued in a
// FIFO and drained after fd dispatch, which preserves dispatch order and
// guarantees a completion never fires inside the call that dispatched it.

package loop

import (
	"runtime"
	"sync/atomic"

	"github.com/eapache/queue"
)

// Watcher receives descriptor readiness notifications on the loop thread.
type Watcher interface {
	// OnReadable fires when the descriptor is readable or has hung up.
	OnReadable()

	// OnWritable fires when the descriptor accepts more data.
	OnWritable()
}

// Loop is a single-threaded cooperative event loop. All handles attached
// to a Loop run their callbacks on the goroutine that called Run; no two
// callbacks for the same loop ever execute concurrently.
type Loop struct {
	poller poller

	// completions holds deferred func() callbacks, drained in FIFO
	// order once per iteration. Loop-thread only.
	completions *queue.Queue

	posted  chan func()
	quitCh  chan struct{}
	doneCh  chan struct{}
	running atomic.Bool

	// refs counts ref'd live handles; Run exits when it drops to zero.
	refs atomic.Int64
}

// New creates a loop with a platform poller. On platforms without an
// engine implementation it returns api.ErrWrongPlatform.
func New() (*Loop, error) {
	l := &Loop{
		completions: queue.New(),
		posted:      make(chan func(), 1024),
		quitCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
	p, err := newPoller(l)
	if err != nil {
		return nil, err
	}
	l.poller = p
	return l, nil
}

// AddFD registers a descriptor with the poller. Loop-thread or pre-Run.
func (l *Loop) AddFD(fd int, w Watcher) error {
	return l.poller.add(fd, w)
}

// ModFD updates readable/writable interest for a registered descriptor.
func (l *Loop) ModFD(fd int, read, write bool) error {
	return l.poller.mod(fd, read, write)
}

// RemoveFD unregisters a descriptor.
func (l *Loop) RemoveFD(fd int) error {
	return l.poller.del(fd)
}

// Defer queues fn to run after the current dispatch round, in FIFO order.
// Loop-thread only; this is the completion channel for all dispatched
// write/shutdown/close operations.
func (l *Loop) Defer(fn func()) {
	l.completions.Add(fn)
}

// Post submits fn for execution on the loop thread from any goroutine.
// Returns false if the loop has been stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.quitCh:
		return false
	default:
	}
	l.posted <- fn
	l.poller.wake()
	return true
}

// RefHandle marks one more live handle keeping the loop running.
func (l *Loop) RefHandle() { l.refs.Add(1) }

// UnrefHandle drops one live-handle reference.
func (l *Loop) UnrefHandle() { l.refs.Add(-1) }

// Run processes events until Stop is called or no ref'd handles remain.
// It must be called from exactly one goroutine.
func (l *Loop) Run() error {
	if !l.running.CompareAndSwap(false, true) {
		return nil
	}
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer func() {
		close(l.doneCh)
		l.running.Store(false)
	}()

	for {
		select {
		case <-l.quitCh:
			return nil
		default:
		}

		l.drainPosted()

		timeout := 50 // ms
		if l.completions.Length() > 0 {
			timeout = 0
		}
		if err := l.poller.wait(timeout); err != nil {
			return err
		}

		l.drainPosted()
		l.drainCompletions()

		if l.refs.Load() == 0 && l.completions.Length() == 0 && len(l.posted) == 0 {
			return nil
		}
	}
}

// Stop signals Run to exit and waits for it to return.
func (l *Loop) Stop() {
	select {
	case <-l.quitCh:
	default:
		close(l.quitCh)
		l.poller.wake()
	}
	if l.running.Load() {
		<-l.doneCh
	}
}

// Close releases the poller. Call only after Run has returned.
func (l *Loop) Close() error {
	return l.poller.close()
}

func (l *Loop) drainPosted() {
	for {
		select {
		case fn := <-l.posted:
			fn()
		default:
			return
		}
	}
}

func (l *Loop) drainCompletions() {
	// Completions queued while draining run in the same round; FIFO
	// order across rounds is what the dispatch-order guarantee needs.
	for l.completions.Length() > 0 {
		fn := l.completions.Remove().(func())
		fn()
	}
}
