// File: stream/wrap.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Wrap binds one engine stream handle to a host. The handle is owned
// exclusively by its Wrap for the wrap's lifetime and is torn down only
// through Close; every callback runs on the handle's loop thread.

package stream

import (
	"syscall"

	"github.com/momentics/hioload-stream/api"
	"github.com/momentics/hioload-stream/control"
	"github.com/momentics/hioload-stream/pool"
)

// Host observes read events delivered by the adapter. Errors and EOF
// arrive through the same path as data, exactly once per event.
type Host interface {
	OnRead(ev ReadEvent)
}

// Registry instantiates not-yet-connected local stream objects for
// ancillary handle transfer.
type Registry interface {
	// Instantiate allocates a new unconnected Wrap of the given kind on
	// the same loop as parent. A nil Wrap with an error is an ordinary
	// allocation failure, not a protocol violation.
	Instantiate(kind api.HandleKind, parent *Wrap) (*Wrap, error)
}

// Wrap is the duplex-stream adapter instance.
type Wrap struct {
	handle   api.StreamHandle
	host     Host
	registry Registry
	alloc    api.AllocCallback
	release  func([]byte)
	counters *control.Counters
}

// Option customizes a Wrap.
type Option func(*Wrap)

// WithRegistry sets the kind registry used for ancillary handle transfer.
func WithRegistry(r Registry) Option {
	return func(w *Wrap) { w.registry = r }
}

// WithAllocHook overrides the buffer allocation hook. The default pool
// recycling is disabled; buffers handed out by alloc stay with the caller.
func WithAllocHook(alloc api.AllocCallback) Option {
	return func(w *Wrap) {
		w.alloc = alloc
		w.release = nil
	}
}

// WithBufferHooks sets the allocation hook together with a matching
// release hook, invoked once the read callback holding the buffer has
// returned.
func WithBufferHooks(alloc api.AllocCallback, release func([]byte)) Option {
	return func(w *Wrap) {
		w.alloc = alloc
		w.release = release
	}
}

// WithCounters routes byte accounting to a specific counter set.
func WithCounters(c *control.Counters) Option {
	return func(w *Wrap) { w.counters = c }
}

// New wraps an engine stream handle. host may be nil and set later via
// SetHost, which is how transferred companion streams start out.
func New(h api.StreamHandle, host Host, opts ...Option) *Wrap {
	w := &Wrap{
		handle:   h,
		host:     host,
		counters: control.Default(),
	}
	w.alloc = func(suggested int) []byte {
		return pool.Default().Get(suggested)
	}
	w.release = func(buf []byte) {
		pool.Default().Put(buf)
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// SetHost installs the read observer. Must be set before ReadStart.
func (w *Wrap) SetHost(host Host) { w.host = host }

// Handle returns the underlying engine handle.
func (w *Wrap) Handle() api.StreamHandle { return w.handle }

// FD returns the handle's descriptor, or -1 when absent.
func (w *Wrap) FD() int {
	if w.handle == nil {
		return -1
	}
	return w.handle.FD()
}

// IsAlive reports whether the handle is open and not closing.
func (w *Wrap) IsAlive() bool {
	return w.handle != nil && w.handle.IsAlive()
}

// IsClosing reports whether the handle has begun closing.
func (w *Wrap) IsClosing() bool {
	return w.handle == nil || w.handle.IsClosing()
}

// IsIPC reports whether the channel can carry ancillary handles.
func (w *Wrap) IsIPC() bool { return w.handle.IsIPC() }

// Ref marks the handle as keeping the loop alive.
func (w *Wrap) Ref() { w.handle.Ref() }

// Unref releases the loop-liveness mark.
func (w *Wrap) Unref() { w.handle.Unref() }

// HasRef reports the loop-liveness mark.
func (w *Wrap) HasRef() bool { return w.handle.HasRef() }

// Close tears down the handle. Still-pending write and shutdown
// completions fire with -ECANCELED before cb runs.
func (w *Wrap) Close(cb api.CloseCallback) { w.handle.Close(cb) }

// WriteQueueSize reports bytes queued but not yet flushed by the engine.
// Best-effort: an absent or closed handle yields zero, never an error.
func (w *Wrap) WriteQueueSize() int {
	if w.handle == nil {
		return 0
	}
	return w.handle.WriteQueueSize()
}

// SetBlocking toggles blocking mode on the descriptor: a passthrough,
// rejected with -EINVAL once the handle is no longer alive.
func (w *Wrap) SetBlocking(enable bool) int {
	if !w.IsAlive() {
		return api.ErrnoStatus(syscall.EINVAL)
	}
	return w.handle.SetBlocking(enable)
}
