// File: api/handle.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Handle lifecycle and duplex-stream operation contracts. All callbacks
// fire on the owning loop's thread; no method here may block it.

package api

// HandleKind identifies the concrete type behind a stream handle. The set
// of kinds transferable over an IPC channel is closed: TCP streams, named
// pipes and UDP sockets. Anything else arriving as a pending handle is a
// protocol violation.
type HandleKind int

const (
	KindUnknown HandleKind = iota
	KindTCP
	KindNamedPipe
	KindUDP
)

// String returns the kind name for diagnostics.
func (k HandleKind) String() string {
	switch k {
	case KindTCP:
		return "tcp"
	case KindNamedPipe:
		return "pipe"
	case KindUDP:
		return "udp"
	default:
		return "unknown"
	}
}

// AllocCallback supplies the destination buffer for the next inbound read.
// suggested is a soft size hint from the engine. Returning a zero-length
// buffer deliberately signals backpressure; the engine reports it to the
// read callback as -ENOBUFS. The returned buffer is lent exclusively to
// the engine until the matching read callback fires.
type AllocCallback func(suggested int) []byte

// ReadCallback delivers one read event. nread is a positive byte count,
// zero for "no data this round", StatusEOF, or a negative status code.
// buf is the buffer from the preceding AllocCallback, valid only for the
// duration of the call.
type ReadCallback func(nread int, buf []byte)

// CompletionCallback delivers the final status of a dispatched write or
// shutdown operation. It fires exactly once per dispatched operation.
type CompletionCallback func(status int)

// CloseCallback fires exactly once, on a later loop iteration, after a
// handle has fully closed and released its resources.
type CloseCallback func()

// Handle is the lifecycle surface shared by every engine handle type.
type Handle interface {
	// Kind reports the concrete handle kind.
	Kind() HandleKind

	// IsAlive reports whether the handle is open and not closing.
	IsAlive() bool

	// IsClosing reports whether Close has been requested.
	IsClosing() bool

	// Close tears the handle down. Pending operation completions fire
	// with -ECANCELED before cb. Closing an already-closing handle is a
	// no-op and cb is dropped.
	Close(cb CloseCallback)

	// Ref and Unref control whether this handle keeps the loop running.
	Ref()
	Unref()
	HasRef() bool

	// FD returns the underlying descriptor, or -1 when absent.
	FD() int
}

// StreamHandle is the engine's duplex byte-stream surface. All operations
// return StatusOK or a negative status code; none of them block.
type StreamHandle interface {
	Handle

	// ReadStart arms readable notifications. alloc runs before every
	// read, read after it, until ReadStop or close.
	ReadStart(alloc AllocCallback, read ReadCallback) int

	// ReadStop disarms readable notifications. Idempotent.
	ReadStop() int

	// TryWrite attempts an immediate flush of bufs without queuing.
	// Returns bytes written (possibly short), or a negative status.
	// It never queues and never blocks; -EAGAIN means zero progress.
	TryWrite(bufs [][]byte) int

	// Write queues bufs for asynchronous writing. When send is non-nil
	// its descriptor travels inline with the first byte of the payload
	// (IPC channels only). done fires exactly once after a successful
	// dispatch, on a later loop iteration, in dispatch order.
	Write(bufs [][]byte, send StreamHandle, done CompletionCallback) int

	// Shutdown half-closes the write side once all queued writes have
	// drained. done fires exactly once after a successful dispatch.
	Shutdown(done CompletionCallback) int

	// WriteQueueSize reports bytes queued but not yet flushed. Returns
	// zero when the handle is closed; this is a best-effort metric.
	WriteQueueSize() int

	// SetBlocking toggles blocking mode on the descriptor.
	SetBlocking(enable bool) int

	// IsIPC reports whether this channel can carry ancillary handles.
	IsIPC() bool

	// PendingHandleCount reports ancillary handles received but not yet
	// accepted. Only meaningful inside a read callback.
	PendingHandleCount() int

	// PendingHandleKind probes the kind of the next pending handle.
	PendingHandleKind() HandleKind

	// Accept completes the transfer of the next pending handle onto
	// client, which must be unconnected and loop-compatible.
	Accept(client StreamHandle) int
}
