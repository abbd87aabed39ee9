// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development. The fake stream
// handle is scripted: tests feed read events, choose try-write results,
// and fire completions explicitly, so adapter behavior is checked
// without a loop or descriptors.

package fake

import (
	"syscall"

	"github.com/momentics/hioload-stream/api"
)

// WriteOp records one queued write dispatched against the fake handle.
type WriteOp struct {
	Bufs [][]byte
	Send api.StreamHandle
	Done api.CompletionCallback
}

// StreamHandle is a scripted fake of api.StreamHandle.
type StreamHandle struct {
	KindVal api.HandleKind
	IPC     bool
	FDVal   int

	closed  bool
	closing bool
	refed   bool

	reading bool
	alloc   api.AllocCallback
	read    api.ReadCallback

	// TryWriteResults is consumed one entry per TryWrite call: a
	// non-negative byte count or a negative status.
	TryWriteResults []int
	TryWriteCalls   [][][]byte

	// WriteStatus and ShutdownStatus are the dispatch results.
	WriteStatus    int
	ShutdownStatus int

	Writes       []*WriteOp
	ShutdownDone api.CompletionCallback

	// PendingKinds scripts the ancillary handle queue.
	PendingKinds []api.HandleKind
	AcceptStatus int
	Accepted     []api.StreamHandle

	QueueSize   int
	BlockingSet *bool
}

// NewStreamHandle creates a connected fake handle of the given kind.
func NewStreamHandle(kind api.HandleKind, ipc bool) *StreamHandle {
	return &StreamHandle{
		KindVal: kind,
		IPC:     ipc,
		FDVal:   42,
		refed:   true,
	}
}

// Kind implements api.Handle.
func (h *StreamHandle) Kind() api.HandleKind { return h.KindVal }

// FD implements api.Handle.
func (h *StreamHandle) FD() int {
	if h.closed {
		return -1
	}
	return h.FDVal
}

// IsAlive implements api.Handle.
func (h *StreamHandle) IsAlive() bool { return !h.closed && !h.closing }

// IsClosing implements api.Handle.
func (h *StreamHandle) IsClosing() bool { return h.closing || h.closed }

// Ref implements api.Handle.
func (h *StreamHandle) Ref() { h.refed = true }

// Unref implements api.Handle.
func (h *StreamHandle) Unref() { h.refed = false }

// HasRef implements api.Handle.
func (h *StreamHandle) HasRef() bool { return h.refed }

// Close implements api.Handle: outstanding write and shutdown
// completions fire synchronously with -ECANCELED, then cb runs.
func (h *StreamHandle) Close(cb api.CloseCallback) {
	if h.closing || h.closed {
		return
	}
	h.closing = true
	canceled := api.ErrnoStatus(syscall.ECANCELED)
	for _, op := range h.Writes {
		if op.Done != nil {
			op.Done(canceled)
			op.Done = nil
		}
	}
	if h.ShutdownDone != nil {
		h.ShutdownDone(canceled)
		h.ShutdownDone = nil
	}
	h.QueueSize = 0
	h.closed = true
	if cb != nil {
		cb()
	}
}

// ReadStart implements api.StreamHandle.
func (h *StreamHandle) ReadStart(alloc api.AllocCallback, read api.ReadCallback) int {
	if !h.IsAlive() {
		return api.ErrnoStatus(syscall.EBADF)
	}
	h.alloc = alloc
	h.read = read
	h.reading = true
	return api.StatusOK
}

// ReadStop implements api.StreamHandle.
func (h *StreamHandle) ReadStop() int {
	h.reading = false
	return api.StatusOK
}

// Reading reports whether ReadStart is armed.
func (h *StreamHandle) Reading() bool { return h.reading }

// TryWrite implements api.StreamHandle, consuming the next scripted
// result. An exhausted script accepts everything.
func (h *StreamHandle) TryWrite(bufs [][]byte) int {
	h.TryWriteCalls = append(h.TryWriteCalls, bufs)
	if len(h.TryWriteResults) == 0 {
		n := 0
		for _, b := range bufs {
			n += len(b)
		}
		return n
	}
	r := h.TryWriteResults[0]
	h.TryWriteResults = h.TryWriteResults[1:]
	return r
}

// Write implements api.StreamHandle, recording the op.
func (h *StreamHandle) Write(bufs [][]byte, send api.StreamHandle, done api.CompletionCallback) int {
	if h.WriteStatus != api.StatusOK {
		return h.WriteStatus
	}
	h.Writes = append(h.Writes, &WriteOp{Bufs: bufs, Send: send, Done: done})
	for _, b := range bufs {
		h.QueueSize += len(b)
	}
	return api.StatusOK
}

// CompleteWrite fires the completion of the i-th recorded write.
func (h *StreamHandle) CompleteWrite(i, status int) {
	op := h.Writes[i]
	h.QueueSize = 0
	if op.Done != nil {
		op.Done(status)
		op.Done = nil
	}
}

// Shutdown implements api.StreamHandle.
func (h *StreamHandle) Shutdown(done api.CompletionCallback) int {
	if h.ShutdownStatus != api.StatusOK {
		return h.ShutdownStatus
	}
	h.ShutdownDone = done
	return api.StatusOK
}

// CompleteShutdown fires the stored shutdown completion.
func (h *StreamHandle) CompleteShutdown(status int) {
	if h.ShutdownDone != nil {
		h.ShutdownDone(status)
		h.ShutdownDone = nil
	}
}

// WriteQueueSize implements api.StreamHandle.
func (h *StreamHandle) WriteQueueSize() int { return h.QueueSize }

// SetBlocking implements api.StreamHandle.
func (h *StreamHandle) SetBlocking(enable bool) int {
	h.BlockingSet = &enable
	return api.StatusOK
}

// IsIPC implements api.StreamHandle.
func (h *StreamHandle) IsIPC() bool { return h.IPC }

// PendingHandleCount implements api.StreamHandle.
func (h *StreamHandle) PendingHandleCount() int { return len(h.PendingKinds) }

// PendingHandleKind implements api.StreamHandle.
func (h *StreamHandle) PendingHandleKind() api.HandleKind {
	if len(h.PendingKinds) == 0 {
		return api.KindUnknown
	}
	return h.PendingKinds[0]
}

// Accept implements api.StreamHandle, consuming one pending kind.
func (h *StreamHandle) Accept(client api.StreamHandle) int {
	if h.AcceptStatus != api.StatusOK {
		return h.AcceptStatus
	}
	if len(h.PendingKinds) == 0 {
		return api.ErrnoStatus(syscall.EAGAIN)
	}
	h.PendingKinds = h.PendingKinds[1:]
	h.Accepted = append(h.Accepted, client)
	return api.StatusOK
}

// Feed delivers one read event with the given payload through the
// armed allocation and read callbacks.
func (h *StreamHandle) Feed(data []byte) {
	buf := h.alloc(len(data))
	n := copy(buf, data)
	h.read(n, buf)
}

// FeedStatus delivers a read event carrying a status instead of data:
// zero, api.StatusEOF, or a negative errno.
func (h *StreamHandle) FeedStatus(status int) {
	buf := h.alloc(64 * 1024)
	h.read(status, buf)
}
