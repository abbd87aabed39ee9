// File: stream/write.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The two write strategies: a best-effort synchronous attempt that may
// partially succeed without queuing, and a queued asynchronous write
// whose completion always arrives through the request's callback.

package stream

import (
	"syscall"

	"github.com/momentics/hioload-stream/api"
)

// TryWrite flushes as much of bufs as the engine accepts right now,
// without queuing. "Would block" and "not supported" count as zero
// progress, not errors; hard errors propagate unchanged. The returned
// view covers only the unwritten remainder, so a caller can retry with a
// smaller set without copying.
func (w *Wrap) TryWrite(bufs BufferList) (BufferList, int) {
	if bufs.Empty() {
		return bufs, api.StatusOK
	}
	n := w.handle.TryWrite(bufs.Spans())
	if n == api.ErrnoStatus(syscall.EAGAIN) || n == api.ErrnoStatus(syscall.ENOSYS) {
		return bufs, api.StatusOK
	}
	if n < 0 {
		return bufs, n
	}
	return bufs.SliceOff(n), api.StatusOK
}

// Write dispatches a queued asynchronous write. When send is non-nil its
// handle travels inline with the payload over the IPC channel, through
// the engine's ancillary-capable primitive. done fires exactly once with
// the native status, on a later loop iteration, provided dispatch
// succeeded (returned status zero). The request is marked Dispatched
// unconditionally so its lifecycle stays well-defined either way.
func (w *Wrap) Write(bufs BufferList, send *Wrap, done api.CompletionCallback) (*WriteRequest, int) {
	req := &WriteRequest{stream: w, bufs: bufs}
	req.done = done

	var sh api.StreamHandle
	if send != nil {
		sh = send.handle
		req.sentHandle = true
	}

	status := w.handle.Write(bufs.Spans(), sh, req.complete)
	if status == api.StatusOK {
		w.counters.AddSent(w.handle.Kind(), bufs.Len())
	}
	req.markDispatched()
	return req, status
}
