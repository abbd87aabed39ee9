// File: stream/write_test.go
// Author: momentics <momentics@gmail.com>

package stream_test

import (
	"bytes"
	"syscall"
	"testing"

	"github.com/momentics/hioload-stream/api"
	"github.com/momentics/hioload-stream/control"
	"github.com/momentics/hioload-stream/fake"
	"github.com/momentics/hioload-stream/stream"
)

func newWrap(t *testing.T, kind api.HandleKind, ipc bool) (*stream.Wrap, *fake.StreamHandle, *control.Counters) {
	t.Helper()
	h := fake.NewStreamHandle(kind, ipc)
	c := &control.Counters{}
	w := stream.New(h, &fake.Host{}, stream.WithCounters(c))
	return w, h, c
}

func TestTryWritePartialSlicesRemainder(t *testing.T) {
	w, h, _ := newWrap(t, api.KindTCP, false)
	h.TryWriteResults = []int{15}

	a := seq(10, 0)
	b := seq(20, 100)
	rem, status := w.TryWrite(stream.NewBufferList(a, b))
	if status != api.StatusOK {
		t.Fatalf("status = %d, want 0", status)
	}
	if rem.Len() != 15 || rem.Count() != 1 {
		t.Fatalf("remainder Len=%d Count=%d, want 15/1", rem.Len(), rem.Count())
	}
	if got := spanBytes(rem); !bytes.Equal(got, b[5:]) {
		t.Fatalf("remainder = %v, want %v", got, b[5:])
	}
}

func TestTryWriteWouldBlockIsZeroProgress(t *testing.T) {
	for _, e := range []syscall.Errno{syscall.EAGAIN, syscall.ENOSYS} {
		w, h, _ := newWrap(t, api.KindTCP, false)
		h.TryWriteResults = []int{api.ErrnoStatus(e)}

		rem, status := w.TryWrite(stream.NewBufferList(seq(8, 0)))
		if status != api.StatusOK {
			t.Fatalf("%v: status = %d, want 0", e, status)
		}
		if rem.Len() != 8 {
			t.Fatalf("%v: remainder Len = %d, want 8", e, rem.Len())
		}
	}
}

func TestTryWriteHardErrorPropagates(t *testing.T) {
	w, h, _ := newWrap(t, api.KindTCP, false)
	h.TryWriteResults = []int{api.ErrnoStatus(syscall.ECONNRESET)}

	rem, status := w.TryWrite(stream.NewBufferList(seq(8, 0)))
	if status != api.ErrnoStatus(syscall.ECONNRESET) {
		t.Fatalf("status = %d, want -ECONNRESET", status)
	}
	if rem.Len() != 8 {
		t.Fatalf("remainder must be untouched on error, Len = %d", rem.Len())
	}
}

func TestTryWriteEmptyList(t *testing.T) {
	w, h, _ := newWrap(t, api.KindTCP, false)
	rem, status := w.TryWrite(stream.BufferList{})
	if status != api.StatusOK || !rem.Empty() {
		t.Fatalf("empty try-write: status=%d empty=%v", status, rem.Empty())
	}
	if len(h.TryWriteCalls) != 0 {
		t.Fatal("empty list must not reach the engine")
	}
}

func TestWriteDispatchAccountsBytes(t *testing.T) {
	w, h, c := newWrap(t, api.KindTCP, false)

	var gotStatus *int
	req, status := w.Write(stream.NewBufferList(seq(60, 0), seq(40, 60)), nil,
		func(s int) { gotStatus = &s })
	if status != api.StatusOK {
		t.Fatalf("dispatch status = %d, want 0", status)
	}
	if c.Sent(api.KindTCP) != 100 {
		t.Fatalf("sent counter = %d, want 100", c.Sent(api.KindTCP))
	}
	if req.State() != stream.StateDispatched {
		t.Fatalf("state = %d, want Dispatched", req.State())
	}
	if gotStatus != nil {
		t.Fatal("completion must not fire during dispatch")
	}

	h.CompleteWrite(0, api.StatusOK)
	if gotStatus == nil || *gotStatus != api.StatusOK {
		t.Fatal("completion with status 0 expected")
	}
	if !req.Completed() || req.Status() != api.StatusOK {
		t.Fatalf("request completed=%v status=%d", req.Completed(), req.Status())
	}
}

func TestWriteDispatchFailure(t *testing.T) {
	w, h, c := newWrap(t, api.KindTCP, false)
	h.WriteStatus = api.ErrnoStatus(syscall.EPIPE)

	fired := false
	req, status := w.Write(stream.NewBufferList(seq(10, 0)), nil, func(int) { fired = true })
	if status != api.ErrnoStatus(syscall.EPIPE) {
		t.Fatalf("status = %d, want -EPIPE", status)
	}
	// Dispatched is marked even on failure so the lifecycle stays
	// well-defined.
	if req.State() != stream.StateDispatched {
		t.Fatalf("state = %d, want Dispatched", req.State())
	}
	if fired {
		t.Fatal("no completion may fire for a failed dispatch")
	}
	if c.Sent(api.KindTCP) != 0 {
		t.Fatalf("sent counter = %d, want 0", c.Sent(api.KindTCP))
	}
}

func TestWriteWithSendHandle(t *testing.T) {
	w, h, _ := newWrap(t, api.KindNamedPipe, true)
	companionHandle := fake.NewStreamHandle(api.KindTCP, false)
	companion := stream.New(companionHandle, &fake.Host{})

	req, status := w.Write(stream.NewBufferList(seq(1, 0)), companion, nil)
	if status != api.StatusOK {
		t.Fatalf("status = %d, want 0", status)
	}
	if !req.SentHandle() {
		t.Fatal("request must record the ancillary handle")
	}
	if len(h.Writes) != 1 || h.Writes[0].Send != companionHandle {
		t.Fatal("engine must receive the companion's underlying handle")
	}
}

func TestWriteCompletionExactlyOnce(t *testing.T) {
	w, h, _ := newWrap(t, api.KindTCP, false)
	count := 0
	req, _ := w.Write(stream.NewBufferList(seq(4, 0)), nil, func(int) { count++ })

	h.CompleteWrite(0, api.StatusOK)
	if count != 1 {
		t.Fatalf("completions = %d, want 1", count)
	}

	// Closing after completion must not fire the callback again.
	w.Close(nil)
	if count != 1 {
		t.Fatalf("completions after close = %d, want 1", count)
	}
	if req.Status() != api.StatusOK {
		t.Fatalf("status = %d, want 0", req.Status())
	}
}

func TestWriteCanceledByClose(t *testing.T) {
	w, _, _ := newWrap(t, api.KindTCP, false)
	var statuses []int
	_, status := w.Write(stream.NewBufferList(seq(4, 0)), nil,
		func(s int) { statuses = append(statuses, s) })
	if status != api.StatusOK {
		t.Fatalf("dispatch status = %d", status)
	}

	closed := false
	w.Close(func() { closed = true })
	if !closed {
		t.Fatal("close callback must fire")
	}
	if len(statuses) != 1 || statuses[0] != api.ErrnoStatus(syscall.ECANCELED) {
		t.Fatalf("statuses = %v, want one -ECANCELED", statuses)
	}
	if w.WriteQueueSize() != 0 {
		t.Fatalf("queue size after close = %d, want 0", w.WriteQueueSize())
	}
}
