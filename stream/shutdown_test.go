// File: stream/shutdown_test.go
// Author: momentics <momentics@gmail.com>

package stream_test

import (
	"syscall"
	"testing"

	"github.com/momentics/hioload-stream/api"
	"github.com/momentics/hioload-stream/fake"
	"github.com/momentics/hioload-stream/stream"
)

func TestShutdownDispatchAndComplete(t *testing.T) {
	w, h, _ := newWrap(t, api.KindTCP, false)

	var statuses []int
	req, status := w.Shutdown(func(s int) { statuses = append(statuses, s) })
	if status != api.StatusOK {
		t.Fatalf("dispatch status = %d, want 0", status)
	}
	if req.State() != stream.StateDispatched {
		t.Fatalf("state = %d, want Dispatched", req.State())
	}

	h.CompleteShutdown(api.StatusOK)
	if len(statuses) != 1 || statuses[0] != api.StatusOK {
		t.Fatalf("statuses = %v, want one 0", statuses)
	}
	if !req.Completed() {
		t.Fatal("request must be completed")
	}
}

// TestShutdownCompletesWithErrorOnClose: a handle forcibly closed before
// the native shutdown finishes must still fire the completion, with an
// error status.
func TestShutdownCompletesWithErrorOnClose(t *testing.T) {
	w, _, _ := newWrap(t, api.KindTCP, false)

	var statuses []int
	req, _ := w.Shutdown(func(s int) { statuses = append(statuses, s) })

	w.Close(nil)
	if len(statuses) != 1 {
		t.Fatalf("completions = %d, want exactly 1", len(statuses))
	}
	if statuses[0] != api.ErrnoStatus(syscall.ECANCELED) {
		t.Fatalf("status = %d, want -ECANCELED", statuses[0])
	}
	if !req.Completed() {
		t.Fatal("request must be completed")
	}
}

func TestShutdownDispatchFailure(t *testing.T) {
	w, h, _ := newWrap(t, api.KindTCP, false)
	h.ShutdownStatus = api.ErrnoStatus(syscall.ENOTCONN)

	fired := false
	req, status := w.Shutdown(func(int) { fired = true })
	if status != api.ErrnoStatus(syscall.ENOTCONN) {
		t.Fatalf("status = %d, want -ENOTCONN", status)
	}
	if req.State() != stream.StateDispatched {
		t.Fatal("Dispatched is marked even on failed dispatch")
	}
	if fired {
		t.Fatal("no completion for a failed dispatch")
	}
}

func TestWriteQueueSizeZeroOnClosedHandle(t *testing.T) {
	w, _, _ := newWrap(t, api.KindTCP, false)
	_, _ = w.Write(stream.NewBufferList(seq(16, 0)), nil, nil)
	if w.WriteQueueSize() != 16 {
		t.Fatalf("queue size = %d, want 16", w.WriteQueueSize())
	}
	w.Close(nil)
	if w.WriteQueueSize() != 0 {
		t.Fatalf("queue size after close = %d, want 0", w.WriteQueueSize())
	}
}

func TestSetBlockingOnDeadHandle(t *testing.T) {
	w, h, _ := newWrap(t, api.KindTCP, false)
	w.Close(nil)
	if status := w.SetBlocking(true); status != api.ErrnoStatus(syscall.EINVAL) {
		t.Fatalf("status = %d, want -EINVAL", status)
	}
	if h.BlockingSet != nil {
		t.Fatal("engine must not be reached once the handle is dead")
	}
}

func TestSetBlockingPassthrough(t *testing.T) {
	h := fake.NewStreamHandle(api.KindNamedPipe, false)
	w := stream.New(h, &fake.Host{})
	if status := w.SetBlocking(true); status != api.StatusOK {
		t.Fatalf("status = %d, want 0", status)
	}
	if h.BlockingSet == nil || !*h.BlockingSet {
		t.Fatal("blocking mode must pass through to the engine")
	}
}
