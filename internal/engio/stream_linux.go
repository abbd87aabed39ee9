//go:build linux
// +build linux

// File: internal/engio/stream_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Stream lifecycle and read path. A Stream owns exactly one descriptor
// (or none, while unconnected) and is driven entirely by its loop.

package engio

import (
	"sync/atomic"

	"github.com/eapache/queue"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-stream/api"
	"github.com/momentics/hioload-stream/loop"
)

// Handle states, mirroring the generic handle lifecycle:
// initialized -> closing -> closed.
const (
	stateInitialized int32 = iota
	stateClosing
	stateClosed
)

const readSizeHint = 64 * 1024

// Stream is an engine duplex stream over a raw descriptor. It implements
// api.StreamHandle.
type Stream struct {
	lp   *loop.Loop
	fd   int
	kind api.HandleKind
	ipc  bool

	state atomic.Int32

	reading bool
	alloc   api.AllocCallback
	read    api.ReadCallback

	writes   *queue.Queue // of *writeOp, FIFO dispatch order
	wqSize   int          // bytes queued, not yet flushed
	shutOp   *shutdownOp  // waits for writes to drain
	shutDone bool         // SHUT_WR already issued

	pending *queue.Queue // of int: received descriptors awaiting Accept
	oob     []byte       // recvmsg control buffer, IPC streams only

	closeCb api.CloseCallback
	hasRef  bool
}

// NewUnconnected allocates a stream of the given kind with no descriptor
// yet; Accept or Adopt binds one later. This is the registry's entry
// point for ancillary handle transfer.
func NewUnconnected(lp *loop.Loop, kind api.HandleKind, ipc bool) *Stream {
	s := &Stream{
		lp:      lp,
		fd:      -1,
		kind:    kind,
		ipc:     ipc,
		writes:  queue.New(),
		pending: queue.New(),
	}
	if ipc {
		s.oob = make([]byte, 256)
	}
	return s
}

// Adopt binds an existing descriptor to a new stream: the descriptor is
// switched to non-blocking mode and registered with the loop.
func Adopt(lp *loop.Loop, fd int, kind api.HandleKind, ipc bool) (*Stream, error) {
	s := NewUnconnected(lp, kind, ipc)
	if status := s.adopt(fd); status != api.StatusOK {
		return nil, api.StatusError(status)
	}
	return s, nil
}

// adopt binds fd to this stream. The stream must be unconnected.
func (s *Stream) adopt(fd int) int {
	if s.fd >= 0 {
		return api.ErrnoStatus(unix.EBUSY)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		return errnoStatus(err)
	}
	if err := s.lp.AddFD(fd, s); err != nil {
		return api.ErrnoStatus(unix.EINVAL)
	}
	s.fd = fd
	s.lp.RefHandle()
	s.hasRef = true
	return api.StatusOK
}

// Kind implements api.Handle.
func (s *Stream) Kind() api.HandleKind { return s.kind }

// FD implements api.Handle.
func (s *Stream) FD() int { return s.fd }

// IsAlive implements api.Handle.
func (s *Stream) IsAlive() bool {
	return s.state.Load() == stateInitialized && s.fd >= 0
}

// IsClosing implements api.Handle.
func (s *Stream) IsClosing() bool {
	return s.state.Load() != stateInitialized
}

// IsIPC implements api.StreamHandle.
func (s *Stream) IsIPC() bool { return s.ipc }

// Ref implements api.Handle.
func (s *Stream) Ref() {
	if !s.hasRef && s.state.Load() != stateClosed {
		s.lp.RefHandle()
		s.hasRef = true
	}
}

// Unref implements api.Handle.
func (s *Stream) Unref() {
	if s.hasRef {
		s.lp.UnrefHandle()
		s.hasRef = false
	}
}

// HasRef implements api.Handle.
func (s *Stream) HasRef() bool { return s.hasRef }

// Loop returns the owning loop.
func (s *Stream) Loop() *loop.Loop { return s.lp }

// ReadStart implements api.StreamHandle.
func (s *Stream) ReadStart(alloc api.AllocCallback, read api.ReadCallback) int {
	if !s.IsAlive() {
		return api.ErrnoStatus(unix.EBADF)
	}
	s.alloc = alloc
	s.read = read
	s.reading = true
	s.updateInterest()
	return api.StatusOK
}

// ReadStop implements api.StreamHandle. Idempotent.
func (s *Stream) ReadStop() int {
	s.reading = false
	if s.IsAlive() {
		s.updateInterest()
	}
	return api.StatusOK
}

// SetBlocking implements api.StreamHandle.
func (s *Stream) SetBlocking(enable bool) int {
	if !s.IsAlive() {
		return api.ErrnoStatus(unix.EBADF)
	}
	if err := unix.SetNonblock(s.fd, !enable); err != nil {
		return errnoStatus(err)
	}
	return api.StatusOK
}

// WriteQueueSize implements api.StreamHandle. Returns zero once the
// stream is closing; the queue has been cancelled by then.
func (s *Stream) WriteQueueSize() int { return s.wqSize }

// PendingHandleCount implements api.StreamHandle.
func (s *Stream) PendingHandleCount() int { return s.pending.Length() }

// PendingHandleKind implements api.StreamHandle.
func (s *Stream) PendingHandleKind() api.HandleKind {
	if s.pending.Length() == 0 {
		return api.KindUnknown
	}
	return probeFDKind(s.pending.Peek().(int))
}

// Accept implements api.StreamHandle: it pops the next received
// descriptor and binds it to client, completing the transfer handshake.
func (s *Stream) Accept(client api.StreamHandle) int {
	cs, ok := client.(*Stream)
	if !ok {
		return api.ErrnoStatus(unix.EINVAL)
	}
	if s.pending.Length() == 0 {
		return api.ErrnoStatus(unix.EAGAIN)
	}
	fd := s.pending.Remove().(int)
	if status := cs.adopt(fd); status != api.StatusOK {
		unix.Close(fd)
		return status
	}
	return api.StatusOK
}

// Close implements api.Handle. Pending write and shutdown completions
// fire with -ECANCELED, then the descriptor is closed and cb runs, all
// on a later loop iteration. Subsequent calls are no-ops.
func (s *Stream) Close(cb api.CloseCallback) {
	if !s.state.CompareAndSwap(stateInitialized, stateClosing) {
		return
	}
	s.closeCb = cb
	s.reading = false
	if s.fd >= 0 {
		s.lp.RemoveFD(s.fd)
	}

	canceled := api.ErrnoStatus(unix.ECANCELED)
	for s.writes.Length() > 0 {
		op := s.writes.Remove().(*writeOp)
		s.deferComplete(op.done, canceled)
	}
	s.wqSize = 0
	if s.shutOp != nil {
		op := s.shutOp
		s.shutOp = nil
		s.deferComplete(op.done, canceled)
	}
	for s.pending.Length() > 0 {
		unix.Close(s.pending.Remove().(int))
	}

	s.lp.Defer(func() {
		if s.fd >= 0 {
			unix.Close(s.fd)
			s.fd = -1
		}
		s.state.Store(stateClosed)
		if s.hasRef {
			s.lp.UnrefHandle()
			s.hasRef = false
		}
		if s.closeCb != nil {
			s.closeCb()
		}
	})
}

// OnReadable implements loop.Watcher: run one read round against the
// host-supplied buffer and deliver the result. One round per readiness
// event; the poller is level-triggered.
func (s *Stream) OnReadable() {
	if !s.reading || !s.IsAlive() {
		return
	}
	buf := s.alloc(readSizeHint)
	if len(buf) == 0 {
		s.read(api.ErrnoStatus(unix.ENOBUFS), buf)
		return
	}

	var n int
	var err error
	if s.ipc {
		var oobn int
		n, oobn, _, _, err = unix.Recvmsg(s.fd, buf, s.oob, unix.MSG_CMSG_CLOEXEC)
		if err == nil && oobn > 0 {
			s.collectRights(s.oob[:oobn])
		}
	} else {
		n, err = unix.Read(s.fd, buf)
	}

	switch {
	case err == unix.EAGAIN || err == unix.EWOULDBLOCK:
		s.read(0, buf)
	case err != nil:
		s.read(errnoStatus(err), buf)
	case n == 0:
		s.reading = false
		s.updateInterest()
		s.read(api.StatusEOF, buf)
	default:
		s.read(n, buf)
	}
}

// collectRights parses SCM_RIGHTS control messages into the pending
// descriptor queue.
func (s *Stream) collectRights(oob []byte) {
	msgs, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return
	}
	for i := range msgs {
		fds, err := unix.ParseUnixRights(&msgs[i])
		if err != nil {
			continue
		}
		for _, fd := range fds {
			s.pending.Add(fd)
		}
	}
}

// updateInterest reconciles poller interest with current stream demand.
func (s *Stream) updateInterest() {
	if s.fd < 0 || s.state.Load() != stateInitialized {
		return
	}
	read := s.reading
	write := s.writes.Length() > 0
	s.lp.ModFD(s.fd, read, write)
}

// deferComplete schedules a completion callback on the loop's FIFO.
func (s *Stream) deferComplete(done api.CompletionCallback, status int) {
	if done == nil {
		return
	}
	s.lp.Defer(func() { done(status) })
}

// errnoStatus converts a syscall error into a negative status code.
func errnoStatus(err error) int {
	if e, ok := err.(unix.Errno); ok {
		return -int(e)
	}
	return api.ErrnoStatus(unix.EIO)
}
