//go:build linux
// +build linux

// File: internal/engio/write_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Write and shutdown pipelines. Queued writes flush on writability in
// dispatch order; an ancillary descriptor rides the first bytes of its
// write via SCM_RIGHTS. Shutdown waits for the queue to drain.

package engio

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-stream/api"
)

// writeOp is one queued write. bufs shrinks from the front as bytes
// flush; size tracks the remaining total.
type writeOp struct {
	bufs   [][]byte
	size   int
	sendFD int // descriptor to transfer, -1 for none
	fdSent bool
	done   api.CompletionCallback
}

func (op *writeOp) advance(n int) {
	op.size -= n
	bufs := op.bufs
	for n > 0 {
		if len(bufs[0]) > n {
			bufs[0] = bufs[0][n:]
			n = 0
			break
		}
		n -= len(bufs[0])
		bufs = bufs[1:]
	}
	op.bufs = bufs
}

type shutdownOp struct {
	done api.CompletionCallback
}

// TryWrite implements api.StreamHandle: one immediate writev, no
// queuing. Returns bytes written or a negative status; -EAGAIN both for
// a full kernel buffer and while queued writes exist, since bytes must
// not overtake the queue.
func (s *Stream) TryWrite(bufs [][]byte) int {
	if !s.IsAlive() {
		return api.ErrnoStatus(unix.EBADF)
	}
	if s.shutDone || s.shutOp != nil {
		return api.ErrnoStatus(unix.EPIPE)
	}
	if s.writes.Length() > 0 {
		return api.ErrnoStatus(unix.EAGAIN)
	}
	n, err := unix.Writev(s.fd, bufs)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return api.ErrnoStatus(unix.EAGAIN)
		}
		return errnoStatus(err)
	}
	return n
}

// Write implements api.StreamHandle: queue bufs (plus an optional
// outgoing descriptor) and arm write interest. done fires exactly once,
// deferred to the loop's completion FIFO, once the op flushes, fails, or
// is cancelled by Close.
func (s *Stream) Write(bufs [][]byte, send api.StreamHandle, done api.CompletionCallback) int {
	if !s.IsAlive() {
		return api.ErrnoStatus(unix.EBADF)
	}
	if s.shutDone || s.shutOp != nil {
		return api.ErrnoStatus(unix.EPIPE)
	}

	sendFD := -1
	if send != nil {
		if !s.ipc {
			return api.ErrnoStatus(unix.EINVAL)
		}
		sendFD = send.FD()
		if sendFD < 0 {
			return api.ErrnoStatus(unix.EBADF)
		}
	}

	op := &writeOp{sendFD: sendFD, done: done}
	for _, b := range bufs {
		if len(b) > 0 {
			op.bufs = append(op.bufs, b)
			op.size += len(b)
		}
	}
	if op.size == 0 {
		if sendFD >= 0 {
			// A transferred descriptor needs at least one payload byte.
			return api.ErrnoStatus(unix.EINVAL)
		}
		s.deferComplete(done, api.StatusOK)
		return api.StatusOK
	}

	s.writes.Add(op)
	s.wqSize += op.size
	s.updateInterest()
	return api.StatusOK
}

// Shutdown implements api.StreamHandle: half-close the write side once
// queued writes drain.
func (s *Stream) Shutdown(done api.CompletionCallback) int {
	if !s.IsAlive() {
		return api.ErrnoStatus(unix.EBADF)
	}
	if s.shutDone || s.shutOp != nil {
		return api.ErrnoStatus(unix.EPIPE)
	}
	s.shutOp = &shutdownOp{done: done}
	if s.writes.Length() == 0 {
		s.issueShutdown()
	}
	return api.StatusOK
}

// OnWritable implements loop.Watcher.
func (s *Stream) OnWritable() {
	if s.state.Load() != stateInitialized {
		return
	}
	s.flush()
}

// flush pushes queued ops into the kernel until it refuses more. Each op
// completes exactly once: with zero on full flush, with its errno on a
// hard error, in dispatch order either way.
func (s *Stream) flush() {
	for s.writes.Length() > 0 {
		op := s.writes.Peek().(*writeOp)
		n, err := s.flushOp(op)
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			break
		}
		if err != nil {
			s.writes.Remove()
			s.wqSize -= op.size
			s.deferComplete(op.done, errnoStatus(err))
			continue
		}
		s.wqSize -= n
		op.advance(n)
		if op.size > 0 {
			break
		}
		s.writes.Remove()
		s.deferComplete(op.done, api.StatusOK)
	}
	if s.writes.Length() == 0 && s.shutOp != nil {
		s.issueShutdown()
	}
	s.updateInterest()
}

// flushOp performs one kernel write for op. The first flush of a
// descriptor-carrying op sends the rights message inline with the data.
func (s *Stream) flushOp(op *writeOp) (int, error) {
	if op.sendFD >= 0 && !op.fdSent {
		rights := unix.UnixRights(op.sendFD)
		n, err := unix.SendmsgBuffers(s.fd, op.bufs, rights, nil, unix.MSG_NOSIGNAL)
		if err == nil {
			op.fdSent = true
		}
		return n, err
	}
	if s.ipc {
		return unix.SendmsgBuffers(s.fd, op.bufs, nil, nil, unix.MSG_NOSIGNAL)
	}
	return unix.Writev(s.fd, op.bufs)
}

// issueShutdown performs the half-close and schedules its completion.
func (s *Stream) issueShutdown() {
	op := s.shutOp
	s.shutOp = nil
	s.shutDone = true
	status := api.StatusOK
	if err := unix.Shutdown(s.fd, unix.SHUT_WR); err != nil {
		status = errnoStatus(err)
	}
	s.deferComplete(op.done, status)
}
