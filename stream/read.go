// File: stream/read.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Read completion handling and ancillary handle transfer. Every read
// event reaches the host exactly once, whatever its sign; a pending
// handle of a supported kind is accepted onto a freshly instantiated
// local stream and rides the same event as a companion object.

package stream

import (
	"fmt"

	"github.com/momentics/hioload-stream/api"
)

// ReadEventKind discriminates the read result union.
type ReadEventKind int

const (
	// ReadData carries N payload bytes; N may be zero for "no data
	// this round".
	ReadData ReadEventKind = iota

	// ReadDataWithHandle carries payload bytes plus a companion stream
	// accepted from the channel's pending ancillary handle.
	ReadDataWithHandle

	// ReadEOF marks the peer's half-close. No payload.
	ReadEOF

	// ReadError carries a negative status code. No payload.
	ReadError
)

// ReadEvent is the result of one read completion.
type ReadEvent struct {
	Kind   ReadEventKind
	N      int    // payload length for data kinds
	Status int    // api.StatusEOF or negative errno for non-data kinds
	Buf    []byte // allocation-hook buffer; valid for the callback only
	// Companion is the transferred stream for ReadDataWithHandle. Its
	// underlying handle is connected and usable immediately.
	Companion *Wrap
}

// ReadStart arms the engine's readable notifications, routing allocation
// and read completion through this wrap.
func (w *Wrap) ReadStart() int {
	return w.handle.ReadStart(w.onAlloc, w.onRead)
}

// ReadStop disarms readable notifications.
func (w *Wrap) ReadStop() int {
	return w.handle.ReadStop()
}

// onAlloc supplies the destination buffer for the next read. The buffer
// is lent to the engine until the matching onRead and must not be
// aliased meanwhile.
func (w *Wrap) onAlloc(suggested int) []byte {
	return w.alloc(suggested)
}

// onRead converts one engine read completion into a host-visible event.
func (w *Wrap) onRead(nread int, buf []byte) {
	pending := api.KindUnknown
	if w.handle.IsIPC() && w.handle.PendingHandleCount() > 0 {
		pending = w.handle.PendingHandleKind()
		switch pending {
		case api.KindTCP, api.KindNamedPipe, api.KindUDP:
		default:
			// The engine and adapter disagree about what is sitting
			// in the channel; no safe recovery exists.
			panic(fmt.Sprintf("stream: unexpected pending handle kind %d", pending))
		}
	}

	ev := ReadEvent{Buf: buf}
	switch {
	case nread > 0:
		ev.Kind = ReadData
		ev.N = nread
		w.counters.AddRecv(w.handle.Kind(), nread)
		if pending != api.KindUnknown {
			if companion := w.acceptPending(pending); companion != nil {
				ev.Kind = ReadDataWithHandle
				ev.Companion = companion
			}
		}
	case nread == 0:
		ev.Kind = ReadData
	case nread == api.StatusEOF:
		ev.Kind = ReadEOF
		ev.Status = nread
	default:
		ev.Kind = ReadError
		ev.Status = nread
	}

	w.host.OnRead(ev)

	// The buffer's lease ends with the callback; hand it back for reuse.
	if w.release != nil {
		w.release(buf)
	}
}

// acceptPending performs the one-shot ancillary handle transfer: allocate
// a local stream of the matching kind, then complete the native accept
// handshake onto its handle. Allocation failure is ordinary and yields
// nil; an accept failure after the engine reported a pending handle means
// the two sides' views have diverged and is fatal.
func (w *Wrap) acceptPending(kind api.HandleKind) *Wrap {
	if w.registry == nil {
		return nil
	}
	obj, err := w.registry.Instantiate(kind, w)
	if err != nil || obj == nil {
		return nil
	}
	if status := w.handle.Accept(obj.handle); status != api.StatusOK {
		panic(fmt.Sprintf("stream: accept of pending %s handle failed: %v",
			kind, api.StatusError(status)))
	}
	return obj
}
