// File: stream/request.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Single-use request objects for in-flight writes and shutdowns. The
// lifecycle is Created -> Dispatched -> Completed; dispatch happens at
// most once and completion exactly once per dispatched request, enforced
// by an atomic state machine rather than by convention.

package stream

import (
	"sync/atomic"

	"github.com/momentics/hioload-stream/api"
)

// Request states.
const (
	StateCreated int32 = iota
	StateDispatched
	StateCompleted
)

// request carries the shared single-fire completion slot.
type request struct {
	state  atomic.Int32
	status int
	done   api.CompletionCallback
}

// markDispatched transitions Created -> Dispatched. The mark is applied
// even when the dispatch itself failed, so every request has a
// well-defined lifecycle.
func (r *request) markDispatched() {
	if !r.state.CompareAndSwap(StateCreated, StateDispatched) {
		panic("stream: request dispatched twice")
	}
}

// complete records the native status and fires the completion callback.
// A second completion, or completion before dispatch, is an engine
// contract breach.
func (r *request) complete(status int) {
	if !r.state.CompareAndSwap(StateDispatched, StateCompleted) {
		panic("stream: request completed out of lifecycle order")
	}
	r.status = status
	if r.done != nil {
		r.done(status)
	}
}

// State returns the current lifecycle state.
func (r *request) State() int32 { return r.state.Load() }

// Completed reports whether the completion callback has fired.
func (r *request) Completed() bool { return r.state.Load() == StateCompleted }

// Status returns the completion status. Valid only once Completed.
func (r *request) Status() int { return r.status }

// WriteRequest represents one in-flight write. When the write carries an
// ancillary handle the request owns its buffer list until completion so
// the spans outlive the dispatch.
type WriteRequest struct {
	request
	stream     *Wrap
	bufs       BufferList
	sentHandle bool
}

// Stream returns the owning stream wrap.
func (r *WriteRequest) Stream() *Wrap { return r.stream }

// SentHandle reports whether an ancillary handle accompanied this write.
func (r *WriteRequest) SentHandle() bool { return r.sentHandle }

// Buffers returns the data view owned by this request.
func (r *WriteRequest) Buffers() BufferList { return r.bufs }

// ShutdownRequest represents one in-flight half-close. It carries no
// payload beyond its completion status.
type ShutdownRequest struct {
	request
	stream *Wrap
}

// Stream returns the owning stream wrap.
func (r *ShutdownRequest) Stream() *Wrap { return r.stream }
