// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package engio implements the engine side of the stream contract over
// raw descriptors: non-blocking reads with caller-supplied buffers, a
// queued write path flushed on writability, SCM_RIGHTS ancillary handle
// transfer on IPC channels, half-close sequencing after queue drain, and
// close teardown that cancels still-pending completions.
//
// All methods are loop-thread confined unless noted otherwise.
package engio
