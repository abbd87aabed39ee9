// File: api/errors.go
// Author: momentics <momentics@gmail.com>
//
// Status codes and common error values shared by engine and adapter.
// Completion callbacks carry plain negative-errno ints so the hot path
// never allocates; conversion to error happens at the host boundary.

package api

import (
	"fmt"
	"syscall"
)

// StatusOK is the status of a successfully completed operation.
const StatusOK = 0

// StatusEOF is delivered through read callbacks when the peer has closed
// its write side. It sits deliberately outside the errno range so it can
// never collide with a real error code.
const StatusEOF = -4095

// Common errors used across the library.
var (
	ErrHandleClosed  = fmt.Errorf("handle is closed")
	ErrLoopStopped   = fmt.Errorf("event loop is stopped")
	ErrNotSupported  = fmt.Errorf("operation not supported")
	ErrNotIPC        = fmt.Errorf("stream is not an IPC channel")
	ErrUnknownKind   = fmt.Errorf("unknown handle kind")
	ErrAlreadyBound  = fmt.Errorf("handle already owns a descriptor")
	ErrWrongPlatform = fmt.Errorf("engine not available on this platform")
)

// ErrnoStatus converts an errno into a negative status code.
func ErrnoStatus(e syscall.Errno) int {
	return -int(e)
}

// StatusErrno recovers the errno behind a negative status code.
// Calling it with a non-negative status or StatusEOF is a caller bug.
func StatusErrno(status int) syscall.Errno {
	return syscall.Errno(-status)
}

// StatusError converts a status code into an error for host consumption.
// Non-negative statuses yield nil.
func StatusError(status int) error {
	if status >= 0 {
		return nil
	}
	if status == StatusEOF {
		return fmt.Errorf("end of stream")
	}
	return StatusErrno(status)
}
