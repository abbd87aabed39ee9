// File: stream/shutdown.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package stream

import "github.com/momentics/hioload-stream/api"

// Shutdown issues a half-close of the write side. done fires exactly
// once with the native status once queued writes have drained, or with
// -ECANCELED if the handle closes first. The returned status is the
// dispatch result, zero on success.
func (w *Wrap) Shutdown(done api.CompletionCallback) (*ShutdownRequest, int) {
	req := &ShutdownRequest{stream: w}
	req.done = done

	status := w.handle.Shutdown(req.complete)
	req.markDispatched()
	return req, status
}
