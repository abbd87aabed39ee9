//go:build !linux
// +build !linux

// File: loop/poller_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub poller for platforms without an engine implementation.

package loop

import "github.com/momentics/hioload-stream/api"

func newPoller(_ *Loop) (poller, error) {
	return nil, api.ErrWrongPlatform
}
