//go:build !linux
// +build !linux

// File: transport/transport_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub constructors for platforms without an engine implementation.

package transport

import (
	"github.com/momentics/hioload-stream/api"
	"github.com/momentics/hioload-stream/loop"
	"github.com/momentics/hioload-stream/stream"
)

// KindRegistry is unavailable on this platform.
type KindRegistry struct{}

// Instantiate implements stream.Registry.
func (KindRegistry) Instantiate(api.HandleKind, *stream.Wrap) (*stream.Wrap, error) {
	return nil, api.ErrWrongPlatform
}

// AdoptPipe is unavailable on this platform.
func AdoptPipe(*loop.Loop, int, bool, ...stream.Option) (*stream.Wrap, error) {
	return nil, api.ErrWrongPlatform
}

// AdoptTCP is unavailable on this platform.
func AdoptTCP(*loop.Loop, int, ...stream.Option) (*stream.Wrap, error) {
	return nil, api.ErrWrongPlatform
}

// AdoptUDP is unavailable on this platform.
func AdoptUDP(*loop.Loop, int, ...stream.Option) (*stream.Wrap, error) {
	return nil, api.ErrWrongPlatform
}

// NewPipePair is unavailable on this platform.
func NewPipePair(*loop.Loop, bool) (*stream.Wrap, *stream.Wrap, error) {
	return nil, nil, api.ErrWrongPlatform
}
