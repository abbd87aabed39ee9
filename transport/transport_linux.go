//go:build linux
// +build linux

// File: transport/transport_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-stream/api"
	"github.com/momentics/hioload-stream/internal/engio"
	"github.com/momentics/hioload-stream/loop"
	"github.com/momentics/hioload-stream/stream"
)

// KindRegistry instantiates unconnected local streams on the parent's
// loop for ancillary handle transfer. Transferred pipes are plain byte
// channels; nested IPC channels are not re-established automatically.
type KindRegistry struct{}

// Instantiate implements stream.Registry.
func (KindRegistry) Instantiate(kind api.HandleKind, parent *stream.Wrap) (*stream.Wrap, error) {
	es, ok := parent.Handle().(*engio.Stream)
	if !ok {
		return nil, api.ErrNotSupported
	}
	h := engio.NewUnconnected(es.Loop(), kind, false)
	return stream.New(h, nil, stream.WithRegistry(KindRegistry{})), nil
}

func wrap(h api.StreamHandle, opts []stream.Option) *stream.Wrap {
	opts = append([]stream.Option{stream.WithRegistry(KindRegistry{})}, opts...)
	return stream.New(h, nil, opts...)
}

// AdoptPipe wraps an existing connected pipe descriptor, typically one
// inherited from a parent process. ipc enables ancillary handle
// transfer; the descriptor must then be an AF_UNIX stream socket.
func AdoptPipe(lp *loop.Loop, fd int, ipc bool, opts ...stream.Option) (*stream.Wrap, error) {
	h, err := engio.Adopt(lp, fd, api.KindNamedPipe, ipc)
	if err != nil {
		return nil, fmt.Errorf("adopt pipe: %w", err)
	}
	return wrap(h, opts), nil
}

// AdoptTCP wraps an existing connected TCP socket descriptor.
func AdoptTCP(lp *loop.Loop, fd int, opts ...stream.Option) (*stream.Wrap, error) {
	h, err := engio.Adopt(lp, fd, api.KindTCP, false)
	if err != nil {
		return nil, fmt.Errorf("adopt tcp: %w", err)
	}
	return wrap(h, opts), nil
}

// AdoptUDP wraps an existing UDP socket descriptor.
func AdoptUDP(lp *loop.Loop, fd int, opts ...stream.Option) (*stream.Wrap, error) {
	h, err := engio.Adopt(lp, fd, api.KindUDP, false)
	if err != nil {
		return nil, fmt.Errorf("adopt udp: %w", err)
	}
	return wrap(h, opts), nil
}

// NewPipePair creates a connected pair of pipe streams on one loop,
// backed by an AF_UNIX socketpair. With ipc set, either end can carry
// ancillary handles to the other.
func NewPipePair(lp *loop.Loop, ipc bool) (*stream.Wrap, *stream.Wrap, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("socketpair: %w", err)
	}
	a, err := AdoptPipe(lp, fds[0], ipc)
	if err != nil {
		unix.Close(fds[0])
		unix.Close(fds[1])
		return nil, nil, err
	}
	b, err := AdoptPipe(lp, fds[1], ipc)
	if err != nil {
		a.Close(nil)
		unix.Close(fds[1])
		return nil, nil, err
	}
	return a, b, nil
}
