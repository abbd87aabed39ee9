//go:build linux
// +build linux

// File: internal/engio/probe_linux.go
// Author: momentics <momentics@gmail.com>
//
// Kind probing for descriptors received over an IPC channel.

package engio

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-stream/api"
)

// probeFDKind classifies a received descriptor. AF_UNIX stream sockets
// and fifos both present as named pipes; inet sockets split into TCP and
// UDP by socket type. Anything else is unknown and will trip the
// adapter's protocol-violation path.
func probeFDKind(fd int) api.HandleKind {
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return api.KindUnknown
	}
	switch st.Mode & unix.S_IFMT {
	case unix.S_IFIFO:
		return api.KindNamedPipe
	case unix.S_IFSOCK:
		soType, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_TYPE)
		if err != nil {
			return api.KindUnknown
		}
		domain, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_DOMAIN)
		if err != nil {
			return api.KindUnknown
		}
		switch {
		case domain == unix.AF_UNIX:
			return api.KindNamedPipe
		case soType == unix.SOCK_DGRAM:
			return api.KindUDP
		case soType == unix.SOCK_STREAM:
			return api.KindTCP
		}
	}
	return api.KindUnknown
}
