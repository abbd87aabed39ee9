// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package transport constructs host-visible stream wraps for the three
// concrete stream kinds: TCP sockets, named pipes (IPC-capable) and UDP
// sockets. It also provides the default kind registry used to
// instantiate local streams during ancillary handle transfer.
package transport
