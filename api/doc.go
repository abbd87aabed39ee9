// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package api defines the contracts between the hioload-stream event loop
// engine and the duplex-stream adapter layer: handle lifecycle, stream
// operations, callback signatures, handle kinds and status codes.
package api
