// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package stream implements the duplex-stream adapter between the engine's
// callback-driven handles and a host that issues reads, writes and
// shutdowns and observes their completions: buffer allocation, read event
// forwarding with ancillary handle transfer, the two write strategies,
// the half-close pipeline and write-queue introspection.
package stream
