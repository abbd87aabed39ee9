// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package loop implements the single-threaded cooperative event loop that
// drives all stream handles: an epoll poller on Linux (stubbed elsewhere),
// a cross-goroutine task inbox, and a deferred-completion FIFO drained once
// per iteration so completions never reenter the dispatching call stack.
package loop
