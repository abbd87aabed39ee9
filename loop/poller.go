// File: loop/poller.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral poller contract consumed by Loop. Implementations
// dispatch readiness to Watchers from inside wait.

package loop

type poller interface {
	add(fd int, w Watcher) error
	mod(fd int, read, write bool) error
	del(fd int) error

	// wait blocks up to timeoutMs milliseconds and dispatches readiness
	// callbacks for every ready descriptor.
	wait(timeoutMs int) error

	// wake interrupts a concurrent wait. Safe from any goroutine.
	wake() error

	close() error
}
