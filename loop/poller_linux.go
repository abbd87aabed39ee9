//go:build linux
// +build linux

// File: loop/poller_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll poller with an eventfd wakeup channel.

package loop

import (
	"encoding/binary"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

type watch struct {
	w     Watcher
	read  bool
	write bool
}

type epollPoller struct {
	epfd int
	evfd int

	mu       sync.Mutex
	watchers map[int]*watch
}

func newPoller(_ *Loop) (poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	evfd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		unix.Close(epfd)
		return nil, fmt.Errorf("eventfd: %w", err)
	}
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(evfd)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, evfd, &ev); err != nil {
		unix.Close(evfd)
		unix.Close(epfd)
		return nil, fmt.Errorf("epoll ctl add eventfd: %w", err)
	}
	return &epollPoller{
		epfd:     epfd,
		evfd:     evfd,
		watchers: make(map[int]*watch),
	}, nil
}

func (p *epollPoller) add(fd int, w Watcher) error {
	ev := unix.EpollEvent{Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("epoll ctl add: %w", err)
	}
	p.mu.Lock()
	p.watchers[fd] = &watch{w: w}
	p.mu.Unlock()
	return nil
}

func (p *epollPoller) mod(fd int, read, write bool) error {
	p.mu.Lock()
	wt, ok := p.watchers[fd]
	if ok {
		wt.read, wt.write = read, write
	}
	p.mu.Unlock()
	if !ok {
		return fmt.Errorf("mod: fd %d not registered", fd)
	}
	var events uint32
	if read {
		events |= unix.EPOLLIN
	}
	if write {
		events |= unix.EPOLLOUT
	}
	ev := unix.EpollEvent{Events: events, Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
		return fmt.Errorf("epoll ctl mod: %w", err)
	}
	return nil
}

func (p *epollPoller) del(fd int) error {
	p.mu.Lock()
	delete(p.watchers, fd)
	p.mu.Unlock()
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return fmt.Errorf("epoll ctl del: %w", err)
	}
	return nil
}

func (p *epollPoller) wait(timeoutMs int) error {
	var events [128]unix.EpollEvent
	n, err := unix.EpollWait(p.epfd, events[:], timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return nil
		}
		return fmt.Errorf("epoll wait: %w", err)
	}
	for i := 0; i < n; i++ {
		fd := int(events[i].Fd)
		if fd == p.evfd {
			var buf [8]byte
			unix.Read(p.evfd, buf[:])
			continue
		}
		p.mu.Lock()
		wt, ok := p.watchers[fd]
		p.mu.Unlock()
		if !ok {
			continue
		}
		mask := events[i].Events
		if mask&(unix.EPOLLIN|unix.EPOLLHUP|unix.EPOLLERR) != 0 {
			wt.w.OnReadable()
		}
		// Re-check registration; the readable callback may have closed
		// the handle and dropped the watcher.
		p.mu.Lock()
		_, ok = p.watchers[fd]
		p.mu.Unlock()
		if ok && mask&unix.EPOLLOUT != 0 {
			wt.w.OnWritable()
		}
	}
	return nil
}

func (p *epollPoller) wake() error {
	var one [8]byte
	binary.NativeEndian.PutUint64(one[:], 1)
	_, err := unix.Write(p.evfd, one[:])
	if err == unix.EAGAIN {
		return nil
	}
	return err
}

func (p *epollPoller) close() error {
	unix.Close(p.evfd)
	return unix.Close(p.epfd)
}
