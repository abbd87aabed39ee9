//go:build linux
// +build linux

// File: loop/loop_test.go
// Author: momentics <momentics@gmail.com>

package loop_test

import (
	"testing"
	"time"

	"github.com/momentics/hioload-stream/loop"
)

func TestDeferPreservesFIFOOrder(t *testing.T) {
	l, err := loop.New()
	if err != nil {
		t.Fatalf("loop.New: %v", err)
	}
	defer l.Close()

	var order []int
	l.RefHandle()
	l.Post(func() {
		l.Defer(func() { order = append(order, 1) })
		l.Defer(func() { order = append(order, 2) })
		l.Defer(func() {
			order = append(order, 3)
			l.UnrefHandle()
		})
	})
	if err := l.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("order = %v, want [1 2 3]", order)
	}
}

func TestPostRunsOnLoopThread(t *testing.T) {
	l, err := loop.New()
	if err != nil {
		t.Fatalf("loop.New: %v", err)
	}
	defer l.Close()

	l.RefHandle()
	done := make(chan struct{})
	go func() {
		// Give Run a head start so Post must wake the poller.
		time.Sleep(10 * time.Millisecond)
		l.Post(func() {
			close(done)
			l.UnrefHandle()
		})
	}()
	if err := l.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	select {
	case <-done:
	default:
		t.Fatal("posted task did not run")
	}
}

func TestRunExitsWhenNoRefs(t *testing.T) {
	l, err := loop.New()
	if err != nil {
		t.Fatalf("loop.New: %v", err)
	}
	defer l.Close()

	exited := make(chan error, 1)
	go func() { exited <- l.Run() }()
	select {
	case err := <-exited:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not exit with zero ref'd handles")
	}
}

func TestStopInterruptsRun(t *testing.T) {
	l, err := loop.New()
	if err != nil {
		t.Fatalf("loop.New: %v", err)
	}
	defer l.Close()

	l.RefHandle() // keeps Run alive until Stop
	exited := make(chan error, 1)
	go func() { exited <- l.Run() }()

	time.Sleep(20 * time.Millisecond)
	l.Stop()

	select {
	case err := <-exited:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not interrupt Run")
	}
}
