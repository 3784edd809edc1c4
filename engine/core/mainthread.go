package core

import (
	"context"
	"errors"
)

// ErrMainThreadClosed is returned by Do once the engine has shut down.
var ErrMainThreadClosed = errors.New("core: main thread queue closed")

// MainThread queues work that must run on the OS thread owning the graphics
// context. Background goroutines call Do and block until Drain runs it.
type MainThread struct {
	tasks chan func()
	done  chan struct{}
}

func NewMainThread() *MainThread {
	return &MainThread{
		tasks: make(chan func(), 64),
		done:  make(chan struct{}),
	}
}

// Do schedules fn and waits for it to finish.
func (m *MainThread) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	task := func() {
		defer close(finished)
		fn()
	}
	select {
	case m.tasks <- task:
	case <-m.done:
		return ErrMainThreadClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-m.done:
		return ErrMainThreadClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Drain runs every queued task. Call it from the main thread once per frame.
func (m *MainThread) Drain() int {
	n := 0
	for {
		select {
		case task := <-m.tasks:
			task()
			n++
		default:
			return n
		}
	}
}

// Close wakes every waiter with ErrMainThreadClosed.
func (m *MainThread) Close() {
	select {
	case <-m.done:
	default:
		close(m.done)
	}
}
