package assets

import (
	"context"
	"slices"
	"sync"
)

// Handle is a shared reference to an asset that may still be loading.
// Renderers poll it with Value and skip what is not ready; background work
// blocks on Wait.
//
// A handle settles once, either loaded or failed. A reload replaces the
// value of a loaded handle in place.
type Handle[T any] struct {
	path Path

	mu     sync.RWMutex
	value  T
	loaded bool
	err    error
	onLoad []func(T)
	done   chan struct{}
}

func newHandle[T any](p Path) *Handle[T] {
	return &Handle[T]{path: p, done: make(chan struct{})}
}

// NewLoaded returns a handle that already holds v.
func NewLoaded[T any](v T) *Handle[T] {
	h := newHandle[T](Path{})
	h.set(v)
	return h
}

func (h *Handle[T]) Path() Path { return h.path }

// Value returns the asset if it has loaded.
func (h *Handle[T]) Value() (T, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.value, h.loaded
}

// Err returns the load error of a failed handle.
func (h *Handle[T]) Err() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.err
}

// Settled reports whether the handle has loaded or failed.
func (h *Handle[T]) Settled() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// OnLoad runs fn with the value now if the handle is loaded, and again
// after every later load or reload. Callbacks run on the loading goroutine.
func (h *Handle[T]) OnLoad(fn func(T)) {
	h.mu.Lock()
	h.onLoad = append(h.onLoad, fn)
	v, loaded := h.value, h.loaded
	h.mu.Unlock()
	if loaded {
		fn(v)
	}
}

// Wait blocks until the handle settles and returns its value or error.
func (h *Handle[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-h.done:
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.value, h.err
}

// Await is Wait without the value, so handles of any type can be waited
// on together.
func (h *Handle[T]) Await(ctx context.Context) error {
	_, err := h.Wait(ctx)
	return err
}

// set stores v and returns the value it replaced, if any.
func (h *Handle[T]) set(v T) (old T, replaced bool) {
	h.mu.Lock()
	old, replaced = h.value, h.loaded
	h.value, h.loaded, h.err = v, true, nil
	hooks := slices.Clone(h.onLoad)
	h.mu.Unlock()
	h.settle()
	for _, fn := range hooks {
		fn(v)
	}
	return old, replaced
}

// fail records err unless the handle already holds a value.
func (h *Handle[T]) fail(err error) {
	h.mu.Lock()
	if !h.loaded {
		h.err = err
	}
	h.mu.Unlock()
	h.settle()
}

func (h *Handle[T]) settle() {
	h.mu.Lock()
	defer h.mu.Unlock()
	select {
	case <-h.done:
	default:
		close(h.done)
	}
}

// IfLoaded calls fn with the asset if it has loaded.
func IfLoaded[T, R any](h *Handle[T], fn func(T) R) (R, bool) {
	v, ok := h.Value()
	if !ok {
		var zero R
		return zero, false
	}
	return fn(v), true
}
