// Package assets loads files from the asset directory in the background
// and hands out shared handles to them.
package assets

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"runtime"
	"slices"
	"sync"

	"github.com/hubastard/questsage/engine/core"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

// Loader decodes the bytes of one file.
type Loader[T any] interface {
	Load(ctx context.Context, p Path, data []byte) (T, error)
}

// Releaser is implemented by loaders whose values hold resources that
// outlive the garbage collector, such as GPU textures. A reload releases
// the value it replaced.
type Releaser[T any] interface {
	Release(ctx context.Context, v T) error
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc[T any] func(ctx context.Context, p Path, data []byte) (T, error)

func (f LoaderFunc[T]) Load(ctx context.Context, p Path, data []byte) (T, error) {
	return f(ctx, p, data)
}

// Manager reads asset files and runs loads in the background. Typed
// lookups go through a Store.
type Manager struct {
	fsys fs.FS
	dir  string // empty unless built with NewDirManager

	ctx    context.Context
	cancel context.CancelFunc
	sem    *semaphore.Weighted
	loads  sync.WaitGroup

	reloads singleflight.Group

	mu        sync.Mutex
	reloaders map[Path][]func(context.Context) error
}

type ManagerOption func(*Manager)

// WithParallelLoads caps how many files are loaded at once.
func WithParallelLoads(n int64) ManagerOption {
	return func(m *Manager) { m.sem = semaphore.NewWeighted(max(n, 1)) }
}

// NewManager loads assets from fsys.
func NewManager(fsys fs.FS, opts ...ManagerOption) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		fsys:      fsys,
		ctx:       ctx,
		cancel:    cancel,
		sem:       semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0))),
		reloaders: make(map[Path][]func(context.Context) error),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// NewDirManager loads assets from dir and can watch it for changes.
func NewDirManager(dir string, opts ...ManagerOption) *Manager {
	m := NewManager(os.DirFS(dir), opts...)
	m.dir = dir
	return m
}

// Close cancels loads that have not started and waits for running ones.
func (m *Manager) Close() {
	m.cancel()
	m.loads.Wait()
}

// Wait blocks until every load started so far has finished.
func (m *Manager) Wait() { m.loads.Wait() }

// read returns the file's contents or a LoadError.
func (m *Manager) read(p Path) ([]byte, error) {
	f, err := m.fsys.Open(p.fsName())
	if err != nil {
		return nil, &LoadError{Kind: FileNotFound, Path: p, Err: err}
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, &LoadError{Kind: FileNotReadable, Path: p, Err: err}
	}
	return data, nil
}

func (m *Manager) onReload(p Path, fn func(context.Context) error) {
	m.mu.Lock()
	m.reloaders[p] = append(m.reloaders[p], fn)
	m.mu.Unlock()
}

// Reload loads p again for every store that holds it. Concurrent reloads
// of the same path share one run.
func (m *Manager) Reload(ctx context.Context, p Path) error {
	_, err, _ := m.reloads.Do(p.String(), func() (any, error) {
		m.mu.Lock()
		fns := slices.Clone(m.reloaders[p])
		m.mu.Unlock()

		var errs []error
		for _, fn := range fns {
			if err := fn(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		return nil, errors.Join(errs...)
	})
	return err
}

// Tracked reports whether any store holds p.
func (m *Manager) Tracked(p Path) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reloaders[p]) > 0
}

// Awaitable is anything that can be waited on until it settles.
type Awaitable interface {
	Await(ctx context.Context) error
}

// WaitAll waits for every handle to settle and returns the first error.
func WaitAll(ctx context.Context, hs ...Awaitable) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, h := range hs {
		g.Go(func() error { return h.Await(gctx) })
	}
	return g.Wait()
}

// Store hands out handles of one asset type. Each path is loaded at most
// once and its handle shared.
type Store[T any] struct {
	m      *Manager
	loader Loader[T]

	mu      sync.Mutex
	handles map[Path]*Handle[T]
}

func NewStore[T any](m *Manager, loader Loader[T]) *Store[T] {
	return &Store[T]{m: m, loader: loader, handles: make(map[Path]*Handle[T])}
}

// Get returns the handle for p, starting its load on first use.
func (s *Store[T]) Get(p Path) *Handle[T] {
	s.mu.Lock()
	if h, ok := s.handles[p]; ok {
		s.mu.Unlock()
		return h
	}
	h := newHandle[T](p)
	s.handles[p] = h
	s.mu.Unlock()

	s.m.onReload(p, func(ctx context.Context) error { return s.load(ctx, h) })
	s.m.loads.Add(1)
	go func() {
		defer s.m.loads.Done()
		if err := s.load(s.m.ctx, h); err != nil {
			core.Logger().Warn("asset load failed", "path", p, "err", err)
		}
	}()
	return h
}

// GetPath parses p and returns its handle. A path escaping the asset
// directory yields a failed handle.
func (s *Store[T]) GetPath(p string) *Handle[T] {
	path, err := ParsePath(p)
	if err != nil {
		h := newHandle[T](Path{})
		h.fail(&LoadError{Kind: FileNotFound, Err: err})
		return h
	}
	return s.Get(path)
}

// Len returns the number of paths requested so far.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

func (s *Store[T]) load(ctx context.Context, h *Handle[T]) error {
	if err := s.m.sem.Acquire(ctx, 1); err != nil {
		h.fail(err)
		return err
	}
	defer s.m.sem.Release(1)

	data, err := s.m.read(h.path)
	if err != nil {
		h.fail(err)
		return err
	}
	v, err := s.loader.Load(ctx, h.path, data)
	if err != nil {
		err = &LoadError{Kind: InvalidData, Path: h.path, Err: err}
		h.fail(err)
		return err
	}
	old, replaced := h.set(v)
	core.Logger().Debug("asset loaded", "path", h.path, "reload", replaced)
	if r, ok := s.loader.(Releaser[T]); ok && replaced {
		if err := r.Release(ctx, old); err != nil {
			core.Logger().Warn("releasing replaced asset", "path", h.path, "err", err)
		}
	}
	return nil
}
