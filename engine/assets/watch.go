package assets

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/hubastard/questsage/engine/core"
)

// Watch reloads assets in place whenever their file changes on disk. It
// blocks until ctx is cancelled. Only managers built with NewDirManager can
// watch.
func (m *Manager) Watch(ctx context.Context) error {
	if m.dir == "" {
		return ErrNoWatchDir
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	err = filepath.WalkDir(m.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	core.Logger().Info("watching assets", "dir", m.dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) && isDir(ev.Name) {
				if err := w.Add(ev.Name); err != nil {
					core.Logger().Warn("cannot watch new directory", "dir", ev.Name, "err", err)
				}
				continue
			}
			if p, ok := m.changed(ev); ok {
				go func() {
					if err := m.Reload(ctx, p); err != nil {
						core.Logger().Warn("asset reload failed", "path", p, "err", err)
					} else {
						core.Logger().Info("asset reloaded", "path", p)
					}
				}()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			core.Logger().Warn("asset watcher error", "err", err)
		}
	}
}

// changed maps a file event to the tracked asset it touches.
func (m *Manager) changed(ev fsnotify.Event) (Path, bool) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return Path{}, false
	}
	rel, err := filepath.Rel(m.dir, ev.Name)
	if err != nil {
		return Path{}, false
	}
	p, err := ParsePath(filepath.ToSlash(rel))
	if err != nil || !m.Tracked(p) {
		return Path{}, false
	}
	return p, true
}

func isDir(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}
