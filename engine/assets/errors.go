package assets

import (
	"errors"
	"fmt"
)

// ErrNoWatchDir is returned by Watch for managers not backed by a
// directory.
var ErrNoWatchDir = errors.New("assets: manager has no directory to watch")

// LoadErrorKind says which step of loading failed.
type LoadErrorKind uint8

const (
	// FileNotFound means the file could not be opened.
	FileNotFound LoadErrorKind = iota
	// FileNotReadable means the file opened but reading it failed.
	FileNotReadable
	// InvalidData means the loader rejected the file's contents.
	InvalidData
)

func (k LoadErrorKind) String() string {
	switch k {
	case FileNotFound:
		return "file not found"
	case FileNotReadable:
		return "file not readable"
	default:
		return "invalid data"
	}
}

// LoadError is the error a handle settles with when its asset could not be
// loaded. A later reload may still load the handle.
type LoadError struct {
	Kind LoadErrorKind
	Path Path
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("assets: load %q: %s: %v", e.Path, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
