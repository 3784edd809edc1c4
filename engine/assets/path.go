package assets

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrEscapesRoot is returned for paths whose ".." segments climb above the
// asset directory.
var ErrEscapesRoot = errors.New("assets: path escapes asset directory")

// Path names an asset relative to the asset directory. Segments are
// separated by "/" on every platform. The zero Path is the directory
// itself.
type Path struct {
	clean string
}

// NewPath joins segments into a Path. "." segments are dropped and ".."
// removes the previous segment.
func NewPath(segments ...string) (Path, error) {
	var out []string
	for _, s := range segments {
		switch s {
		case "", ".":
		case "..":
			if len(out) == 0 {
				return Path{}, fmt.Errorf("%w: %q", ErrEscapesRoot, strings.Join(segments, "/"))
			}
			out = out[:len(out)-1]
		default:
			out = append(out, s)
		}
	}
	return Path{clean: strings.Join(out, "/")}, nil
}

// ParsePath splits a slash separated path and normalizes it like NewPath.
func ParsePath(p string) (Path, error) {
	return NewPath(strings.Split(strings.ReplaceAll(p, `\`, "/"), "/")...)
}

// MustPath is ParsePath for paths known at compile time.
func MustPath(p string) Path {
	out, err := ParsePath(p)
	if err != nil {
		panic(err)
	}
	return out
}

func (p Path) String() string { return p.clean }

func (p Path) Segments() []string {
	if p.clean == "" {
		return nil
	}
	return strings.Split(p.clean, "/")
}

// Ext returns the extension of the last segment, including the dot.
func (p Path) Ext() string { return path.Ext(p.clean) }

// Join appends segments to p under the same rules as NewPath.
func (p Path) Join(segments ...string) (Path, error) {
	return NewPath(append(p.Segments(), segments...)...)
}

// fsName is the name used with fs.FS, which rejects empty names.
func (p Path) fsName() string {
	if p.clean == "" {
		return "."
	}
	return p.clean
}
