package render

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hubastard/questsage/engine/gfx/renderer2d"
)

var ErrUnknownFrame = errors.New("render: unknown atlas frame")

// AtlasRect is a pixel rectangle with its origin at the top-left of the
// atlas.
type AtlasRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// AtlasFrame is one packed image. Rotated frames were turned 90 degrees
// clockwise by the packer. Source holds the trimmed offset inside the
// original image and the original size.
type AtlasFrame struct {
	Frame   AtlasRect `json:"frame"`
	Rotated bool      `json:"rotated"`
	Trimmed bool      `json:"trimmed"`
	Source  AtlasRect `json:"source"`
}

// Atlas is the metadata written by the texture packer next to the packed
// image.
type Atlas struct {
	Width  int                   `json:"width"`
	Height int                   `json:"height"`
	Frames map[string]AtlasFrame `json:"frames"`
}

// ParseAtlas decodes atlas metadata.
func ParseAtlas(data []byte) (*Atlas, error) {
	var a Atlas
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("render: parse atlas: %w", err)
	}
	if a.Width <= 0 || a.Height <= 0 {
		return nil, fmt.Errorf("render: atlas has invalid size %dx%d", a.Width, a.Height)
	}
	for name, f := range a.Frames {
		r := f.Frame
		if r.X < 0 || r.Y < 0 || r.X+r.W > a.Width || r.Y+r.H > a.Height {
			return nil, fmt.Errorf("render: frame %q lies outside the %dx%d atlas", name, a.Width, a.Height)
		}
	}
	return &a, nil
}

// Region returns the texture region of the named frame within src.
func (a *Atlas) Region(src renderer2d.TextureSource, name string) (renderer2d.TextureRegion, error) {
	f, ok := a.Frames[name]
	if !ok {
		return renderer2d.TextureRegion{}, fmt.Errorf("%w: %q", ErrUnknownFrame, name)
	}
	return renderer2d.FromPixels(src, f.Frame.X, f.Frame.Y, f.Frame.W, f.Frame.H, a.Width, a.Height), nil
}
