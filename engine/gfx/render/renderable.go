// Package render turns trees of drawable content into as few batch flushes
// as the texture changes in the tree allow.
package render

import (
	"github.com/hubastard/questsage/engine/gfx/renderer2d"
	"github.com/hubastard/questsage/engine/text"
)

// MultiRenderable describes what to draw without touching the GPU. The
// variants are Nothing, Layered, Adjacent, Text, Image and ImageRegion.
type MultiRenderable interface {
	isMultiRenderable()
}

// Nothing draws nothing.
type Nothing struct{}

// Layered draws each element fully before the next one starts. Order
// inside a single layer is not guaranteed.
type Layered []MultiRenderable

// Adjacent elements have no ordering between them and may be merged freely.
type Adjacent []MultiRenderable

// Text is one typeset word drawn through the text renderer.
type Text struct {
	Run text.Run
}

// Image draws primitives with a single texture bound. A nil Texture is
// compatible with any other texture.
type Image struct {
	Texture     renderer2d.TextureSource
	Renderables []renderer2d.Renderable
}

// ImageRegion draws primitives whose texture coordinates are relative to a
// region of a shared atlas texture.
type ImageRegion struct {
	Region      renderer2d.TextureRegion
	Renderables []renderer2d.Renderable
}

func (Nothing) isMultiRenderable()     {}
func (Layered) isMultiRenderable()     {}
func (Adjacent) isMultiRenderable()    {}
func (Text) isMultiRenderable()        {}
func (Image) isMultiRenderable()       {}
func (ImageRegion) isMultiRenderable() {}

// Translate returns a copy of mr moved by (dx, dy).
func Translate(mr MultiRenderable, dx, dy float32) MultiRenderable {
	if dx == 0 && dy == 0 {
		return mr
	}
	switch n := mr.(type) {
	case Layered:
		out := make(Layered, len(n))
		for i, c := range n {
			out[i] = Translate(c, dx, dy)
		}
		return out
	case Adjacent:
		out := make(Adjacent, len(n))
		for i, c := range n {
			out[i] = Translate(c, dx, dy)
		}
		return out
	case Text:
		n.Run.Offset[0] += dx
		n.Run.Offset[1] += dy
		return n
	case Image:
		return Image{Texture: n.Texture, Renderables: translateAll(n.Renderables, dx, dy)}
	case ImageRegion:
		return ImageRegion{Region: n.Region, Renderables: translateAll(n.Renderables, dx, dy)}
	default:
		return mr
	}
}

func translateAll(rs []renderer2d.Renderable, dx, dy float32) []renderer2d.Renderable {
	out := make([]renderer2d.Renderable, len(rs))
	for i, r := range rs {
		out[i] = renderer2d.Translate(r, dx, dy)
	}
	return out
}

// Wrap drops empty elements and avoids single element wrappers.
func Wrap(layered bool, items ...MultiRenderable) MultiRenderable {
	kept := items[:0:0]
	for _, it := range items {
		if it == nil {
			continue
		}
		if _, ok := it.(Nothing); ok {
			continue
		}
		kept = append(kept, it)
	}
	switch len(kept) {
	case 0:
		return Nothing{}
	case 1:
		return kept[0]
	}
	if layered {
		return Layered(kept)
	}
	return Adjacent(kept)
}
