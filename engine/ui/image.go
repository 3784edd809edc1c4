package ui

import (
	"github.com/hubastard/questsage/engine/colors"
	"github.com/hubastard/questsage/engine/gfx/render"
	"github.com/hubastard/questsage/engine/gfx/renderer2d"
)

// Image is a fixed-size textured quad.
type Image struct {
	Texture       renderer2d.TextureSource
	Width, Height float32
	Tint          colors.Color
}

// NewImage returns an untinted image of the given size.
func NewImage(tex renderer2d.TextureSource, width, height float32) Image {
	return Image{Texture: tex, Width: width, Height: height, Tint: colors.White}
}

func (i Image) Size() Size { return SizePoints(i.Width, i.Height) }

func (i Image) Render(l Layout) render.MultiRenderable {
	return render.Image{Texture: i.Texture, Renderables: []renderer2d.Renderable{
		renderer2d.Rect(l.X, l.Y, l.Width, l.Height, i.Tint, renderer2d.FullUV),
	}}
}

// NinePatchElement stretches a nine-patch over whatever space the layout
// gives it. It is mostly used as a widget background.
type NinePatchElement struct {
	Patch  render.NinePatch
	Colour colors.Color
}

func (NinePatchElement) Size() Size { return Size{} }

func (n NinePatchElement) Render(l Layout) render.MultiRenderable {
	return n.Patch.Render(n.Colour, l.X, l.Y, l.Width, l.Height)
}
