package render

import (
	"github.com/hubastard/questsage/engine/colors"
	"github.com/hubastard/questsage/engine/gfx/renderer2d"
)

// NinePatch splits a texture into a 3x3 grid so its borders keep their
// size while the centre stretches. Margins are in texels and must not
// exceed the texture size on either axis.
//
// Bottom and Top name the ends of the v axis: Bottom covers v from 0, the
// first rows of an image as loaded, and is drawn at the smallest y. Under
// the y-down screen camera used by the UI that is the top strip on screen,
// so a patch whose image has a taller top border sets Bottom to it.
type NinePatch struct {
	Texture renderer2d.TextureSource

	TextureWidth  float32
	TextureHeight float32

	Left, Right, Top, Bottom float32
}

// NoMargins is a NinePatch that stretches the whole texture.
func NoMargins(tex renderer2d.TextureSource, width, height float32) NinePatch {
	return NinePatch{Texture: tex, TextureWidth: width, TextureHeight: height}
}

// Quads returns the nine quads covering (x, y)-(x+w, y+h). The bottom
// margin sits at y and the top margin at y+h.
func (n NinePatch) Quads(colour colors.Color, x, y, w, h float32) []renderer2d.Renderable {
	us := [4]float32{0, n.Left / n.TextureWidth, 1 - n.Right/n.TextureWidth, 1}
	vs := [4]float32{0, n.Bottom / n.TextureHeight, 1 - n.Top/n.TextureHeight, 1}
	xs := [4]float32{x, x + n.Left, x + w - n.Right, x + w}
	ys := [4]float32{y, y + n.Bottom, y + h - n.Top, y + h}

	out := make([]renderer2d.Renderable, 0, 9)
	for i := range 3 {
		for j := range 3 {
			out = append(out, renderer2d.Quad{
				{Position: [3]float32{xs[i], ys[j], 0}, Color: colour, TexCoords: [2]float32{us[i], vs[j]}},
				{Position: [3]float32{xs[i+1], ys[j], 0}, Color: colour, TexCoords: [2]float32{us[i+1], vs[j]}},
				{Position: [3]float32{xs[i+1], ys[j+1], 0}, Color: colour, TexCoords: [2]float32{us[i+1], vs[j+1]}},
				{Position: [3]float32{xs[i], ys[j+1], 0}, Color: colour, TexCoords: [2]float32{us[i], vs[j+1]}},
			})
		}
	}
	return out
}

// Render describes the patch drawn over (x, y)-(x+w, y+h).
func (n NinePatch) Render(colour colors.Color, x, y, w, h float32) MultiRenderable {
	return Image{Texture: n.Texture, Renderables: n.Quads(colour, x, y, w, h)}
}

// RenderRegion is Render for a patch stored in a region of an atlas. The
// texture size is the size of the region.
func (n NinePatch) RenderRegion(region renderer2d.TextureRegion, colour colors.Color, x, y, w, h float32) MultiRenderable {
	return ImageRegion{Region: region, Renderables: n.Quads(colour, x, y, w, h)}
}
