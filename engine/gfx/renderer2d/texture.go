package renderer2d

import "github.com/hubastard/questsage/engine/core"

// TextureSource yields a GPU texture once it is available. Asset handles
// satisfy it; a source that is still loading reports false.
//
// Implementations must be comparable: the MultiBatch groups draws by
// source identity.
type TextureSource interface {
	Value() (core.Texture, bool)
}

// StaticTexture is a TextureSource that is always loaded.
type StaticTexture struct{ tex core.Texture }

func Static(t core.Texture) *StaticTexture { return &StaticTexture{tex: t} }

func (s *StaticTexture) Value() (core.Texture, bool) { return s.tex, s.tex != nil }

// TextureRegion describes a UV sub-rect of a shared texture.
type TextureRegion struct {
	Source TextureSource
	U0, V0 float32 // top-left
	U1, V1 float32 // bottom-right
}

// FromPixels builds a region from pixel coordinates within an atlas.
func FromPixels(src TextureSource, x, y, w, h, atlasW, atlasH int) TextureRegion {
	return TextureRegion{
		Source: src,
		U0:     float32(x) / float32(atlasW),
		V0:     float32(y) / float32(atlasH),
		U1:     float32(x+w) / float32(atlasW),
		V1:     float32(y+h) / float32(atlasH),
	}
}

// FromGrid builds a region from tile grid coordinates (cx,cy) of cell size (cw,ch).
func FromGrid(src TextureSource, cx, cy, cw, ch, atlasW, atlasH int) TextureRegion {
	return FromPixels(src, cx*cw, cy*ch, cw, ch, atlasW, atlasH)
}

// MapUV converts region-local (u, v) in [0,1] to texture coordinates.
func (r TextureRegion) MapUV(u, v float32) (float32, float32) {
	return r.U0 + u*(r.U1-r.U0), r.V0 + v*(r.V1-r.V0)
}
