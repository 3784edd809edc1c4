package text

import (
	"sync"

	"github.com/go-text/typesetting/di"
	gotext "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// ShapedGlyph is one glyph of a shaped run. Cluster indexes the rune of
// the run that produced it. Offsets are y-down.
type ShapedGlyph struct {
	Glyph            sfnt.GlyphIndex
	Cluster          int
	XAdvance         float32
	XOffset, YOffset float32
}

// Shaper positions the glyphs of a run that uses one font throughout.
// glyphs holds the cmap lookup of every rune in text.
type Shaper interface {
	Shape(f *Font, size float32, text []rune, glyphs []sfnt.GlyphIndex) []ShapedGlyph
}

// BasicShaper maps runes to glyphs one to one and applies pair kerning.
type BasicShaper struct{}

func (BasicShaper) Shape(f *Font, size float32, _ []rune, glyphs []sfnt.GlyphIndex) []ShapedGlyph {
	out := make([]ShapedGlyph, len(glyphs))
	for i, g := range glyphs {
		out[i] = ShapedGlyph{Glyph: g, Cluster: i, XAdvance: f.Advance(g, size)}
		if i > 0 {
			out[i-1].XAdvance += f.Kern(glyphs[i-1], g, size)
		}
	}
	return out
}

// HarfbuzzShaper shapes with go-text/typesetting, which adds ligatures,
// GPOS kerning and complex script support. It falls back to BasicShaper
// when go-text cannot read the font.
type HarfbuzzShaper struct {
	pool sync.Pool
}

func NewHarfbuzzShaper() *HarfbuzzShaper {
	return &HarfbuzzShaper{pool: sync.Pool{New: func() any { return new(shaping.HarfbuzzShaper) }}}
}

func (h *HarfbuzzShaper) Shape(f *Font, size float32, text []rune, glyphs []sfnt.GlyphIndex) []ShapedGlyph {
	gt, err := f.goText()
	if err != nil || len(text) == 0 {
		return BasicShaper{}.Shape(f, size, text, glyphs)
	}
	in := shaping.Input{
		Text:      text,
		RunStart:  0,
		RunEnd:    len(text),
		Direction: di.DirectionLTR,
		Face:      gotext.NewFace(gt),
		Size:      fixed.Int26_6(size * 64),
		Script:    language.LookupScript(text[0]),
		Language:  language.NewLanguage("en"),
	}
	hb := h.pool.Get().(*shaping.HarfbuzzShaper)
	res := hb.Shape(in)
	h.pool.Put(hb)

	out := make([]ShapedGlyph, 0, len(res.Glyphs))
	for _, g := range res.Glyphs {
		out = append(out, ShapedGlyph{
			Glyph:    sfnt.GlyphIndex(g.GlyphID),
			Cluster:  g.ClusterIndex,
			XAdvance: fromFixed(g.XAdvance),
			XOffset:  fromFixed(g.XOffset),
			YOffset:  -fromFixed(g.YOffset),
		})
	}
	return out
}
