package text

import (
	"errors"
	"image"
	"slices"

	"github.com/chewxy/math32"
	"github.com/hubastard/questsage/engine/core"
	"github.com/hubastard/questsage/engine/gfx/renderer2d"
)

// Run places a word at an offset in world space.
type Run struct {
	Word   *Word
	Offset [2]float32
}

// Renderer draws runs through a glyph cache backed by one R8 texture.
// It must be used from the render thread.
type Renderer struct {
	r     core.Renderer
	cache *GlyphCache
	batch *renderer2d.Batch
	tex   *renderer2d.StaticTexture

	// generation advances whenever the cache repacks.
	generation uint64
	items      []renderer2d.Renderable
}

// AtlasBaseSize is the glyph atlas edge length at scale 1.
const AtlasBaseSize = 1024

func NewRenderer(r core.Renderer, reg *FontRegistry, scale float32) (*Renderer, error) {
	size := int(AtlasBaseSize * max(scale, 1))
	tex, err := r.CreateTexture(core.TextureDesc{
		Width:     size,
		Height:    size,
		Format:    core.TextureR8,
		MinFilter: "linear",
		MagFilter: "linear",
		WrapU:     "clamp",
		WrapV:     "clamp",
	})
	if err != nil {
		return nil, err
	}
	batch, err := renderer2d.NewTextBatch(r)
	if err != nil {
		tex.Release()
		return nil, err
	}
	return &Renderer{
		r:     r,
		cache: NewGlyphCache(size, size, reg),
		batch: batch,
		tex:   renderer2d.Static(tex),
	}, nil
}

func (tr *Renderer) Generation() uint64                { return tr.generation }
func (tr *Renderer) Cache() *GlyphCache                { return tr.cache }
func (tr *Renderer) Stats() renderer2d.Statistics      { return tr.batch.Stats() }
func (tr *Renderer) ResetStats()                       { tr.batch.ResetStats() }
func (tr *Renderer) Texture() renderer2d.TextureSource { return tr.tex }

// DrawText caches every glyph the runs use and draws them in one batch.
func (tr *Renderer) DrawText(runs []Run, cam renderer2d.Camera) {
	if len(runs) == 0 {
		return
	}
	for _, run := range runs {
		for _, g := range run.Word.Glyphs {
			tr.cache.QueueGlyph(g.Font, g.Glyph)
		}
	}

	tex, _ := tr.tex.Value()
	how, err := tr.cache.CacheQueued(func(rect image.Rectangle, pix []byte) {
		if err := tr.r.UpdateTexture(tex, rect.Min.X, rect.Min.Y, rect.Dx(), rect.Dy(), pix); err != nil {
			core.Logger().Error("glyph upload failed", "rect", rect, "err", err)
		}
	})
	if how == CachedByReordering {
		tr.generation++
		core.Logger().Debug("glyph cache repacked", "generation", tr.generation)
	}
	if err != nil {
		if errors.Is(err, ErrCacheTooSmall) {
			core.Logger().Warn("glyph cache too small for frame", "err", err)
		} else {
			core.Logger().Error("glyph caching failed", "err", err)
		}
		return
	}

	tr.items = tr.items[:0]
	for _, run := range runs {
		for _, q := range tr.wordQuads(run.Word) {
			tr.items = append(tr.items, renderer2d.Translate(q, run.Offset[0], run.Offset[1]))
		}
	}
	tr.batch.Render(tr.tex, cam, slices.Values(tr.items))
}

// wordQuads returns the word's quads at the origin, rebuilding them when
// the cache generation moved since they were built.
func (tr *Renderer) wordQuads(w *Word) []renderer2d.Quad {
	if w.memo.owner == tr && w.memo.generation == tr.generation && w.memo.quads != nil {
		return w.memo.quads
	}
	quads := make([]renderer2d.Quad, 0, len(w.Glyphs))
	for _, g := range w.Glyphs {
		uv, px, ok, err := tr.cache.RectFor(g.Font, g.Glyph)
		if err != nil || !ok {
			continue
		}
		x := math32.Round(g.X) + float32(px.Min.X)
		y := math32.Round(g.Y) + float32(px.Min.Y)
		quads = append(quads, renderer2d.Rect(x, y, float32(px.Dx()), float32(px.Dy()), g.Colour,
			[4]float32{uv.U0, uv.V0, uv.U1, uv.V1}))
	}
	w.memo = wordMemo{owner: tr, generation: tr.generation, quads: quads}
	return quads
}

// Release frees the atlas texture and batch buffers.
func (tr *Renderer) Release() {
	if tex, ok := tr.tex.Value(); ok {
		tex.Release()
	}
	tr.batch.Release()
}
