package render

import (
	"iter"
	"slices"

	"github.com/hubastard/questsage/engine/gfx/renderer2d"
	"github.com/hubastard/questsage/engine/text"
)

// ShapeDrawer draws primitives sharing one texture. *renderer2d.Batch
// implements it.
type ShapeDrawer interface {
	Render(tex renderer2d.TextureSource, cam renderer2d.Camera, items iter.Seq[renderer2d.Renderable])
}

// TextDrawer draws typeset words. *text.Renderer implements it.
type TextDrawer interface {
	DrawText(runs []text.Run, cam renderer2d.Camera)
}

// Stats counts the flushes issued by a MultiBatch.
type Stats struct {
	TextFlushes  int
	ShapeFlushes int
}

// MultiBatch walks a MultiRenderable tree and hands its content to a shape
// drawer and a text drawer. Shapes are flushed when the bound texture
// changes. Text has its own atlas, so it is held until the layer ends and
// each layer issues at most one text draw.
type MultiBatch struct {
	shapes ShapeDrawer
	text   TextDrawer

	pendingText   []text.Run
	pendingShapes []renderer2d.Renderable
	// committed is the texture of pendingShapes; nil accepts any texture.
	committed renderer2d.TextureSource
	cam       renderer2d.Camera

	stats Stats
}

func NewMultiBatch(shapes ShapeDrawer, words TextDrawer) *MultiBatch {
	return &MultiBatch{shapes: shapes, text: words}
}

// Render draws tree with cam. Every call ends with a flush, so nothing is
// carried over between frames.
func (m *MultiBatch) Render(tree MultiRenderable, cam renderer2d.Camera) {
	m.cam = cam
	m.walk(tree)
	m.flush()
	m.cam = nil
}

func (m *MultiBatch) Stats() Stats { return m.stats }
func (m *MultiBatch) ResetStats()  { m.stats = Stats{} }

func (m *MultiBatch) walk(node MultiRenderable) {
	switch n := node.(type) {
	case nil, Nothing:
	case Adjacent:
		for _, c := range n {
			m.walk(c)
		}
	case Layered:
		for i, c := range n {
			if i > 0 {
				m.flush()
			}
			m.walk(c)
		}
	case Text:
		m.pendingText = append(m.pendingText, n.Run)
	case Image:
		m.addShapes(n.Texture, n.Renderables)
	case ImageRegion:
		mapped := make([]renderer2d.Renderable, len(n.Renderables))
		for i, r := range n.Renderables {
			mapped[i] = renderer2d.MapUV(r, n.Region)
		}
		m.addShapes(n.Region.Source, mapped)
	}
}

func (m *MultiBatch) addShapes(tex renderer2d.TextureSource, rs []renderer2d.Renderable) {
	if len(rs) == 0 {
		return
	}
	if !compatible(m.committed, tex) {
		m.flushShapes()
	}
	if tex != nil {
		m.committed = tex
	}
	m.pendingShapes = append(m.pendingShapes, rs...)
}

// compatible reports whether two textures may share a draw call.
func compatible(a, b renderer2d.TextureSource) bool {
	return a == nil || b == nil || a == b
}

// flush ends a layer: pending text is drawn first, then pending shapes.
func (m *MultiBatch) flush() {
	if len(m.pendingText) > 0 {
		m.text.DrawText(m.pendingText, m.cam)
		clear(m.pendingText)
		m.pendingText = m.pendingText[:0]
		m.stats.TextFlushes++
	}
	m.flushShapes()
}

func (m *MultiBatch) flushShapes() {
	if len(m.pendingShapes) > 0 {
		m.shapes.Render(m.committed, m.cam, slices.Values(m.pendingShapes))
		clear(m.pendingShapes)
		m.pendingShapes = m.pendingShapes[:0]
		m.stats.ShapeFlushes++
	}
	m.committed = nil
}
