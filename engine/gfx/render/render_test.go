package render

import (
	"iter"
	"slices"
	"testing"

	"github.com/hubastard/questsage/engine/colors"
	"github.com/hubastard/questsage/engine/core"
	"github.com/hubastard/questsage/engine/core/coretest"
	"github.com/hubastard/questsage/engine/gfx/renderer2d"
	"github.com/hubastard/questsage/engine/text"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	kind  string // "shapes" or "text"
	tex   renderer2d.TextureSource
	count int
}

type recorder struct{ calls []call }

func (r *recorder) Render(tex renderer2d.TextureSource, _ renderer2d.Camera, items iter.Seq[renderer2d.Renderable]) {
	r.calls = append(r.calls, call{kind: "shapes", tex: tex, count: len(slices.Collect(items))})
}

func (r *recorder) DrawText(runs []text.Run, _ renderer2d.Camera) {
	r.calls = append(r.calls, call{kind: "text", count: len(runs)})
}

type tex struct{ name string }

func (*tex) Value() (core.Texture, bool) { return nil, false }

type noCamera struct{}

func (noCamera) ViewProjection() [16]float32 { return [16]float32{} }

func img(t renderer2d.TextureSource, n int) Image {
	rs := make([]renderer2d.Renderable, n)
	for i := range rs {
		rs[i] = renderer2d.Rect(0, 0, 1, 1, colors.White, renderer2d.FullUV)
	}
	return Image{Texture: t, Renderables: rs}
}

func word(s string) Text { return Text{Run: text.Run{Word: &text.Word{Text: s}}} }

func TestAdjacentMergesCompatibleTextures(t *testing.T) {
	a, b := &tex{"a"}, &tex{"b"}
	rec := &recorder{}
	mb := NewMultiBatch(rec, rec)

	mb.Render(Adjacent{img(a, 1), img(nil, 2), img(a, 1), img(b, 3), img(a, 1)}, noCamera{})

	require.Len(t, rec.calls, 3, "two texture transitions give three draws")
	assert.Equal(t, call{"shapes", a, 4}, rec.calls[0])
	assert.Equal(t, call{"shapes", b, 3}, rec.calls[1])
	assert.Equal(t, call{"shapes", a, 1}, rec.calls[2])
	assert.Equal(t, Stats{ShapeFlushes: 3}, mb.Stats())
}

func TestTextIgnoresTextureTransitions(t *testing.T) {
	a, b := &tex{"a"}, &tex{"b"}
	rec := &recorder{}
	mb := NewMultiBatch(rec, rec)

	mb.Render(Adjacent{word("x"), img(a, 1), word("y"), img(b, 1), word("z")}, noCamera{})

	// The switch to b flushes only the shapes; all text waits for the end of
	// the layer.
	require.Len(t, rec.calls, 3)
	assert.Equal(t, call{"shapes", a, 1}, rec.calls[0])
	assert.Equal(t, call{kind: "text", count: 3}, rec.calls[1])
	assert.Equal(t, call{"shapes", b, 1}, rec.calls[2])
	assert.Equal(t, Stats{TextFlushes: 1, ShapeFlushes: 2}, mb.Stats())
}

func TestOneTextDrawPerLayer(t *testing.T) {
	a, b := &tex{"a"}, &tex{"b"}
	rec := &recorder{}
	mb := NewMultiBatch(rec, rec)

	mb.Render(Layered{
		Adjacent{word("x"), img(a, 1), img(b, 1), word("y")},
		Adjacent{img(b, 2), word("z"), img(a, 1)},
	}, noCamera{})

	var texts []int
	for _, c := range rec.calls {
		if c.kind == "text" {
			texts = append(texts, c.count)
		}
	}
	assert.Equal(t, []int{2, 1}, texts, "one text draw for each layer")
	assert.Equal(t, []call{
		{"shapes", a, 1},
		{kind: "text", count: 2},
		{"shapes", b, 1},
		{"shapes", b, 2},
		{kind: "text", count: 1},
		{"shapes", a, 1},
	}, rec.calls)
}

func TestLayeredFlushesBetweenLayers(t *testing.T) {
	a := &tex{"a"}
	rec := &recorder{}
	mb := NewMultiBatch(rec, rec)

	mb.Render(Layered{
		img(a, 1),
		Adjacent{word("over"), img(a, 2)},
		Nothing{},
		img(a, 1),
	}, noCamera{})

	require.Len(t, rec.calls, 4)
	assert.Equal(t, call{"shapes", a, 1}, rec.calls[0])
	assert.Equal(t, "text", rec.calls[1].kind)
	assert.Equal(t, call{"shapes", a, 2}, rec.calls[2])
	assert.Equal(t, call{"shapes", a, 1}, rec.calls[3])
}

func TestEmptyTreeDrawsNothing(t *testing.T) {
	rec := &recorder{}
	mb := NewMultiBatch(rec, rec)
	mb.Render(Layered{Nothing{}, Adjacent{}, Image{Texture: &tex{}}}, noCamera{})
	assert.Empty(t, rec.calls)
}

func TestImageRegionMapsIntoAtlas(t *testing.T) {
	a := &tex{"atlas"}
	region := renderer2d.FromPixels(a, 32, 0, 32, 64, 128, 64)
	var got []renderer2d.Renderable
	shapes := shapeFunc(func(src renderer2d.TextureSource, items iter.Seq[renderer2d.Renderable]) {
		assert.Equal(t, renderer2d.TextureSource(a), src)
		got = slices.Collect(items)
	})
	mb := NewMultiBatch(shapes, &recorder{})

	mb.Render(ImageRegion{Region: region, Renderables: []renderer2d.Renderable{
		renderer2d.Rect(0, 0, 1, 1, colors.White, renderer2d.FullUV),
	}}, noCamera{})

	require.Len(t, got, 1)
	q := got[0].(renderer2d.Quad)
	assert.Equal(t, [2]float32{0.25, 0}, q[0].TexCoords)
	assert.Equal(t, [2]float32{0.5, 1}, q[2].TexCoords)
}

type shapeFunc func(renderer2d.TextureSource, iter.Seq[renderer2d.Renderable])

func (f shapeFunc) Render(src renderer2d.TextureSource, _ renderer2d.Camera, items iter.Seq[renderer2d.Renderable]) {
	f(src, items)
}

func TestLayersAreSubmittedInOrder(t *testing.T) {
	gpu := coretest.NewRecorder()
	batch, err := renderer2d.NewSpriteBatch(gpu)
	require.NoError(t, err)
	back, err := gpu.CreateTexture(core.TextureDesc{Width: 1, Height: 1, Format: core.TextureRGBA8})
	require.NoError(t, err)
	front, err := gpu.CreateTexture(core.TextureDesc{Width: 1, Height: 1, Format: core.TextureRGBA8})
	require.NoError(t, err)
	backSrc, frontSrc := renderer2d.Static(back), renderer2d.Static(front)

	mb := NewMultiBatch(batch, &recorder{})
	// Same texture in both layers still needs two draws.
	mb.Render(Layered{img(backSrc, 2), img(frontSrc, 1), img(backSrc, 1)}, noCamera{})

	require.Equal(t, 3, gpu.DrawCount())
	assert.Equal(t, back, gpu.Draws[0].Samplers["uTexture"])
	assert.Equal(t, front, gpu.Draws[1].Samplers["uTexture"])
	assert.Equal(t, back, gpu.Draws[2].Samplers["uTexture"])
	assert.Less(t, gpu.Draws[0].Seq, gpu.Draws[1].Seq)
	assert.Less(t, gpu.Draws[1].Seq, gpu.Draws[2].Seq)
	// Two quads of nine floats per vertex.
	assert.Len(t, gpu.Draws[0].Vertices, 2*4*9)
}

func TestTranslateMovesEveryLeaf(t *testing.T) {
	a := &tex{"a"}
	tree := Layered{img(a, 1), Adjacent{word("w")}}
	moved := Translate(tree, 5, -2).(Layered)

	q := moved[0].(Image).Renderables[0].(renderer2d.Quad)
	assert.Equal(t, [3]float32{5, -2, 0}, q[0].Position)
	run := moved[1].(Adjacent)[0].(Text).Run
	assert.Equal(t, [2]float32{5, -2}, run.Offset)

	orig := tree[0].(Image).Renderables[0].(renderer2d.Quad)
	assert.Equal(t, [3]float32{0, 0, 0}, orig[0].Position)
}

func TestWrap(t *testing.T) {
	a := img(&tex{"a"}, 1)
	assert.Equal(t, Nothing{}, Wrap(true, Nothing{}, nil))
	assert.Equal(t, MultiRenderable(a), Wrap(false, Nothing{}, a))
	assert.Equal(t, Layered{a, a}, Wrap(true, a, a))
	assert.Equal(t, Adjacent{a, a}, Wrap(false, a, Nothing{}, a))
}

func TestNinePatchTilesAndMapsMargins(t *testing.T) {
	np := NinePatch{TextureWidth: 16, TextureHeight: 32, Left: 4, Right: 2, Top: 8, Bottom: 4}
	quads := np.Quads(colors.White, 10, 20, 100, 50)
	require.Len(t, quads, 9)

	us := map[float32]bool{}
	vs := map[float32]bool{}
	area := float32(0)
	for _, r := range quads {
		q := r.(renderer2d.Quad)
		for _, v := range q {
			us[v.TexCoords[0]] = true
			vs[v.TexCoords[1]] = true
		}
		w := q[1].Position[0] - q[0].Position[0]
		h := q[3].Position[1] - q[0].Position[1]
		assert.GreaterOrEqual(t, w, float32(0))
		assert.GreaterOrEqual(t, h, float32(0))
		area += w * h
		// Edges are shared exactly with the neighbours: axis aligned cells.
		assert.Equal(t, q[0].Position[1], q[1].Position[1])
		assert.Equal(t, q[1].Position[0], q[2].Position[0])
	}
	assert.Equal(t, map[float32]bool{0: true, 0.25: true, 1 - 2.0/16: true, 1: true}, us)
	assert.Equal(t, map[float32]bool{0: true, 4.0 / 32: true, 1 - 8.0/32: true, 1: true}, vs)
	assert.Equal(t, float32(100*50), area, "cells cover the target without gaps or overlap")

	first := quads[0].(renderer2d.Quad)
	last := quads[8].(renderer2d.Quad)
	assert.Equal(t, [3]float32{10, 20, 0}, first[0].Position)
	assert.Equal(t, [3]float32{14, 24, 0}, first[2].Position)
	assert.Equal(t, [3]float32{108, 62, 0}, last[0].Position)
	assert.Equal(t, [3]float32{110, 70, 0}, last[2].Position)
}

func TestNinePatchBottomIsTheScreenTopStrip(t *testing.T) {
	np := NinePatch{TextureWidth: 10, TextureHeight: 20, Top: 2, Bottom: 5}
	quads := np.Quads(colors.White, 0, 100, 10, 50)

	// Cells run column by column, smallest y first.
	first := quads[0].(renderer2d.Quad)
	third := quads[2].(renderer2d.Quad)
	assert.Equal(t, float32(100), first[0].Position[1], "Bottom strip starts at y")
	assert.Equal(t, float32(105), first[3].Position[1])
	assert.Equal(t, float32(0), first[0].TexCoords[1], "first image rows")
	assert.Equal(t, float32(0.25), first[3].TexCoords[1])

	assert.Equal(t, float32(148), third[0].Position[1])
	assert.Equal(t, float32(150), third[3].Position[1])
	assert.Equal(t, float32(0.9), third[0].TexCoords[1])
	assert.Equal(t, float32(1), third[3].TexCoords[1])
}

func TestNinePatchRegionUsesAtlasCoordinates(t *testing.T) {
	a := &tex{"atlas"}
	region := renderer2d.FromPixels(a, 0, 0, 16, 16, 64, 64)
	np := NinePatch{TextureWidth: 16, TextureHeight: 16, Left: 4, Right: 4, Top: 4, Bottom: 4}

	var got []renderer2d.Renderable
	mb := NewMultiBatch(shapeFunc(func(_ renderer2d.TextureSource, items iter.Seq[renderer2d.Renderable]) {
		got = slices.Collect(items)
	}), &recorder{})
	mb.Render(np.RenderRegion(region, colors.White, 0, 0, 32, 32), noCamera{})

	require.Len(t, got, 9)
	centre := got[4].(renderer2d.Quad)
	assert.Equal(t, [2]float32{0.0625, 0.0625}, centre[0].TexCoords)
	assert.Equal(t, [2]float32{0.1875, 0.1875}, centre[2].TexCoords)
}

const atlasJSON = `{
	"width": 128,
	"height": 64,
	"frames": {
		"button.png": {"frame": {"x": 32, "y": 16, "w": 32, "h": 16}, "rotated": false, "trimmed": true,
			"source": {"x": 1, "y": 2, "w": 34, "h": 20}}
	}
}`

func TestParseAtlas(t *testing.T) {
	a, err := ParseAtlas([]byte(atlasJSON))
	require.NoError(t, err)
	assert.Equal(t, 128, a.Width)
	f := a.Frames["button.png"]
	assert.True(t, f.Trimmed)
	assert.Equal(t, AtlasRect{X: 1, Y: 2, W: 34, H: 20}, f.Source)

	src := &tex{"atlas"}
	r, err := a.Region(src, "button.png")
	require.NoError(t, err)
	assert.Equal(t, renderer2d.TextureRegion{Source: src, U0: 0.25, V0: 0.25, U1: 0.5, V1: 0.5}, r)

	_, err = a.Region(src, "missing.png")
	assert.ErrorIs(t, err, ErrUnknownFrame)
}

func TestParseAtlasRejectsBadInput(t *testing.T) {
	_, err := ParseAtlas([]byte(`{"width": 0, "height": 4}`))
	assert.Error(t, err)
	_, err = ParseAtlas([]byte(`{"width": 8, "height": 8, "frames": {"x": {"frame": {"x": 4, "y": 0, "w": 8, "h": 8}}}}`))
	assert.Error(t, err)
	_, err = ParseAtlas([]byte(`not json`))
	assert.Error(t, err)
}
