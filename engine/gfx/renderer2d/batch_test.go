package renderer2d

import (
	"slices"
	"testing"

	"github.com/hubastard/questsage/engine/colors"
	"github.com/hubastard/questsage/engine/core"
	"github.com/hubastard/questsage/engine/core/coretest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type identityCamera struct{}

func (identityCamera) ViewProjection() [16]float32 {
	return [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
}

type pendingTexture struct{}

func (pendingTexture) Value() (core.Texture, bool) { return nil, false }

func newTestBatch(t *testing.T) (*Batch, *coretest.Recorder, TextureSource) {
	t.Helper()
	rec := coretest.NewRecorder()
	b, err := NewSpriteBatch(rec)
	require.NoError(t, err)
	tex, err := rec.CreateTexture(core.TextureDesc{Width: 1, Height: 1, Format: core.TextureRGBA8})
	require.NoError(t, err)
	return b, rec, Static(tex)
}

func quads(n int) []Renderable {
	out := make([]Renderable, n)
	for i := range out {
		out[i] = Rect(float32(i), 0, 1, 1, colors.White, FullUV)
	}
	return out
}

func TestBatchSingleQuad(t *testing.T) {
	b, rec, tex := newTestBatch(t)
	b.Render(tex, identityCamera{}, slices.Values(quads(1)))

	require.Equal(t, 1, rec.DrawCount())
	d := rec.Draws[0]
	assert.Equal(t, []uint16{0, 1, 2, 0, 2, 3}, d.Indices)
	assert.Len(t, d.Vertices, 4*vStride)
	assert.Equal(t, identityCamera{}.ViewProjection(), d.Uniforms["uViewProjection"])
	got, _ := tex.Value()
	assert.Equal(t, got, d.Samplers["uTexture"])
}

func TestBatchPadsOddIndexCount(t *testing.T) {
	b, rec, tex := newTestBatch(t)
	tri := Triangle{
		{Position: [3]float32{0, 0, 0}},
		{Position: [3]float32{1, 0, 0}},
		{Position: [3]float32{0, 1, 0}},
	}
	b.Render(tex, identityCamera{}, slices.Values([]Renderable{tri}))

	require.Equal(t, 1, rec.DrawCount())
	assert.Equal(t, []uint16{0, 1, 2, 0}, rec.Draws[0].Indices)
}

func TestBatchFlushesAtCapacity(t *testing.T) {
	b, rec, tex := newTestBatch(t)
	perFlush := MaxVertexCount / 4
	b.Render(tex, identityCamera{}, slices.Values(quads(perFlush+1)))

	require.Equal(t, 2, rec.DrawCount())
	assert.Len(t, rec.Draws[0].Vertices, MaxVertexCount*vStride)
	assert.Len(t, rec.Draws[1].Vertices, 4*vStride)
	for _, d := range rec.Draws {
		assert.LessOrEqual(t, len(d.Indices), MaxIndexCount)
		assert.Zero(t, len(d.Indices)%2)
	}
	assert.Equal(t, 2, b.Stats().DrawCalls)
}

func TestBatchExactCapacityIsOneDraw(t *testing.T) {
	b, rec, tex := newTestBatch(t)
	b.Render(tex, identityCamera{}, slices.Values(quads(MaxVertexCount/4)))
	assert.Equal(t, 1, rec.DrawCount())
}

func TestBatchEmptyRenderIssuesNoDraw(t *testing.T) {
	b, rec, tex := newTestBatch(t)
	b.Render(tex, identityCamera{}, slices.Values([]Renderable{Empty{}}))
	assert.Zero(t, rec.DrawCount())
}

func TestBatchSkipsUnloadedTexture(t *testing.T) {
	b, rec, _ := newTestBatch(t)
	b.Render(pendingTexture{}, identityCamera{}, slices.Values(quads(3)))

	assert.Zero(t, rec.DrawCount())
	assert.Equal(t, 1, b.Stats().Skipped)

	// The dropped primitives do not leak into the next flush.
	tex := Static(rec.Textures[0])
	b.Render(tex, identityCamera{}, slices.Values(quads(1)))
	require.Equal(t, 1, rec.DrawCount())
	assert.Len(t, rec.Draws[0].Vertices, 4*vStride)
}

func TestTranslateAndMapUV(t *testing.T) {
	q := Rect(0, 0, 2, 2, colors.White, FullUV)
	moved := Translate(q, 10, 5).(Quad)
	assert.Equal(t, [3]float32{10, 5, 0}, moved[0].Position)
	assert.Equal(t, [3]float32{12, 7, 0}, moved[2].Position)
	assert.Equal(t, [3]float32{0, 0, 0}, q[0].Position, "input is not mutated")

	region := FromPixels(nil, 16, 32, 16, 16, 64, 64)
	mapped := MapUV(q, region).(Quad)
	assert.Equal(t, [2]float32{0.25, 0.5}, mapped[0].TexCoords)
	assert.Equal(t, [2]float32{0.5, 0.75}, mapped[2].TexCoords)
}
