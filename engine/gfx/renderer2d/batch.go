package renderer2d

import (
	"embed"
	"fmt"
	"iter"

	"github.com/hubastard/questsage/engine/core"
)

// Indices are 16-bit, so one flush must stay below 65536 vertices.
const (
	MaxVertexCount = 40960
	MaxIndexCount  = 81920
)

//go:embed shaders/*
var shaderFS embed.FS

// Camera supplies the transform bound for a flush.
type Camera interface {
	ViewProjection() [16]float32
}

// Statistics captures the counts generated during a frame.
type Statistics struct {
	DrawCalls int
	Vertices  int
	Indices   int
	// Skipped counts flushes dropped because their texture was not loaded.
	Skipped int
}

// Batch accumulates primitives sharing one texture and flushes them as a
// single draw call.
type Batch struct {
	r    core.Renderer
	pipe core.Pipeline
	mesh core.Mesh

	verts  []float32
	inds   []uint16
	vcount int

	uniforms map[string]any
	samplers map[string]core.Texture
	stats    Statistics
}

// NewBatch creates a batch drawing through pipe. The pipeline must accept
// VertexLayout and expose uViewProjection and uTexture.
func NewBatch(r core.Renderer, pipe core.Pipeline) (*Batch, error) {
	mesh, err := r.CreateMesh(core.MeshDesc{
		VertexCapacity: MaxVertexCount * vStride,
		IndexCapacity:  MaxIndexCount,
		Layout:         vertexLayout,
	})
	if err != nil {
		return nil, fmt.Errorf("renderer2d: create mesh: %w", err)
	}
	return &Batch{
		r:        r,
		pipe:     pipe,
		mesh:     mesh,
		verts:    make([]float32, 0, MaxVertexCount*vStride),
		inds:     make([]uint16, 0, MaxIndexCount),
		uniforms: make(map[string]any, 1),
		samplers: make(map[string]core.Texture, 1),
	}, nil
}

// NewSpriteBatch creates a batch with the built-in RGBA sprite shader.
func NewSpriteBatch(r core.Renderer) (*Batch, error) {
	pipe, err := newPipeline(r, "shaders/sprite.frag")
	if err != nil {
		return nil, err
	}
	return NewBatch(r, pipe)
}

// NewTextBatch creates a batch whose shader treats the texture as a single
// channel coverage mask tinted by the vertex colour.
func NewTextBatch(r core.Renderer) (*Batch, error) {
	pipe, err := newPipeline(r, "shaders/text.frag")
	if err != nil {
		return nil, err
	}
	return NewBatch(r, pipe)
}

func newPipeline(r core.Renderer, frag string) (core.Pipeline, error) {
	vs, err := shaderFS.ReadFile("shaders/sprite.vert")
	if err != nil {
		return nil, err
	}
	fs, err := shaderFS.ReadFile(frag)
	if err != nil {
		return nil, err
	}
	pipe, err := r.CreatePipeline(core.PipelineDesc{
		VertexSource:   string(vs),
		FragmentSource: string(fs),
		Layout:         vertexLayout,
		Blend:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("renderer2d: pipeline %s: %w", frag, err)
	}
	return pipe, nil
}

// Render draws every item with tex bound, flushing whenever the next item
// would overflow the buffers and once more at the end. If tex is not loaded
// at flush time the accumulated primitives are dropped.
func (b *Batch) Render(tex TextureSource, cam Camera, items iter.Seq[Renderable]) {
	vp := cam.ViewProjection()
	for item := range items {
		b.push(tex, vp, item.vertices(), item.indices())
	}
	b.flush(tex, vp)
}

// Stats returns the counters accumulated since the last ResetStats.
func (b *Batch) Stats() Statistics { return b.stats }

func (b *Batch) ResetStats() { b.stats = Statistics{} }

func (b *Batch) push(tex TextureSource, vp [16]float32, vs []Vertex, idx []uint16) {
	if len(vs) == 0 {
		return
	}
	if len(vs) > MaxVertexCount || len(idx) > MaxIndexCount {
		panic(fmt.Sprintf("renderer2d: primitive with %d vertices and %d indices exceeds batch capacity", len(vs), len(idx)))
	}
	if b.vcount+len(vs) > MaxVertexCount || len(b.inds)+len(idx) > MaxIndexCount {
		b.flush(tex, vp)
	}
	base := uint16(b.vcount)
	for _, v := range vs {
		b.verts = v.appendTo(b.verts)
	}
	for _, i := range idx {
		b.inds = append(b.inds, base+i)
	}
	b.vcount += len(vs)
}

func (b *Batch) flush(tex TextureSource, vp [16]float32) {
	if b.vcount == 0 {
		return
	}
	defer b.reset()

	var (
		t  core.Texture
		ok bool
	)
	if tex != nil {
		t, ok = tex.Value()
	}
	if !ok {
		b.stats.Skipped++
		return
	}
	if len(b.inds)%2 != 0 {
		b.inds = append(b.inds, 0)
	}
	if err := b.r.UpdateMesh(b.mesh, b.verts, b.inds); err != nil {
		core.Logger().Error("batch upload failed", "err", err)
		return
	}
	b.uniforms["uViewProjection"] = vp
	b.samplers["uTexture"] = t
	b.r.Draw(core.DrawCmd{
		Pipe:     b.pipe,
		Mesh:     b.mesh,
		Count:    len(b.inds),
		Uniforms: b.uniforms,
		Samplers: b.samplers,
	})
	b.stats.DrawCalls++
	b.stats.Vertices += b.vcount
	b.stats.Indices += len(b.inds)
}

func (b *Batch) reset() {
	b.verts = b.verts[:0]
	b.inds = b.inds[:0]
	b.vcount = 0
}

// Release frees the GPU buffers. The pipeline is owned by the caller when
// the batch was built with NewBatch.
func (b *Batch) Release() {
	b.mesh.Release()
}
