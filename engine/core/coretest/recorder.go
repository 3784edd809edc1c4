// Package coretest provides in-memory stand-ins for the GPU and window so
// rendering code can be tested without a graphics context.
package coretest

import (
	"fmt"
	"sync"

	"github.com/hubastard/questsage/engine/core"
)

// Texture is the handle produced by Recorder.CreateTexture. Pixels mirrors
// what the GPU would hold after every UpdateTexture.
type Texture struct {
	ID       int
	Desc     core.TextureDesc
	Pixels   []byte
	Released bool
}

func (t *Texture) Size() (int, int) { return t.Desc.Width, t.Desc.Height }
func (t *Texture) Release()         { t.Released = true }

type Mesh struct {
	ID       int
	Desc     core.MeshDesc
	Vertices []float32
	Indices  []uint16
	Released bool
}

func (m *Mesh) Release() { m.Released = true }

type Pipeline struct {
	ID       int
	Desc     core.PipelineDesc
	Released bool
}

func (p *Pipeline) Release() { p.Released = true }

// Draw is a snapshot of one submitted draw call.
type Draw struct {
	Seq      int
	Pipe     *Pipeline
	Vertices []float32
	Indices  []uint16
	Uniforms map[string]any
	Samplers map[string]core.Texture
}

// TextureWrite is a snapshot of one UpdateTexture call.
type TextureWrite struct {
	Seq        int
	Texture    *Texture
	X, Y, W, H int
}

// Recorder implements core.Renderer and records every call in order.
type Recorder struct {
	mu       sync.Mutex
	seq      int
	nextID   int
	Draws    []Draw
	Writes   []TextureWrite
	Textures []*Texture
	Clears   int
	Width    int
	Height   int
}

var _ core.Renderer = (*Recorder)(nil)

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Init() error { return nil }

func (r *Recorder) Resize(w, h int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Width, r.Height = w, h
}

func (r *Recorder) Clear(_, _, _, _ float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Clears++
}

func (r *Recorder) CreatePipeline(desc core.PipelineDesc) (core.Pipeline, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	return &Pipeline{ID: r.nextID, Desc: desc}, nil
}

func (r *Recorder) CreateTexture(desc core.TextureDesc) (core.Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("coretest: invalid texture size %dx%d", desc.Width, desc.Height)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	pix := make([]byte, desc.Width*desc.Height*desc.Format.BytesPerPixel())
	copy(pix, desc.Pixels)
	t := &Texture{ID: r.nextID, Desc: desc, Pixels: pix}
	r.Textures = append(r.Textures, t)
	return t, nil
}

func (r *Recorder) UpdateTexture(tex core.Texture, x, y, w, h int, pixels []byte) error {
	t, ok := tex.(*Texture)
	if !ok {
		return fmt.Errorf("coretest: foreign texture %T", tex)
	}
	bpp := t.Desc.Format.BytesPerPixel()
	if x < 0 || y < 0 || x+w > t.Desc.Width || y+h > t.Desc.Height {
		return fmt.Errorf("coretest: write %dx%d at (%d,%d) outside %dx%d texture", w, h, x, y, t.Desc.Width, t.Desc.Height)
	}
	if len(pixels) < w*h*bpp {
		return fmt.Errorf("coretest: short pixel buffer: %d < %d", len(pixels), w*h*bpp)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for row := 0; row < h; row++ {
		dst := ((y+row)*t.Desc.Width + x) * bpp
		copy(t.Pixels[dst:dst+w*bpp], pixels[row*w*bpp:(row+1)*w*bpp])
	}
	r.seq++
	r.Writes = append(r.Writes, TextureWrite{Seq: r.seq, Texture: t, X: x, Y: y, W: w, H: h})
	return nil
}

func (r *Recorder) CreateMesh(desc core.MeshDesc) (core.Mesh, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	return &Mesh{ID: r.nextID, Desc: desc}, nil
}

func (r *Recorder) UpdateMesh(m core.Mesh, vertices []float32, indices []uint16) error {
	mesh, ok := m.(*Mesh)
	if !ok {
		return fmt.Errorf("coretest: foreign mesh %T", m)
	}
	if len(vertices) > mesh.Desc.VertexCapacity || len(indices) > mesh.Desc.IndexCapacity {
		return fmt.Errorf("coretest: mesh overflow: %d/%d floats, %d/%d indices",
			len(vertices), mesh.Desc.VertexCapacity, len(indices), mesh.Desc.IndexCapacity)
	}
	mesh.Vertices = append(mesh.Vertices[:0], vertices...)
	mesh.Indices = append(mesh.Indices[:0], indices...)
	return nil
}

func (r *Recorder) Draw(cmd core.DrawCmd) {
	mesh := cmd.Mesh.(*Mesh)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	d := Draw{
		Seq:      r.seq,
		Vertices: append([]float32(nil), mesh.Vertices...),
		Indices:  append([]uint16(nil), mesh.Indices[:cmd.Count]...),
		Uniforms: make(map[string]any, len(cmd.Uniforms)),
		Samplers: make(map[string]core.Texture, len(cmd.Samplers)),
	}
	d.Pipe, _ = cmd.Pipe.(*Pipeline)
	for k, v := range cmd.Uniforms {
		d.Uniforms[k] = v
	}
	for k, v := range cmd.Samplers {
		d.Samplers[k] = v
	}
	r.Draws = append(r.Draws, d)
}

func (r *Recorder) Info() core.GPUInfo {
	return core.GPUInfo{Vendor: "coretest", Renderer: "recorder", Version: "1"}
}

func (r *Recorder) Shutdown() {}

// DrawCount reports how many draw calls were submitted.
func (r *Recorder) DrawCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Draws)
}

// Reset forgets recorded draws and writes but keeps resources alive.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Draws = nil
	r.Writes = nil
}
