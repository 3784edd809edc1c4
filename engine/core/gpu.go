package core

// Renderer is the GPU capability set the engine draws through. Resource
// handles are opaque; only the backend that created them may use them.
type Renderer interface {
	Init() error
	Resize(w, h int)
	Clear(r, g, b, a float32)

	CreatePipeline(desc PipelineDesc) (Pipeline, error)
	CreateTexture(desc TextureDesc) (Texture, error)
	// UpdateTexture overwrites the w*h sub-rectangle at (x, y). Pixels are
	// tightly packed rows in the texture's format.
	UpdateTexture(tex Texture, x, y, w, h int, pixels []byte) error
	CreateMesh(desc MeshDesc) (Mesh, error)
	// UpdateMesh replaces the mesh contents. The mesh must have been created
	// with at least this capacity.
	UpdateMesh(m Mesh, vertices []float32, indices []uint16) error
	Draw(cmd DrawCmd)

	Info() GPUInfo
	Shutdown()
}

type Pipeline interface{ Release() }

type Texture interface {
	Size() (w, h int)
	Release()
}

type Mesh interface{ Release() }

type GPUInfo struct {
	Vendor   string
	Renderer string
	Version  string
}

type PipelineDesc struct {
	VertexSource   string
	FragmentSource string
	Layout         VertexLayout
	DepthTest      bool
	Blend          bool
}

type TextureFormat int

const (
	TextureRGBA8 TextureFormat = iota
	TextureR8
)

// BytesPerPixel reports the size of one texel.
func (f TextureFormat) BytesPerPixel() int {
	if f == TextureR8 {
		return 1
	}
	return 4
}

type TextureDesc struct {
	Width, Height        int
	Format               TextureFormat
	Pixels               []byte // optional initial contents
	MinFilter, MagFilter string // "nearest" | "linear"
	WrapU, WrapV         string // "clamp" | "repeat"
}

type AttribType int

const (
	AttribFloat32 AttribType = iota
)

type VertexAttrib struct {
	Location int
	Size     int // components
	Type     AttribType
	Offset   int // bytes
}

type VertexLayout struct {
	Stride     int // bytes
	Attributes []VertexAttrib
}

type MeshDesc struct {
	VertexCapacity int // floats
	IndexCapacity  int
	Layout         VertexLayout
}

// DrawCmd draws the first Count indices of Mesh with Pipe bound.
type DrawCmd struct {
	Pipe     Pipeline
	Mesh     Mesh
	Count    int
	Uniforms map[string]any // [16]float32, float32, [4]float32, int32
	Samplers map[string]Texture
}
