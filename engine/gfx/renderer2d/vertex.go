package renderer2d

import (
	"github.com/hubastard/questsage/engine/colors"
	"github.com/hubastard/questsage/engine/core"
)

// Vertex: pos3 + color4 + uv2 => 9 floats
const vStride = 9

var vertexLayout = core.VertexLayout{
	Stride: vStride * 4,
	Attributes: []core.VertexAttrib{
		{Location: 0, Size: 3, Type: core.AttribFloat32, Offset: 0},     // pos
		{Location: 1, Size: 4, Type: core.AttribFloat32, Offset: 3 * 4}, // color
		{Location: 2, Size: 2, Type: core.AttribFloat32, Offset: 7 * 4}, // uv
	},
}

// VertexLayout returns the attribute layout matching Vertex.
func VertexLayout() core.VertexLayout { return vertexLayout }

type Vertex struct {
	Position  [3]float32
	Color     colors.Color
	TexCoords [2]float32
}

func (v Vertex) appendTo(dst []float32) []float32 {
	return append(dst,
		v.Position[0], v.Position[1], v.Position[2],
		v.Color[0], v.Color[1], v.Color[2], v.Color[3],
		v.TexCoords[0], v.TexCoords[1],
	)
}

// Renderable is one primitive accepted by a Batch: Empty, Triangle or Quad.
type Renderable interface {
	vertices() []Vertex
	indices() []uint16
}

type Empty struct{}

type Triangle [3]Vertex

// Quad is triangulated as the fan 0-1-2, 0-2-3.
type Quad [4]Vertex

var (
	triangleIndices = []uint16{0, 1, 2}
	quadIndices     = []uint16{0, 1, 2, 0, 2, 3}
)

func (Empty) vertices() []Vertex      { return nil }
func (Empty) indices() []uint16       { return nil }
func (t Triangle) vertices() []Vertex { return t[:] }
func (Triangle) indices() []uint16    { return triangleIndices }
func (q Quad) vertices() []Vertex     { return q[:] }
func (Quad) indices() []uint16        { return quadIndices }

// Rect builds an axis aligned quad covering (x, y)-(x+w, y+h). uv holds
// (u0, v0, u1, v1) where (u0, v0) maps to (x, y).
func Rect(x, y, w, h float32, color colors.Color, uv [4]float32) Quad {
	return Quad{
		{Position: [3]float32{x, y, 0}, Color: color, TexCoords: [2]float32{uv[0], uv[1]}},
		{Position: [3]float32{x + w, y, 0}, Color: color, TexCoords: [2]float32{uv[2], uv[1]}},
		{Position: [3]float32{x + w, y + h, 0}, Color: color, TexCoords: [2]float32{uv[2], uv[3]}},
		{Position: [3]float32{x, y + h, 0}, Color: color, TexCoords: [2]float32{uv[0], uv[3]}},
	}
}

// FullUV samples the whole texture.
var FullUV = [4]float32{0, 0, 1, 1}

// Translate returns r moved by (dx, dy).
func Translate(r Renderable, dx, dy float32) Renderable {
	return mapVertices(r, func(v Vertex) Vertex {
		v.Position[0] += dx
		v.Position[1] += dy
		return v
	})
}

// MapUV rewrites texture coordinates expressed relative to region into
// coordinates of the region's backing texture.
func MapUV(r Renderable, region TextureRegion) Renderable {
	return mapVertices(r, func(v Vertex) Vertex {
		v.TexCoords[0], v.TexCoords[1] = region.MapUV(v.TexCoords[0], v.TexCoords[1])
		return v
	})
}

func mapVertices(r Renderable, f func(Vertex) Vertex) Renderable {
	switch p := r.(type) {
	case Triangle:
		for i := range p {
			p[i] = f(p[i])
		}
		return p
	case Quad:
		for i := range p {
			p[i] = f(p[i])
		}
		return p
	default:
		return r
	}
}
