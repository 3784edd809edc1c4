package scene

import "github.com/chewxy/math32"

// Ortho is an orthographic 2D camera looking at Eye. The visible area is
// ViewHeight world units tall and ViewHeight*Aspect wide.
//
// Matrices are cached and rebuilt lazily after any setter runs.
type Ortho struct {
	eye         [2]float32
	viewHeight  float32
	aspect      float32
	rotationRad float32
	zoom        float32

	// YDown flips the vertical axis so +Y points down the screen, which is
	// what the UI layer works in.
	yDown bool
	// ZeroToOneDepth remaps clip Z from [-1,1] to [0,1].
	zeroToOneDepth bool

	proj, view, vp [16]float32
	dirty          bool
}

const (
	orthoNear = -1000
	orthoFar  = 1000
)

type OrthoOption func(*Ortho)

// WithYDown makes +Y point down the screen.
func WithYDown() OrthoOption { return func(c *Ortho) { c.yDown = true } }

// WithZeroToOneDepth targets APIs whose clip space depth is [0,1].
func WithZeroToOneDepth() OrthoOption { return func(c *Ortho) { c.zeroToOneDepth = true } }

func NewOrtho(eyeX, eyeY, viewHeight, aspect float32, opts ...OrthoOption) *Ortho {
	c := &Ortho{
		eye:        [2]float32{eyeX, eyeY},
		viewHeight: viewHeight,
		aspect:     aspect,
		zoom:       1,
		dirty:      true,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// NewScreen builds a y-down camera whose world units are framebuffer pixels
// with the origin at the top-left corner.
func NewScreen(w, h int) *Ortho {
	c := NewOrtho(0, 0, 1, 1, WithYDown())
	c.SetViewportPixels(w, h)
	return c
}

// SetViewportPixels resizes the view to w by h pixels. Screen cameras keep
// their top-left origin.
func (c *Ortho) SetViewportPixels(w, h int) {
	if w < 1 || h < 1 {
		return
	}
	c.viewHeight = float32(h)
	c.aspect = float32(w) / float32(h)
	if c.yDown {
		c.eye = [2]float32{float32(w) / 2, float32(h) / 2}
	}
	c.dirty = true
}

func (c *Ortho) Eye() (float32, float32) { return c.eye[0], c.eye[1] }
func (c *Ortho) ViewHeight() float32     { return c.viewHeight }
func (c *Ortho) Aspect() float32         { return c.aspect }
func (c *Ortho) Width() float32          { return c.viewHeight * c.aspect }
func (c *Ortho) Zoom() float32           { return c.zoom }

func (c *Ortho) SetEye(x, y float32)     { c.eye = [2]float32{x, y}; c.dirty = true }
func (c *Ortho) Move(dx, dy float32)     { c.eye[0] += dx; c.eye[1] += dy; c.dirty = true }
func (c *Ortho) Rotate(dRad float32)     { c.rotationRad += dRad; c.dirty = true }
func (c *Ortho) SetViewHeight(h float32) { c.viewHeight = h; c.dirty = true }
func (c *Ortho) SetZoom(z float32) {
	if z < 0.05 {
		z = 0.05
	}
	c.zoom = z
	c.dirty = true
}

func (c *Ortho) Projection() [16]float32 {
	c.recalculate()
	return c.proj
}

func (c *Ortho) View() [16]float32 {
	c.recalculate()
	return c.view
}

// ViewProjection returns projection * view.
func (c *Ortho) ViewProjection() [16]float32 {
	c.recalculate()
	return c.vp
}

// ScreenToWorld converts framebuffer pixels (top-left origin) of a w by h
// viewport into world coordinates. Rotation is ignored.
func (c *Ortho) ScreenToWorld(px, py float32, w, h int) (float32, float32) {
	halfH := c.viewHeight / c.zoom / 2
	halfW := halfH * c.aspect
	nx := px/float32(w)*2 - 1
	ny := 1 - py/float32(h)*2
	if c.yDown {
		ny = -ny
	}
	return c.eye[0] + nx*halfW, c.eye[1] + ny*halfH
}

func (c *Ortho) recalculate() {
	if !c.dirty {
		return
	}
	halfH := c.viewHeight / c.zoom / 2
	halfW := halfH * c.aspect
	bottom, top := -halfH, halfH
	if c.yDown {
		bottom, top = top, bottom
	}
	c.proj = ortho(-halfW, halfW, bottom, top, orthoNear, orthoFar)
	if c.zeroToOneDepth {
		c.proj = mul(zeroToOneDepth, c.proj)
	}

	// view = R(-rot) * T(-eye)
	c.view = mul(rotateZ(-c.rotationRad), translate(-c.eye[0], -c.eye[1], 0))
	c.vp = mul(c.proj, c.view)
	c.dirty = false
}

// ---- tiny mat helpers (column-major, GLSL-style) ----

var zeroToOneDepth = [16]float32{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

func identity() [16]float32 {
	return [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

func translate(x, y, z float32) [16]float32 {
	m := identity()
	m[12], m[13], m[14] = x, y, z
	return m
}

func rotateZ(a float32) [16]float32 {
	s, c := math32.Sincos(a)
	return [16]float32{
		c, s, 0, 0,
		-s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

func ortho(l, r, b, t, n, f float32) [16]float32 {
	rl := 1 / (r - l)
	tb := 1 / (t - b)
	fn := 1 / (f - n)
	return [16]float32{
		2 * rl, 0, 0, 0,
		0, 2 * tb, 0, 0,
		0, 0, -2 * fn, 0,
		-(r + l) * rl, -(t + b) * tb, -(f + n) * fn, 1,
	}
}

// mul returns a*b; element (row, col) lives at [col*4+row].
func mul(a, b [16]float32) [16]float32 {
	var out [16]float32
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[k*4+row] * b[col*4+k]
			}
			out[col*4+row] = sum
		}
	}
	return out
}

// Transform applies m to the point (x, y, z, 1) and returns the xyz result.
func Transform(m [16]float32, x, y, z float32) (float32, float32, float32) {
	return m[0]*x + m[4]*y + m[8]*z + m[12],
		m[1]*x + m[5]*y + m[9]*z + m[13],
		m[2]*x + m[6]*y + m[10]*z + m[14]
}
