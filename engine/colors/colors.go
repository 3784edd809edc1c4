package colors

// Color is linear RGBA with components in [0,1].
type Color [4]float32

var (
	White    = Color{1, 1, 1, 1}
	Red      = Color{1, 0, 0, 1}
	Green    = Color{0, 1, 0, 1}
	Blue     = Color{0, 0, 1, 1}
	Black    = Color{0, 0, 0, 1}
	Magenta  = Color{1, 0, 1, 1}
	Cyan     = Color{0, 1, 1, 1}
	Yellow   = Color{1, 1, 0, 1}
	Gray     = Color{0.5, 0.5, 0.5, 1}
	DarkGray = Color{0.08, 0.10, 0.12, 1}
	// Clear is white with zero alpha so tinted textures fade out cleanly.
	Clear = Color{1, 1, 1, 0}
)

func RGB(r, g, b float32) Color     { return Color{r, g, b, 1} }
func RGBA(r, g, b, a float32) Color { return Color{r, g, b, a} }

func (c Color) WithAlpha(a float32) Color {
	c[3] = a
	return c
}

// Mul multiplies two colours component-wise.
func (c Color) Mul(o Color) Color {
	return Color{c[0] * o[0], c[1] * o[1], c[2] * o[2], c[3] * o[3]}
}
