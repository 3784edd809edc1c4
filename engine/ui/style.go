package ui

type dimensionKind uint8

const (
	dimAuto dimensionKind = iota
	dimPoints
	dimPercent
)

// Dimension is a length that is either automatic, a fixed number of
// pixels, or a fraction of the parent's size. The zero value is Auto.
type Dimension struct {
	kind  dimensionKind
	value float32
}

func Auto() Dimension                { return Dimension{} }
func Points(px float32) Dimension    { return Dimension{kind: dimPoints, value: px} }
func Percent(frac float32) Dimension { return Dimension{kind: dimPercent, value: frac} }

func (d Dimension) IsAuto() bool { return d.kind == dimAuto }

// Size is a width and height pair of dimensions.
type Size struct {
	Width, Height Dimension
}

// SizePoints is a fixed size in pixels.
func SizePoints(w, h float32) Size { return Size{Width: Points(w), Height: Points(h)} }

// Edges are per side insets in pixels.
type Edges struct {
	Left, Right, Top, Bottom float32
}

// Uniform returns equal edges on every side.
func Uniform(v float32) Edges { return Edges{v, v, v, v} }

type Direction uint8

const (
	Row Direction = iota
	Column
)

type Wrap uint8

const (
	NoWrap Wrap = iota
	WrapLines
)

// Justify distributes free space along the main axis.
type Justify uint8

const (
	JustifyStart Justify = iota
	JustifyCenter
	JustifyEnd
	JustifySpaceBetween
	JustifySpaceAround
	JustifySpaceEvenly
)

// Align positions items on the cross axis. Stretch is the default, as in
// CSS.
type Align uint8

const (
	AlignStretch Align = iota
	AlignStart
	AlignCenter
	AlignEnd
)

// Style holds the flexbox properties of a widget. The zero value is a
// non-wrapping row that stretches its children and sizes itself to them.
type Style struct {
	Direction  Direction
	Wrap       Wrap
	Justify    Justify
	AlignItems Align

	// Grow and Shrink weight how free space is shared between siblings.
	// Shrink is weighted by the item's size as well.
	Grow   float32
	Shrink float32

	Size    Size
	MinSize Size
	MaxSize Size

	Margin  Edges
	Padding Edges
	// Gap separates items within a line and lines from each other.
	Gap float32
}

// Layout is a widget's box relative to its parent's top-left corner.
type Layout struct {
	X, Y          float32
	Width, Height float32
}

// Contains reports whether (x, y), in the same space as the layout, lies
// inside the box.
func (l Layout) Contains(x, y float32) bool {
	return x >= l.X && y >= l.Y && x < l.X+l.Width && y < l.Y+l.Height
}

// Translate returns the layout moved by (dx, dy).
func (l Layout) Translate(dx, dy float32) Layout {
	l.X += dx
	l.Y += dy
	return l
}
