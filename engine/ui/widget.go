package ui

import (
	"slices"
	"sync"
	"sync/atomic"
	"weak"

	"github.com/hubastard/questsage/engine/colors"
	"github.com/hubastard/questsage/engine/gfx/render"
	"github.com/hubastard/questsage/engine/gfx/renderer2d"
)

// Widget is a node of the UI tree: an element, its flexbox style, its
// children and the layout computed for it by the last layout pass.
//
// Widgets may be changed from any goroutine. Changes that affect layout
// mark the owning UI dirty so it lays out again before the next frame.
type Widget struct {
	mu          sync.RWMutex
	element     Element
	style       Style
	children    []*Widget
	backgrounds []Element
	layout      Layout
	laidOut     bool

	// dirty is the owning UI's relayout flag. A detached widget holds a
	// zero pointer.
	dirty weak.Pointer[atomic.Bool]
}

// NewWidget returns a widget showing el. A nil element is Empty.
func NewWidget(el Element, style Style, children ...*Widget) *Widget {
	if el == nil {
		el = Empty{}
	}
	return &Widget{element: el, style: style, children: children}
}

// WithBackgrounds adds elements drawn behind the widget and its children,
// in order.
func (w *Widget) WithBackgrounds(bg ...Element) *Widget {
	w.mu.Lock()
	w.backgrounds = append(w.backgrounds, bg...)
	w.mu.Unlock()
	return w
}

func (w *Widget) Element() Element {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.element
}

func (w *Widget) Style() Style {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.style
}

func (w *Widget) SetStyle(s Style) {
	w.mu.Lock()
	w.style = s
	w.mu.Unlock()
	w.ForceLayout()
}

// Children returns a copy of the child list.
func (w *Widget) Children() []*Widget {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.children)
}

func (w *Widget) AddChild(c *Widget) {
	w.mu.Lock()
	w.children = append(w.children, c)
	flag := w.dirty
	w.mu.Unlock()
	c.attach(flag)
	w.ForceLayout()
}

// SetChildren replaces every child of w.
func (w *Widget) SetChildren(cs ...*Widget) {
	w.mu.Lock()
	w.children = cs
	flag := w.dirty
	w.mu.Unlock()
	for _, c := range cs {
		c.attach(flag)
	}
	w.ForceLayout()
}

func (w *Widget) ClearChildren() { w.SetChildren() }

// Layout returns the widget's box relative to its parent. It reports false
// until the widget has been through a layout pass.
func (w *Widget) Layout() (Layout, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.layout, w.laidOut
}

// ForceLayout asks the owning UI, if any, to lay out again before the next
// frame.
func (w *Widget) ForceLayout() {
	w.mu.RLock()
	flag := w.dirty.Value()
	w.mu.RUnlock()
	if flag != nil {
		flag.Store(true)
	}
}

func (w *Widget) attach(flag weak.Pointer[atomic.Bool]) {
	w.mu.Lock()
	w.dirty = flag
	children := slices.Clone(w.children)
	w.mu.Unlock()
	for _, c := range children {
		c.attach(flag)
	}
}

// snapshot copies the styles of the subtree into a flex tree. The element's
// intrinsic size wins over the style wherever it is not Auto.
func (w *Widget) snapshot() *flexNode {
	w.mu.RLock()
	st := w.style
	size := w.element.Size()
	children := slices.Clone(w.children)
	w.mu.RUnlock()

	if !size.Width.IsAuto() {
		st.Size.Width = size.Width
	}
	if !size.Height.IsAuto() {
		st.Size.Height = size.Height
	}
	n := &flexNode{widget: w, style: st, children: make([]*flexNode, len(children))}
	for i, c := range children {
		n.children[i] = c.snapshot()
	}
	return n
}

func (n *flexNode) writeBack() {
	n.widget.mu.Lock()
	n.widget.layout = n.layout
	n.widget.laidOut = true
	n.widget.mu.Unlock()
	for _, c := range n.children {
		c.writeBack()
	}
}

// renderInfo describes the subtree with the widget's parent at (offX, offY).
// Widgets that were never laid out draw nothing.
func (w *Widget) renderInfo(offX, offY float32, debug renderer2d.TextureSource) render.MultiRenderable {
	w.mu.RLock()
	if !w.laidOut {
		w.mu.RUnlock()
		return render.Nothing{}
	}
	l := w.layout.Translate(offX, offY)
	el := w.element
	children := slices.Clone(w.children)
	backgrounds := slices.Clone(w.backgrounds)
	w.mu.RUnlock()

	items := make(render.Adjacent, 0, len(children)+2)
	items = append(items, el.Render(l))
	for _, c := range children {
		items = append(items, c.renderInfo(l.X, l.Y, debug))
	}
	if debug != nil {
		items = append(items, debugOutline(debug, l))
	}
	if len(backgrounds) == 0 {
		return items
	}

	layers := make(render.Layered, 0, len(backgrounds)+1)
	for _, bg := range backgrounds {
		layers = append(layers, bg.Render(l))
	}
	return append(layers, items)
}

const debugLineWidth = 1

// debugOutline draws a one pixel frame just inside l.
func debugOutline(tex renderer2d.TextureSource, l Layout) render.Image {
	var uv [4]float32
	x0, y0 := l.X, l.Y
	x1, y1 := l.X+l.Width, l.Y+l.Height
	return render.Image{Texture: tex, Renderables: []renderer2d.Renderable{
		renderer2d.Rect(x0, y0, debugLineWidth, l.Height, colors.White, uv),
		renderer2d.Rect(x1-debugLineWidth, y0, debugLineWidth, l.Height, colors.White, uv),
		renderer2d.Rect(x0, y0, l.Width, debugLineWidth, colors.White, uv),
		renderer2d.Rect(x0, y1-debugLineWidth, l.Width, debugLineWidth, colors.White, uv),
	}}
}

type hit struct {
	widget *Widget
	origin Point // absolute top-left
}

// hitPath returns the widgets containing (x, y), from w down to the
// deepest one. The first child containing the point is followed.
func (w *Widget) hitPath(offX, offY, x, y float32) []hit {
	var path []hit
	for cur := w; cur != nil; {
		l, ok := cur.Layout()
		if !ok {
			break
		}
		l = l.Translate(offX, offY)
		if !l.Contains(x, y) {
			break
		}
		path = append(path, hit{widget: cur, origin: Point{l.X, l.Y}})
		offX, offY = l.X, l.Y
		var next *Widget
		for _, c := range cur.Children() {
			if cl, ok := c.Layout(); ok && cl.Translate(offX, offY).Contains(x, y) {
				next = c
				break
			}
		}
		cur = next
	}
	return path
}
