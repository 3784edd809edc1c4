// Package ui is a retained widget tree laid out with flexbox and drawn
// through the render package.
package ui

import (
	"slices"
	"sync/atomic"
	"weak"

	"github.com/hubastard/questsage/engine/core"
	"github.com/hubastard/questsage/engine/gfx/render"
	"github.com/hubastard/questsage/engine/gfx/renderer2d"
)

// UI owns a widget tree sized to the window. It lays the tree out only
// when something changed and routes input to the widgets.
//
// A UI must be driven from one goroutine. Its widgets may be changed from
// any goroutine.
type UI struct {
	root          *Widget
	width, height float32
	dirty         *atomic.Bool
	debugLines    renderer2d.TextureSource

	hovered []*Widget // root first
	pressed map[core.MouseButton]*Widget
	focused *Widget
}

func New(root *Widget, width, height float32) *UI {
	u := &UI{
		root:    root,
		width:   width,
		height:  height,
		dirty:   new(atomic.Bool),
		pressed: make(map[core.MouseButton]*Widget),
	}
	u.dirty.Store(true)
	root.attach(weak.Make(u.dirty))
	return u
}

func (u *UI) Root() *Widget { return u.root }

func (u *UI) Size() (float32, float32) { return u.width, u.height }

func (u *UI) Resize(width, height float32) {
	if width == u.width && height == u.height {
		return
	}
	u.width, u.height = width, height
	u.dirty.Store(true)
}

// SetDebugLines outlines every widget using tex. A nil texture turns the
// outlines off.
func (u *UI) SetDebugLines(tex renderer2d.TextureSource) { u.debugLines = tex }

func (u *UI) DebugLines() bool { return u.debugLines != nil }

// NeedsLayout reports whether the tree changed since the last layout.
func (u *UI) NeedsLayout() bool { return u.dirty.Load() }

// Layout lays the tree out if it changed and reports whether it did.
// Changes made while the pass runs are picked up by the next call.
func (u *UI) Layout() bool {
	if !u.dirty.Swap(false) {
		return false
	}
	tree := u.root.snapshot()
	solveLayout(tree, u.width, u.height)
	tree.writeBack()
	core.Logger().Debug("ui laid out", "width", u.width, "height", u.height)
	return true
}

// RenderInfo describes the whole tree with its top-left corner at
// (offX, offY).
func (u *UI) RenderInfo(offX, offY float32) render.MultiRenderable {
	return u.root.renderInfo(offX, offY, u.debugLines)
}

// Focused returns the widget receiving keyboard input, if any.
func (u *UI) Focused() *Widget { return u.focused }

// SetFocus moves keyboard focus to w. A nil widget clears focus.
func (u *UI) SetFocus(w *Widget) {
	if w == u.focused {
		return
	}
	if u.focused != nil {
		if h, ok := u.focused.Element().(FocusHandler); ok {
			h.FocusChanged(false)
		}
	}
	u.focused = w
	if w != nil {
		if h, ok := w.Element().(FocusHandler); ok {
			h.FocusChanged(true)
		}
	}
}

// MouseMove updates hover state for the cursor at (x, y) and passes the
// position, local to each widget, to every widget under the cursor.
func (u *UI) MouseMove(x, y float32) {
	path := u.root.hitPath(0, 0, x, y)
	now := make([]*Widget, len(path))
	for i, h := range path {
		now[i] = h.widget
	}

	for i := len(u.hovered) - 1; i >= 0; i-- {
		if !slices.Contains(now, u.hovered[i]) {
			if h, ok := u.hovered[i].Element().(HoverHandler); ok {
				h.MouseLeave()
			}
		}
	}
	for _, w := range now {
		if !slices.Contains(u.hovered, w) {
			if h, ok := w.Element().(HoverHandler); ok {
				h.MouseEnter()
			}
		}
	}
	u.hovered = now

	for _, h := range path {
		if mm, ok := h.widget.Element().(MouseMoveHandler); ok {
			mm.MouseMove(Point{x - h.origin.X, y - h.origin.Y})
		}
	}
}

// MouseLeft clears hover state when the cursor leaves the window.
func (u *UI) MouseLeft() {
	for i := len(u.hovered) - 1; i >= 0; i-- {
		if h, ok := u.hovered[i].Element().(HoverHandler); ok {
			h.MouseLeave()
		}
	}
	u.hovered = nil
}

// MouseInput offers a button event to the hovered widgets, deepest first,
// until one processes it. A widget that processed a press also receives
// the matching release wherever the cursor is by then.
func (u *UI) MouseInput(b core.MouseButton, a core.Action) InputResult {
	result, target := NotProcessed, (*Widget)(nil)
	for i := len(u.hovered) - 1; i >= 0; i-- {
		h, ok := u.hovered[i].Element().(MouseButtonHandler)
		if !ok {
			continue
		}
		if r := h.MouseInput(b, a); r != NotProcessed {
			result, target = r, u.hovered[i]
			break
		}
	}

	switch a {
	case core.Press:
		if target != nil {
			u.pressed[b] = target
		}
		if result == TakeKeyboardFocus {
			u.SetFocus(target)
		} else {
			u.SetFocus(nil)
		}
	case core.Release:
		if p, ok := u.pressed[b]; ok {
			delete(u.pressed, b)
			if !slices.Contains(u.hovered, p) {
				if h, ok := p.Element().(MouseButtonHandler); ok {
					if r := h.MouseInput(b, a); result == NotProcessed {
						result = r
					}
				}
			}
		}
	}
	return result
}

// KeyInput sends a key event to the focused widget.
func (u *UI) KeyInput(ev core.EventKey) bool {
	if u.focused == nil {
		return false
	}
	h, ok := u.focused.Element().(KeyboardHandler)
	return ok && h.KeyInput(ev)
}

// CharInput sends a typed character to the focused widget.
func (u *UI) CharInput(r rune) bool {
	if u.focused == nil {
		return false
	}
	h, ok := u.focused.Element().(KeyboardHandler)
	return ok && h.CharInput(r)
}

// HandleEvent routes a window event into the tree and reports whether the
// UI consumed it.
func (u *UI) HandleEvent(ev core.Event) bool {
	switch e := ev.(type) {
	case core.EventResize:
		u.Resize(float32(e.W), float32(e.H))
	case core.EventMouseMove:
		u.MouseMove(float32(e.X), float32(e.Y))
	case core.EventCursorEnter:
		if !e.Entered {
			u.MouseLeft()
		}
	case core.EventMouseButton:
		return u.MouseInput(e.Button, e.Action) != NotProcessed
	case core.EventKey:
		return u.KeyInput(e)
	case core.EventChar:
		return u.CharInput(e.Char)
	}
	return false
}
