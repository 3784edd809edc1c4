package ui

import (
	"github.com/hubastard/questsage/engine/core"
	"github.com/hubastard/questsage/engine/gfx/render"
)

// Point is a position in UI space. +Y points down.
type Point struct{ X, Y float32 }

// Element is the content of a widget. Size reports the element's intrinsic
// size; any dimension that is not Auto overrides the widget's style.
// Render draws the element into l, which is in absolute UI coordinates.
//
// Elements may also implement any of the handler interfaces below.
type Element interface {
	Size() Size
	Render(l Layout) render.MultiRenderable
}

// InputResult tells the UI what an element did with a mouse button event.
type InputResult uint8

const (
	NotProcessed InputResult = iota
	Processed
	// TakeKeyboardFocus marks the event processed and sends later keyboard
	// input to the element.
	TakeKeyboardFocus
)

func (r InputResult) String() string {
	switch r {
	case Processed:
		return "processed"
	case TakeKeyboardFocus:
		return "take-keyboard-focus"
	default:
		return "not-processed"
	}
}

// MouseMoveHandler receives the cursor position relative to the widget's
// top-left corner while the cursor is over it.
type MouseMoveHandler interface {
	MouseMove(p Point)
}

type MouseButtonHandler interface {
	MouseInput(b core.MouseButton, a core.Action) InputResult
}

// HoverHandler is told when the cursor enters or leaves the widget.
type HoverHandler interface {
	MouseEnter()
	MouseLeave()
}

// KeyboardHandler receives keyboard input while the element has focus.
// The return value reports whether the event was consumed.
type KeyboardHandler interface {
	KeyInput(ev core.EventKey) bool
	CharInput(r rune) bool
}

type FocusHandler interface {
	FocusChanged(focused bool)
}

// Empty is an element that draws nothing and has no intrinsic size. It is
// the element of plain container widgets.
type Empty struct{}

func (Empty) Size() Size                           { return Size{} }
func (Empty) Render(Layout) render.MultiRenderable { return render.Nothing{} }
