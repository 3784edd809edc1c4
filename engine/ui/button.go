package ui

import (
	"sync"

	"github.com/hubastard/questsage/engine/colors"
	"github.com/hubastard/questsage/engine/core"
	"github.com/hubastard/questsage/engine/gfx/render"
)

type ButtonState uint8

const (
	ButtonReleased ButtonState = iota
	ButtonHovered
	ButtonPressed
	// ButtonPressedNotHovered is a press that was dragged off the button.
	// Releasing it does not click.
	ButtonPressedNotHovered
	ButtonDisabled
)

func (s ButtonState) String() string {
	switch s {
	case ButtonHovered:
		return "hovered"
	case ButtonPressed:
		return "pressed"
	case ButtonPressedNotHovered:
		return "pressed-not-hovered"
	case ButtonDisabled:
		return "disabled"
	default:
		return "released"
	}
}

// ButtonStyle holds the patch drawn in each state. Pressed is also used
// while a press is dragged off the button.
type ButtonStyle struct {
	Released render.NinePatch
	Hovered  render.NinePatch
	Pressed  render.NinePatch
	Disabled render.NinePatch
}

// Button is a clickable element. It has no intrinsic size; give its widget
// a size or children.
type Button struct {
	mu      sync.Mutex
	style   ButtonStyle
	state   ButtonState
	onClick func()
}

func NewButton(style ButtonStyle, onClick func()) *Button {
	return &Button{style: style, onClick: onClick}
}

func (b *Button) State() ButtonState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// SetDisabled enables or disables the button. An enabled button starts out
// released.
func (b *Button) SetDisabled(disabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case disabled:
		b.state = ButtonDisabled
	case b.state == ButtonDisabled:
		b.state = ButtonReleased
	}
}

func (*Button) Size() Size { return Size{} }

func (b *Button) Render(l Layout) render.MultiRenderable {
	b.mu.Lock()
	var patch render.NinePatch
	switch b.state {
	case ButtonHovered:
		patch = b.style.Hovered
	case ButtonPressed, ButtonPressedNotHovered:
		patch = b.style.Pressed
	case ButtonDisabled:
		patch = b.style.Disabled
	default:
		patch = b.style.Released
	}
	b.mu.Unlock()
	return patch.Render(colors.White, l.X, l.Y, l.Width, l.Height)
}

func (b *Button) MouseInput(button core.MouseButton, a core.Action) InputResult {
	if button != core.MouseButtonLeft {
		return NotProcessed
	}
	b.mu.Lock()
	var click bool
	result := NotProcessed
	switch {
	case a == core.Press && b.state == ButtonHovered:
		b.state = ButtonPressed
		result = Processed
	case a == core.Release && b.state == ButtonPressed:
		b.state = ButtonHovered
		click = b.onClick != nil
		result = Processed
	case a == core.Release && b.state == ButtonPressedNotHovered:
		b.state = ButtonReleased
	}
	b.mu.Unlock()

	if click {
		b.onClick()
	}
	return result
}

func (b *Button) MouseEnter() {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case ButtonReleased:
		b.state = ButtonHovered
	case ButtonPressedNotHovered:
		b.state = ButtonPressed
	}
}

func (b *Button) MouseLeave() {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case ButtonHovered:
		b.state = ButtonReleased
	case ButtonPressed:
		b.state = ButtonPressedNotHovered
	}
}
