package core

// Event model. Every concrete event carries the isEvent marker.
type Event interface{ isEvent() }

type EventCloseRequested struct{}

func (EventCloseRequested) isEvent() {}

type EventResize struct{ W, H int }

func (EventResize) isEvent() {}

type EventKey struct {
	Key  Key
	Down bool
	Mods Mod
}

func (EventKey) isEvent() {}

// EventChar carries a typed unicode character, after keyboard layout mapping.
type EventChar struct{ Char rune }

func (EventChar) isEvent() {}

type EventMouseMove struct{ X, Y float64 }

func (EventMouseMove) isEvent() {}

type EventMouseButton struct {
	Button MouseButton
	Action Action
	Mods   Mod
}

func (EventMouseButton) isEvent() {}

// EventCursorEnter fires when the cursor enters (Entered) or leaves the window.
type EventCursorEnter struct{ Entered bool }

func (EventCursorEnter) isEvent() {}

type EventScroll struct{ Xoff, Yoff float64 }

func (EventScroll) isEvent() {}

// Key/mod enums (subset; add as needed).
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeySpace
	KeyEnter
	KeyBackspace
	KeyTab
	KeyLeft
	KeyRight
	KeyW
	KeyA
	KeyS
	KeyD
	KeyP
	KeyF3
)

type Mod int

const (
	ModNone  Mod = 0
	ModShift Mod = 1 << 0
	ModCtrl  Mod = 1 << 1
	ModAlt   Mod = 1 << 2
	ModSuper Mod = 1 << 3
)

type MouseButton int

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
	MouseButtonOther
)

// Action is the state transition of a button.
type Action int

const (
	Release Action = iota
	Press
)

func (a Action) String() string {
	if a == Press {
		return "press"
	}
	return "release"
}
