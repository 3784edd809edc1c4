package scene

import "github.com/hubastard/questsage/engine/core"

// OrthoController2D: WASD move, scroll to zoom.
type OrthoController2D struct {
	// MoveSpeed is in view heights per second so panning feels the same at
	// any zoom level.
	MoveSpeed float32
	ZoomSpeed float32
	Camera    *Ortho
}

func NewOrthoController2D(cam *Ortho) *OrthoController2D {
	return &OrthoController2D{
		MoveSpeed: 0.5,
		ZoomSpeed: 1.2,
		Camera:    cam,
	}
}

func (cc *OrthoController2D) Update(in *core.Input, dt float32) {
	speed := cc.MoveSpeed * dt * cc.Camera.ViewHeight() / cc.Camera.Zoom()

	if in.IsKeyDown(core.KeyW) {
		cc.Camera.Move(0, speed)
	}
	if in.IsKeyDown(core.KeyS) {
		cc.Camera.Move(0, -speed)
	}
	if in.IsKeyDown(core.KeyA) {
		cc.Camera.Move(-speed, 0)
	}
	if in.IsKeyDown(core.KeyD) {
		cc.Camera.Move(speed, 0)
	}
}

// HandleEvent zooms on scroll. It reports whether the event was consumed.
func (cc *OrthoController2D) HandleEvent(ev core.Event) bool {
	s, ok := ev.(core.EventScroll)
	if !ok || s.Yoff == 0 {
		return false
	}
	if s.Yoff > 0 {
		cc.Camera.SetZoom(cc.Camera.Zoom() * cc.ZoomSpeed)
	} else {
		cc.Camera.SetZoom(cc.Camera.Zoom() / cc.ZoomSpeed)
	}
	return true
}
