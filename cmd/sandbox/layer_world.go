package main

import (
	"slices"

	"github.com/chewxy/math32"
	"github.com/hubastard/questsage/engine/assets"
	"github.com/hubastard/questsage/engine/colors"
	"github.com/hubastard/questsage/engine/core"
	"github.com/hubastard/questsage/engine/gfx/render"
	"github.com/hubastard/questsage/engine/gfx/renderer2d"
	"github.com/hubastard/questsage/engine/scene"
)

// WorldLayer draws a ring of sprites from the world atlas under a camera
// the player can pan and zoom.
type WorldLayer struct {
	app   *App
	cam   *scene.Ortho
	ctrl  *scene.OrthoController2D
	sheet *assets.Handle[core.Texture]
	atlas *assets.Handle[*render.Atlas]
	items []renderer2d.Renderable
	t     float32
}

func (l *WorldLayer) OnAttach(e *core.Engine) {
	w, h := e.Window.FramebufferSize()
	l.cam = scene.NewOrtho(0, 0, 256, float32(w)/float32(max(h, 1)))
	l.ctrl = scene.NewOrthoController2D(l.cam)
	l.sheet = l.app.textures.GetPath("textures/world.png")
	l.atlas = l.app.atlases.GetPath("textures/world.json")
}

func (l *WorldLayer) OnDetach(e *core.Engine) {}

func (l *WorldLayer) OnUpdate(e *core.Engine, dt float64) {
	l.ctrl.Update(e.Input, float32(dt))
	l.t += float32(dt)
	if e.Input.IsKeyDown(core.KeyEscape) {
		e.Window.RequestClose()
	}
}

func (l *WorldLayer) OnRender(e *core.Engine, alpha float64) {
	task := l.app.frame.Task("world")
	defer task.End()

	region, ok := assets.IfLoaded(l.atlas, func(a *render.Atlas) renderer2d.TextureRegion {
		r, err := a.Region(l.sheet, "player")
		if err != nil {
			return renderer2d.FromPixels(l.sheet, 0, 0, 32, 32, a.Width, a.Height)
		}
		return r
	})
	if !ok {
		return
	}

	const count = 8
	l.items = l.items[:0]
	for i := range count {
		angle := l.t + float32(i)*2*math32.Pi/count
		x, y := 64*math32.Cos(angle), 64*math32.Sin(angle)
		q := renderer2d.Rect(x-16, y-16, 32, 32, colors.White, renderer2d.FullUV)
		l.items = append(l.items, renderer2d.MapUV(q, region))
	}
	l.app.sprites.Render(region.Source, l.cam, slices.Values(l.items))
}

func (l *WorldLayer) OnEvent(e *core.Engine, ev core.Event) bool {
	if r, ok := ev.(core.EventResize); ok {
		// Keep the world view height; only the aspect follows the window.
		if r.W > 0 && r.H > 0 {
			l.cam.SetViewportPixels(r.W, r.H)
			l.cam.SetViewHeight(256)
		}
		return false
	}
	return l.ctrl.HandleEvent(ev)
}
