package main

import (
	"fmt"

	"github.com/hubastard/questsage/engine/colors"
	"github.com/hubastard/questsage/engine/core"
	"github.com/hubastard/questsage/engine/gfx/render"
	"github.com/hubastard/questsage/engine/scene"
	"github.com/hubastard/questsage/engine/text"
	"github.com/hubastard/questsage/engine/ui"
)

// UILayer is a small menu: a heading, a click counter and a text field.
type UILayer struct {
	app    *App
	cam    *scene.Ortho
	ui     *ui.UI
	status *ui.Text
	field  *ui.Field
	clicks int
}

func (l *UILayer) OnAttach(e *core.Engine) {
	w, h := e.Window.FramebufferSize()
	l.cam = scene.NewScreen(w, h)

	a := l.app
	patch := func(name string) render.NinePatch {
		return render.NinePatch{
			Texture:      a.textures.GetPath("textures/ui/" + name + ".png"),
			TextureWidth: 24, TextureHeight: 24,
			Left: 8, Right: 8, Top: 8, Bottom: 8,
		}
	}

	heading := ui.NewText(a.typesetter, ui.Style{})
	if err := heading.SetText(a.family).
		H1(func(b *text.Builder) { b.Write("questsage") }).
		EndParagraph().
		Coloured(colors.Gray, func(b *text.Builder) {
			b.Write("Drag with WASD, scroll to zoom. Press F3 for layout outlines.")
		}).
		Finish(a.ctx); err != nil {
		core.Logger().Warn("heading", "err", err)
	}

	l.status = ui.NewText(a.typesetter, ui.Style{Margin: ui.Edges{Left: 12}})
	l.setStatus()

	button := ui.NewButton(ui.ButtonStyle{
		Released: patch("button"),
		Hovered:  patch("button-hover"),
		Pressed:  patch("button-pressed"),
		Disabled: patch("button-disabled"),
	}, func() {
		l.clicks++
		l.setStatus()
	})
	label := ui.NewText(a.typesetter, ui.Style{Padding: ui.Uniform(8)})
	if err := label.SetText(a.family).Write("Click me").Finish(a.ctx); err != nil {
		core.Logger().Warn("button label", "err", err)
	}

	row := ui.NewWidget(nil, ui.Style{Direction: ui.Row, AlignItems: ui.AlignCenter},
		ui.NewWidget(button, ui.Style{AlignItems: ui.AlignCenter, Justify: ui.JustifyCenter}, label.Widget()),
		l.status.Widget(),
	)

	l.field = ui.NewField(a.typesetter, a.family, render.NoMargins(a.white, 1, 1), ui.Style{
		Size:    ui.Size{Width: ui.Percent(1), Height: ui.Auto()},
		MinSize: ui.Size{Width: ui.Auto(), Height: ui.Points(32)},
		Padding: ui.Uniform(6),
	})
	l.field.Widget().WithBackgrounds(ui.NinePatchElement{Patch: patch("field"), Colour: colors.White})

	panel := ui.NewWidget(nil, ui.Style{
		Direction:  ui.Column,
		AlignItems: ui.AlignStart,
		Size:       ui.Size{Width: ui.Points(480), Height: ui.Auto()},
		Padding:    ui.Uniform(24),
		Gap:        12,
	}, heading.Widget(), row, l.field.Widget()).
		WithBackgrounds(ui.NinePatchElement{Patch: patch("panel"), Colour: colors.White.WithAlpha(0.9)})

	root := ui.NewWidget(nil, ui.Style{
		Direction:  ui.Column,
		Justify:    ui.JustifyCenter,
		AlignItems: ui.AlignCenter,
	}, panel)
	l.ui = ui.New(root, float32(w), float32(h))
	if a.cfg.UI.DebugLines {
		l.ui.SetDebugLines(a.white)
	}
}

func (l *UILayer) setStatus() {
	err := l.status.SetText(l.app.family).
		Write(fmt.Sprintf("Clicked %d times", l.clicks)).
		Finish(l.app.ctx)
	if err != nil {
		core.Logger().Warn("status text", "err", err)
	}
}

func (l *UILayer) OnDetach(e *core.Engine) {}

func (l *UILayer) OnUpdate(e *core.Engine, dt float64) {}

func (l *UILayer) OnRender(e *core.Engine, alpha float64) {
	task := l.app.frame.Task("ui")
	defer task.End()

	layout := task.Task("layout")
	l.ui.Layout()
	layout.End()

	draw := task.Task("draw")
	l.app.multi.Render(l.ui.RenderInfo(0, 0), l.cam)
	draw.End()
}

func (l *UILayer) OnEvent(e *core.Engine, ev core.Event) bool {
	switch v := ev.(type) {
	case core.EventResize:
		l.cam.SetViewportPixels(v.W, v.H)
	case core.EventKey:
		if v.Down && v.Key == core.KeyF3 {
			if !l.ui.DebugLines() {
				l.ui.SetDebugLines(l.app.white)
			} else {
				l.ui.SetDebugLines(nil)
			}
			return true
		}
	}
	return l.ui.HandleEvent(ev)
}
