package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hubastard/questsage/engine/colors"
	"github.com/hubastard/questsage/engine/core"
	"github.com/hubastard/questsage/engine/gfx/render"
	"github.com/hubastard/questsage/engine/profiler"
	"github.com/hubastard/questsage/engine/scene"
	"github.com/hubastard/questsage/engine/text"
	"github.com/hubastard/questsage/engine/ui"
)

// DebugLayer shows frame timings and renderer counters in the top-left
// corner. It is rendered last and closes the frame's profile.
type DebugLayer struct {
	app   *App
	cam   *scene.Ortho
	ui    *ui.UI
	stats *ui.Text
	ticks int
}

func (l *DebugLayer) OnAttach(e *core.Engine) {
	w, h := e.Window.FramebufferSize()
	l.cam = scene.NewScreen(w, h)
	l.stats = ui.NewText(l.app.typesetter, ui.Style{
		Size:    ui.Size{Width: ui.Points(420), Height: ui.Auto()},
		Padding: ui.Uniform(12),
	})
	l.stats.Widget().WithBackgrounds(ui.NinePatchElement{
		Patch:  render.NoMargins(l.app.white, 1, 1),
		Colour: colors.Black.WithAlpha(0.5),
	})
	root := ui.NewWidget(nil, ui.Style{Direction: ui.Column, AlignItems: ui.AlignStart, Padding: ui.Uniform(16)},
		l.stats.Widget())
	l.ui = ui.New(root, float32(w), float32(h))
}

func (l *DebugLayer) OnDetach(e *core.Engine) {}

// OnUpdate refreshes the text twice a second; typesetting every frame
// would be measured by the profile it shows.
func (l *DebugLayer) OnUpdate(e *core.Engine, dt float64) {
	l.ticks++
	if l.ticks%30 != 0 {
		return
	}
	a := l.app
	rt := profiler.ReadRuntime()
	sprites, words, multi := a.sprites.Stats(), a.words.Stats(), a.multi.Stats()
	info := e.Renderer.Info()

	section := func(b *text.Builder, title string) {
		b.Coloured(colors.Yellow, func(b *text.Builder) { b.Bold(func(b *text.Builder) { b.Write(title) }) }).EndParagraph()
	}
	b := l.stats.SetText(a.family)
	section(b, "Frame")
	b.Write(fmt.Sprintf("%s per frame", profiler.FormatDuration(a.prof.Frame.Average()))).EndParagraph()
	if a.prof.Ready() {
		for _, line := range splitLines(a.prof.String()) {
			b.Write(line).EndParagraph()
		}
	}
	section(b, "Renderer")
	b.Write(fmt.Sprintf("sprites: %d draws, %d vertices", sprites.DrawCalls, sprites.Vertices)).EndParagraph()
	b.Write(fmt.Sprintf("text: %d draws, %d vertices", words.DrawCalls, words.Vertices)).EndParagraph()
	b.Write(fmt.Sprintf("flushes: %d shape, %d text", multi.ShapeFlushes, multi.TextFlushes)).EndParagraph()
	b.Write(fmt.Sprintf("glyph cache generation %d", a.words.Generation())).EndParagraph()
	section(b, "Runtime")
	b.Write(fmt.Sprintf("heap %.2f MB, %d GCs", float64(rt.HeapAlloc)/(1<<20), rt.NumGC)).EndParagraph()
	b.Write(fmt.Sprintf("%d goroutines on %d CPUs", rt.Goroutines, rt.CPUs)).EndParagraph()
	section(b, "GPU")
	b.Write(info.Renderer).EndParagraph()
	b.Write(info.Version)
	if err := b.Finish(a.ctx); err != nil {
		core.Logger().Warn("debug text", "err", err)
	}
}

func splitLines(s string) []string {
	var out []string
	for line := range strings.Lines(s) {
		out = append(out, strings.TrimRight(line, "\n"))
	}
	return out
}

func (l *DebugLayer) OnRender(e *core.Engine, alpha float64) {
	task := l.app.frame.Task("debug")
	l.ui.Layout()
	l.app.multi.Render(l.ui.RenderInfo(0, 0), l.cam)
	task.End()
	l.app.frame.End()
}

func (l *DebugLayer) OnEvent(e *core.Engine, ev core.Event) bool {
	switch v := ev.(type) {
	case core.EventResize:
		l.cam.SetViewportPixels(v.W, v.H)
		l.ui.Resize(float32(v.W), float32(v.H))
	case core.EventKey:
		if v.Down && v.Key == core.KeyP && v.Mods&core.ModCtrl != 0 {
			path := filepath.Join(os.TempDir(), "questsage.speedscope.json")
			if err := profiler.DumpTrace(path); err != nil {
				core.Logger().Warn("trace dump failed", "err", err)
			} else {
				core.Logger().Info("trace written", "path", path)
			}
			return true
		}
	}
	return false
}
