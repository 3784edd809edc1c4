package coretest

import "github.com/hubastard/questsage/engine/core"

// Window is a headless core.Window. It closes itself after Frames swaps.
type Window struct {
	Frames int
	W, H   int
	Title  string
	Queued []core.Event

	swaps  int
	closed bool
	cb     func(core.Event)
}

var _ core.Window = (*Window)(nil)

func (w *Window) PollEvents() {
	events := w.Queued
	w.Queued = nil
	for _, ev := range events {
		if w.cb != nil {
			w.cb(ev)
		}
	}
}

func (w *Window) SwapBuffers()                         { w.swaps++ }
func (w *Window) ShouldClose() bool                    { return w.closed || w.swaps >= w.Frames }
func (w *Window) RequestClose()                        { w.closed = true }
func (w *Window) FramebufferSize() (int, int)          { return w.W, w.H }
func (w *Window) SetTitle(title string)                { w.Title = title }
func (w *Window) SetEventCallback(cb func(core.Event)) { w.cb = cb }
func (w *Window) Swaps() int                           { return w.swaps }
