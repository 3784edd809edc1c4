package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hubastard/questsage/engine/core"
	"github.com/hubastard/questsage/engine/core/coretest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLayer struct {
	name     string
	consume  bool
	log      *[]string
	attached bool
	renders  int
}

func (l *recordingLayer) OnAttach(*core.Engine)          { l.attached = true }
func (l *recordingLayer) OnDetach(*core.Engine)          { l.attached = false }
func (l *recordingLayer) OnUpdate(*core.Engine, float64) {}
func (l *recordingLayer) OnRender(*core.Engine, float64) { l.renders++ }
func (l *recordingLayer) OnEvent(_ *core.Engine, ev core.Event) bool {
	*l.log = append(*l.log, l.name)
	return l.consume
}

type app struct {
	layers   []core.Layer
	started  bool
	shutdown bool
	events   []core.Event
}

func (a *app) OnStart(e *core.Engine) {
	a.started = true
	for _, l := range a.layers {
		e.Layers.Push(e, l)
	}
}
func (a *app) OnUpdate(*core.Engine, float64)        {}
func (a *app) OnRender(*core.Engine, float64)        {}
func (a *app) OnEvent(_ *core.Engine, ev core.Event) { a.events = append(a.events, ev) }
func (a *app) OnShutdown(*core.Engine)               { a.shutdown = true }

func TestRunDispatchesEventsTopDown(t *testing.T) {
	var log []string
	bottom := &recordingLayer{name: "bottom", log: &log}
	top := &recordingLayer{name: "top", consume: true, log: &log}
	a := &app{layers: []core.Layer{bottom, top}}

	win := &coretest.Window{Frames: 3, W: 640, H: 480}
	win.Queued = []core.Event{core.EventMouseMove{X: 4, Y: 5}}
	rec := coretest.NewRecorder()

	err := core.Run(a, core.Config{Width: 640, Height: 480},
		func(core.Config) (core.Window, error) { return win, nil },
		func(core.Window, core.Config) (core.Renderer, error) { return rec, nil },
	)
	require.NoError(t, err)

	assert.True(t, a.started)
	assert.True(t, a.shutdown)
	assert.Equal(t, []string{"top"}, log, "top layer consumed the event")
	assert.Len(t, a.events, 1)
	assert.Equal(t, 3, bottom.renders)
	assert.Equal(t, 3, rec.Clears)
	assert.Equal(t, 640, rec.Width)
	assert.False(t, top.attached, "layers are detached on exit")
}

func TestRunPropagatesWindowError(t *testing.T) {
	boom := errors.New("no display")
	err := core.Run(&app{}, core.Config{},
		func(core.Config) (core.Window, error) { return nil, boom },
		func(core.Window, core.Config) (core.Renderer, error) { return nil, nil },
	)
	assert.ErrorIs(t, err, boom)
}

func TestLayerStackPop(t *testing.T) {
	var ls core.LayerStack
	var log []string
	e := core.NewEngine(&coretest.Window{}, coretest.NewRecorder())
	ls.Push(e, &recordingLayer{name: "a", log: &log})
	ls.Push(e, &recordingLayer{name: "b", log: &log})
	require.Equal(t, 2, ls.Len())

	l, ok := ls.Pop()
	require.True(t, ok)
	assert.Equal(t, "b", l.(*recordingLayer).name)
	ls.Pop()
	_, ok = ls.Pop()
	assert.False(t, ok)
}

func TestMainThreadRunsQueuedWork(t *testing.T) {
	mt := core.NewMainThread()
	ran := make(chan error, 1)
	value := 0
	go func() {
		ran <- mt.Do(context.Background(), func() { value = 42 })
	}()

	require.Eventually(t, func() bool { return mt.Drain() > 0 }, time.Second, time.Millisecond)
	require.NoError(t, <-ran)
	assert.Equal(t, 42, value)
}

func TestMainThreadClose(t *testing.T) {
	mt := core.NewMainThread()
	mt.Close()
	err := mt.Do(context.Background(), func() {})
	assert.ErrorIs(t, err, core.ErrMainThreadClosed)
}

func TestInputTracksState(t *testing.T) {
	in := core.NewInput()
	in.Handle(core.EventKey{Key: core.KeyW, Down: true})
	in.Handle(core.EventMouseButton{Button: core.MouseButtonLeft, Action: core.Press})
	in.Handle(core.EventMouseMove{X: 10, Y: 20})

	assert.True(t, in.IsKeyDown(core.KeyW))
	assert.True(t, in.IsButtonDown(core.MouseButtonLeft))
	x, y := in.Mouse()
	assert.Equal(t, 10.0, x)
	assert.Equal(t, 20.0, y)

	in.Handle(core.EventMouseButton{Button: core.MouseButtonLeft, Action: core.Release})
	assert.False(t, in.IsButtonDown(core.MouseButtonLeft))
}
