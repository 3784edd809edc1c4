package core

import "time"

// App defines the game/application hooks.
type App interface {
	OnStart(e *Engine)                 // called once after window/renderer init
	OnUpdate(e *Engine, dt float64)    // called at a fixed tick (60Hz by default)
	OnRender(e *Engine, alpha float64) // render with interpolation alpha [0..1]
	OnEvent(e *Engine, ev Event)       // input/window events
	OnShutdown(e *Engine)              // before exit
}

// Engine exposes core services to the App.
type Engine struct {
	Window     Window
	Renderer   Renderer
	Layers     LayerStack
	Input      *Input
	MainThread *MainThread
	start      time.Time
}

// NewEngine bundles a window and renderer. Run creates one itself; tests and
// headless tools can build their own.
func NewEngine(win Window, rend Renderer) *Engine {
	return &Engine{
		Window:     win,
		Renderer:   rend,
		Input:      NewInput(),
		MainThread: NewMainThread(),
		start:      time.Now(),
	}
}

func (e *Engine) Uptime() time.Duration { return time.Since(e.start) }

// Window abstraction.
type Window interface {
	PollEvents()
	SwapBuffers()
	ShouldClose() bool
	RequestClose()
	FramebufferSize() (int, int)
	SetTitle(title string)
	SetEventCallback(cb func(Event))
}

// Config for the engine run.
type Config struct {
	Title      string
	Width      int
	Height     int
	VSync      bool
	ClearColor [4]float32 // RGBA
}
