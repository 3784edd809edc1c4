package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/hubastard/questsage/engine/assets"
	"github.com/hubastard/questsage/engine/config"
	"github.com/hubastard/questsage/engine/core"
	glbackend "github.com/hubastard/questsage/engine/gfx/gl"
	"github.com/hubastard/questsage/engine/gfx/render"
	"github.com/hubastard/questsage/engine/gfx/renderer2d"
	"github.com/hubastard/questsage/engine/platform"
	"github.com/hubastard/questsage/engine/profiler"
	"github.com/hubastard/questsage/engine/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// App owns the services shared by the layers.
type App struct {
	cfg config.Config

	ctx    context.Context
	cancel context.CancelFunc

	assets   *assets.Manager
	textures *assets.Store[core.Texture]
	fonts    *assets.Store[*text.Font]
	atlases  *assets.Store[*render.Atlas]

	sprites    *renderer2d.Batch
	words      *text.Renderer
	multi      *render.MultiBatch
	typesetter *text.FontTypesetter
	family     text.FontFamily
	white      renderer2d.TextureSource

	prof  *profiler.CycleProfiler
	frame *profiler.Timing
}

func (a *App) OnStart(e *core.Engine) {
	a.ctx, a.cancel = context.WithCancel(context.Background())
	profiler.InitTrace(1 << 16)
	a.prof = profiler.NewCycleProfiler(25)

	var loadOpts []assets.ManagerOption
	if a.cfg.Assets.Loads > 0 {
		loadOpts = append(loadOpts, assets.WithParallelLoads(a.cfg.Assets.Loads))
	}
	a.assets = assets.NewDirManager(a.cfg.Assets.Root, loadOpts...)
	a.textures = assets.NewStore[core.Texture](a.assets, assets.TextureLoader{Renderer: e.Renderer, MainThread: e.MainThread})
	a.fonts = assets.NewStore[*text.Font](a.assets, assets.FontLoader{})
	a.atlases = assets.NewStore[*render.Atlas](a.assets, assets.AtlasLoader{})
	if a.cfg.Assets.Watch {
		go func() {
			if err := a.assets.Watch(a.ctx); err != nil {
				core.Logger().Warn("asset watcher stopped", "err", err)
			}
		}()
	}

	var opts []text.TypesetterOption
	if a.cfg.Text.Shaper == config.ShaperHarfbuzz {
		opts = append(opts, text.WithShaper(text.NewHarfbuzzShaper()))
	}
	if a.cfg.Text.Workers > 0 {
		opts = append(opts, text.WithConcurrency(a.cfg.Text.Workers))
	}
	registry := text.NewFontRegistry()
	a.typesetter = text.NewTypesetter(registry, opts...)
	a.family = a.fontFamily()

	var err error
	if a.sprites, err = renderer2d.NewSpriteBatch(e.Renderer); err != nil {
		fatal("sprite batch", err)
	}
	if a.words, err = text.NewRenderer(e.Renderer, registry, a.cfg.Text.Scale); err != nil {
		fatal("text renderer", err)
	}
	a.multi = render.NewMultiBatch(a.sprites, a.words)

	white, err := e.Renderer.CreateTexture(core.TextureDesc{
		Width: 1, Height: 1, Format: core.TextureRGBA8, Pixels: []byte{255, 255, 255, 255},
		MinFilter: "nearest", MagFilter: "nearest", WrapU: "clamp", WrapV: "clamp",
	})
	if err != nil {
		fatal("white texture", err)
	}
	a.white = renderer2d.Static(white)

	e.Layers.Push(e, &WorldLayer{app: a})
	e.Layers.Push(e, &UILayer{app: a})
	e.Layers.Push(e, &DebugLayer{app: a})
}

// fontFamily prefers the fonts shipped in the asset directory and falls
// back to the Go fonts for anything they lack.
func (a *App) fontFamily() text.FontFamily {
	goFont := func(name string, data []byte) text.FontSource {
		f, err := text.ParseFont(name, data)
		if err != nil {
			fatal("go font", err)
		}
		return text.Loaded(f)
	}
	return text.FontFamily{
		{
			Name:    "body",
			Regular: a.fonts.GetPath("fonts/body-regular.ttf"),
			Bold:    a.fonts.GetPath("fonts/body-bold.ttf"),
		},
		{
			Name:    "go",
			Regular: goFont("go-regular", goregular.TTF),
			Bold:    goFont("go-bold", gobold.TTF),
			Italic:  goFont("go-italic", goitalic.TTF),
		},
	}
}

func (a *App) OnUpdate(e *core.Engine, dt float64) {}

// OnRender opens the frame's profile; the debug layer, rendered last,
// closes it.
func (a *App) OnRender(e *core.Engine, alpha float64) {
	a.frame = a.prof.Begin()
	a.sprites.ResetStats()
	a.words.ResetStats()
	a.multi.ResetStats()
}

func (a *App) OnEvent(e *core.Engine, ev core.Event) {}

func (a *App) OnShutdown(e *core.Engine) {
	a.cancel()
	a.assets.Close()
	a.words.Release()
	a.sprites.Release()
}

func fatal(what string, err error) {
	core.Logger().Error("startup failed", "what", what, "err", err)
	os.Exit(1)
}

func main() {
	configPath := flag.String("config", "questsage.yaml", "config file (.yaml, .yml or .toml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("bad config", "path", *configPath, "err", err)
		os.Exit(1)
	}
	core.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()})))

	engineCfg := core.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		VSync:      cfg.Window.VSync,
		ClearColor: cfg.Window.Clear,
	}
	app := &App{cfg: cfg}

	newWindow := func(cfg core.Config) (core.Window, error) {
		return platform.NewGLFWWindow(cfg, nil)
	}
	newRenderer := func(win core.Window, cfg core.Config) (core.Renderer, error) {
		return glbackend.NewRendererGL(win, cfg)
	}

	if err := core.Run(app, engineCfg, newWindow, newRenderer); err != nil {
		core.Logger().Error("engine stopped", "err", err)
		os.Exit(1)
	}
}
