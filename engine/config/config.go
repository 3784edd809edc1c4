// Package config loads client settings from a YAML or TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hubastard/questsage/engine/colors"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var ErrUnknownFormat = errors.New("config: unknown file format")

type Config struct {
	Window Window `yaml:"window" toml:"window"`
	Assets Assets `yaml:"assets" toml:"assets"`
	Text   Text   `yaml:"text" toml:"text"`
	UI     UI     `yaml:"ui" toml:"ui"`
	Log    Log    `yaml:"log" toml:"log"`
}

type Window struct {
	Title  string       `yaml:"title" toml:"title"`
	Width  int          `yaml:"width" toml:"width"`
	Height int          `yaml:"height" toml:"height"`
	VSync  bool         `yaml:"vsync" toml:"vsync"`
	Clear  colors.Color `yaml:"clear_colour" toml:"clear_colour"`
}

type Assets struct {
	// Root is the asset directory. Relative roots resolve against the
	// config file's directory.
	Root  string `yaml:"root" toml:"root"`
	Watch bool   `yaml:"watch" toml:"watch"`
	// Loads caps how many files load at once. Zero means one per CPU.
	Loads int64 `yaml:"parallel_loads" toml:"parallel_loads"`
}

type Text struct {
	Shaper  Shaper  `yaml:"shaper" toml:"shaper"`
	Scale   float32 `yaml:"scale" toml:"scale"`
	Workers int64   `yaml:"workers" toml:"workers"`
}

type Shaper string

const (
	ShaperBasic    Shaper = "basic"
	ShaperHarfbuzz Shaper = "harfbuzz"
)

type UI struct {
	DebugLines bool `yaml:"debug_lines" toml:"debug_lines"`
}

type Log struct {
	Level string `yaml:"level" toml:"level"`
}

// SlogLevel maps the configured level name to a slog level. Unknown names
// mean info.
func (l Log) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func Default() Config {
	return Config{
		Window: Window{Title: "questsage", Width: 1280, Height: 720, VSync: true, Clear: colors.DarkGray},
		Assets: Assets{Root: "assets"},
		Text:   Text{Shaper: ShaperBasic, Scale: 1},
		Log:    Log{Level: "info"},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := Decode(filepath.Ext(path), data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	if cfg.Assets.Root != "" && !filepath.IsAbs(cfg.Assets.Root) {
		cfg.Assets.Root = filepath.Join(filepath.Dir(path), cfg.Assets.Root)
	}
	return cfg, cfg.Validate()
}

// Decode parses data in the format named by ext into cfg. Fields missing
// from data keep their current value.
func Decode(ext string, data []byte, cfg *Config) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	case ".toml":
		return toml.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, ext)
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("config: window size %dx%d", c.Window.Width, c.Window.Height))
	}
	switch c.Text.Shaper {
	case ShaperBasic, ShaperHarfbuzz:
	default:
		errs = append(errs, fmt.Errorf("config: unknown shaper %q", c.Text.Shaper))
	}
	if c.Text.Scale <= 0 {
		errs = append(errs, fmt.Errorf("config: text scale %v", c.Text.Scale))
	}
	return errors.Join(errs...)
}
