package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/hubastard/questsage/engine/colors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestMissingFileIsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, Default().Validate())
}

func TestLoadYAML(t *testing.T) {
	path := write(t, "client.yaml", `
window:
  title: demo
  width: 800
  clear_colour: [1, 0, 0, 1]
assets:
  root: data
  watch: true
text:
  shaper: harfbuzz
ui:
  debug_lines: true
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Window.Title)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height, "unset fields keep defaults")
	assert.Equal(t, colors.Red, cfg.Window.Clear)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "data"), cfg.Assets.Root)
	assert.True(t, cfg.Assets.Watch)
	assert.Equal(t, ShaperHarfbuzz, cfg.Text.Shaper)
	assert.Equal(t, float32(1), cfg.Text.Scale)
	assert.True(t, cfg.UI.DebugLines)
	assert.Equal(t, slog.LevelDebug, cfg.Log.SlogLevel())
}

func TestLoadTOML(t *testing.T) {
	path := write(t, "client.toml", `
[window]
height = 600
vsync = false

[assets]
root = "/srv/assets"

[text]
scale = 2.0
workers = 3
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 600, cfg.Window.Height)
	assert.False(t, cfg.Window.VSync)
	assert.Equal(t, "/srv/assets", cfg.Assets.Root)
	assert.Equal(t, float32(2), cfg.Text.Scale)
	assert.Equal(t, int64(3), cfg.Text.Workers)
}

func TestLoadRejectsBadValues(t *testing.T) {
	_, err := Load(write(t, "bad.yaml", "text:\n  shaper: magic\n  scale: 0\n"))
	assert.ErrorContains(t, err, `unknown shaper "magic"`)
	assert.ErrorContains(t, err, "text scale")

	_, err = Load(write(t, "client.json", "{}"))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Load(write(t, "broken.yaml", "window: [\n"))
	assert.Error(t, err)
}

func TestSlogLevelFallsBackToInfo(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, Log{Level: "loud"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, Log{Level: "WARN"}.SlogLevel())
}
