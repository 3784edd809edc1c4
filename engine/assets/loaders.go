package assets

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/png"

	"github.com/hubastard/questsage/engine/core"
	"github.com/hubastard/questsage/engine/gfx/render"
	"github.com/hubastard/questsage/engine/text"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DecodeRGBA decodes a PNG, BMP or WebP image into tightly packed RGBA8
// rows, top row first.
func DecodeRGBA(data []byte) (w, h int, pix []byte, err error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, 0, nil, err
	}
	rgba := toRGBA(img)
	w, h = rgba.Bounds().Dx(), rgba.Bounds().Dy()
	if rgba.Stride == w*4 {
		return w, h, rgba.Pix[:w*h*4], nil
	}
	pix = make([]byte, w*h*4)
	for y := range h {
		copy(pix[y*w*4:(y+1)*w*4], rgba.Pix[y*rgba.Stride:])
	}
	return w, h, pix, nil
}

func toRGBA(img image.Image) *image.RGBA {
	if m, ok := img.(*image.RGBA); ok && m.Rect.Min == (image.Point{}) {
		return m
	}
	dst := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
	return dst
}

// TextureLoader decodes images and uploads them on the main thread.
type TextureLoader struct {
	Renderer   core.Renderer
	MainThread *core.MainThread
	// Filter is "nearest" or "linear". Empty means linear.
	Filter string
}

func (l TextureLoader) Load(ctx context.Context, p Path, data []byte) (core.Texture, error) {
	w, h, pix, err := DecodeRGBA(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", p, err)
	}
	filter := l.Filter
	if filter == "" {
		filter = "linear"
	}
	desc := core.TextureDesc{
		Width: w, Height: h, Format: core.TextureRGBA8, Pixels: pix,
		MinFilter: filter, MagFilter: filter, WrapU: "clamp", WrapV: "clamp",
	}
	var (
		tex       core.Texture
		createErr error
	)
	if err := l.MainThread.Do(ctx, func() { tex, createErr = l.Renderer.CreateTexture(desc) }); err != nil {
		return nil, err
	}
	return tex, createErr
}

// Release frees a texture replaced by a reload. The GPU object is deleted
// on the main thread, like it was created.
func (l TextureLoader) Release(ctx context.Context, tex core.Texture) error {
	if tex == nil {
		return nil
	}
	return l.MainThread.Do(ctx, tex.Release)
}

// FontLoader parses TrueType and OpenType fonts.
type FontLoader struct{}

func (FontLoader) Load(_ context.Context, p Path, data []byte) (*text.Font, error) {
	return text.ParseFont(p.String(), data)
}

// AtlasLoader parses texture packer metadata.
type AtlasLoader struct{}

func (AtlasLoader) Load(_ context.Context, _ Path, data []byte) (*render.Atlas, error) {
	return render.ParseAtlas(data)
}

// ShaderLoader returns GLSL source as text.
type ShaderLoader struct{}

func (ShaderLoader) Load(_ context.Context, p Path, data []byte) (string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return "", fmt.Errorf("shader %s is empty", p)
	}
	return string(data), nil
}

// BytesLoader returns file contents unchanged.
type BytesLoader struct{}

func (BytesLoader) Load(_ context.Context, _ Path, data []byte) ([]byte, error) { return data, nil }
