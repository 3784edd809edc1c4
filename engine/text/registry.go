package text

import (
	"fmt"
	"sync"

	"golang.org/x/image/font/sfnt"
)

// FontID identifies one (face, emphasis, pixel size) combination. IDs start
// at 1 and are never reused within a registry.
type FontID uint32

type fontKey struct {
	face     *FontFace
	emphasis Emphasis
	size     float32
}

type registeredFont struct {
	key    fontKey
	source FontSource
}

// FontRegistry hands out FontIDs and maps them back to font sources.
// Construct one per text pipeline and share it between the typesetter and
// the glyph rasterizer.
type FontRegistry struct {
	mu    sync.Mutex
	ids   map[fontKey]FontID
	fonts []registeredFont
}

func NewFontRegistry() *FontRegistry {
	return &FontRegistry{ids: make(map[fontKey]FontID)}
}

// ID returns the id for the given combination, creating it on first use.
// Lookup and insertion happen under one lock so concurrent callers always
// agree on the id.
func (r *FontRegistry) ID(face *FontFace, e Emphasis, size float32) (FontID, error) {
	src := face.Variant(e)
	if src == nil {
		return 0, fmt.Errorf("text: face %q has no %s variant", face.Name, e)
	}
	k := fontKey{face: face, emphasis: e, size: size}

	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.ids[k]; ok {
		return id, nil
	}
	r.fonts = append(r.fonts, registeredFont{key: k, source: src})
	id := FontID(len(r.fonts))
	r.ids[k] = id
	return id, nil
}

// Lookup returns the font source and pixel size behind id.
func (r *FontRegistry) Lookup(id FontID) (FontSource, float32, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id == 0 || int(id) > len(r.fonts) {
		return nil, 0, false
	}
	f := r.fonts[id-1]
	return f.source, f.key.size, true
}

func (r *FontRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fonts)
}

// Rasterize renders a glyph of a registered font. It is the glyph source
// for a GlyphCache.
func (r *FontRegistry) Rasterize(id FontID, g sfnt.GlyphIndex) (Bitmap, error) {
	src, size, ok := r.Lookup(id)
	if !ok {
		return Bitmap{}, fmt.Errorf("%w: %d", ErrUnknownFont, id)
	}
	f, ok := src.Value()
	if !ok {
		return Bitmap{}, ErrFontNotLoaded
	}
	return f.Rasterize(g, size)
}
