package text

import (
	"fmt"
	"image"
	"slices"
	"sync"

	"golang.org/x/image/font/sfnt"
)

// GlyphKey identifies a rasterized glyph.
type GlyphKey struct {
	Font  FontID
	Glyph sfnt.GlyphIndex
}

// GlyphRasterizer produces coverage bitmaps for the cache.
type GlyphRasterizer interface {
	Rasterize(id FontID, g sfnt.GlyphIndex) (Bitmap, error)
}

// CachedBy reports how CacheQueued made room for the queued glyphs.
type CachedBy int

const (
	// CachedByAdding means existing glyphs kept their rectangles.
	CachedByAdding CachedBy = iota
	// CachedByReordering means the cache was cleared and repacked; every
	// rectangle obtained before the call is stale.
	CachedByReordering
)

func (c CachedBy) String() string {
	if c == CachedByReordering {
		return "reordering"
	}
	return "adding"
}

// UVRect is a rectangle in normalized texture coordinates.
type UVRect struct {
	U0, V0, U1, V1 float32
}

type cacheEntry struct {
	bitmap Bitmap
	rect   image.Rectangle // in the atlas; empty for outline-less glyphs
}

// GlyphCache packs glyph bitmaps into a fixed size single channel atlas
// using shelves. Callers queue the glyphs a frame needs, call CacheQueued
// to upload whatever is missing, then query rectangles with RectFor.
type GlyphCache struct {
	mu      sync.Mutex
	width   int
	height  int
	padding int
	raster  GlyphRasterizer

	entries map[GlyphKey]*cacheEntry
	queue   []GlyphKey
	queued  map[GlyphKey]struct{}

	// shelf cursor
	x, y, rowH int
}

type GlyphCacheOption func(*GlyphCache)

// WithPadding sets the empty border kept around every glyph. Default 1px.
func WithPadding(px int) GlyphCacheOption { return func(c *GlyphCache) { c.padding = px } }

func NewGlyphCache(width, height int, raster GlyphRasterizer, opts ...GlyphCacheOption) *GlyphCache {
	c := &GlyphCache{
		width:   width,
		height:  height,
		padding: 1,
		raster:  raster,
		entries: make(map[GlyphKey]*cacheEntry),
		queued:  make(map[GlyphKey]struct{}),
	}
	for _, o := range opts {
		o(c)
	}
	c.resetCursor()
	return c
}

func (c *GlyphCache) Size() (int, int) { return c.width, c.height }

// Len returns how many glyphs are cached.
func (c *GlyphCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *GlyphCache) QueueGlyph(font FontID, g sfnt.GlyphIndex) {
	k := GlyphKey{Font: font, Glyph: g}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.queued[k]; ok {
		return
	}
	c.queued[k] = struct{}{}
	c.queue = append(c.queue, k)
}

// CacheQueued makes every queued glyph available. Missing glyphs are added
// after the existing ones when they fit; otherwise the cache is cleared and
// only the queued glyphs are packed again. A glyph larger than the atlas
// fails the call before anything is evicted. upload receives each glyph that
// was written, with its atlas rectangle and tightly packed coverage rows.
//
// The queue is emptied even on error.
func (c *GlyphCache) CacheQueued(upload func(rect image.Rectangle, pix []byte)) (CachedBy, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	queue := c.queue
	c.queue = nil
	clear(c.queued)

	var missing []GlyphKey
	fresh := make(map[GlyphKey]Bitmap)
	for _, k := range queue {
		if _, ok := c.entries[k]; ok {
			continue
		}
		bm, err := c.raster.Rasterize(k.Font, k.Glyph)
		if err != nil {
			return CachedByAdding, fmt.Errorf("text: rasterize glyph %d of font %d: %w", k.Glyph, k.Font, err)
		}
		fresh[k] = bm
		missing = append(missing, k)
	}
	if len(missing) == 0 {
		return CachedByAdding, nil
	}
	for _, k := range missing {
		if !c.fitsEmpty(fresh[k]) {
			b := fresh[k].Bounds
			return CachedByAdding, fmt.Errorf("%w: glyph %d is %dx%d, atlas is %dx%d",
				ErrCacheTooSmall, k.Glyph, b.Dx(), b.Dy(), c.width, c.height)
		}
	}

	c.sortByHeight(missing, fresh)
	if placed, ok := c.pack(missing, fresh, c.x, c.y, c.rowH); ok {
		for _, k := range missing {
			c.store(k, fresh[k], placed[k], upload)
		}
		return CachedByAdding, nil
	}

	// Repack only what this frame needs.
	bitmaps := make(map[GlyphKey]Bitmap, len(queue))
	for _, k := range queue {
		if e, ok := c.entries[k]; ok {
			bitmaps[k] = e.bitmap
		} else {
			bitmaps[k] = fresh[k]
		}
	}
	clear(c.entries)
	c.resetCursor()

	keys := slices.Clone(queue)
	c.sortByHeight(keys, bitmaps)
	placed, ok := c.pack(keys, bitmaps, c.x, c.y, c.rowH)
	if !ok {
		return CachedByReordering, fmt.Errorf("%w: %d glyphs in %dx%d", ErrCacheTooSmall, len(keys), c.width, c.height)
	}
	for _, k := range keys {
		c.store(k, bitmaps[k], placed[k], upload)
	}
	return CachedByReordering, nil
}

// RectFor returns where the glyph lives in the atlas and its pixel bounds
// relative to the pen. ok is false for glyphs with nothing to draw.
func (c *GlyphCache) RectFor(font FontID, g sfnt.GlyphIndex) (uv UVRect, bounds image.Rectangle, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, found := c.entries[GlyphKey{Font: font, Glyph: g}]
	if !found {
		return UVRect{}, image.Rectangle{}, false, ErrGlyphNotCached
	}
	if e.rect.Empty() {
		return UVRect{}, e.bitmap.Bounds, false, nil
	}
	w, h := float32(c.width), float32(c.height)
	uv = UVRect{
		U0: float32(e.rect.Min.X) / w,
		V0: float32(e.rect.Min.Y) / h,
		U1: float32(e.rect.Max.X) / w,
		V1: float32(e.rect.Max.Y) / h,
	}
	return uv, e.bitmap.Bounds, true, nil
}

// fitsEmpty reports whether bm fits in an empty atlas. A glyph that does
// not can never be cached, so it must not evict anything.
func (c *GlyphCache) fitsEmpty(bm Bitmap) bool {
	if bm.Empty() {
		return true
	}
	return bm.Bounds.Dx()+c.padding*2 <= c.width && bm.Bounds.Dy()+c.padding*2 <= c.height
}

func (c *GlyphCache) resetCursor() {
	c.x, c.y, c.rowH = c.padding, c.padding, 0
}

func (c *GlyphCache) sortByHeight(keys []GlyphKey, bitmaps map[GlyphKey]Bitmap) {
	slices.SortStableFunc(keys, func(a, b GlyphKey) int {
		return bitmaps[b].Bounds.Dy() - bitmaps[a].Bounds.Dy()
	})
}

// pack places keys on shelves starting at the given cursor. It only
// commits the cursor when everything fits.
func (c *GlyphCache) pack(keys []GlyphKey, bitmaps map[GlyphKey]Bitmap, x, y, rowH int) (map[GlyphKey]image.Point, bool) {
	placed := make(map[GlyphKey]image.Point, len(keys))
	for _, k := range keys {
		bm := bitmaps[k]
		if bm.Empty() {
			continue
		}
		w, h := bm.Bounds.Dx(), bm.Bounds.Dy()
		if w+c.padding*2 > c.width || h+c.padding*2 > c.height {
			return nil, false
		}
		if x+w+c.padding > c.width {
			x = c.padding
			y += rowH + c.padding
			rowH = 0
		}
		if y+h+c.padding > c.height {
			return nil, false
		}
		placed[k] = image.Pt(x, y)
		x += w + c.padding
		rowH = max(rowH, h)
	}
	c.x, c.y, c.rowH = x, y, rowH
	return placed, true
}

func (c *GlyphCache) store(k GlyphKey, bm Bitmap, at image.Point, upload func(image.Rectangle, []byte)) {
	e := &cacheEntry{bitmap: bm}
	if !bm.Empty() {
		e.rect = image.Rectangle{Min: at, Max: at.Add(bm.Bounds.Size())}
		if upload != nil {
			upload(e.rect, bm.Pix)
		}
	}
	c.entries[k] = e
}
