package text

import "errors"

var (
	// ErrGlyphNotCached is returned by GlyphCache.RectFor for a glyph that
	// was not part of the last CacheQueued call.
	ErrGlyphNotCached = errors.New("text: glyph not cached")
	// ErrCacheTooSmall means the glyphs queued for one frame do not fit in
	// the cache even after it was cleared.
	ErrCacheTooSmall = errors.New("text: glyph cache too small")
	// ErrInternalBuilder is returned by Finish on a builder handed to a
	// styling callback such as Bold.
	ErrInternalBuilder = errors.New("text: finish called on internal builder")
	ErrFontNotLoaded   = errors.New("text: font not loaded")
	ErrUnknownFont     = errors.New("text: unknown font id")
)
