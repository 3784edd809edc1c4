package text

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"sync"

	gotext "github.com/go-text/typesetting/font"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Font is a parsed TrueType/OpenType font. It is safe for concurrent use.
type Font struct {
	name string
	data []byte
	sf   *opentype.Font
	bufs sync.Pool

	gtOnce sync.Once
	gt     *gotext.Font
	gtErr  error
}

// LineMetrics are in pixels. Descent is negative (below the baseline).
type LineMetrics struct {
	Ascent, Descent, LineGap float32
}

// Height is the distance between consecutive baselines.
func (m LineMetrics) Height() float32 { return m.Ascent - m.Descent + m.LineGap }

// Bitmap is an 8-bit coverage mask. Bounds are relative to the pen position
// on the baseline, with +Y pointing down.
type Bitmap struct {
	Bounds image.Rectangle
	Pix    []byte
}

func (b Bitmap) Empty() bool { return b.Bounds.Empty() }

func ParseFont(name string, data []byte) (*Font, error) {
	sf, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("text: parse font %q: %w", name, err)
	}
	f := &Font{name: name, data: data, sf: sf}
	f.bufs.New = func() any { return new(sfnt.Buffer) }
	return f, nil
}

func (f *Font) Name() string { return f.name }

func (f *Font) buffer() (*sfnt.Buffer, func()) {
	b := f.bufs.Get().(*sfnt.Buffer)
	return b, func() { f.bufs.Put(b) }
}

func ppem(size float32) fixed.Int26_6 { return fixed.Int26_6(size * 64) }

func fromFixed(v fixed.Int26_6) float32 { return float32(v) / 64 }

// GlyphIndex maps r to a glyph. The notdef glyph counts as missing.
func (f *Font) GlyphIndex(r rune) (sfnt.GlyphIndex, bool) {
	buf, done := f.buffer()
	defer done()
	g, err := f.sf.GlyphIndex(buf, r)
	if err != nil || g == 0 {
		return 0, false
	}
	return g, true
}

func (f *Font) Advance(g sfnt.GlyphIndex, size float32) float32 {
	buf, done := f.buffer()
	defer done()
	adv, err := f.sf.GlyphAdvance(buf, g, ppem(size), font.HintingNone)
	if err != nil {
		return 0
	}
	return fromFixed(adv)
}

// Kern returns the pair adjustment between a and b, or 0 when the font has
// no kerning data for them.
func (f *Font) Kern(a, b sfnt.GlyphIndex, size float32) float32 {
	buf, done := f.buffer()
	defer done()
	k, err := f.sf.Kern(buf, a, b, ppem(size), font.HintingNone)
	if err != nil {
		return 0
	}
	return fromFixed(k)
}

func (f *Font) Metrics(size float32) LineMetrics {
	buf, done := f.buffer()
	defer done()
	m, err := f.sf.Metrics(buf, ppem(size), font.HintingNone)
	if err != nil {
		return LineMetrics{}
	}
	ascent := fromFixed(m.Ascent)
	descent := -fromFixed(m.Descent)
	return LineMetrics{
		Ascent:  ascent,
		Descent: descent,
		LineGap: fromFixed(m.Height) - ascent + descent,
	}
}

// Rasterize renders glyph g at size pixels per em. Glyphs without an
// outline, such as spaces, yield an empty bitmap.
func (f *Font) Rasterize(g sfnt.GlyphIndex, size float32) (Bitmap, error) {
	buf, done := f.buffer()
	segs, err := f.sf.LoadGlyph(buf, g, ppem(size), nil)
	if err != nil {
		done()
		return Bitmap{}, fmt.Errorf("text: load glyph %d of %q: %w", g, f.name, err)
	}
	// segs aliases buf; copy before returning it to the pool.
	segs = append(sfnt.Segments(nil), segs...)
	done()
	if len(segs) == 0 {
		return Bitmap{}, nil
	}

	b := segs.Bounds()
	bounds := image.Rect(b.Min.X.Floor(), b.Min.Y.Floor(), b.Max.X.Ceil(), b.Max.Y.Ceil())
	if bounds.Empty() {
		return Bitmap{}, nil
	}
	ox, oy := float32(bounds.Min.X), float32(bounds.Min.Y)
	pt := func(p fixed.Point26_6) (float32, float32) {
		return fromFixed(p.X) - ox, fromFixed(p.Y) - oy
	}

	r := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	r.DrawOp = draw.Src
	for i, s := range segs {
		switch s.Op {
		case sfnt.SegmentOpMoveTo:
			if i > 0 {
				r.ClosePath()
			}
			r.MoveTo(pt(s.Args[0]))
		case sfnt.SegmentOpLineTo:
			r.LineTo(pt(s.Args[0]))
		case sfnt.SegmentOpQuadTo:
			x1, y1 := pt(s.Args[0])
			x2, y2 := pt(s.Args[1])
			r.QuadTo(x1, y1, x2, y2)
		case sfnt.SegmentOpCubeTo:
			x1, y1 := pt(s.Args[0])
			x2, y2 := pt(s.Args[1])
			x3, y3 := pt(s.Args[2])
			r.CubeTo(x1, y1, x2, y2, x3, y3)
		}
	}
	r.ClosePath()

	dst := image.NewAlpha(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	r.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
	return Bitmap{Bounds: bounds, Pix: dst.Pix}, nil
}

// goText parses the font again for the HarfBuzz shaper. The result is
// cached; go-text fonts are read-only and safe to share.
func (f *Font) goText() (*gotext.Font, error) {
	f.gtOnce.Do(func() {
		face, err := gotext.ParseTTF(bytes.NewReader(f.data))
		if err != nil {
			f.gtErr = fmt.Errorf("text: go-text parse %q: %w", f.name, err)
			return
		}
		f.gt = face.Font
	})
	return f.gt, f.gtErr
}
