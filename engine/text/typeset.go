package text

import (
	"context"
	"runtime"
	"strings"
	"unicode"

	"github.com/hubastard/questsage/engine/colors"
	"github.com/hubastard/questsage/engine/core"
	"github.com/hubastard/questsage/engine/gfx/renderer2d"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// PositionedGlyph is a glyph placed in word-local coordinates. X and Y are
// the pen position on the baseline; +Y points down.
type PositionedGlyph struct {
	Font   FontID
	Glyph  sfnt.GlyphIndex
	X, Y   float32
	Colour colors.Color
}

// Word is an indivisible shaped run. Its size is what the layout engine
// sees; line breaking between words is left to the layout.
type Word struct {
	Glyphs []PositionedGlyph
	// Width is the truncated pen advance; Height the tallest line height
	// of any glyph in the word.
	Width, Height int
	Text          string

	// Quads built by a Renderer for one glyph cache generation. Only the
	// render thread touches this.
	memo wordMemo
}

type wordMemo struct {
	owner      *Renderer
	generation uint64
	quads      []renderer2d.Quad
}

// TypesetText is the output of typesetting: one word list per paragraph.
type TypesetText struct {
	Paragraphs [][]*Word
}

// WordCount returns the number of words across all paragraphs.
func (t *TypesetText) WordCount() int {
	n := 0
	for _, p := range t.Paragraphs {
		n += len(p)
	}
	return n
}

// FontTypesetter is the Typesetter used by the UI. Paragraphs are shaped
// in parallel; the number of typesetting calls running at once is bounded.
type FontTypesetter struct {
	registry *FontRegistry
	shaper   Shaper
	scale    float32
	sem      *semaphore.Weighted
}

type TypesetterOption func(*FontTypesetter)

func WithShaper(s Shaper) TypesetterOption { return func(t *FontTypesetter) { t.shaper = s } }

// WithScale multiplies every FontSize tier.
func WithScale(f float32) TypesetterOption { return func(t *FontTypesetter) { t.scale = f } }

// WithConcurrency caps how many Typeset calls may run at once.
func WithConcurrency(n int64) TypesetterOption {
	return func(t *FontTypesetter) { t.sem = semaphore.NewWeighted(max(n, 1)) }
}

func NewTypesetter(reg *FontRegistry, opts ...TypesetterOption) *FontTypesetter {
	t := &FontTypesetter{
		registry: reg,
		shaper:   BasicShaper{},
		scale:    1,
		sem:      semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0))),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

func (t *FontTypesetter) Registry() *FontRegistry { return t.registry }
func (t *FontTypesetter) Scale() float32          { return t.scale }

func (t *FontTypesetter) Typeset(ctx context.Context, paragraphs []Paragraph) (*TypesetText, error) {
	if err := t.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer t.sem.Release(1)

	out := &TypesetText{Paragraphs: make([][]*Word, len(paragraphs))}
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range paragraphs {
		g.Go(func() error {
			if err := t.awaitFonts(gctx, p); err != nil {
				return err
			}
			out.Paragraphs[i] = t.shapeParagraph(p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// awaitFonts blocks until every font the paragraph might fall back to has
// settled. Shaping afterwards never waits.
func (t *FontTypesetter) awaitFonts(ctx context.Context, p Paragraph) error {
	seen := make(map[FontSource]struct{})
	for _, seg := range p {
		for _, face := range seg.Style.Family {
			for _, e := range fallbackChain(seg.Style.Emphasis) {
				src := face.Variant(e)
				if src == nil {
					continue
				}
				if _, ok := seen[src]; ok {
					continue
				}
				seen[src] = struct{}{}
				if _, err := src.Wait(ctx); err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					core.Logger().Debug("font unavailable", "face", face.Name, "emphasis", e, "err", err)
				}
			}
		}
	}
	return nil
}

type resolvedGlyph struct {
	id     FontID
	font   *Font
	size   float32
	glyph  sfnt.GlyphIndex
	r      rune
	colour colors.Color
}

var replacementRunes = []rune{'\uFFFD', '?'}

// resolve finds a font for r, trying every face of the family before the
// replacement characters. It reports false if the character is dropped.
func (t *FontTypesetter) resolve(st Style, size float32, r rune) (resolvedGlyph, bool) {
	candidates := append([]rune{r}, replacementRunes...)
	for _, c := range candidates {
		for _, face := range st.Family {
			for _, e := range fallbackChain(st.Emphasis) {
				src := face.Variant(e)
				if src == nil {
					continue
				}
				f, ok := src.Value()
				if !ok {
					continue
				}
				g, ok := f.GlyphIndex(c)
				if !ok {
					continue
				}
				id, err := t.registry.ID(face, e, size)
				if err != nil {
					continue
				}
				return resolvedGlyph{id: id, font: f, size: size, glyph: g, r: c, colour: st.Colour}, true
			}
		}
	}
	return resolvedGlyph{}, false
}

func (t *FontTypesetter) shapeParagraph(p Paragraph) []*Word {
	var (
		words   []*Word
		pending []resolvedGlyph
		text    strings.Builder
		started bool
	)
	flush := func() {
		if w := t.buildWord(pending, text.String()); w != nil {
			words = append(words, w)
		}
		pending = pending[:0]
		text.Reset()
	}
	for _, seg := range p {
		if started && !seg.Glued {
			flush()
		}
		started = true
		size := seg.Style.Size.Pixels(t.scale)
		for _, r := range seg.Text {
			if unicode.IsControl(r) {
				continue
			}
			rg, ok := t.resolve(seg.Style, size, r)
			if !ok {
				continue
			}
			pending = append(pending, rg)
			text.WriteRune(r)
		}
	}
	flush()
	return words
}

// buildWord shapes runs of same-font glyphs and lays them out left to
// right from x = 0.
func (t *FontTypesetter) buildWord(items []resolvedGlyph, s string) *Word {
	if len(items) == 0 {
		return nil
	}
	var (
		glyphs     []PositionedGlyph
		caretX     float32
		ascent     float32
		lineHeight float32
	)
	for start := 0; start < len(items); {
		end := start + 1
		for end < len(items) && items[end].id == items[start].id {
			end++
		}
		run := items[start:end]
		f, size := run[0].font, run[0].size

		runes := make([]rune, len(run))
		gids := make([]sfnt.GlyphIndex, len(run))
		for i, it := range run {
			runes[i], gids[i] = it.r, it.glyph
		}

		m := f.Metrics(size)
		ascent = max(ascent, m.Ascent)
		lineHeight = max(lineHeight, m.Height())

		for _, sg := range t.shaper.Shape(f, size, runes, gids) {
			ci := min(max(sg.Cluster, 0), len(run)-1)
			glyphs = append(glyphs, PositionedGlyph{
				Font:   run[0].id,
				Glyph:  sg.Glyph,
				X:      caretX + sg.XOffset,
				Y:      sg.YOffset,
				Colour: run[ci].colour,
			})
			caretX += sg.XAdvance
		}
		start = end
	}
	for i := range glyphs {
		glyphs[i].Y += ascent
	}
	return &Word{
		Glyphs: glyphs,
		Width:  int(caretX),
		Height: int(lineHeight),
		Text:   s,
	}
}
