package text

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hubastard/questsage/engine/colors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

func mustFont(t *testing.T, name string, data []byte) *Font {
	t.Helper()
	f, err := ParseFont(name, data)
	require.NoError(t, err)
	return f
}

func goFace(t *testing.T) *FontFace {
	t.Helper()
	return &FontFace{
		Name:    "go",
		Regular: Loaded(mustFont(t, "go-regular", goregular.TTF)),
		Italic:  Loaded(mustFont(t, "go-italic", goitalic.TTF)),
	}
}

type brokenFont struct{}

func (brokenFont) Value() (*Font, bool)                { return nil, false }
func (brokenFont) Wait(context.Context) (*Font, error) { return nil, errors.New("missing file") }

func typeset(t *testing.T, ts Typesetter, build func(*Builder), family FontFamily) *TypesetText {
	t.Helper()
	rt := NewRichText(ts)
	b := rt.SetText(family)
	build(b)
	require.NoError(t, b.Finish(context.Background()))
	rt.Wait()
	out, ok := rt.Typeset()
	require.True(t, ok)
	return out
}

func TestRegistryIDsAreStableUnderConcurrency(t *testing.T) {
	reg := NewFontRegistry()
	face := goFace(t)

	ids := make([]FontID, 32)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := reg.ID(face, Regular, 24)
			assert.NoError(t, err)
			ids[i] = id
		}()
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	other, err := reg.ID(face, Regular, 48)
	require.NoError(t, err)
	assert.NotEqual(t, ids[0], other)
	assert.Equal(t, 2, reg.Len())

	_, err = reg.ID(face, Bold, 24)
	assert.Error(t, err, "face has no bold variant")

	src, size, ok := reg.Lookup(other)
	require.True(t, ok)
	assert.Equal(t, float32(48), size)
	assert.Equal(t, face.Regular, src)
}

func TestBuilderSplitsAfterWhitespace(t *testing.T) {
	rt := NewRichText(NewTypesetter(NewFontRegistry()))
	b := rt.SetText(nil)
	b.Write("foo bar  baz").WriteGlued("qux")

	ps := b.Paragraphs()
	require.Len(t, ps, 1)
	var texts []string
	var glued []bool
	for _, s := range ps[0] {
		texts = append(texts, s.Text)
		glued = append(glued, s.Glued)
	}
	assert.Equal(t, []string{"foo ", "bar  ", "baz", "qux"}, texts)
	assert.Equal(t, []bool{false, false, false, true}, glued)
}

func TestBuilderNestedStyles(t *testing.T) {
	rt := NewRichText(NewTypesetter(NewFontRegistry()))
	b := rt.SetText(nil)
	b.H1(func(b *Builder) {
		b.Write("Title")
	}).EndParagraph()
	b.Italic(func(b *Builder) {
		b.Bold(func(b *Builder) { b.Write("both") })
	}).Coloured(colors.Red, func(b *Builder) { b.Write("red") })

	ps := b.Paragraphs()
	require.Len(t, ps, 2)
	assert.Equal(t, SizeH1, ps[0][0].Style.Size)
	assert.Equal(t, BoldItalic, ps[1][0].Style.Emphasis)
	assert.Equal(t, colors.Red, ps[1][1].Style.Colour)
	assert.Equal(t, Regular, ps[1][1].Style.Emphasis)

	var inner *Builder
	b.Bold(func(b *Builder) { inner = b })
	assert.ErrorIs(t, inner.Finish(context.Background()), ErrInternalBuilder)
}

func TestGluedSegmentsFormOneWord(t *testing.T) {
	family := FontFamily{goFace(t)}
	ts := NewTypesetter(NewFontRegistry())

	out := typeset(t, ts, func(b *Builder) { b.Write("foo").WriteGlued("bar") }, family)
	require.Equal(t, 1, out.WordCount())
	assert.Equal(t, "foobar", out.Paragraphs[0][0].Text)

	out = typeset(t, ts, func(b *Builder) { b.Write("foo").Write("bar") }, family)
	assert.Equal(t, 2, out.WordCount())
}

func TestControlCharactersAreSkipped(t *testing.T) {
	out := typeset(t, NewTypesetter(NewFontRegistry()), func(b *Builder) {
		b.Write("a\x07b")
	}, FontFamily{goFace(t)})

	require.Equal(t, 1, out.WordCount())
	w := out.Paragraphs[0][0]
	assert.Len(t, w.Glyphs, 2)
	assert.Equal(t, "ab", w.Text)
}

func TestWordMetrics(t *testing.T) {
	face := goFace(t)
	reg := NewFontRegistry()
	out := typeset(t, NewTypesetter(reg, WithScale(2)), func(b *Builder) { b.Write("Hi") }, FontFamily{face})

	f, _ := face.Regular.Value()
	size := SizeText.Pixels(2)
	m := f.Metrics(size)
	hi, _ := f.GlyphIndex('H')
	ii, _ := f.GlyphIndex('i')
	adv := f.Advance(hi, size) + f.Kern(hi, ii, size) + f.Advance(ii, size)

	w := out.Paragraphs[0][0]
	assert.Equal(t, int(adv), w.Width)
	assert.Equal(t, int(m.Height()), w.Height)
	require.Len(t, w.Glyphs, 2)
	assert.Equal(t, float32(0), w.Glyphs[0].X)
	assert.Equal(t, m.Ascent, w.Glyphs[0].Y)
	assert.Equal(t, colors.White, w.Glyphs[0].Colour)

	_, gotSize, ok := reg.Lookup(w.Glyphs[0].Font)
	require.True(t, ok)
	assert.Equal(t, float32(48), gotSize)
}

func TestEmphasisFallsBackToRegular(t *testing.T) {
	face := goFace(t)
	reg := NewFontRegistry()
	out := typeset(t, NewTypesetter(reg), func(b *Builder) {
		b.Bold(func(b *Builder) { b.Write("x") })
	}, FontFamily{face})

	want, err := reg.ID(face, Regular, 24)
	require.NoError(t, err)
	assert.Equal(t, want, out.Paragraphs[0][0].Glyphs[0].Font)

	// Bold italic prefers the italic variant over regular.
	out = typeset(t, NewTypesetter(reg), func(b *Builder) {
		b.Bold(func(b *Builder) { b.Italic(func(b *Builder) { b.Write("x") }) })
	}, FontFamily{face})
	want, err = reg.ID(face, Italic, 24)
	require.NoError(t, err)
	assert.Equal(t, want, out.Paragraphs[0][0].Glyphs[0].Font)
}

func TestFallsThroughToNextFace(t *testing.T) {
	broken := &FontFace{Name: "broken", Regular: brokenFont{}}
	face := &FontFace{Name: "bold", Regular: Loaded(mustFont(t, "go-bold", gobold.TTF))}
	reg := NewFontRegistry()

	out := typeset(t, NewTypesetter(reg), func(b *Builder) { b.Write("ok") }, FontFamily{broken, face})
	require.Equal(t, 1, out.WordCount())
	want, err := reg.ID(face, Regular, 24)
	require.NoError(t, err)
	for _, g := range out.Paragraphs[0][0].Glyphs {
		assert.Equal(t, want, g.Font)
	}
}

func TestMissingCharacterUsesReplacement(t *testing.T) {
	face := goFace(t)
	f, _ := face.Regular.Value()
	_, ok := f.GlyphIndex('中')
	require.False(t, ok, "test needs a character the Go fonts lack")

	want, ok := f.GlyphIndex('\uFFFD')
	if !ok {
		want, _ = f.GlyphIndex('?')
	}

	out := typeset(t, NewTypesetter(NewFontRegistry()), func(b *Builder) { b.Write("中") }, FontFamily{face})
	require.Equal(t, 1, out.WordCount())
	require.Len(t, out.Paragraphs[0][0].Glyphs, 1)
	assert.Equal(t, want, out.Paragraphs[0][0].Glyphs[0].Glyph)
}

func TestHarfbuzzShaperProducesGlyphs(t *testing.T) {
	out := typeset(t, NewTypesetter(NewFontRegistry(), WithShaper(NewHarfbuzzShaper())), func(b *Builder) {
		b.Write("hello")
	}, FontFamily{goFace(t)})

	require.Equal(t, 1, out.WordCount())
	w := out.Paragraphs[0][0]
	assert.NotEmpty(t, w.Glyphs)
	assert.Positive(t, w.Width)
}

// gatedTypesetter blocks each call until released, so tests can control
// which of several concurrent typesets finishes first.
type gatedTypesetter struct {
	gates map[string]chan struct{}
}

func (g *gatedTypesetter) Typeset(ctx context.Context, ps []Paragraph) (*TypesetText, error) {
	key := ps[0][0].Text
	select {
	case <-g.gates[key]:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &TypesetText{Paragraphs: [][]*Word{{{Text: key}}}}, nil
}

func TestRichTextLastWriteWins(t *testing.T) {
	ts := &gatedTypesetter{gates: map[string]chan struct{}{
		"old": make(chan struct{}),
		"new": make(chan struct{}),
	}}
	rt := NewRichText(ts)
	var commits []string
	var mu sync.Mutex
	rt.OnCommit(func(out *TypesetText) {
		mu.Lock()
		commits = append(commits, out.Paragraphs[0][0].Text)
		mu.Unlock()
	})

	ctx := context.Background()
	require.NoError(t, rt.SetText(nil).Write("old").Finish(ctx))
	require.NoError(t, rt.SetText(nil).Write("new").Finish(ctx))

	close(ts.gates["new"])
	require.Eventually(t, func() bool {
		_, ok := rt.Typeset()
		return ok
	}, time.Second, time.Millisecond)
	close(ts.gates["old"])
	rt.Wait()

	out, ok := rt.Typeset()
	require.True(t, ok)
	assert.Equal(t, "new", out.Paragraphs[0][0].Text)
	assert.Equal(t, []string{"new"}, commits)
	assert.Equal(t, uint64(2), rt.Generation())
	assert.Equal(t, "new", rt.Paragraphs()[0][0].Text)
}

func TestRasterizeGlyph(t *testing.T) {
	f := mustFont(t, "go-regular", goregular.TTF)
	g, ok := f.GlyphIndex('A')
	require.True(t, ok)

	bm, err := f.Rasterize(g, 32)
	require.NoError(t, err)
	assert.False(t, bm.Empty())
	assert.Len(t, bm.Pix, bm.Bounds.Dx()*bm.Bounds.Dy())
	assert.Negative(t, bm.Bounds.Min.Y, "glyph rises above the baseline")

	space, _ := f.GlyphIndex(' ')
	bm, err = f.Rasterize(space, 32)
	require.NoError(t, err)
	assert.True(t, bm.Empty())
}
