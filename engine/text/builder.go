package text

import (
	"context"
	"unicode"

	"github.com/hubastard/questsage/engine/colors"
	"golang.org/x/text/unicode/norm"
)

// Builder accumulates styled text for a RichText. Styling helpers such as
// Bold pass a child builder to a callback and splice its output back in.
type Builder struct {
	target     *RichText
	generation uint64
	internal   bool

	style      Style
	paragraphs []Paragraph
	current    Paragraph
}

// Write appends text that may break from whatever precedes it.
func (b *Builder) Write(s string) *Builder { return b.write(s, false) }

// WriteGlued appends text that continues the previous word.
func (b *Builder) WriteGlued(s string) *Builder { return b.write(s, true) }

// write splits s wherever whitespace is followed by non-whitespace, so
// "foo bar" becomes "foo " and "bar". Only the first piece inherits glued.
func (b *Builder) write(s string, glued bool) *Builder {
	s = norm.NFC.String(s)
	start := 0
	prev := rune(-1)
	for i, r := range s {
		if prev >= 0 && unicode.IsSpace(prev) && !unicode.IsSpace(r) {
			b.current = append(b.current, Segment{Text: s[start:i], Style: b.style, Glued: glued})
			start = i
			glued = false
		}
		prev = r
	}
	b.current = append(b.current, Segment{Text: s[start:], Style: b.style, Glued: glued})
	return b
}

// EndParagraph starts a new paragraph.
func (b *Builder) EndParagraph() *Builder {
	b.paragraphs = append(b.paragraphs, b.current)
	b.current = nil
	return b
}

func (b *Builder) H1(fn func(*Builder)) *Builder { return b.withSize(SizeH1, fn) }
func (b *Builder) H2(fn func(*Builder)) *Builder { return b.withSize(SizeH2, fn) }
func (b *Builder) H3(fn func(*Builder)) *Builder { return b.withSize(SizeH3, fn) }

func (b *Builder) withSize(size FontSize, fn func(*Builder)) *Builder {
	st := b.style
	st.Size = size
	return b.nested(st, fn)
}

// Bold emboldens the text written by fn, keeping any italic.
func (b *Builder) Bold(fn func(*Builder)) *Builder {
	st := b.style
	st.Emphasis = st.Emphasis.withBold()
	return b.nested(st, fn)
}

// Italic slants the text written by fn, keeping any bold.
func (b *Builder) Italic(fn func(*Builder)) *Builder {
	st := b.style
	st.Emphasis = st.Emphasis.withItalic()
	return b.nested(st, fn)
}

func (b *Builder) Coloured(c colors.Color, fn func(*Builder)) *Builder {
	st := b.style
	st.Colour = c
	return b.nested(st, fn)
}

func (b *Builder) nested(st Style, fn func(*Builder)) *Builder {
	child := &Builder{target: b.target, generation: b.generation, internal: true, style: st}
	fn(child)
	for _, p := range child.paragraphs {
		b.current = append(b.current, p...)
		b.EndParagraph()
	}
	b.current = append(b.current, child.current...)
	return b
}

// Paragraphs returns what has been written so far, including the open
// paragraph.
func (b *Builder) Paragraphs() []Paragraph {
	out := append([]Paragraph(nil), b.paragraphs...)
	if len(b.current) > 0 {
		out = append(out, b.current)
	}
	return out
}

// Finish hands the text to the RichText and starts typesetting it in the
// background. The RichText keeps showing its previous contents until the
// result is committed.
func (b *Builder) Finish(ctx context.Context) error {
	if b.internal {
		return ErrInternalBuilder
	}
	b.target.submit(ctx, b.generation, b.Paragraphs())
	return nil
}
