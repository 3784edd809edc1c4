package ui

import (
	"iter"

	"github.com/hubastard/questsage/engine/gfx/render"
	"github.com/hubastard/questsage/engine/text"
)

// Text shows rich text. Every paragraph becomes a wrapping row and every
// word a fixed-size widget inside it, so line breaking is done by the
// layout.
//
// The widget tree is rebuilt on the typesetting goroutine whenever a new
// typeset result is committed.
type Text struct {
	rich   *text.RichText
	widget *Widget
}

// NewText returns an empty text widget. Its style's direction is always
// Column.
func NewText(ts text.Typesetter, style Style) *Text {
	style.Direction = Column
	t := &Text{rich: text.NewRichText(ts), widget: NewWidget(Empty{}, style)}
	t.rich.OnCommit(t.rebuild)
	return t
}

func (t *Text) Widget() *Widget                    { return t.widget }
func (t *Text) RichText() *text.RichText           { return t.rich }
func (t *Text) Typeset() (*text.TypesetText, bool) { return t.rich.Typeset() }

// SetText starts replacing the contents. Call Finish on the builder to
// typeset them.
func (t *Text) SetText(family text.FontFamily) *text.Builder { return t.rich.SetText(family) }

var paragraphStyle = Style{Direction: Row, Wrap: WrapLines, AlignItems: AlignStart}

func (t *Text) rebuild(ts *text.TypesetText) {
	paragraphs := make([]*Widget, len(ts.Paragraphs))
	for i, words := range ts.Paragraphs {
		ws := make([]*Widget, 0, len(words))
		for _, w := range words {
			if w != nil {
				ws = append(ws, NewWidget(wordElement{w}, Style{}))
			}
		}
		paragraphs[i] = NewWidget(Empty{}, paragraphStyle, ws...)
	}
	t.widget.SetChildren(paragraphs...)
}

// words yields every laid out word with its layout relative to the text
// widget, paragraph by paragraph.
func (t *Text) words() iter.Seq2[*text.Word, Layout] {
	return func(yield func(*text.Word, Layout) bool) {
		for _, p := range t.widget.Children() {
			pl, ok := p.Layout()
			if !ok {
				continue
			}
			for _, w := range p.Children() {
				wl, ok := w.Layout()
				if !ok {
					continue
				}
				we, ok := w.Element().(wordElement)
				if !ok {
					continue
				}
				if !yield(we.word, wl.Translate(pl.X, pl.Y)) {
					return
				}
			}
		}
	}
}

// wordAt returns the word under (x, y), relative to the text widget.
func (t *Text) wordAt(x, y float32) (*text.Word, Layout, bool) {
	for w, l := range t.words() {
		if l.Contains(x, y) {
			return w, l, true
		}
	}
	return nil, Layout{}, false
}

// locate returns where word is laid out, relative to the text widget.
func (t *Text) locate(word *text.Word) (Layout, bool) {
	for w, l := range t.words() {
		if w == word {
			return l, true
		}
	}
	return Layout{}, false
}

func (t *Text) lastWord() (*text.Word, Layout, bool) {
	var (
		last  *text.Word
		lastL Layout
	)
	for w, l := range t.words() {
		last, lastL = w, l
	}
	return last, lastL, last != nil
}

// wordElement is one typeset word. Its size is the word's pixel size.
type wordElement struct {
	word *text.Word
}

func (e wordElement) Size() Size {
	return SizePoints(float32(e.word.Width), float32(e.word.Height))
}

func (e wordElement) Render(l Layout) render.MultiRenderable {
	return render.Text{Run: text.Run{Word: e.word, Offset: [2]float32{l.X, l.Y}}}
}
