package ui

import (
	"context"
	"sync"
	"unicode/utf8"

	"github.com/chewxy/math32"
	"github.com/hubastard/questsage/engine/colors"
	"github.com/hubastard/questsage/engine/core"
	"github.com/hubastard/questsage/engine/gfx/render"
	"github.com/hubastard/questsage/engine/text"
)

// CaretWidth is the width of the caret in pixels.
const CaretWidth = 2

// CaretAnchor returns the glyph edge of w closest to x, in word-local
// pixels. The left edge of the first glyph and the right edge of every
// glyph are candidates. index is the number of glyphs before the caret.
func CaretAnchor(w *text.Word, x float32) (index int, edge float32) {
	if len(w.Glyphs) == 0 {
		return 0, 0
	}
	best := float32(math32.MaxFloat32)
	for i := 0; i <= len(w.Glyphs); i++ {
		e := caretEdge(w, i)
		if d := math32.Abs(e - x); d < best {
			best, index, edge = d, i, e
		}
	}
	return index, edge
}

// caretEdge is the x position of the caret placed before glyph i.
func caretEdge(w *text.Word, i int) float32 {
	switch {
	case len(w.Glyphs) == 0:
		return 0
	case i < len(w.Glyphs):
		return w.Glyphs[i].X
	default:
		return float32(w.Width)
	}
}

type caretAnchor struct {
	word  *text.Word
	index int
}

// Field is a single text box the user can type into. Clicking it takes
// keyboard focus; typed characters are appended and the text typeset
// again.
type Field struct {
	text   *Text
	widget *Widget
	family text.FontFamily
	caret  render.NinePatch

	mu       sync.Mutex
	contents string
	focused  bool
	// hover is the anchor under the cursor, set by mouse moves.
	hover *caretAnchor
	// at is where the caret is drawn. Nil means after the last word.
	at *caretAnchor
}

func NewField(ts text.Typesetter, family text.FontFamily, caret render.NinePatch, style Style) *Field {
	f := &Field{family: family, caret: caret}
	f.text = NewText(ts, Style{Grow: 1})
	f.widget = NewWidget(fieldElement{f}, style, f.text.Widget())
	return f
}

func (f *Field) Widget() *Widget { return f.widget }
func (f *Field) Text() *Text     { return f.text }

func (f *Field) Contents() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.contents
}

func (f *Field) Focused() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.focused
}

// SetContents replaces the text and typesets it in the background.
func (f *Field) SetContents(ctx context.Context, s string) error {
	f.mu.Lock()
	f.contents = s
	f.at = nil
	f.mu.Unlock()
	return f.typeset(ctx, s)
}

func (f *Field) typeset(ctx context.Context, s string) error {
	return f.text.SetText(f.family).Write(s).Finish(ctx)
}

// edit applies fn to the contents and typesets the result. The caret moves
// to the end.
func (f *Field) edit(fn func(string) string) {
	f.mu.Lock()
	s := fn(f.contents)
	changed := s != f.contents
	f.contents = s
	f.at = nil
	f.mu.Unlock()
	if !changed {
		return
	}
	if err := f.typeset(context.Background(), s); err != nil {
		core.Logger().Warn("field typesetting failed", "err", err)
	}
}

// caretLayout returns the caret box relative to the field.
func (f *Field) caretLayout(at *caretAnchor) (Layout, bool) {
	tl, ok := f.text.widget.Layout()
	if !ok {
		return Layout{}, false
	}
	if at != nil {
		if wl, ok := f.text.locate(at.word); ok {
			x := tl.X + wl.X + caretEdge(at.word, at.index)
			return Layout{X: x, Y: tl.Y + wl.Y, Width: CaretWidth, Height: wl.Height}, true
		}
	}
	if w, wl, ok := f.text.lastWord(); ok {
		x := tl.X + wl.X + float32(w.Width)
		return Layout{X: x, Y: tl.Y + wl.Y, Width: CaretWidth, Height: wl.Height}, true
	}
	return Layout{X: tl.X, Y: tl.Y, Width: CaretWidth, Height: tl.Height}, true
}

// fieldElement gives the Field's widget its input handling and caret.
type fieldElement struct{ f *Field }

func (fieldElement) Size() Size { return Size{} }

func (e fieldElement) Render(l Layout) render.MultiRenderable {
	f := e.f
	f.mu.Lock()
	focused, at := f.focused, f.at
	f.mu.Unlock()
	if !focused {
		return render.Nothing{}
	}
	c, ok := f.caretLayout(at)
	if !ok {
		return render.Nothing{}
	}
	return f.caret.Render(colors.White, l.X+c.X, l.Y+c.Y, c.Width, c.Height)
}

func (e fieldElement) MouseMove(p Point) {
	f := e.f
	var hover *caretAnchor
	if tl, ok := f.text.widget.Layout(); ok {
		x, y := p.X-tl.X, p.Y-tl.Y
		if w, wl, ok := f.text.wordAt(x, y); ok {
			idx, _ := CaretAnchor(w, x-wl.X)
			hover = &caretAnchor{word: w, index: idx}
		}
	}
	f.mu.Lock()
	f.hover = hover
	f.mu.Unlock()
}

func (e fieldElement) MouseInput(b core.MouseButton, a core.Action) InputResult {
	if b != core.MouseButtonLeft || a != core.Press {
		return NotProcessed
	}
	f := e.f
	f.mu.Lock()
	f.at = f.hover
	f.mu.Unlock()
	return TakeKeyboardFocus
}

func (e fieldElement) FocusChanged(focused bool) {
	e.f.mu.Lock()
	e.f.focused = focused
	e.f.mu.Unlock()
}

func (e fieldElement) KeyInput(ev core.EventKey) bool {
	if !ev.Down || ev.Key != core.KeyBackspace {
		return false
	}
	e.f.edit(func(s string) string {
		_, size := utf8.DecodeLastRuneInString(s)
		return s[:len(s)-size]
	})
	return true
}

func (e fieldElement) CharInput(r rune) bool {
	if r < ' ' {
		return false
	}
	e.f.edit(func(s string) string { return s + string(r) })
	return true
}
