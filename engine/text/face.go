package text

import "context"

// FontSource is an asynchronously loaded font. Asset handles implement it.
type FontSource interface {
	// Value returns the font if it has finished loading.
	Value() (*Font, bool)
	// Wait blocks until the font is loaded or failed to load.
	Wait(ctx context.Context) (*Font, error)
}

type loadedFont struct{ f *Font }

// Loaded wraps an already parsed font as a FontSource.
func Loaded(f *Font) FontSource { return &loadedFont{f: f} }

func (l *loadedFont) Value() (*Font, bool)                { return l.f, true }
func (l *loadedFont) Wait(context.Context) (*Font, error) { return l.f, nil }

type Emphasis uint8

const (
	Regular Emphasis = iota
	Bold
	Italic
	BoldItalic
)

func (e Emphasis) String() string {
	switch e {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case BoldItalic:
		return "bold-italic"
	default:
		return "regular"
	}
}

// withBold adds bold to e, keeping any italic.
func (e Emphasis) withBold() Emphasis {
	if e == Italic || e == BoldItalic {
		return BoldItalic
	}
	return Bold
}

func (e Emphasis) withItalic() Emphasis {
	if e == Bold || e == BoldItalic {
		return BoldItalic
	}
	return Italic
}

// FontFace bundles the variants of one typeface. Only Regular is required.
type FontFace struct {
	Name       string
	Regular    FontSource
	Bold       FontSource
	Italic     FontSource
	BoldItalic FontSource
}

func (f *FontFace) String() string { return f.Name }

// Variant returns the source for exactly e, or nil if the face lacks it.
func (f *FontFace) Variant(e Emphasis) FontSource {
	switch e {
	case Bold:
		return f.Bold
	case Italic:
		return f.Italic
	case BoldItalic:
		return f.BoldItalic
	default:
		return f.Regular
	}
}

// fallbackChain lists the variants tried for e, most specific first.
func fallbackChain(e Emphasis) []Emphasis {
	switch e {
	case BoldItalic:
		return []Emphasis{BoldItalic, Bold, Italic, Regular}
	case Bold:
		return []Emphasis{Bold, Regular}
	case Italic:
		return []Emphasis{Italic, Regular}
	default:
		return []Emphasis{Regular}
	}
}

// FontFamily is an ordered preference list of faces. Characters missing
// from one face fall through to the next.
type FontFamily []*FontFace
