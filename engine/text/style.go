package text

import "github.com/hubastard/questsage/engine/colors"

// FontSize is a semantic size tier, scaled to pixels by the user's scale
// factor.
type FontSize uint8

const (
	SizeText FontSize = iota
	SizeH1
	SizeH2
	SizeH3
)

// Pixels returns the em size in pixels for the given scale factor.
func (s FontSize) Pixels(scale float32) float32 {
	switch s {
	case SizeH1:
		return 72 * scale
	case SizeH2:
		return 48 * scale
	case SizeH3:
		return 36 * scale
	default:
		return 24 * scale
	}
}

// Style is the formatting shared by a run of text.
type Style struct {
	Family   FontFamily
	Size     FontSize
	Emphasis Emphasis
	Colour   colors.Color
}

// DefaultStyle is body text in white.
func DefaultStyle(family FontFamily) Style {
	return Style{Family: family, Size: SizeText, Colour: colors.White}
}

// Segment is an indivisible span of identically styled text. A segment
// that is not Glued starts a new word.
type Segment struct {
	Text  string
	Style Style
	Glued bool
}

type Paragraph []Segment
