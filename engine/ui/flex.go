package ui

import (
	"sync"

	"github.com/kjk/flex"
)

// flexNode mirrors one widget during a layout pass. The pass runs on a
// snapshot so widgets are not locked while the solver works.
type flexNode struct {
	widget   *Widget
	style    Style
	children []*flexNode
	layout   Layout

	node *flex.Node
	// content holds the children's nodes. It is node itself unless the
	// style has a gap, in which case it is the gap frame inside node.
	content *flex.Node
}

var (
	// The solver bumps a package level generation counter on every run.
	solveMu sync.Mutex

	// Positions stay fractional; words are already placed on whole pixels
	// by the typesetter.
	flexConfig = func() *flex.Config {
		c := flex.NewConfig()
		c.SetPointScaleFactor(0)
		return c
	}()
)

// solveLayout lays out the tree rooted at n to fill width by height. The
// root's own size, minimum and maximum are ignored.
func solveLayout(n *flexNode, width, height float32) {
	solveMu.Lock()
	defer solveMu.Unlock()

	root := n.build(true)
	root.StyleSetWidth(width)
	root.StyleSetHeight(height)
	flex.CalculateLayout(root, width, height, flex.DirectionLTR)
	n.read(0, 0)
	n.layout.X, n.layout.Y = 0, 0
}

// build creates the solver nodes for the subtree.
func (n *flexNode) build(root bool) *flex.Node {
	st := &n.style
	n.node = flex.NewNodeWithConfig(flexConfig)
	if !root {
		setBox(n.node, st)
	}
	setEdges(n.node.StyleSetPadding, st.Padding)

	n.content = n.node
	if st.Gap > 0 && len(n.children) > 0 {
		n.content = gapFrame(n.node, st)
	}
	c := n.content
	c.StyleSetFlexDirection(flexDirection(st.Direction))
	c.StyleSetJustifyContent(flexJustify(st.Justify))
	c.StyleSetAlignItems(flexAlign(st.AlignItems))
	if st.Wrap == WrapLines {
		c.StyleSetFlexWrap(flex.WrapWrap)
	}

	evenly := st.Justify == JustifySpaceEvenly
	for _, child := range n.children {
		if evenly {
			c.InsertChild(evenSpacer(st.Direction), len(c.Children))
		}
		cn := child.build(false)
		if st.Gap > 0 {
			addGap(cn, st, child.style.Margin)
		}
		c.InsertChild(cn, len(c.Children))
	}
	if evenly && len(n.children) > 0 {
		c.InsertChild(evenSpacer(st.Direction), len(c.Children))
	}
	return n.node
}

// read copies the solved boxes back, offsetting children by the position
// of the gap frame.
func (n *flexNode) read(offX, offY float32) {
	n.layout = Layout{
		X:      offX + n.node.LayoutGetLeft(),
		Y:      offY + n.node.LayoutGetTop(),
		Width:  n.node.LayoutGetWidth(),
		Height: n.node.LayoutGetHeight(),
	}
	var fx, fy float32
	if n.content != n.node {
		fx, fy = n.content.LayoutGetLeft(), n.content.LayoutGetTop()
	}
	for _, c := range n.children {
		c.read(fx, fy)
	}
}

// setBox applies the properties a node has as an item of its parent.
func setBox(node *flex.Node, st *Style) {
	node.StyleSetFlexGrow(st.Grow)
	node.StyleSetFlexShrink(st.Shrink)
	setDimension(st.Size.Width, node.StyleSetWidth, node.StyleSetWidthPercent)
	setDimension(st.Size.Height, node.StyleSetHeight, node.StyleSetHeightPercent)
	setDimension(st.MinSize.Width, node.StyleSetMinWidth, node.StyleSetMinWidthPercent)
	setDimension(st.MinSize.Height, node.StyleSetMinHeight, node.StyleSetMinHeightPercent)
	setDimension(st.MaxSize.Width, node.StyleSetMaxWidth, node.StyleSetMaxWidthPercent)
	setDimension(st.MaxSize.Height, node.StyleSetMaxHeight, node.StyleSetMaxHeightPercent)
	setEdges(node.StyleSetMargin, st.Margin)
}

// setDimension leaves Auto dimensions at the solver's default.
func setDimension(d Dimension, points, percent func(float32)) {
	switch d.kind {
	case dimPoints:
		points(d.value)
	case dimPercent:
		percent(d.value * 100)
	}
}

func setEdges(set func(flex.Edge, float32), e Edges) {
	set(flex.EdgeLeft, e.Left)
	set(flex.EdgeRight, e.Right)
	set(flex.EdgeTop, e.Top)
	set(flex.EdgeBottom, e.Bottom)
}

// gapFrame puts a node between outer and its children that is one gap
// larger than outer's content box on the main axis, and on the cross axis
// when lines wrap. Every child then ends with a gap-sized margin, and the
// frame's negative trailing margin absorbs the last one, so line breaking,
// free space and auto sizing all see the gaps only between items.
//
// Percentages inside the frame resolve against the frame, which is one gap
// larger than the content box on those axes.
func gapFrame(outer *flex.Node, st *Style) *flex.Node {
	frame := flex.NewNodeWithConfig(flexConfig)
	frame.StyleSetFlexGrow(1)
	outer.StyleSetAlignItems(flex.AlignStretch)

	mainEnd, crossEnd := flex.EdgeRight, flex.EdgeBottom
	outer.StyleSetFlexDirection(flex.FlexDirectionColumn)
	if st.Direction == Column {
		mainEnd, crossEnd = flex.EdgeBottom, flex.EdgeRight
		outer.StyleSetFlexDirection(flex.FlexDirectionRow)
	}
	frame.StyleSetMargin(mainEnd, -st.Gap)
	if st.Wrap == WrapLines {
		frame.StyleSetMargin(crossEnd, -st.Gap)
	}
	outer.InsertChild(frame, 0)
	return frame
}

// addGap extends the trailing margins of an item inside a gap frame.
func addGap(item *flex.Node, st *Style, m Edges) {
	if st.Direction == Column {
		item.StyleSetMargin(flex.EdgeBottom, m.Bottom+st.Gap)
		if st.Wrap == WrapLines {
			item.StyleSetMargin(flex.EdgeRight, m.Right+st.Gap)
		}
		return
	}
	item.StyleSetMargin(flex.EdgeRight, m.Right+st.Gap)
	if st.Wrap == WrapLines {
		item.StyleSetMargin(flex.EdgeBottom, m.Bottom+st.Gap)
	}
}

// evenSpacer is an empty item with an automatic leading margin. One before
// every child and one after the last share the free space equally. On
// wrapped lines only the last line gets the trailing share.
func evenSpacer(d Direction) *flex.Node {
	s := flex.NewNodeWithConfig(flexConfig)
	s.StyleSetWidth(0)
	s.StyleSetHeight(0)
	if d == Column {
		s.StyleSetMarginAuto(flex.EdgeTop)
	} else {
		s.StyleSetMarginAuto(flex.EdgeLeft)
	}
	return s
}

func flexDirection(d Direction) flex.FlexDirection {
	if d == Column {
		return flex.FlexDirectionColumn
	}
	return flex.FlexDirectionRow
}

// flexJustify maps everything but SpaceEvenly, which is built from
// spacers on top of a start-justified line.
func flexJustify(j Justify) flex.Justify {
	switch j {
	case JustifyCenter:
		return flex.JustifyCenter
	case JustifyEnd:
		return flex.JustifyFlexEnd
	case JustifySpaceBetween:
		return flex.JustifySpaceBetween
	case JustifySpaceAround:
		return flex.JustifySpaceAround
	default:
		return flex.JustifyFlexStart
	}
}

func flexAlign(a Align) flex.Align {
	switch a {
	case AlignStart:
		return flex.AlignFlexStart
	case AlignCenter:
		return flex.AlignCenter
	case AlignEnd:
		return flex.AlignFlexEnd
	default:
		return flex.AlignStretch
	}
}
