package ui

import (
	"testing"

	"github.com/hubastard/questsage/engine/colors"
	"github.com/hubastard/questsage/engine/core"
	"github.com/hubastard/questsage/engine/gfx/render"
	"github.com/hubastard/questsage/engine/gfx/renderer2d"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tex struct{ name string }

func (*tex) Value() (core.Texture, bool) { return nil, false }

func TestLayoutRunsOnlyWhenDirty(t *testing.T) {
	root := NewWidget(nil, Style{})
	u := New(root, 100, 100)

	assert.True(t, u.NeedsLayout())
	assert.True(t, u.Layout())
	assert.False(t, u.NeedsLayout())
	assert.False(t, u.Layout())

	root.AddChild(box(10, 10))
	assert.True(t, u.NeedsLayout())
	assert.True(t, u.Layout())

	u.Resize(100, 100)
	assert.False(t, u.NeedsLayout(), "same size")
	u.Resize(50, 100)
	assert.True(t, u.NeedsLayout())
}

func TestNestedChangesReachTheRoot(t *testing.T) {
	leaf := box(10, 10)
	branch := NewWidget(nil, Style{}, leaf)
	// Detached widgets have no UI to notify.
	leaf.ForceLayout()

	root := NewWidget(nil, Style{})
	u := New(root, 100, 100)
	u.Layout()

	root.AddChild(branch)
	u.Layout()
	require.False(t, u.NeedsLayout())

	leaf.SetStyle(Style{Size: SizePoints(20, 20)})
	assert.True(t, u.NeedsLayout())
	u.Layout()
	assert.Equal(t, Layout{0, 0, 20, 20}, laidOut(t, leaf))

	branch.ClearChildren()
	assert.True(t, u.NeedsLayout())
}

func TestUnlaidWidgetsRenderNothing(t *testing.T) {
	u := New(NewWidget(nil, Style{}), 10, 10)
	assert.Equal(t, render.Nothing{}, u.RenderInfo(0, 0))
}

func TestRenderInfoNestsChildrenAndBackgrounds(t *testing.T) {
	bgTex, imgTex := &tex{"bg"}, &tex{"img"}
	child := NewWidget(NewImage(imgTex, 20, 10), Style{Margin: Edges{Left: 5, Top: 5}})
	root := NewWidget(nil, Style{AlignItems: AlignStart}, child).
		WithBackgrounds(NinePatchElement{Patch: render.NoMargins(bgTex, 8, 8), Colour: colors.White})
	u := New(root, 100, 50)
	u.Layout()

	layered, ok := u.RenderInfo(10, 20).(render.Layered)
	require.True(t, ok, "backgrounds layer the widget")
	require.Len(t, layered, 2)

	bg := layered[0].(render.Image)
	assert.Equal(t, renderer2d.TextureSource(bgTex), bg.Texture)
	assert.Len(t, bg.Renderables, 9)

	content := layered[1].(render.Adjacent)
	require.Len(t, content, 2)
	assert.Equal(t, render.Nothing{}, content[0])
	img := content[1].(render.Adjacent)[0].(render.Image)
	assert.Equal(t, renderer2d.TextureSource(imgTex), img.Texture)
	q := img.Renderables[0].(renderer2d.Quad)
	assert.Equal(t, [3]float32{15, 25, 0}, q[0].Position, "offset plus margin")
	assert.Equal(t, [3]float32{35, 35, 0}, q[2].Position)
}

func TestDebugLinesOutlineEveryWidget(t *testing.T) {
	lines := &tex{"white"}
	child := box(20, 10)
	u := New(NewWidget(nil, Style{AlignItems: AlignStart}, child), 100, 50)
	u.SetDebugLines(lines)
	u.Layout()

	tree := u.RenderInfo(0, 0).(render.Adjacent)
	require.Len(t, tree, 3)
	outline := tree[2].(render.Image)
	assert.Equal(t, renderer2d.TextureSource(lines), outline.Texture)
	require.Len(t, outline.Renderables, 4)
	right := outline.Renderables[1].(renderer2d.Quad)
	assert.Equal(t, [3]float32{99, 0, 0}, right[0].Position)

	childTree := tree[1].(render.Adjacent)
	require.Len(t, childTree, 2)

	u.SetDebugLines(nil)
	assert.Len(t, u.RenderInfo(0, 0).(render.Adjacent), 2)
}

// spy records the handler calls it receives.
type spy struct {
	Empty
	events []string
	moves  []Point
	result InputResult
}

func (p *spy) MouseMove(pt Point) { p.moves = append(p.moves, pt) }
func (p *spy) MouseEnter()        { p.events = append(p.events, "enter") }
func (p *spy) MouseLeave()        { p.events = append(p.events, "leave") }

func (p *spy) MouseInput(b core.MouseButton, a core.Action) InputResult {
	p.events = append(p.events, a.String())
	return p.result
}

func (p *spy) KeyInput(ev core.EventKey) bool { p.events = append(p.events, "key"); return true }
func (p *spy) CharInput(r rune) bool          { p.events = append(p.events, string(r)); return true }
func (p *spy) FocusChanged(f bool) {
	if f {
		p.events = append(p.events, "focus")
	} else {
		p.events = append(p.events, "blur")
	}
}

func spyUI(t *testing.T) (*UI, *spy, *spy) {
	t.Helper()
	outer, inner := &spy{}, &spy{}
	innerW := NewWidget(inner, Style{Size: SizePoints(20, 20), Margin: Edges{Left: 10, Top: 10}})
	outerW := NewWidget(outer, Style{Size: SizePoints(50, 50), AlignItems: AlignStart}, innerW)
	u := New(NewWidget(nil, Style{AlignItems: AlignStart}, outerW), 200, 200)
	u.Layout()
	return u, outer, inner
}

func TestMouseMoveTracksHover(t *testing.T) {
	u, outer, inner := spyUI(t)

	u.MouseMove(15, 15)
	assert.Equal(t, []string{"enter"}, outer.events)
	assert.Equal(t, []string{"enter"}, inner.events)
	assert.Equal(t, []Point{{15, 15}}, outer.moves)
	assert.Equal(t, []Point{{5, 5}}, inner.moves, "positions are widget-local")

	u.MouseMove(40, 40)
	assert.Equal(t, []string{"enter"}, outer.events)
	assert.Equal(t, []string{"enter", "leave"}, inner.events)

	u.HandleEvent(core.EventCursorEnter{Entered: false})
	assert.Equal(t, []string{"enter", "leave"}, outer.events)
}

func TestMouseInputGoesDeepestFirst(t *testing.T) {
	u, outer, inner := spyUI(t)
	u.MouseMove(15, 15)

	assert.Equal(t, NotProcessed, u.MouseInput(core.MouseButtonLeft, core.Press))
	assert.Equal(t, []string{"enter", "press"}, inner.events)
	assert.Equal(t, []string{"enter", "press"}, outer.events, "unprocessed events bubble up")

	inner.result = Processed
	assert.Equal(t, Processed, u.MouseInput(core.MouseButtonLeft, core.Press))
	assert.Len(t, outer.events, 2, "processed events stop")
}

func TestPressedWidgetGetsTheRelease(t *testing.T) {
	u, _, inner := spyUI(t)
	inner.result = Processed
	u.MouseMove(15, 15)
	u.MouseInput(core.MouseButtonLeft, core.Press)

	u.MouseMove(150, 150)
	u.MouseInput(core.MouseButtonLeft, core.Release)
	assert.Equal(t, []string{"enter", "press", "leave", "release"}, inner.events)
}

func TestKeyboardGoesToFocus(t *testing.T) {
	u, outer, inner := spyUI(t)
	assert.False(t, u.CharInput('a'), "nothing focused")

	inner.result = TakeKeyboardFocus
	u.MouseMove(15, 15)
	assert.True(t, u.HandleEvent(core.EventMouseButton{Button: core.MouseButtonLeft, Action: core.Press}))
	require.NotNil(t, u.Focused())
	assert.Same(t, inner, u.Focused().Element())

	assert.True(t, u.HandleEvent(core.EventChar{Char: 'x'}))
	assert.True(t, u.HandleEvent(core.EventKey{Key: core.KeyEnter, Down: true}))
	assert.Equal(t, []string{"enter", "press", "focus", "x", "key"}, inner.events)
	assert.NotContains(t, outer.events, "x")

	// Pressing anywhere that does not take focus clears it.
	u.MouseMove(150, 150)
	u.MouseInput(core.MouseButtonLeft, core.Press)
	assert.Nil(t, u.Focused())
	assert.Equal(t, "blur", inner.events[len(inner.events)-1])
}
