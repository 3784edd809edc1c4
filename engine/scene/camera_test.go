package scene

import (
	"testing"

	"github.com/hubastard/questsage/engine/core"
	"github.com/stretchr/testify/assert"
)

func TestMulIsColumnMajor(t *testing.T) {
	// Translating then scaling differs from scaling then translating.
	s := identity()
	s[0], s[5] = 2, 2
	tr := translate(3, 4, 0)

	x, y, _ := Transform(mul(s, tr), 1, 1, 0)
	assert.Equal(t, float32(8), x)
	assert.Equal(t, float32(10), y)

	x, y, _ = Transform(mul(tr, s), 1, 1, 0)
	assert.Equal(t, float32(5), x)
	assert.Equal(t, float32(6), y)
}

func TestOrthoMapsViewToClip(t *testing.T) {
	c := NewOrtho(100, 50, 200, 2)

	x, y, _ := Transform(c.ViewProjection(), 100, 50, 0)
	assert.InDelta(t, 0, x, 1e-6)
	assert.InDelta(t, 0, y, 1e-6)

	// 400 wide, 200 tall around the eye.
	x, y, _ = Transform(c.ViewProjection(), 300, 150, 0)
	assert.InDelta(t, 1, x, 1e-6)
	assert.InDelta(t, 1, y, 1e-6)
}

func TestScreenCameraIsYDown(t *testing.T) {
	c := NewScreen(800, 600)

	x, y, _ := Transform(c.ViewProjection(), 0, 0, 0)
	assert.InDelta(t, -1, x, 1e-6)
	assert.InDelta(t, 1, y, 1e-6, "pixel origin is the top-left corner")

	x, y, _ = Transform(c.ViewProjection(), 800, 600, 0)
	assert.InDelta(t, 1, x, 1e-6)
	assert.InDelta(t, -1, y, 1e-6)

	wx, wy := c.ScreenToWorld(400, 150, 800, 600)
	assert.InDelta(t, 400, wx, 1e-4)
	assert.InDelta(t, 150, wy, 1e-4)
}

func TestZeroToOneDepth(t *testing.T) {
	c := NewOrtho(0, 0, 2, 1, WithZeroToOneDepth())
	_, _, zNear := Transform(c.ViewProjection(), 0, 0, 1000)
	_, _, zFar := Transform(c.ViewProjection(), 0, 0, -1000)
	assert.InDelta(t, 0, zNear, 1e-6)
	assert.InDelta(t, 1, zFar, 1e-6)
}

func TestMatricesAreCachedUntilMutated(t *testing.T) {
	c := NewOrtho(0, 0, 10, 1)
	before := c.ViewProjection()
	assert.Equal(t, before, c.ViewProjection())

	c.Move(5, 0)
	assert.NotEqual(t, before, c.ViewProjection())
}

func TestControllerZoomsOnScroll(t *testing.T) {
	c := NewOrtho(0, 0, 10, 1)
	ctrl := NewOrthoController2D(c)

	assert.True(t, ctrl.HandleEvent(core.EventScroll{Yoff: 1}))
	assert.InDelta(t, 1.2, c.Zoom(), 1e-6)
	assert.False(t, ctrl.HandleEvent(core.EventKey{Key: core.KeyW}))

	in := core.NewInput()
	in.Handle(core.EventKey{Key: core.KeyD, Down: true})
	ctrl.Update(in, 1)
	x, _ := c.Eye()
	assert.Greater(t, x, float32(0))
}
