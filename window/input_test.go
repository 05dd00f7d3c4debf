package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyEdges(t *testing.T) {
	var state InputState

	state.Keys.press(KeySpace)
	assert.True(t, state.Keys.Pressed[KeySpace])
	assert.True(t, state.Keys.JustPressed[KeySpace])

	// the edge lasts one tick, the hold persists
	state.nextTick()
	assert.True(t, state.Keys.Pressed[KeySpace])
	assert.False(t, state.Keys.JustPressed[KeySpace])

	state.Keys.release(KeySpace)
	assert.False(t, state.Keys.Pressed[KeySpace])
	assert.True(t, state.Keys.JustReleased[KeySpace])

	state.nextTick()
	assert.False(t, state.Keys.JustReleased[KeySpace])
}

func TestMouseState(t *testing.T) {
	var state InputState

	state.Mouse.position(320, 240)
	state.Mouse.press(MouseButton(0))

	assert.Equal(t, float32(320), state.Mouse.CursorX)
	assert.Equal(t, float32(240), state.Mouse.CursorY)
	assert.True(t, state.Mouse.Pressed[MouseButton(0)])

	// position survives ticks
	state.nextTick()
	assert.Equal(t, float32(320), state.Mouse.CursorX)
	assert.True(t, state.Mouse.Pressed[MouseButton(0)])
	assert.False(t, state.Mouse.JustPressed[MouseButton(0)])
}
