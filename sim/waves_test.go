package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spectral-go/ripple/engine"
	"github.com/spectral-go/ripple/gpu"
	"github.com/spectral-go/ripple/window"
)

func TestComputeParamsInitFlag(t *testing.T) {
	w := NewWaves()
	state := engine.FrameState{Init: true}

	first := blobAsWaveParams(t, w.ComputeParams(&state))
	assert.Equal(t, uint32(1), first.Init)

	state.Init = false
	state.Frame = 1

	second := blobAsWaveParams(t, w.ComputeParams(&state))
	assert.Equal(t, uint32(0), second.Init)
	assert.Equal(t, uint32(1), second.Frame)
}

func TestReseedSetsInitOnce(t *testing.T) {
	w := NewWaves()
	state := engine.FrameState{Frame: 5}

	input := window.InputState{}
	input.Keys.JustPressed = map[window.Key]bool{window.KeyR: true}
	w.HandleInput(&state, input)

	params := blobAsWaveParams(t, w.ComputeParams(&state))
	assert.Equal(t, uint32(1), params.Init)

	// the reseed request is spent after one frame
	params = blobAsWaveParams(t, w.ComputeParams(&state))
	assert.Equal(t, uint32(0), params.Init)
}

func TestPauseZeroesSpeed(t *testing.T) {
	w := NewWaves()
	state := engine.FrameState{}

	input := window.InputState{}
	input.Keys.JustPressed = map[window.Key]bool{window.KeySpace: true}
	w.HandleInput(&state, input)

	params := blobAsWaveParams(t, w.ComputeParams(&state))
	assert.Equal(t, float32(0), params.Speed)

	// a second press resumes
	w.HandleInput(&state, input)
	params = blobAsWaveParams(t, w.ComputeParams(&state))
	assert.Equal(t, w.Speed, params.Speed)
}

func TestImpulseFollowsMouseButton(t *testing.T) {
	w := NewWaves()
	state := engine.FrameState{}

	input := window.InputState{}
	input.Mouse.CursorX = 120
	input.Mouse.CursorY = 80
	input.Mouse.Pressed = map[window.MouseButton]bool{window.MouseButton(0): true}
	w.HandleInput(&state, input)

	params := blobAsWaveParams(t, w.ComputeParams(&state))
	assert.Equal(t, float32(1), params.Impulse)
	assert.Equal(t, float32(120), params.CursorX)
	assert.Equal(t, float32(80), params.CursorY)

	input.Mouse.Pressed = nil
	w.HandleInput(&state, input)

	params = blobAsWaveParams(t, w.ComputeParams(&state))
	assert.Equal(t, float32(0), params.Impulse)
}

func TestParamBlobSizes(t *testing.T) {
	w := NewWaves()
	state := engine.FrameState{}

	assert.Len(t, w.ComputeParams(&state), int(WaveParamsSize))
	assert.Len(t, w.DrawParams(&state), int(ShadeParamsSize))
}

func blobAsWaveParams(t *testing.T, blob []byte) WaveParams {
	t.Helper()
	require.Len(t, blob, int(WaveParamsSize))

	var params WaveParams
	copy(gpu.AsByteSlice(&params), blob)
	return params
}
