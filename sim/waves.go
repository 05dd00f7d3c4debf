package sim

import (
	"github.com/spectral-go/ripple/engine"
	"github.com/spectral-go/ripple/window"
)

// Waves folds input into the frame state and produces the parameter blobs
// for the wave shaders. Pressing R reseeds the field, holding the primary
// mouse button injects an impulse at the cursor, space pauses.
type Waves struct {
	Damping    float32
	Speed      float32
	Brightness float32
	Contrast   float32

	impulse float32
	paused  bool
	reseed  bool
}

// NewWaves returns a simulation with the default tuning.
func NewWaves() *Waves {
	return &Waves{
		Damping:    0.996,
		Speed:      0.5,
		Brightness: 1,
		Contrast:   1.2,
	}
}

// HandleInput folds one tick of input into the frame state.
func (w *Waves) HandleInput(state *engine.FrameState, input window.InputState) {
	state.CursorX = input.Mouse.CursorX
	state.CursorY = input.Mouse.CursorY

	if input.Keys.JustPressed[window.KeySpace] {
		w.paused = !w.paused
	}

	if input.Keys.JustPressed[window.KeyR] {
		w.reseed = true
	}

	w.impulse = 0
	if input.Mouse.Pressed[window.MouseButton(0)] {
		w.impulse = 1
	}
}

// ComputeParams builds the compute push constants for this frame.
func (w *Waves) ComputeParams(state *engine.FrameState) []byte {
	init := uint32(0)
	if state.Init || w.reseed {
		init = 1
		w.reseed = false
	}

	speed := w.Speed
	if w.paused {
		speed = 0
	}

	params := WaveParams{
		Init:    init,
		Frame:   uint32(state.Frame),
		CursorX: state.CursorX,
		CursorY: state.CursorY,
		Impulse: w.impulse,
		Damping: w.Damping,
		Speed:   speed,
	}

	return params.Bytes()
}

// DrawParams builds the fragment push constants for this frame.
func (w *Waves) DrawParams(state *engine.FrameState) []byte {
	params := ShadeParams{
		Brightness: w.Brightness,
		Contrast:   w.Contrast,
	}

	return params.Bytes()
}
