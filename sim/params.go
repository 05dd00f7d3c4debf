// Package sim implements the wave-field simulation the engine drives: the
// parameter blobs its shaders consume and the noise-seeded initial state.
package sim

import (
	"github.com/spectral-go/ripple/gpu"
)

// WaveParams is the push-constant block of the wave compute shader.
// Layout follows std430: four byte scalars, 32 bytes total.
type WaveParams struct {
	Init    uint32
	Frame   uint32
	CursorX float32
	CursorY float32
	Impulse float32
	Damping float32
	Speed   float32
	_       float32
}

// WaveParamsSize is the byte size the compute shader declares for its
// parameter range.
const WaveParamsSize = 32

// Bytes views the params as the byte blob the dispatch call uploads.
func (p *WaveParams) Bytes() []byte {
	return gpu.AsByteSlice(p)
}

// ShadeParams is the push-constant block of the fragment shader.
type ShadeParams struct {
	Brightness float32
	Contrast   float32
}

// ShadeParamsSize is the byte size the fragment shader declares for its
// parameter range.
const ShadeParamsSize = 8

// Bytes views the params as the byte blob the draw call uploads.
func (p *ShadeParams) Bytes() []byte {
	return gpu.AsByteSlice(p)
}
