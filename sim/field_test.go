package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateFieldShape(t *testing.T) {
	const w, h = 32, 16

	field := GenerateField(w, h, FieldOptions{Seed: 1})
	require.Len(t, field, w*h*16)

	texels := fieldTexels(field)

	for i := 0; i < w*h; i++ {
		r, g, b, a := texels[i*4], texels[i*4+1], texels[i*4+2], texels[i*4+3]

		// height and previous height start equal, so the field is at rest
		assert.Equal(t, r, g)
		assert.Equal(t, float32(0), b)
		assert.Equal(t, float32(1), a)
	}
}

func TestGenerateFieldDeterministic(t *testing.T) {
	opts := FieldOptions{Seed: 42}

	a := GenerateField(16, 16, opts)
	b := GenerateField(16, 16, opts)
	assert.Equal(t, a, b)

	c := GenerateField(16, 16, FieldOptions{Seed: 43})
	assert.NotEqual(t, a, c)
}

func TestGenerateFieldFadesAtEdges(t *testing.T) {
	const w, h = 64, 64

	texels := fieldTexels(GenerateField(w, h, FieldOptions{Seed: 7, Amplitude: 2}))

	// row zero sits on the fade boundary, so the height is zero there
	for x := 0; x < w; x++ {
		assert.Equal(t, float32(0), texels[x*4])
	}
	for y := 0; y < h; y++ {
		assert.Equal(t, float32(0), texels[y*w*4])
	}
}

func TestEdgeFade(t *testing.T) {
	assert.Equal(t, float32(0), edgeFade(0))
	assert.Equal(t, float32(1), edgeFade(0.5))
	assert.InDelta(t, 0.4, edgeFade(0.05), 1e-6)
	assert.InDelta(t, 0.4, edgeFade(0.95), 1e-6)
}

func fieldTexels(field []byte) []float32 {
	texels := make([]float32, len(field)/4)
	for i := range texels {
		bits := uint32(field[i*4]) |
			uint32(field[i*4+1])<<8 |
			uint32(field[i*4+2])<<16 |
			uint32(field[i*4+3])<<24
		texels[i] = math.Float32frombits(bits)
	}
	return texels
}
