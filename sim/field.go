package sim

import (
	"unsafe"

	"github.com/chewxy/math32"
	fastnoiselite "github.com/furui/fastnoiselite-go"
)

// FieldOptions shape the generated initial wave field.
type FieldOptions struct {
	// Frequency of the noise relative to the field size.
	Frequency float32

	// Amplitude scales the height values.
	Amplitude float32

	// Seed selects the noise variant; the same seed reproduces the same
	// field.
	Seed int32
}

func (opts FieldOptions) withDefaults() FieldOptions {
	if opts.Frequency == 0 {
		opts.Frequency = 4
	}

	if opts.Amplitude == 0 {
		opts.Amplitude = 1
	}

	return opts
}

// GenerateField builds the initial wave height field as RGBA float32
// texels: R holds the height, G the previous height (equal at rest), B and
// A are unused. The returned slice uploads directly into a 128 bit float
// storage image.
func GenerateField(width, height uint32, opts FieldOptions) []byte {
	opts = opts.withDefaults()

	noise := fastnoiselite.NewNoise()
	noise.Seed = opts.Seed
	noise.SetNoiseType(fastnoiselite.NoiseTypeOpenSimplex2)
	noise.FractalType = fastnoiselite.FractalTypeFBm
	noise.Frequency = float64(opts.Frequency)
	noise.SetFractalOctaves(3)

	texels := make([]float32, width*height*4)

	for y := uint32(0); y < height; y++ {
		fy := float64(y) / float64(height)

		for x := uint32(0); x < width; x++ {
			fx := float64(x) / float64(width)

			h := opts.Amplitude * float32(noise.GetNoise2D(
				fastnoiselite.FNLfloat(fx),
				fastnoiselite.FNLfloat(fy)))

			// Fade toward the edges so the field tiles without seams.
			h *= edgeFade(float32(fx)) * edgeFade(float32(fy))

			i := (y*width + x) * 4
			texels[i+0] = h
			texels[i+1] = h
			texels[i+2] = 0
			texels[i+3] = 1
		}
	}

	return unsafe.Slice((*byte)(unsafe.Pointer(&texels[0])), len(texels)*4)
}

// edgeFade smoothly drops to zero near 0 and 1.
func edgeFade(t float32) float32 {
	d := math32.Min(t, 1-t) * 8
	return math32.Min(d, 1)
}
