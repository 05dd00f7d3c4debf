package gpu

import (
	"golang.org/x/exp/constraints"
)

// Extent is a two dimensional size in pixels.
type Extent struct {
	Width  uint32
	Height uint32
}

// CeilDiv divides a by b, rounding up.
func CeilDiv[T constraints.Integer](a, b T) T {
	return (a + b - 1) / b
}

// GroupCounts converts an image extent into a compute dispatch grid for the
// given workgroup size, rounding up so every pixel is covered. A 130 pixel
// axis with local size 8 yields 17 groups.
func GroupCounts(extent Extent, localX, localY uint32) [3]uint32 {
	return [3]uint32{CeilDiv(extent.Width, localX), CeilDiv(extent.Height, localY), 1}
}
