package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCeilDiv(t *testing.T) {
	assert.Equal(t, uint32(16), CeilDiv(uint32(128), 8))
	assert.Equal(t, uint32(17), CeilDiv(uint32(130), 8))
	assert.Equal(t, uint32(1), CeilDiv(uint32(1), 8))
	assert.Equal(t, 4, CeilDiv(7, 2))
}

func TestGroupCounts(t *testing.T) {
	assert.Equal(t, [3]uint32{16, 16, 1},
		GroupCounts(Extent{Width: 128, Height: 128}, 8, 8))

	assert.Equal(t, [3]uint32{17, 17, 1},
		GroupCounts(Extent{Width: 130, Height: 130}, 8, 8))

	assert.Equal(t, [3]uint32{128, 64, 1},
		GroupCounts(Extent{Width: 1024, Height: 512}, 8, 8))
}
