package gpu

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
)

func TestSelectPresentMode(t *testing.T) {
	relaxed := []vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeFifoRelaxed, vk.PresentModeFifo}
	assert.Equal(t, vk.PresentModeFifoRelaxed, selectPresentMode(relaxed))

	// Fifo is always available, so it is the fallback.
	plain := []vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeMailbox}
	assert.Equal(t, vk.PresentModeFifo, selectPresentMode(plain))
	assert.Equal(t, vk.PresentModeFifo, selectPresentMode(nil))
}

func TestClampImageCount(t *testing.T) {
	assert.Equal(t, uint32(3), clampImageCount(3, 2, 8))
	assert.Equal(t, uint32(2), clampImageCount(1, 2, 8))
	assert.Equal(t, uint32(8), clampImageCount(12, 2, 8))

	// max of zero means the surface imposes no upper bound
	assert.Equal(t, uint32(12), clampImageCount(12, 2, 0))
}
