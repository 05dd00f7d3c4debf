package gpu

import (
	vk "github.com/goki/vulkan"
	lru "github.com/hashicorp/golang-lru/v2"
)

// FramebufferCache lazily builds one framebuffer per swapchain image index
// and reuses it across frames. Purge drops all entries after a swapchain
// rebuild, since the cached framebuffers reference dead views.
type FramebufferCache struct {
	device     vk.Device
	renderPass vk.RenderPass
	cache      *lru.Cache[uint32, vk.Framebuffer]
}

// NewFramebufferCache builds a cache bound to one render pass.
func NewFramebufferCache(device vk.Device, renderPass vk.RenderPass) *FramebufferCache {
	fc := &FramebufferCache{device: device, renderPass: renderPass}
	fc.cache, _ = lru.NewWithEvict[uint32, vk.Framebuffer](8, fc.onEvict)

	return fc
}

func (fc *FramebufferCache) onEvict(index uint32, fb vk.Framebuffer) {
	vk.DestroyFramebuffer(fc.device, fb, nil)
}

// Get returns the framebuffer wrapping the swapchain view at index,
// creating it on first use.
func (fc *FramebufferCache) Get(index uint32, view vk.ImageView, extent Extent) (vk.Framebuffer, error) {
	if fb, ok := fc.cache.Get(index); ok {
		return fb, nil
	}

	createInfo := &vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      fc.renderPass,
		AttachmentCount: 1,
		PAttachments:    []vk.ImageView{view},
		Width:           extent.Width,
		Height:          extent.Height,
		Layers:          1,
	}

	var fb vk.Framebuffer
	if err := vkErr(vk.CreateFramebuffer(fc.device, createInfo, nil, &fb), "create framebuffer"); err != nil {
		return vk.NullFramebuffer, err
	}

	fc.cache.Add(index, fb)

	return fb, nil
}

// Purge destroys every cached framebuffer.
func (fc *FramebufferCache) Purge() {
	fc.cache.Purge()
}
