package gpu

import (
	vk "github.com/goki/vulkan"
	lru "github.com/hashicorp/golang-lru/v2"
)

// SamplerDesc is the comparable subset of sampler state the engine varies.
type SamplerDesc struct {
	Filter      vk.Filter
	AddressMode vk.SamplerAddressMode
}

// NearestRepeat is the sampler the render stage uses for simulation
// images: nearest filtering so texels stay exact, repeat addressing so the
// field tiles.
var NearestRepeat = SamplerDesc{
	Filter:      vk.FilterNearest,
	AddressMode: vk.SamplerAddressModeRepeat,
}

// SamplerCache creates samplers on demand and caches them by description.
// Samplers returned from it are owned by the cache; callers must not
// destroy them.
type SamplerCache struct {
	device vk.Device
	cache  *lru.Cache[SamplerDesc, vk.Sampler]
}

// NewSamplerCache builds a cache releasing evicted samplers on the device.
func NewSamplerCache(device vk.Device) *SamplerCache {
	sc := &SamplerCache{device: device}
	sc.cache, _ = lru.NewWithEvict[SamplerDesc, vk.Sampler](16, sc.onEvict)

	return sc
}

func (sc *SamplerCache) onEvict(key SamplerDesc, value vk.Sampler) {
	vk.DestroySampler(sc.device, value, nil)
}

// Get returns a sampler matching the description, creating it on a miss.
func (sc *SamplerCache) Get(desc SamplerDesc) (vk.Sampler, error) {
	if sampler, ok := sc.cache.Get(desc); ok {
		return sampler, nil
	}

	createInfo := &vk.SamplerCreateInfo{
		SType:        vk.StructureTypeSamplerCreateInfo,
		MagFilter:    desc.Filter,
		MinFilter:    desc.Filter,
		MipmapMode:   vk.SamplerMipmapModeNearest,
		AddressModeU: desc.AddressMode,
		AddressModeV: desc.AddressMode,
		AddressModeW: desc.AddressMode,
	}

	var sampler vk.Sampler
	if err := vkErr(vk.CreateSampler(sc.device, createInfo, nil, &sampler), "create sampler"); err != nil {
		return vk.NullSampler, err
	}

	sc.cache.Add(desc, sampler)

	return sampler, nil
}

// Release destroys every cached sampler.
func (sc *SamplerCache) Release() {
	sc.cache.Purge()
}
