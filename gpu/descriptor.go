package gpu

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

// DescriptorAllocator wraps a descriptor pool sized for the engine's two
// descriptor shapes: per-frame storage image sets on the compute side and
// long-lived sampler sets on the render side. Sets can be freed
// individually so per-frame sets recycle through the frame ring.
type DescriptorAllocator struct {
	device vk.Device
	pool   vk.DescriptorPool
}

// NewDescriptorAllocator creates the pool. maxSets bounds concurrently
// live sets; maxImages bounds storage image bindings across them.
func NewDescriptorAllocator(device vk.Device, maxSets, maxImages uint32) (*DescriptorAllocator, error) {
	sizes := []vk.DescriptorPoolSize{
		{Type: vk.DescriptorTypeStorageImage, DescriptorCount: maxImages},
		{Type: vk.DescriptorTypeCombinedImageSampler, DescriptorCount: maxSets},
	}

	createInfo := &vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		Flags:         vk.DescriptorPoolCreateFlags(vk.DescriptorPoolCreateFreeDescriptorSetBit),
		MaxSets:       maxSets,
		PoolSizeCount: uint32(len(sizes)),
		PPoolSizes:    sizes,
	}

	var pool vk.DescriptorPool
	if err := vkErr(vk.CreateDescriptorPool(device, createInfo, nil, &pool), "create descriptor pool"); err != nil {
		return nil, err
	}

	return &DescriptorAllocator{device: device, pool: pool}, nil
}

// Alloc allocates one set with the given layout.
func (a *DescriptorAllocator) Alloc(layout vk.DescriptorSetLayout) (vk.DescriptorSet, error) {
	allocInfo := &vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     a.pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{layout},
	}

	var set vk.DescriptorSet
	if err := vkErr(vk.AllocateDescriptorSets(a.device, allocInfo, &set), "allocate descriptor set"); err != nil {
		return nil, err
	}

	return set, nil
}

// Free returns a set to the pool.
func (a *DescriptorAllocator) Free(set vk.DescriptorSet) {
	vk.FreeDescriptorSets(a.device, a.pool, 1, &set)
}

// Release destroys the pool and every set allocated from it.
func (a *DescriptorAllocator) Release() {
	if a.pool != vk.NullDescriptorPool {
		vk.DestroyDescriptorPool(a.device, a.pool, nil)
		a.pool = vk.NullDescriptorPool
	}
}

// newStorageImageLayout builds a set layout with count storage image
// bindings, numbered from zero, visible to the given stage.
func newStorageImageLayout(device vk.Device, count uint32, stage vk.ShaderStageFlags) (vk.DescriptorSetLayout, error) {
	bindings := make([]vk.DescriptorSetLayoutBinding, count)
	for i := range bindings {
		bindings[i] = vk.DescriptorSetLayoutBinding{
			Binding:         uint32(i),
			DescriptorType:  vk.DescriptorTypeStorageImage,
			DescriptorCount: 1,
			StageFlags:      stage,
		}
	}

	createInfo := &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: count,
		PBindings:    bindings,
	}

	var layout vk.DescriptorSetLayout
	if err := vkErr(vk.CreateDescriptorSetLayout(device, createInfo, nil, &layout),
		"create storage image layout"); err != nil {
		return vk.NullDescriptorSetLayout, err
	}

	return layout, nil
}

// newSamplerLayout builds a set layout with count combined image sampler
// bindings, numbered from zero, for the fragment stage.
func newSamplerLayout(device vk.Device, count uint32) (vk.DescriptorSetLayout, error) {
	bindings := make([]vk.DescriptorSetLayoutBinding, count)
	for i := range bindings {
		bindings[i] = vk.DescriptorSetLayoutBinding{
			Binding:         uint32(i),
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		}
	}

	createInfo := &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: count,
		PBindings:    bindings,
	}

	var layout vk.DescriptorSetLayout
	if err := vkErr(vk.CreateDescriptorSetLayout(device, createInfo, nil, &layout),
		"create sampler layout"); err != nil {
		return vk.NullDescriptorSetLayout, err
	}

	return layout, nil
}

// storageImageWrites plans the descriptor writes binding the given views
// to consecutive bindings starting at zero, in slice order. The shader's
// declared image count must match exactly; a mismatch means the caller is
// driving the wrong shader and is reported via ErrNoImageDescriptor.
func storageImageWrites(set vk.DescriptorSet, views []vk.ImageView, declared uint32) ([]vk.WriteDescriptorSet, error) {
	if uint32(len(views)) != declared {
		return nil, fmt.Errorf("have %d images for %d declared bindings: %w",
			len(views), declared, ErrNoImageDescriptor)
	}

	writes := make([]vk.WriteDescriptorSet, len(views))
	for i, view := range views {
		writes[i] = vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      uint32(i),
			DescriptorCount: 1,
			DescriptorType:  vk.DescriptorTypeStorageImage,
			PImageInfo: []vk.DescriptorImageInfo{{
				ImageView:   view,
				ImageLayout: vk.ImageLayoutGeneral,
			}},
		}
	}

	return writes, nil
}

// samplerWrites plans the writes binding the given views with one shared
// sampler to consecutive bindings starting at zero, in slice order. Like
// the storage image plan, the declared count must match exactly.
func samplerWrites(set vk.DescriptorSet, views []vk.ImageView, sampler vk.Sampler, declared uint32) ([]vk.WriteDescriptorSet, error) {
	if uint32(len(views)) != declared {
		return nil, fmt.Errorf("have %d images for %d declared bindings: %w",
			len(views), declared, ErrNoImageDescriptor)
	}

	writes := make([]vk.WriteDescriptorSet, len(views))
	for i, view := range views {
		writes[i] = vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      uint32(i),
			DescriptorCount: 1,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			PImageInfo: []vk.DescriptorImageInfo{{
				Sampler:     sampler,
				ImageView:   view,
				ImageLayout: vk.ImageLayoutGeneral,
			}},
		}
	}

	return writes, nil
}
