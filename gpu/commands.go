package gpu

import (
	vk "github.com/goki/vulkan"
)

// CommandPool wraps a Vulkan command pool bound to one queue. Each stage
// owns a pool on its own queue family so command buffers never cross
// families.
type CommandPool struct {
	device vk.Device
	queue  vk.Queue
	pool   vk.CommandPool
}

// NewCommandPool creates a pool for the given queue family. Buffers are
// allocated per submission and recycled, so the pool allows individual
// resets.
func NewCommandPool(device vk.Device, family uint32, queue vk.Queue) (*CommandPool, error) {
	createInfo := &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: family,
	}

	var pool vk.CommandPool
	if err := vkErr(vk.CreateCommandPool(device, createInfo, nil, &pool), "create command pool"); err != nil {
		return nil, err
	}

	return &CommandPool{device: device, queue: queue, pool: pool}, nil
}

// Queue returns the queue this pool submits to.
func (p *CommandPool) Queue() vk.Queue {
	return p.queue
}

// Alloc allocates a primary command buffer and begins recording it for a
// single submission.
func (p *CommandPool) Alloc() (vk.CommandBuffer, error) {
	allocInfo := &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        p.pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}

	buffers := make([]vk.CommandBuffer, 1)
	if err := vkErr(vk.AllocateCommandBuffers(p.device, allocInfo, buffers), "allocate command buffer"); err != nil {
		return nil, err
	}

	beginInfo := &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}

	if err := vkErr(vk.BeginCommandBuffer(buffers[0], beginInfo), "begin command buffer"); err != nil {
		p.Free(buffers[0])
		return nil, err
	}

	return buffers[0], nil
}

// Free returns a command buffer to the pool. Once the pool has been
// destroyed this is a no-op: pool destruction already freed every buffer
// allocated from it, and retired buffers may outlive their stage's pool
// until the frame ring flushes them.
func (p *CommandPool) Free(cb vk.CommandBuffer) {
	if p.pool == vk.NullCommandPool {
		return
	}

	vk.FreeCommandBuffers(p.device, p.pool, 1, []vk.CommandBuffer{cb})
}

// RunOnce records a command buffer with the given function, submits it and
// blocks until the queue drains it. Used for setup transfers only, never on
// the frame path.
func (p *CommandPool) RunOnce(record func(cb vk.CommandBuffer)) error {
	cb, err := p.Alloc()
	if err != nil {
		return err
	}
	defer p.Free(cb)

	record(cb)

	if err := vkErr(vk.EndCommandBuffer(cb), "end command buffer"); err != nil {
		return err
	}

	submit := []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cb},
	}}

	if err := vkErr(vk.QueueSubmit(p.queue, 1, submit, vk.NullFence), "submit one-shot commands"); err != nil {
		return err
	}

	return vkErr(vk.QueueWaitIdle(p.queue), "wait one-shot commands")
}

// Release destroys the pool and all buffers allocated from it.
func (p *CommandPool) Release() {
	if p.pool != vk.NullCommandPool {
		vk.DestroyCommandPool(p.device, p.pool, nil)
		p.pool = vk.NullCommandPool
	}
}
