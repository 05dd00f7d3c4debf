package gpu

import (
	"math"

	vk "github.com/goki/vulkan"
)

// MaxFramesInFlight caps the number of frames the CPU may record ahead of
// the GPU. Each frame's final submission signals the ring fence for its
// slot; starting frame N blocks until frame N-2 fully completed.
const MaxFramesInFlight = 2

// junkList accumulates GPU objects retired during one frame. They are
// destroyed only when that frame's fence has signaled, so in-flight
// submissions never see a destroyed handle.
type junkList struct {
	sems []vk.Semaphore
	sets []vk.DescriptorSet
	cbs  []retiredCommandBuffer
}

type retiredCommandBuffer struct {
	pool *CommandPool
	cb   vk.CommandBuffer
}

func (j *junkList) flush(device vk.Device, alloc *DescriptorAllocator) {
	for _, sem := range j.sems {
		vk.DestroySemaphore(device, sem, nil)
	}

	for _, set := range j.sets {
		alloc.Free(set)
	}

	for _, rc := range j.cbs {
		rc.pool.Free(rc.cb)
	}

	*j = junkList{}
}

// FrameSync is the per-frame synchronization ring. It bounds the number of
// in-flight frames with a fence per slot and defers destruction of
// frame-scoped objects until their slot's fence has signaled.
type FrameSync struct {
	device vk.Device
	alloc  *DescriptorAllocator

	fences [MaxFramesInFlight]vk.Fence
	junk   [MaxFramesInFlight]junkList
	index  int
}

// NewFrameSync creates the ring with all fences signaled, so the first
// frames start without waiting.
func NewFrameSync(device vk.Device, alloc *DescriptorAllocator) (*FrameSync, error) {
	fs := &FrameSync{device: device, alloc: alloc}

	for i := range fs.fences {
		createInfo := &vk.FenceCreateInfo{
			SType: vk.StructureTypeFenceCreateInfo,
			Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
		}

		if err := vkErr(vk.CreateFence(device, createInfo, nil, &fs.fences[i]), "create frame fence"); err != nil {
			fs.Release()
			return nil, err
		}
	}

	return fs, nil
}

// Begin blocks until this slot's previous frame has fully completed, then
// destroys the objects that frame retired. The fence is left signaled; it
// rearms only when Fence hands it to a submission, so a frame that aborts
// before submitting never deadlocks its slot.
func (fs *FrameSync) Begin() error {
	fence := []vk.Fence{fs.fences[fs.index]}

	if err := vkErr(vk.WaitForFences(fs.device, 1, fence, vk.True, math.MaxUint64), "wait frame fence"); err != nil {
		return err
	}

	fs.junk[fs.index].flush(fs.device, fs.alloc)

	return nil
}

// Fence rearms and returns the fence the current frame's final submission
// must signal. Call it only when that submission is certain to happen.
func (fs *FrameSync) Fence() vk.Fence {
	vk.ResetFences(fs.device, 1, []vk.Fence{fs.fences[fs.index]})

	return fs.fences[fs.index]
}

// End advances to the next slot.
func (fs *FrameSync) End() {
	fs.index = (fs.index + 1) % MaxFramesInFlight
}

// RetireSemaphores schedules semaphores for destruction once the current
// frame completes.
func (fs *FrameSync) RetireSemaphores(sems ...vk.Semaphore) {
	fs.junk[fs.index].sems = append(fs.junk[fs.index].sems, sems...)
}

// RetireSet schedules a descriptor set for recycling once the current
// frame completes.
func (fs *FrameSync) RetireSet(set vk.DescriptorSet) {
	fs.junk[fs.index].sets = append(fs.junk[fs.index].sets, set)
}

// RetireCommandBuffer schedules a command buffer for recycling once the
// current frame completes.
func (fs *FrameSync) RetireCommandBuffer(pool *CommandPool, cb vk.CommandBuffer) {
	fs.junk[fs.index].cbs = append(fs.junk[fs.index].cbs, retiredCommandBuffer{pool: pool, cb: cb})
}

// RetireToken schedules an unconsumed token's semaphores for destruction.
// The frame loop uses it to discard the final render token when shutting
// down.
func (fs *FrameSync) RetireToken(t *Token) {
	fs.RetireSemaphores(t.semaphores()...)
}

// Release waits out all in-flight frames, flushes every junk list and
// destroys the fences.
func (fs *FrameSync) Release() {
	for i := range fs.fences {
		if fs.fences[i] == vk.NullFence {
			continue
		}

		fence := []vk.Fence{fs.fences[i]}
		vk.WaitForFences(fs.device, 1, fence, vk.True, math.MaxUint64)
		fs.junk[i].flush(fs.device, fs.alloc)
		vk.DestroyFence(fs.device, fs.fences[i], nil)
		fs.fences[i] = vk.NullFence
	}
}
