package gpu

import (
	vk "github.com/goki/vulkan"
)

// ComputeStage owns a compute pipeline and submits one dispatch per frame
// on the compute queue. It binds the frame's storage images at descriptor
// set zero, in caller order, and uploads the parameter blob as push
// constants.
type ComputeStage struct {
	ctx    *Context
	shader *Shader
	pool   *CommandPool
	alloc  *DescriptorAllocator
	sync   *FrameSync

	setLayout      vk.DescriptorSetLayout
	pipelineLayout vk.PipelineLayout
	pipeline       vk.Pipeline
}

// NewComputeStage builds the descriptor layout, pipeline layout and
// compute pipeline for the shader. All failures are startup-fatal.
func NewComputeStage(ctx *Context, shader *Shader, alloc *DescriptorAllocator, sync *FrameSync) (s *ComputeStage, err error) {
	defer func() {
		if err != nil && s != nil {
			s.Release()
			s = nil
		}
	}()

	s = &ComputeStage{
		ctx:    ctx,
		shader: shader,
		alloc:  alloc,
		sync:   sync,
	}

	s.pool, err = NewCommandPool(ctx.Device, ctx.Selection.Compute, ctx.ComputeQueue)
	if err != nil {
		return nil, err
	}

	s.setLayout, err = newStorageImageLayout(ctx.Device, shader.Contract.Slot0Images,
		vk.ShaderStageFlags(vk.ShaderStageComputeBit))
	if err != nil {
		return nil, err
	}

	layoutInfo := &vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: 1,
		PSetLayouts:    []vk.DescriptorSetLayout{s.setLayout},
	}

	if shader.Contract.ParamsSize > 0 {
		layoutInfo.PushConstantRangeCount = 1
		layoutInfo.PPushConstantRanges = []vk.PushConstantRange{{
			StageFlags: vk.ShaderStageFlags(vk.ShaderStageComputeBit),
			Size:       shader.Contract.ParamsSize,
		}}
	}

	if err = vkErr(vk.CreatePipelineLayout(ctx.Device, layoutInfo, nil, &s.pipelineLayout),
		"create compute pipeline layout"); err != nil {
		return nil, err
	}

	pipelineInfo := []vk.ComputePipelineCreateInfo{{
		SType: vk.StructureTypeComputePipelineCreateInfo,
		Stage: vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageComputeBit,
			Module: shader.Module,
			PName:  "main\x00",
		},
		Layout: s.pipelineLayout,
	}}

	pipelines := make([]vk.Pipeline, 1)
	if err = vkErr(vk.CreateComputePipelines(ctx.Device, vk.NullPipelineCache, 1, pipelineInfo, nil, pipelines),
		"create compute pipeline"); err != nil {
		return nil, err
	}
	s.pipeline = pipelines[0]

	return s, nil
}

// Dispatch records and submits one compute pass launching the given group
// counts. Callers round the counts up from the simulation domain, see
// GroupCounts. The submission waits on dependsOn and the returned token
// completes when the dispatch finishes. Contract violations (wrong image
// count, wrong params size) fail before anything is submitted.
func (s *ComputeStage) Dispatch(images []*StorageImage, groups [3]uint32, params []byte, dependsOn *Token) (*Token, error) {
	if err := CheckParamsSize(params, s.shader.Contract.ParamsSize); err != nil {
		return nil, err
	}

	views := make([]vk.ImageView, len(images))
	for i, img := range images {
		views[i] = img.View
	}

	set, err := s.alloc.Alloc(s.setLayout)
	if err != nil {
		return nil, err
	}
	s.sync.RetireSet(set)

	writes, err := storageImageWrites(set, views, s.shader.Contract.Slot0Images)
	if err != nil {
		return nil, err
	}
	vk.UpdateDescriptorSets(s.ctx.Device, uint32(len(writes)), writes, 0, nil)

	cb, err := s.pool.Alloc()
	if err != nil {
		return nil, err
	}
	s.sync.RetireCommandBuffer(s.pool, cb)

	vk.CmdBindPipeline(cb, vk.PipelineBindPointCompute, s.pipeline)
	vk.CmdBindDescriptorSets(cb, vk.PipelineBindPointCompute, s.pipelineLayout,
		0, 1, []vk.DescriptorSet{set}, 0, nil)

	if len(params) > 0 {
		vk.CmdPushConstants(cb, s.pipelineLayout,
			vk.ShaderStageFlags(vk.ShaderStageComputeBit), 0, uint32(len(params)), unsafePtr(params))
	}

	vk.CmdDispatch(cb, groups[0], groups[1], groups[2])

	if err := vkErr(vk.EndCommandBuffer(cb), "end compute commands"); err != nil {
		return nil, err
	}

	waitSems, waitStages, err := dependsOn.take()
	if err != nil {
		return nil, err
	}
	s.sync.RetireSemaphores(waitSems...)

	done, err := newSemaphore(s.ctx.Device)
	if err != nil {
		return nil, err
	}

	submit := []vk.SubmitInfo{{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   uint32(len(waitSems)),
		PWaitSemaphores:      waitSems,
		PWaitDstStageMask:    waitStages,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cb},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{done},
	}}

	if err := vkErr(vk.QueueSubmit(s.ctx.ComputeQueue, 1, submit, vk.NullFence), "submit compute"); err != nil {
		vk.DestroySemaphore(s.ctx.Device, done, nil)
		return nil, err
	}

	return newSignalToken([]vk.Semaphore{done},
		vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)), nil
}

// Release destroys the stage's pipeline objects. Callers must drain the
// queues first.
func (s *ComputeStage) Release() {
	device := s.ctx.Device

	if s.pipeline != vk.NullPipeline {
		vk.DestroyPipeline(device, s.pipeline, nil)
		s.pipeline = vk.NullPipeline
	}

	if s.pipelineLayout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(device, s.pipelineLayout, nil)
		s.pipelineLayout = vk.NullPipelineLayout
	}

	if s.setLayout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(device, s.setLayout, nil)
		s.setLayout = vk.NullDescriptorSetLayout
	}

	if s.pool != nil {
		s.pool.Release()
		s.pool = nil
	}
}
