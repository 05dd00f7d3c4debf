package gpu

import (
	"math"

	vk "github.com/goki/vulkan"
)

// fullScreenVertexCount covers the window with two shader-generated
// triangles.
const fullScreenVertexCount = 6

// RenderOptions configure a render stage.
type RenderOptions struct {
	ClearColor [4]float32
	Sampler    SamplerDesc
}

func (opts RenderOptions) withDefaults() RenderOptions {
	var zero SamplerDesc
	if opts.Sampler == zero {
		opts.Sampler = NearestRepeat
	}

	return opts
}

// RenderStage owns the render pass, the full-screen graphics pipeline and
// the presentation path. Each Draw samples one simulation image, paints
// the acquired swapchain image and chains a present for it.
type RenderStage struct {
	ctx  *Context
	pool *CommandPool

	alloc    *DescriptorAllocator
	sync     *FrameSync
	samplers *SamplerCache
	opts     RenderOptions

	setLayout      vk.DescriptorSetLayout
	pipelineLayout vk.PipelineLayout
	renderPass     vk.RenderPass
	pipeline       vk.Pipeline
	framebuffers   *FramebufferCache

	fragContract ShaderContract
}

// NewRenderStage builds the render pass, full-screen pipeline and sampler
// machinery. The vertex shader generates its own geometry, so the pipeline
// declares no vertex input. All failures are startup-fatal. The shader
// modules are only needed during pipeline creation and may be released
// afterwards.
func NewRenderStage(ctx *Context, vert, frag *Shader, alloc *DescriptorAllocator, sync *FrameSync, opts RenderOptions) (s *RenderStage, err error) {
	defer func() {
		if err != nil && s != nil {
			s.Release()
			s = nil
		}
	}()

	s = &RenderStage{
		ctx:          ctx,
		alloc:        alloc,
		sync:         sync,
		samplers:     NewSamplerCache(ctx.Device),
		opts:         opts.withDefaults(),
		fragContract: frag.Contract,
	}

	s.pool, err = NewCommandPool(ctx.Device, ctx.Selection.Graphics, ctx.GraphicsQueue)
	if err != nil {
		return nil, err
	}

	s.setLayout, err = newSamplerLayout(ctx.Device, frag.Contract.Slot0Images)
	if err != nil {
		return nil, err
	}

	if err = s.createRenderPass(); err != nil {
		return nil, err
	}

	if err = s.createPipeline(vert, frag); err != nil {
		return nil, err
	}

	s.framebuffers = NewFramebufferCache(ctx.Device, s.renderPass)

	return s, nil
}

func (s *RenderStage) createRenderPass() error {
	colorAttachment := vk.AttachmentDescription{
		Format:         s.ctx.Format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments: []vk.AttachmentReference{{
			Attachment: 0,
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		}},
	}

	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
	}

	createInfo := &vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: 1,
		PAttachments:    []vk.AttachmentDescription{colorAttachment},
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}

	return vkErr(vk.CreateRenderPass(s.ctx.Device, createInfo, nil, &s.renderPass), "create render pass")
}

func (s *RenderStage) createPipeline(vert, frag *Shader) error {
	layoutInfo := &vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: 1,
		PSetLayouts:    []vk.DescriptorSetLayout{s.setLayout},
	}

	if s.fragContract.ParamsSize > 0 {
		layoutInfo.PushConstantRangeCount = 1
		layoutInfo.PPushConstantRanges = []vk.PushConstantRange{{
			StageFlags: vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
			Size:       s.fragContract.ParamsSize,
		}}
	}

	if err := vkErr(vk.CreatePipelineLayout(s.ctx.Device, layoutInfo, nil, &s.pipelineLayout),
		"create render pipeline layout"); err != nil {
		return err
	}

	shaderStages := []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: vert.Module,
			PName:  "main\x00",
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: frag.Module,
			PName:  "main\x00",
		},
	}

	vertexInput := vk.PipelineVertexInputStateCreateInfo{
		SType: vk.StructureTypePipelineVertexInputStateCreateInfo,
	}

	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology: vk.PrimitiveTopologyTriangleList,
	}

	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}

	rasterizer := vk.PipelineRasterizationStateCreateInfo{
		SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
		PolygonMode: vk.PolygonModeFill,
		CullMode:    vk.CullModeFlags(vk.CullModeNone),
		FrontFace:   vk.FrontFaceClockwise,
		LineWidth:   1,
	}

	multisampling := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vk.SampleCount1Bit,
		MinSampleShading:     1,
	}

	colorBlend := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments: []vk.PipelineColorBlendAttachmentState{{
			ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit |
				vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit),
		}},
	}

	dynamicState := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: 2,
		PDynamicStates: []vk.DynamicState{
			vk.DynamicStateViewport,
			vk.DynamicStateScissor,
		},
	}

	pipelineInfo := []vk.GraphicsPipelineCreateInfo{{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          2,
		PStages:             shaderStages,
		PVertexInputState:   &vertexInput,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizer,
		PMultisampleState:   &multisampling,
		PColorBlendState:    &colorBlend,
		PDynamicState:       &dynamicState,
		Layout:              s.pipelineLayout,
		RenderPass:          s.renderPass,
		BasePipelineIndex:   -1,
	}}

	pipelines := make([]vk.Pipeline, 1)
	if err := vkErr(vk.CreateGraphicsPipelines(s.ctx.Device, vk.NullPipelineCache, 1, pipelineInfo, nil, pipelines),
		"create render pipeline"); err != nil {
		return err
	}
	s.pipeline = pipelines[0]

	return nil
}

// Draw acquires the next presentable image, records a full-screen pass
// sampling the given images in order, submits it joining the acquisition
// token with dependsOn and chains a present for the acquired index. The
// returned token completes when rendering finishes. A stale surface
// surfaces as ErrSurfaceOutdated; callers rebuild and retry.
func (s *RenderStage) Draw(images []*StorageImage, params []byte, dependsOn *Token) (*Token, error) {
	if err := CheckParamsSize(params, s.fragContract.ParamsSize); err != nil {
		return nil, err
	}

	acquireSem, err := newSemaphore(s.ctx.Device)
	if err != nil {
		return nil, err
	}
	s.sync.RetireSemaphores(acquireSem)

	var imageIndex uint32
	result := vk.AcquireNextImage(s.ctx.Device, s.ctx.Swapchain, math.MaxUint64,
		acquireSem, vk.NullFence, &imageIndex)
	switch result {
	case vk.Success, vk.Suboptimal:
	case vk.ErrorOutOfDate:
		return nil, ErrSurfaceOutdated
	default:
		return nil, vkErr(result, "acquire swapchain image")
	}

	framebuffer, err := s.framebuffers.Get(imageIndex, s.ctx.Views[imageIndex], s.ctx.Extent)
	if err != nil {
		return nil, err
	}

	sampler, err := s.samplers.Get(s.opts.Sampler)
	if err != nil {
		return nil, err
	}

	set, err := s.alloc.Alloc(s.setLayout)
	if err != nil {
		return nil, err
	}
	s.sync.RetireSet(set)

	views := make([]vk.ImageView, len(images))
	for i, img := range images {
		views[i] = img.View
	}

	writes, err := samplerWrites(set, views, sampler, s.fragContract.Slot0Images)
	if err != nil {
		return nil, err
	}
	vk.UpdateDescriptorSets(s.ctx.Device, uint32(len(writes)), writes, 0, nil)

	cb, err := s.pool.Alloc()
	if err != nil {
		return nil, err
	}
	s.sync.RetireCommandBuffer(s.pool, cb)

	s.record(cb, framebuffer, set, params)

	if err := vkErr(vk.EndCommandBuffer(cb), "end render commands"); err != nil {
		return nil, err
	}

	acquired := newSignalToken([]vk.Semaphore{acquireSem},
		vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit))

	deps, err := Join(acquired, dependsOn)
	if err != nil {
		return nil, err
	}

	waitSems, waitStages, err := deps.take()
	if err != nil {
		return nil, err
	}
	s.sync.RetireSemaphores(waitSems...)

	presentSem, err := newSemaphore(s.ctx.Device)
	if err != nil {
		return nil, err
	}
	s.sync.RetireSemaphores(presentSem)

	doneSem, err := newSemaphore(s.ctx.Device)
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
		SignalSemaphoreCount: 2,
		PSignalSemaphores:    []vk.Semaphore{presentSem, doneSem},
	}}

	if err := vkErr(vk.QueueSubmit(s.ctx.GraphicsQueue, 1, submit, s.sync.Fence()), "submit render"); err != nil {
		vk.DestroySemaphore(s.ctx.Device, doneSem, nil)
		return nil, err
	}

	done := newSignalToken([]vk.Semaphore{doneSem},
		vk.PipelineStageFlags(vk.PipelineStageComputeShaderBit))

	presentInfo := &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{presentSem},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{s.ctx.Swapchain},
		PImageIndices:      []uint32{imageIndex},
	}

	result = vk.QueuePresent(s.ctx.GraphicsQueue, presentInfo)
	switch result {
	case vk.Success:
	case vk.ErrorOutOfDate, vk.Suboptimal:
		// The frame was submitted; retire its token and let the caller
		// rebuild before the next one.
		s.sync.RetireToken(done)
		return nil, ErrSurfaceOutdated
	default:
		s.sync.RetireToken(done)
		return nil, vkErr(result, "present swapchain image")
	}

	return done, nil
}

func (s *RenderStage) record(cb vk.CommandBuffer, framebuffer vk.Framebuffer, set vk.DescriptorSet, params []byte) {
	extent := vk.Extent2D{Width: s.ctx.Extent.Width, Height: s.ctx.Extent.Height}

	beginInfo := &vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		RenderPass:      s.renderPass,
		Framebuffer:     framebuffer,
		RenderArea:      vk.Rect2D{Extent: extent},
		ClearValueCount: 1,
		PClearValues:    []vk.ClearValue{vk.NewClearValue(s.opts.ClearColor[:])},
	}

	vk.CmdBeginRenderPass(cb, beginInfo, vk.SubpassContentsInline)
	vk.CmdBindPipeline(cb, vk.PipelineBindPointGraphics, s.pipeline)

	vk.CmdSetViewport(cb, 0, 1, []vk.Viewport{{
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MaxDepth: 1,
	}})
	vk.CmdSetScissor(cb, 0, 1, []vk.Rect2D{{Extent: extent}})

	vk.CmdBindDescriptorSets(cb, vk.PipelineBindPointGraphics, s.pipelineLayout,
		0, 1, []vk.DescriptorSet{set}, 0, nil)

	if len(params) > 0 {
		vk.CmdPushConstants(cb, s.pipelineLayout,
			vk.ShaderStageFlags(vk.ShaderStageFragmentBit), 0, uint32(len(params)), unsafePtr(params))
	}

	vk.CmdDraw(cb, fullScreenVertexCount, 1, 0, 0)
	vk.CmdEndRenderPass(cb)
}

// RebuildSurface replaces the swapchain and drops the framebuffers built
// on the old views. The render pass and pipeline survive since the surface
// format does not change.
func (s *RenderStage) RebuildSurface(extent Extent) error {
	if err := s.ctx.RebuildSwapchain(extent); err != nil {
		return err
	}

	s.framebuffers.Purge()

	return nil
}

// Release destroys everything the stage owns. Callers must drain the
// queues first.
func (s *RenderStage) Release() {
	device := s.ctx.Device

	if s.framebuffers != nil {
		s.framebuffers.Purge()
		s.framebuffers = nil
	}

	if s.pipeline != vk.NullPipeline {
		vk.DestroyPipeline(device, s.pipeline, nil)
		s.pipeline = vk.NullPipeline
	}

	if s.pipelineLayout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(device, s.pipelineLayout, nil)
		s.pipelineLayout = vk.NullPipelineLayout
	}

	if s.renderPass != vk.NullRenderPass {
		vk.DestroyRenderPass(device, s.renderPass, nil)
		s.renderPass = vk.NullRenderPass
	}

	if s.setLayout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(device, s.setLayout, nil)
		s.setLayout = vk.NullDescriptorSetLayout
	}

	if s.samplers != nil {
		s.samplers.Release()
		s.samplers = nil
	}

	if s.pool != nil {
		s.pool.Release()
		s.pool = nil
	}
}
