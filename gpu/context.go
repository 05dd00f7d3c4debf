package gpu

import (
	"fmt"
	"log/slog"

	vk "github.com/goki/vulkan"
)

// desiredImageCount is the presentable image count requested from the
// swapchain, clamped to the surface's supported range.
const desiredImageCount = 3

// Context owns the logical device, the graphics and compute queues, the
// presentation surface and its swapchain, and the per-image views. Queue
// selection and swapchain image count are fixed for the context's lifetime.
type Context struct {
	Instance vk.Instance
	Physical vk.PhysicalDevice
	Device   vk.Device
	Surface  vk.Surface

	GraphicsQueue vk.Queue
	ComputeQueue  vk.Queue
	Selection     QueueSelection
	Info          DeviceInfo

	Swapchain vk.Swapchain
	Format    vk.Format
	Extent    Extent
	Views     []vk.ImageView

	images []vk.Image
}

// NewContext builds the whole device stack against the given presenter.
// Every failure is startup-fatal and reported with its distinct cause.
func NewContext(appName string, pres Presenter) (ctx *Context, err error) {
	defer func() {
		if err != nil && ctx != nil {
			ctx.Release()
			ctx = nil
		}
	}()

	ctx = &Context{}

	ctx.Instance, err = createInstance(appName, pres.InstanceExtensions())
	if err != nil {
		return nil, err
	}

	ctx.Surface, err = pres.CreateSurface(ctx.Instance)
	if err != nil {
		return nil, fmt.Errorf("create surface: %w", err)
	}

	ctx.Physical, ctx.Info, ctx.Selection, err = pickPhysicalDevice(ctx.Instance, ctx.Surface)
	if err != nil {
		return nil, err
	}

	slog.Info("selected physical device",
		"device", ctx.Info.String(),
		"graphicsFamily", ctx.Selection.Graphics,
		"computeFamily", ctx.Selection.Compute)

	if err = ctx.createDevice(); err != nil {
		return nil, err
	}

	if err = ctx.createSwapchain(pres.FramebufferExtent()); err != nil {
		return nil, err
	}

	return ctx, nil
}

func (ctx *Context) createDevice() error {
	sel := ctx.Selection

	queueInfos := []vk.DeviceQueueCreateInfo{{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: sel.Graphics,
		QueueCount:       1,
		PQueuePriorities: []float32{1},
	}}

	if sel.SameFamily() {
		if sel.ComputeQueue != sel.GraphicsQueue {
			queueInfos[0].QueueCount = 2
			queueInfos[0].PQueuePriorities = []float32{1, 1}
		}
	} else {
		queueInfos = append(queueInfos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: sel.Compute,
			QueueCount:       1,
			PQueuePriorities: []float32{1},
		})
	}

	extensions := []string{vk.KhrSwapchainExtensionName}

	createInfo := &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: terminated(extensions),
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{{}},
	}

	var device vk.Device
	if err := vkErr(vk.CreateDevice(ctx.Physical, createInfo, nil, &device), "create device"); err != nil {
		return err
	}
	ctx.Device = device

	var gq, cq vk.Queue
	vk.GetDeviceQueue(device, sel.Graphics, sel.GraphicsQueue, &gq)
	vk.GetDeviceQueue(device, sel.Compute, sel.ComputeQueue, &cq)
	ctx.GraphicsQueue = gq
	ctx.ComputeQueue = cq

	return nil
}

// selectPresentMode prefers relaxed vsync, falling back to the always
// available FIFO mode.
func selectPresentMode(modes []vk.PresentMode) vk.PresentMode {
	for _, m := range modes {
		if m == vk.PresentModeFifoRelaxed {
			return m
		}
	}

	return vk.PresentModeFifo
}

// clampImageCount clamps the desired image count to the surface's
// supported range. MaxImageCount of zero means unbounded.
func clampImageCount(desired, min, max uint32) uint32 {
	if desired < min {
		desired = min
	}
	if max > 0 && desired > max {
		desired = max
	}

	return desired
}

func (ctx *Context) createSwapchain(extent Extent) error {
	var caps vk.SurfaceCapabilities
	if err := vkErr(vk.GetPhysicalDeviceSurfaceCapabilities(ctx.Physical, ctx.Surface, &caps),
		"query surface capabilities"); err != nil {
		return err
	}
	caps.Deref()

	var formatCount uint32
	vk.GetPhysicalDeviceSurfaceFormats(ctx.Physical, ctx.Surface, &formatCount, nil)
	formats := make([]vk.SurfaceFormat, formatCount)
	vk.GetPhysicalDeviceSurfaceFormats(ctx.Physical, ctx.Surface, &formatCount, formats)

	format := formats[0]
	format.Deref()
	for i := range formats {
		formats[i].Deref()
		if formats[i].Format == vk.FormatB8g8r8a8Unorm {
			format = formats[i]
			break
		}
	}

	var modeCount uint32
	vk.GetPhysicalDeviceSurfacePresentModes(ctx.Physical, ctx.Surface, &modeCount, nil)
	modes := make([]vk.PresentMode, modeCount)
	vk.GetPhysicalDeviceSurfacePresentModes(ctx.Physical, ctx.Surface, &modeCount, modes)

	caps.CurrentExtent.Deref()
	if caps.CurrentExtent.Width != vk.MaxUint32 {
		extent = Extent{Width: caps.CurrentExtent.Width, Height: caps.CurrentExtent.Height}
	}

	imageCount := clampImageCount(desiredImageCount, caps.MinImageCount, caps.MaxImageCount)

	createInfo := &vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          ctx.Surface,
		MinImageCount:    imageCount,
		ImageFormat:      format.Format,
		ImageColorSpace:  format.ColorSpace,
		ImageExtent:      vk.Extent2D{Width: extent.Width, Height: extent.Height},
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      selectPresentMode(modes),
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}

	var sc vk.Swapchain
	if err := vkErr(vk.CreateSwapchain(ctx.Device, createInfo, nil, &sc), "create swapchain"); err != nil {
		return err
	}

	ctx.Swapchain = sc
	ctx.Format = format.Format
	ctx.Extent = extent

	var count uint32
	vk.GetSwapchainImages(ctx.Device, sc, &count, nil)
	ctx.images = make([]vk.Image, count)
	vk.GetSwapchainImages(ctx.Device, sc, &count, ctx.images)

	slog.Info("created swapchain",
		"images", count,
		"width", extent.Width,
		"height", extent.Height,
		"presentMode", createInfo.PresentMode)

	ctx.Views = make([]vk.ImageView, count)
	for i, img := range ctx.images {
		viewInfo := &vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    img,
			ViewType: vk.ImageViewType2d,
			Format:   format.Format,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		}

		if err := vkErr(vk.CreateImageView(ctx.Device, viewInfo, nil, &ctx.Views[i]),
			fmt.Sprintf("create swapchain view %d", i)); err != nil {
			return err
		}
	}

	return nil
}

// RebuildSwapchain drops the current swapchain and its views and creates
// fresh ones for the given extent. Callers must ensure no submission still
// references the old views, typically by waiting the device idle first.
func (ctx *Context) RebuildSwapchain(extent Extent) error {
	vk.DeviceWaitIdle(ctx.Device)
	ctx.destroySwapchain()

	return ctx.createSwapchain(extent)
}

func (ctx *Context) destroySwapchain() {
	for _, view := range ctx.Views {
		vk.DestroyImageView(ctx.Device, view, nil)
	}
	ctx.Views = nil
	ctx.images = nil

	if ctx.Swapchain != vk.NullSwapchain {
		vk.DestroySwapchain(ctx.Device, ctx.Swapchain, nil)
		ctx.Swapchain = vk.NullSwapchain
	}
}

// WaitIdle blocks until all queues drain. The frame loop calls this before
// teardown so in-flight submissions never see destroyed resources.
func (ctx *Context) WaitIdle() {
	if ctx.Device != nil {
		vk.DeviceWaitIdle(ctx.Device)
	}
}

// Release tears down everything the context owns. Safe to call on a
// partially constructed context.
func (ctx *Context) Release() {
	if ctx.Device != nil {
		vk.DeviceWaitIdle(ctx.Device)
		ctx.destroySwapchain()
		vk.DestroyDevice(ctx.Device, nil)
		ctx.Device = nil
	}

	if ctx.Surface != vk.NullSurface && ctx.Instance != nil {
		vk.DestroySurface(ctx.Instance, ctx.Surface, nil)
		ctx.Surface = vk.NullSurface
	}

	if ctx.Instance != nil {
		vk.DestroyInstance(ctx.Instance, nil)
		ctx.Instance = nil
	}
}
