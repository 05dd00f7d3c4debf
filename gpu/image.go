package gpu

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
)

// StorageImage is a device-local image usable as a compute storage target
// and as a sampled texture in the render stage. Storage images live in the
// general layout for their whole lifetime, so no per-frame layout
// transitions are needed.
type StorageImage struct {
	Image  vk.Image
	View   vk.ImageView
	Format vk.Format
	Extent Extent

	device   vk.Device
	physical vk.PhysicalDevice
	memory   vk.DeviceMemory
}

// NewStorageImage creates a device-local image with storage, sampled and
// transfer-destination usage. When graphics and compute live on distinct
// queue families the image is created in concurrent sharing mode so both
// can touch it without ownership transfers. The image is transitioned to
// the general layout before returning; when pixels is non-nil its contents
// are uploaded through a staging buffer first.
func NewStorageImage(ctx *Context, pool *CommandPool, extent Extent, format vk.Format, pixels []byte) (*StorageImage, error) {
	img := &StorageImage{
		Format:   format,
		Extent:   extent,
		device:   ctx.Device,
		physical: ctx.Physical,
	}

	sharingMode := vk.SharingModeExclusive
	var familyCount uint32
	var families []uint32
	if !ctx.Selection.SameFamily() {
		sharingMode = vk.SharingModeConcurrent
		families = []uint32{ctx.Selection.Graphics, ctx.Selection.Compute}
		familyCount = 2
	}

	imageInfo := &vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    format,
		Extent: vk.Extent3D{
			Width:  extent.Width,
			Height: extent.Height,
			Depth:  1,
		},
		MipLevels:   1,
		ArrayLayers: 1,
		Samples:     vk.SampleCount1Bit,
		Tiling:      vk.ImageTilingOptimal,
		Usage: vk.ImageUsageFlags(vk.ImageUsageStorageBit |
			vk.ImageUsageSampledBit | vk.ImageUsageTransferDstBit),
		SharingMode:           sharingMode,
		QueueFamilyIndexCount: familyCount,
		PQueueFamilyIndices:   families,
		InitialLayout:         vk.ImageLayoutUndefined,
	}

	var handle vk.Image
	if err := vkErr(vk.CreateImage(ctx.Device, imageInfo, nil, &handle), "create storage image"); err != nil {
		return nil, err
	}
	img.Image = handle

	var memReq vk.MemoryRequirements
	vk.GetImageMemoryRequirements(ctx.Device, handle, &memReq)
	memReq.Deref()

	memType, err := findMemoryType(ctx.Physical, memReq.MemoryTypeBits,
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		img.Release()
		return nil, err
	}

	allocInfo := &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReq.Size,
		MemoryTypeIndex: memType,
	}

	var memory vk.DeviceMemory
	if err := vkErr(vk.AllocateMemory(ctx.Device, allocInfo, nil, &memory), "allocate image memory"); err != nil {
		img.Release()
		return nil, err
	}
	img.memory = memory
	vk.BindImageMemory(ctx.Device, handle, memory, 0)

	viewInfo := &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    handle,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}

	var view vk.ImageView
	if err := vkErr(vk.CreateImageView(ctx.Device, viewInfo, nil, &view), "create storage image view"); err != nil {
		img.Release()
		return nil, err
	}
	img.View = view

	if pixels != nil {
		err = img.upload(ctx, pool, pixels)
	} else {
		err = pool.RunOnce(func(cb vk.CommandBuffer) {
			img.barrier(cb, vk.ImageLayoutUndefined, vk.ImageLayoutGeneral,
				0, vk.AccessFlags(vk.AccessShaderReadBit|vk.AccessShaderWriteBit),
				vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
				vk.PipelineStageFlags(vk.PipelineStageComputeShaderBit))
		})
	}
	if err != nil {
		img.Release()
		return nil, err
	}

	return img, nil
}

// upload copies pixel data into the image through a host-visible staging
// buffer and leaves the image in the general layout.
func (img *StorageImage) upload(ctx *Context, pool *CommandPool, pixels []byte) error {
	size := vk.DeviceSize(len(pixels))

	bufferInfo := &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		SharingMode: vk.SharingModeExclusive,
	}

	var staging vk.Buffer
	if err := vkErr(vk.CreateBuffer(ctx.Device, bufferInfo, nil, &staging), "create staging buffer"); err != nil {
		return err
	}
	defer vk.DestroyBuffer(ctx.Device, staging, nil)

	var memReq vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(ctx.Device, staging, &memReq)
	memReq.Deref()

	memType, err := findMemoryType(ctx.Physical, memReq.MemoryTypeBits,
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return err
	}

	allocInfo := &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReq.Size,
		MemoryTypeIndex: memType,
	}

	var memory vk.DeviceMemory
	if err := vkErr(vk.AllocateMemory(ctx.Device, allocInfo, nil, &memory), "allocate staging memory"); err != nil {
		return err
	}
	defer vk.FreeMemory(ctx.Device, memory, nil)
	vk.BindBufferMemory(ctx.Device, staging, memory, 0)

	var ptr unsafe.Pointer
	if err := vkErr(vk.MapMemory(ctx.Device, memory, 0, size, 0, &ptr), "map staging memory"); err != nil {
		return err
	}
	vk.Memcopy(ptr, pixels)
	vk.UnmapMemory(ctx.Device, memory)

	return pool.RunOnce(func(cb vk.CommandBuffer) {
		img.barrier(cb, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal,
			0, vk.AccessFlags(vk.AccessTransferWriteBit),
			vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
			vk.PipelineStageFlags(vk.PipelineStageTransferBit))

		region := vk.BufferImageCopy{
			ImageSubresource: vk.ImageSubresourceLayers{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LayerCount: 1,
			},
			ImageExtent: vk.Extent3D{
				Width:  img.Extent.Width,
				Height: img.Extent.Height,
				Depth:  1,
			},
		}

		vk.CmdCopyBufferToImage(cb, staging, img.Image,
			vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{region})

		img.barrier(cb, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutGeneral,
			vk.AccessFlags(vk.AccessTransferWriteBit),
			vk.AccessFlags(vk.AccessShaderReadBit|vk.AccessShaderWriteBit),
			vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			vk.PipelineStageFlags(vk.PipelineStageComputeShaderBit))
	})
}

func (img *StorageImage) barrier(cb vk.CommandBuffer, oldLayout, newLayout vk.ImageLayout,
	srcAccess, dstAccess vk.AccessFlags, srcStage, dstStage vk.PipelineStageFlags) {

	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       srcAccess,
		DstAccessMask:       dstAccess,
		OldLayout:           oldLayout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               img.Image,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}

	vk.CmdPipelineBarrier(cb, srcStage, dstStage, 0, 0, nil, 0, nil,
		1, []vk.ImageMemoryBarrier{barrier})
}

// Release destroys the view, image and memory.
func (img *StorageImage) Release() {
	if img.View != vk.NullImageView {
		vk.DestroyImageView(img.device, img.View, nil)
		img.View = vk.NullImageView
	}

	if img.Image != vk.NullImage {
		vk.DestroyImage(img.device, img.Image, nil)
		img.Image = vk.NullImage
	}

	if img.memory != vk.NullDeviceMemory {
		vk.FreeMemory(img.device, img.memory, nil)
		img.memory = vk.NullDeviceMemory
	}
}

// findMemoryType picks a memory type index matching the requirement bits
// and the requested properties.
func findMemoryType(physical vk.PhysicalDevice, typeBits uint32, properties vk.MemoryPropertyFlags) (uint32, error) {
	var memProps vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(physical, &memProps)
	memProps.Deref()

	for i := uint32(0); i < memProps.MemoryTypeCount; i++ {
		memProps.MemoryTypes[i].Deref()

		if typeBits&(1<<i) != 0 && memProps.MemoryTypes[i].PropertyFlags&properties == properties {
			return i, nil
		}
	}

	return 0, fmt.Errorf("no memory type matches bits %#x with properties %#x", typeBits, properties)
}
