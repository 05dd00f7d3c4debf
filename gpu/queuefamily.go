package gpu

import (
	vk "github.com/goki/vulkan"
)

// QueueFamily describes one queue family of a physical device, reduced to
// the capabilities the selection policy cares about.
type QueueFamily struct {
	Index    uint32
	Count    uint32
	Graphics bool
	Compute  bool
	Present  bool
}

// QueueSelection is the result of SelectQueueFamilies. Graphics and Compute
// name family indices; when they refer to the same family with more than one
// queue, GraphicsQueue and ComputeQueue select independent queue objects
// within it, so graphics and compute submissions never contend for a single
// queue.
type QueueSelection struct {
	Graphics      uint32
	Compute       uint32
	GraphicsQueue uint32
	ComputeQueue  uint32
}

// SameFamily reports whether graphics and compute share a queue family.
func (s QueueSelection) SameFamily() bool {
	return s.Graphics == s.Compute
}

// SelectQueueFamilies picks the graphics and compute queue families.
//
// The graphics family must support both graphics operations and presentation
// to the surface. For compute, the graphics family is preferred if it also
// supports compute and exposes more than one queue; otherwise the first
// other family supporting compute is used. Queue selection is fixed for the
// lifetime of the context.
func SelectQueueFamilies(families []QueueFamily) (QueueSelection, error) {
	var sel QueueSelection

	graphics := -1
	for _, qf := range families {
		if qf.Graphics && qf.Present {
			graphics = int(qf.Index)
			sel.Graphics = qf.Index

			if qf.Compute && qf.Count > 1 {
				sel.Compute = qf.Index
				sel.ComputeQueue = 1
				return sel, nil
			}

			break
		}
	}

	if graphics < 0 {
		return QueueSelection{}, ErrNoQueueFamily
	}

	for _, qf := range families {
		if qf.Compute && qf.Index != uint32(graphics) {
			sel.Compute = qf.Index
			return sel, nil
		}
	}

	return QueueSelection{}, ErrNoQueueFamily
}

// readQueueFamilies queries the device's queue families and their
// presentation support for the given surface.
func readQueueFamilies(pd vk.PhysicalDevice, surface vk.Surface) []QueueFamily {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, nil)
	if count == 0 {
		return nil
	}

	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, props)

	families := make([]QueueFamily, count)
	for i := range props {
		props[i].Deref()

		var present vk.Bool32
		vk.GetPhysicalDeviceSurfaceSupport(pd, uint32(i), surface, &present)

		families[i] = QueueFamily{
			Index:    uint32(i),
			Count:    props[i].QueueCount,
			Graphics: props[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0,
			Compute:  props[i].QueueFlags&vk.QueueFlags(vk.QueueComputeBit) != 0,
			Present:  present == vk.True,
		}
	}

	return families
}
