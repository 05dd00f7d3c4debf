// Package gpu owns the Vulkan side of the engine: device and swapchain
// lifecycle, storage images, compute and render stages, and the completion
// tokens that order their submissions.
package gpu

import (
	"fmt"
	"log/slog"

	vk "github.com/goki/vulkan"
)

// Presenter abstracts the window system's Vulkan hooks. The window package
// implements it over glfw; tests can stub it out.
type Presenter interface {
	// InstanceExtensions returns the instance extensions the window system
	// requires for presentation.
	InstanceExtensions() []string

	// CreateSurface creates a presentation surface on the given instance.
	CreateSurface(instance vk.Instance) (vk.Surface, error)

	// FramebufferExtent returns the surface size in pixels.
	FramebufferExtent() Extent
}

// vkErr converts a non-success result into a wrapped error describing the
// call that produced it.
func vkErr(result vk.Result, what string) error {
	if result == vk.Success {
		return nil
	}

	return fmt.Errorf("%s: %w", what, vk.Error(result))
}

// terminated null-terminates strings for the C side of the Vulkan API.
func terminated(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v + "\x00"
	}

	return out
}

func createInstance(appName string, extensions []string) (vk.Instance, error) {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   appName + "\x00",
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PEngineName:        "ripple\x00",
		EngineVersion:      vk.MakeVersion(1, 0, 0),
		ApiVersion:         vk.MakeVersion(1, 1, 0),
	}

	createInfo := &vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: terminated(extensions),
	}

	var instance vk.Instance
	if err := vkErr(vk.CreateInstance(createInfo, nil, &instance), "create instance"); err != nil {
		return nil, err
	}

	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, fmt.Errorf("init instance: %w", err)
	}

	return instance, nil
}

// DeviceInfo describes the chosen physical device for diagnostics.
type DeviceInfo struct {
	Name     string
	Index    int
	ApiMajor uint32
	ApiMinor uint32
}

func (d DeviceInfo) String() string {
	return fmt.Sprintf("%s (device %d, api %d.%d)", d.Name, d.Index, d.ApiMajor, d.ApiMinor)
}

// pickPhysicalDevice enumerates physical devices and selects the first one
// exposing a usable queue family pair for the surface.
func pickPhysicalDevice(instance vk.Instance, surface vk.Surface) (vk.PhysicalDevice, DeviceInfo, QueueSelection, error) {
	var count uint32
	if err := vkErr(vk.EnumeratePhysicalDevices(instance, &count, nil), "enumerate devices"); err != nil {
		return nil, DeviceInfo{}, QueueSelection{}, err
	}

	if count == 0 {
		return nil, DeviceInfo{}, QueueSelection{}, ErrNoDevice
	}

	devices := make([]vk.PhysicalDevice, count)
	if err := vkErr(vk.EnumeratePhysicalDevices(instance, &count, devices), "enumerate devices"); err != nil {
		return nil, DeviceInfo{}, QueueSelection{}, err
	}

	for i, pd := range devices {
		families := readQueueFamilies(pd, surface)

		sel, err := SelectQueueFamilies(families)
		if err != nil {
			slog.Debug("skipping physical device", "index", i, "reason", err)
			continue
		}

		var props vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(pd, &props)
		props.Deref()

		info := DeviceInfo{
			Name:     vk.ToString(props.DeviceName[:]),
			Index:    i,
			ApiMajor: props.ApiVersion >> 22,
			ApiMinor: (props.ApiVersion >> 12) & 0x3ff,
		}

		return pd, info, sel, nil
	}

	return nil, DeviceInfo{}, QueueSelection{}, ErrNoQueueFamily
}
