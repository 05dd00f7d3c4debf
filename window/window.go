// Package window manages the single presentation window and its input
// state. The engine assumes one fixed-size window established at startup.
package window

import (
	vk "github.com/goki/vulkan"

	"github.com/spectral-go/ripple/gpu"
)

// Window is the engine's view of the presentation surface and its event
// source.
type Window interface {
	// InstanceExtensions, CreateSurface and FramebufferExtent satisfy
	// gpu.Presenter.
	InstanceExtensions() []string
	CreateSurface(instance vk.Instance) (vk.Surface, error)
	FramebufferExtent() gpu.Extent

	// Poll pumps the event queue and returns the input state for this
	// tick.
	Poll() InputState

	// ShouldClose reports whether the user asked to close the window.
	ShouldClose() bool

	// Terminate destroys the window and shuts the window system down.
	Terminate()
}
