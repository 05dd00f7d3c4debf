package gpu

import "errors"

// Startup failures. All of these are fatal: they mean the platform cannot
// satisfy the program's minimum requirements and there is no recovery path.
var (
	// ErrNoDevice means no Vulkan-capable physical device was found.
	ErrNoDevice = errors.New("no gpu device available")

	// ErrNoQueueFamily means no queue family satisfied the selection
	// policy (graphics+present, or compute).
	ErrNoQueueFamily = errors.New("no suitable queue family found")
)

// Per-frame contract failures. These indicate a logic defect in the caller
// and are never recovered from.
var (
	// ErrNoImageDescriptor is returned when a stage is asked to bind
	// images but its shader declares no image bindings in slot 0.
	ErrNoImageDescriptor = errors.New("shader has no image descriptor")

	// ErrParamsSize is returned when a parameter blob does not match the
	// push constant range declared by the pipeline.
	ErrParamsSize = errors.New("parameter blob size mismatch")

	// ErrTokenConsumed is returned when a completion token is passed to a
	// second dependent submission. A token may be consumed exactly once.
	ErrTokenConsumed = errors.New("completion token already consumed")
)

// ErrSurfaceOutdated is the one recoverable per-frame failure: the
// presentation surface no longer matches the swapchain (vk.ErrorOutOfDate
// on acquire or present). The caller should rebuild the swapchain and
// retry the frame.
var ErrSurfaceOutdated = errors.New("presentation surface outdated")
