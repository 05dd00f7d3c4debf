package window

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
	"github.com/pkg/profile"

	"github.com/spectral-go/ripple/gpu"
)

func init() {
	// glfw and the Vulkan loader both require the main thread.
	runtime.LockOSThread()
}

// Options configure window creation.
type Options struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool

	// Profile starts a CPU profile for the window's lifetime.
	Profile bool
}

func (opts Options) withDefaults() Options {
	if opts.Title == "" {
		opts.Title = "ripple"
	}

	if opts.Width == 0 {
		opts.Width = 1024
	}

	if opts.Height == 0 {
		opts.Height = 768
	}

	return opts
}

type glfwWindow struct {
	win   *glfw.Window
	prof  interface{ Stop() }
	input InputState
}

// New initializes glfw and the Vulkan loader and opens the window. The
// window is not resizable; the swapchain extent is fixed at startup. Must
// be called on the main thread.
func New(opts Options) (Window, error) {
	opts = opts.withDefaults()

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("initialize glfw: %w", err)
	}

	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("initialize vulkan loader: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	var monitor *glfw.Monitor
	width, height := opts.Width, opts.Height
	if opts.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
		mode := monitor.GetVideoMode()
		width, height = mode.Width, mode.Height
	}

	win, err := glfw.CreateWindow(width, height, opts.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}

	w := &glfwWindow{win: win}
	if opts.Profile {
		w.prof = profile.Start(profile.CPUProfile)
	}

	configureInput(win, &w.input)

	return w, nil
}

func (g *glfwWindow) InstanceExtensions() []string {
	return g.win.GetRequiredInstanceExtensions()
}

func (g *glfwWindow) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	ptr, err := g.win.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, fmt.Errorf("create window surface: %w", err)
	}

	return vk.SurfaceFromPointer(ptr), nil
}

func (g *glfwWindow) FramebufferExtent() gpu.Extent {
	width, height := g.win.GetFramebufferSize()

	return gpu.Extent{Width: uint32(width), Height: uint32(height)}
}

func (g *glfwWindow) Poll() InputState {
	g.input.nextTick()
	glfw.PollEvents()

	return g.input
}

func (g *glfwWindow) ShouldClose() bool {
	return g.win.ShouldClose()
}

func (g *glfwWindow) Terminate() {
	if g.prof != nil {
		g.prof.Stop()
	}

	g.win.Destroy()
	glfw.Terminate()
}

var glfwToKey = map[glfw.Key]Key{
	glfw.KeyEscape: KeyEscape,
	glfw.KeySpace:  KeySpace,
	glfw.KeyR:      KeyR,
	glfw.KeyP:      KeyP,
}

func configureInput(win *glfw.Window, input *InputState) {
	win.SetKeyCallback(func(_ *glfw.Window, glfwKey glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action == glfw.Repeat {
			return
		}

		key, ok := glfwToKey[glfwKey]
		if !ok {
			return
		}

		switch action {
		case glfw.Press:
			slog.Debug("key pressed", "key", key.String())
			input.Keys.press(key)
		case glfw.Release:
			input.Keys.release(key)
		}
	})

	win.SetMouseButtonCallback(func(_ *glfw.Window, btn glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		button := MouseButton(btn)

		switch action {
		case glfw.Press:
			input.Mouse.press(button)
		case glfw.Release:
			input.Mouse.release(button)
		}
	})

	win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		input.Mouse.position(float32(x), float32(y))
	})
}
