package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spectral-go/ripple/gpu"
	"github.com/spectral-go/ripple/window"
)

// Simulation supplies the per-frame parameter blobs and reacts to input.
// Implementations read and mutate the FrameState the scheduler owns.
type Simulation interface {
	// HandleInput folds this tick's input into the frame state.
	HandleInput(state *FrameState, input window.InputState)

	// ComputeParams builds the parameter blob for the compute dispatch.
	ComputeParams(state *FrameState) []byte

	// DrawParams builds the parameter blob for the draw call.
	DrawParams(state *FrameState) []byte
}

// RunConfig wires a frame loop together.
type RunConfig struct {
	Window    window.Window
	Context   *gpu.Context
	Render    *gpu.RenderStage
	Scheduler *Scheduler
	Sim       Simulation

	// MinFrameTime gates how often a frame runs; zero disables pacing.
	MinFrameTime time.Duration
}

// Run drives frames until the window closes or a fatal error occurs.
// Stale-surface errors trigger a swapchain rebuild and the frame is
// retried; every other frame error aborts the loop. In-flight GPU work is
// drained before returning.
func Run(cfg RunConfig) error {
	times := &FrameTimes{}
	state := cfg.Scheduler.State()

	defer func() {
		cfg.Scheduler.Drain()
		cfg.Context.WaitIdle()
	}()

	lastFrame := time.Now()

	for !cfg.Window.ShouldClose() {
		if cfg.MinFrameTime > 0 {
			if wait := cfg.MinFrameTime - time.Since(lastFrame); wait > 0 {
				time.Sleep(wait)
			}
		}
		lastFrame = time.Now()

		input := cfg.Window.Poll()
		if input.Keys.JustPressed[window.KeyEscape] {
			break
		}

		cfg.Sim.HandleInput(state, input)

		err := cfg.Scheduler.RunFrame(cfg.Sim.ComputeParams(state), cfg.Sim.DrawParams(state))
		if errors.Is(err, gpu.ErrSurfaceOutdated) {
			slog.Info("presentation surface outdated, rebuilding swapchain")

			if err := cfg.Render.RebuildSurface(cfg.Window.FramebufferExtent()); err != nil {
				return fmt.Errorf("rebuild surface: %w", err)
			}

			continue
		}
		if err != nil {
			return err
		}

		if times.Tick() {
			slog.Debug("frame stats",
				"frame", times.FrameCount,
				"fps", times.FPS(),
				"maxFrameTime", times.MaxDuration)
		}
	}

	return nil
}
