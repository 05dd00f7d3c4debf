// Package engine drives the per-frame loop: one compute dispatch advancing
// the simulation, one draw presenting it, chained through completion
// tokens and a ping-pong image pair.
package engine

import (
	"errors"
	"fmt"

	"github.com/spectral-go/ripple/gpu"
)

// Dispatcher submits one compute pass. Implemented by gpu.ComputeStage.
type Dispatcher interface {
	Dispatch(images []*gpu.StorageImage, groups [3]uint32, params []byte, dependsOn *gpu.Token) (*gpu.Token, error)
}

// Drawer submits one draw plus present. Implemented by gpu.RenderStage.
type Drawer interface {
	Draw(images []*gpu.StorageImage, params []byte, dependsOn *gpu.Token) (*gpu.Token, error)
}

// FrameState is the mutable per-frame state owned by the scheduler. Input
// handlers and the simulation mutate it between frames; nothing else
// writes it while a frame is being recorded.
type FrameState struct {
	// Frame counts completed frames.
	Frame uint64

	// Init is set for the first frame only, telling the compute shader
	// to seed its state. The scheduler clears it after the first
	// completed frame.
	Init bool

	// CursorX and CursorY are the cursor position in window pixels.
	CursorX float32
	CursorY float32
}

// Scheduler owns the frame token chain and the image pair's role tags. It
// is the only component that swaps roles or holds the running token.
type Scheduler struct {
	compute Dispatcher
	render  Drawer
	pair    *gpu.ImagePair
	sync    *gpu.FrameSync
	groups  [3]uint32

	state FrameState

	// token gates the next compute submission on the previous frame's
	// render completion.
	token *gpu.Token
}

// NewScheduler seeds the token chain with an already-completed token, so
// the first frame's compute starts immediately.
func NewScheduler(compute Dispatcher, render Drawer, pair *gpu.ImagePair, sync *gpu.FrameSync, groups [3]uint32) *Scheduler {
	return &Scheduler{
		compute: compute,
		render:  render,
		pair:    pair,
		sync:    sync,
		groups:  groups,
		state:   FrameState{Init: true},
		token:   gpu.Now(),
	}
}

// State returns the frame state for input handlers and parameter builders
// to read and mutate between frames.
func (s *Scheduler) State() *FrameState {
	return &s.state
}

// RunFrame executes one frame: dispatch compute on the (input, output)
// pair waiting on the previous frame's render token, draw the output image
// waiting on the compute token, then swap the roles and clear the init
// flag. On a recoverable error the roles are left unswapped and the token
// chain is repaired so the frame can be retried after a surface rebuild.
func (s *Scheduler) RunFrame(computeParams, drawParams []byte) error {
	if s.sync != nil {
		if err := s.sync.Begin(); err != nil {
			return err
		}
		defer s.sync.End()
	}

	computeDone, err := s.compute.Dispatch(s.pair.Images(), s.groups, computeParams, s.token)
	if err != nil {
		s.repairChain(s.token, err)
		return fmt.Errorf("compute dispatch: %w", err)
	}
	s.token = computeDone

	renderDone, err := s.render.Draw([]*gpu.StorageImage{s.pair.Output()}, drawParams, computeDone)
	if err != nil {
		s.repairChain(computeDone, err)
		return fmt.Errorf("render draw: %w", err)
	}
	s.token = renderDone

	s.pair.Swap()
	s.state.Frame++
	s.state.Init = false

	return nil
}

// repairChain re-seeds the token chain after a failed stage call. If the
// stage failed before consuming its wait token, that token keeps gating
// the retry; otherwise the chain restarts from an already-completed token.
func (s *Scheduler) repairChain(last *gpu.Token, err error) {
	if errors.Is(err, gpu.ErrSurfaceOutdated) && !last.Consumed() {
		s.token = last
		return
	}

	s.token = gpu.Now()
}

// Drain consumes the running token at shutdown, scheduling its semaphores
// for destruction once in-flight work completes.
func (s *Scheduler) Drain() {
	if s.sync != nil && s.token != nil {
		s.sync.RetireToken(s.token)
		s.token = nil
	}
}
