package gpu

import (
	"sync/atomic"

	vk "github.com/goki/vulkan"
)

var tokenSeq atomic.Uint64

// Token represents the asynchronous completion of zero or more GPU
// submissions. Stages consume tokens as wait dependencies and produce new
// ones for the work they submit. A token may be consumed at most once; the
// scheduler threads each frame's tokens through a linear single-writer
// chain, so double consumption indicates a logic defect.
type Token struct {
	sems     []vk.Semaphore
	stages   []vk.PipelineStageFlags
	seq      uint64
	consumed bool
}

// Now returns an already-completed token. It carries no semaphores, so
// submissions waiting on it start immediately. The frame loop seeds its
// token chain with one of these.
func Now() *Token {
	return &Token{seq: tokenSeq.Add(1)}
}

// newSignalToken wraps semaphores that a just-issued submission will signal.
func newSignalToken(sems []vk.Semaphore, stage vk.PipelineStageFlags) *Token {
	stages := make([]vk.PipelineStageFlags, len(sems))
	for i := range stages {
		stages[i] = stage
	}

	return &Token{sems: sems, stages: stages, seq: tokenSeq.Add(1)}
}

// Seq returns the token's creation sequence number. Later-created tokens
// have larger sequence numbers.
func (t *Token) Seq() uint64 {
	return t.seq
}

// Empty reports whether the token gates nothing, i.e. it represents work
// that is already complete.
func (t *Token) Empty() bool {
	return len(t.sems) == 0
}

// Consumed reports whether a submission already took this token as a wait
// dependency.
func (t *Token) Consumed() bool {
	return t.consumed
}

// Join merges two tokens into one that completes when both have completed.
// Both inputs are consumed.
func Join(a, b *Token) (*Token, error) {
	sa, pa, err := a.take()
	if err != nil {
		return nil, err
	}

	sb, pb, err := b.take()
	if err != nil {
		return nil, err
	}

	return &Token{
		sems:   append(sa, sb...),
		stages: append(pa, pb...),
		seq:    tokenSeq.Add(1),
	}, nil
}

// take consumes the token, returning its semaphores and wait stages.
// A second take fails with ErrTokenConsumed.
func (t *Token) take() ([]vk.Semaphore, []vk.PipelineStageFlags, error) {
	if t.consumed {
		return nil, nil, ErrTokenConsumed
	}

	t.consumed = true
	return t.sems, t.stages, nil
}

// semaphores returns the token's semaphores for deferred destruction
// without consuming it.
func (t *Token) semaphores() []vk.Semaphore {
	return t.sems
}

func newSemaphore(device vk.Device) (vk.Semaphore, error) {
	createInfo := &vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}

	var sem vk.Semaphore
	if err := vkErr(vk.CreateSemaphore(device, createInfo, nil, &sem), "create semaphore"); err != nil {
		return vk.NullSemaphore, err
	}

	return sem, nil
}
