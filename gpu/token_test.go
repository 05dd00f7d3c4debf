package gpu

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNowIsEmpty(t *testing.T) {
	tok := Now()
	assert.True(t, tok.Empty())
	assert.False(t, tok.Consumed())
}

func TestTokenSeqMonotonic(t *testing.T) {
	a := Now()
	b := Now()
	c := newSignalToken([]vk.Semaphore{vk.NullSemaphore}, vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit))

	assert.Less(t, a.Seq(), b.Seq())
	assert.Less(t, b.Seq(), c.Seq())
}

func TestTokenConsumeOnce(t *testing.T) {
	tok := Now()

	_, _, err := tok.take()
	require.NoError(t, err)
	assert.True(t, tok.Consumed())

	_, _, err = tok.take()
	assert.ErrorIs(t, err, ErrTokenConsumed)
}

func TestJoinConsumesBoth(t *testing.T) {
	a := newSignalToken([]vk.Semaphore{vk.NullSemaphore}, vk.PipelineStageFlags(vk.PipelineStageComputeShaderBit))
	b := newSignalToken([]vk.Semaphore{vk.NullSemaphore}, vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit))

	joined, err := Join(a, b)
	require.NoError(t, err)

	assert.True(t, a.Consumed())
	assert.True(t, b.Consumed())
	assert.False(t, joined.Empty())
	assert.Len(t, joined.semaphores(), 2)
	assert.Greater(t, joined.Seq(), b.Seq())
}

func TestJoinConsumedInput(t *testing.T) {
	a := Now()
	_, _, err := a.take()
	require.NoError(t, err)

	_, err = Join(a, Now())
	assert.ErrorIs(t, err, ErrTokenConsumed)
}
