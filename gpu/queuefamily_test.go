package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectQueueFamiliesSplit(t *testing.T) {
	families := []QueueFamily{
		{Index: 0, Count: 1, Graphics: true, Present: true},
		{Index: 1, Count: 2, Compute: true},
	}

	sel, err := SelectQueueFamilies(families)
	require.NoError(t, err)

	assert.Equal(t, uint32(0), sel.Graphics)
	assert.Equal(t, uint32(1), sel.Compute)
	assert.False(t, sel.SameFamily())
	assert.Equal(t, uint32(0), sel.GraphicsQueue)
	assert.Equal(t, uint32(0), sel.ComputeQueue)
}

func TestSelectQueueFamiliesShared(t *testing.T) {
	families := []QueueFamily{
		{Index: 0, Count: 2, Graphics: true, Compute: true, Present: true},
	}

	sel, err := SelectQueueFamilies(families)
	require.NoError(t, err)

	assert.Equal(t, uint32(0), sel.Graphics)
	assert.Equal(t, uint32(0), sel.Compute)
	assert.True(t, sel.SameFamily())

	// distinct queue objects within the family
	assert.Equal(t, uint32(0), sel.GraphicsQueue)
	assert.Equal(t, uint32(1), sel.ComputeQueue)
}

func TestSelectQueueFamiliesPrefersOtherFamilyWhenSingleQueue(t *testing.T) {
	// the graphics family supports compute but has only one queue, so a
	// dedicated compute family wins
	families := []QueueFamily{
		{Index: 0, Count: 1, Graphics: true, Compute: true, Present: true},
		{Index: 1, Count: 1, Compute: true},
	}

	sel, err := SelectQueueFamilies(families)
	require.NoError(t, err)

	assert.Equal(t, uint32(0), sel.Graphics)
	assert.Equal(t, uint32(1), sel.Compute)
}

func TestSelectQueueFamiliesNoGraphics(t *testing.T) {
	families := []QueueFamily{
		{Index: 0, Count: 1, Compute: true},
		{Index: 1, Count: 1, Graphics: true}, // not presentable
	}

	_, err := SelectQueueFamilies(families)
	assert.ErrorIs(t, err, ErrNoQueueFamily)
}

func TestSelectQueueFamiliesNoCompute(t *testing.T) {
	families := []QueueFamily{
		{Index: 0, Count: 1, Graphics: true, Present: true},
	}

	_, err := SelectQueueFamilies(families)
	assert.ErrorIs(t, err, ErrNoQueueFamily)
}

func TestSelectQueueFamiliesEmpty(t *testing.T) {
	_, err := SelectQueueFamilies(nil)
	assert.ErrorIs(t, err, ErrNoQueueFamily)
}
