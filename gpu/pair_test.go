package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImagePairRoles(t *testing.T) {
	a := &StorageImage{}
	b := &StorageImage{}
	pair := NewImagePair(a, b)

	assert.Same(t, a, pair.Input())
	assert.Same(t, b, pair.Output())
}

func TestImagePairSwapInvolution(t *testing.T) {
	a := &StorageImage{}
	b := &StorageImage{}
	pair := NewImagePair(a, b)

	pair.Swap()
	assert.Same(t, b, pair.Input())
	assert.Same(t, a, pair.Output())

	pair.Swap()
	assert.Same(t, a, pair.Input())
	assert.Same(t, b, pair.Output())
}

func TestImagePairImagesOrder(t *testing.T) {
	a := &StorageImage{}
	b := &StorageImage{}
	pair := NewImagePair(a, b)

	images := pair.Images()
	assert.Equal(t, []*StorageImage{a, b}, images)

	pair.Swap()
	assert.Equal(t, []*StorageImage{b, a}, pair.Images())
}
