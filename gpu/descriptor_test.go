package gpu

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageImageWritesOrder(t *testing.T) {
	views := make([]vk.ImageView, 3)

	writes, err := storageImageWrites(vk.NullDescriptorSet, views, 3)
	require.NoError(t, err)
	require.Len(t, writes, 3)

	for i, w := range writes {
		assert.Equal(t, uint32(i), w.DstBinding)
		assert.Equal(t, vk.DescriptorTypeStorageImage, w.DescriptorType)
		assert.Equal(t, uint32(1), w.DescriptorCount)
		assert.Equal(t, vk.ImageLayoutGeneral, w.PImageInfo[0].ImageLayout)
	}
}

func TestStorageImageWritesCardinality(t *testing.T) {
	_, err := storageImageWrites(vk.NullDescriptorSet, make([]vk.ImageView, 2), 3)
	assert.ErrorIs(t, err, ErrNoImageDescriptor)

	_, err = storageImageWrites(vk.NullDescriptorSet, make([]vk.ImageView, 2), 1)
	assert.ErrorIs(t, err, ErrNoImageDescriptor)

	_, err = storageImageWrites(vk.NullDescriptorSet, nil, 1)
	assert.ErrorIs(t, err, ErrNoImageDescriptor)
}

func TestSamplerWrites(t *testing.T) {
	writes, err := samplerWrites(vk.NullDescriptorSet, make([]vk.ImageView, 2), vk.NullSampler, 2)
	require.NoError(t, err)
	require.Len(t, writes, 2)

	for i, w := range writes {
		assert.Equal(t, uint32(i), w.DstBinding)
		assert.Equal(t, vk.DescriptorTypeCombinedImageSampler, w.DescriptorType)
	}

	_, err = samplerWrites(vk.NullDescriptorSet, make([]vk.ImageView, 2), vk.NullSampler, 1)
	assert.ErrorIs(t, err, ErrNoImageDescriptor)
}
