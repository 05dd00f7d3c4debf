package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewShaderRejectsBadBytecode(t *testing.T) {
	_, err := NewShader(nil, nil, ShaderContract{})
	assert.Error(t, err)

	// SPIR-V is a stream of 32 bit words
	_, err = NewShader(nil, []byte{1, 2, 3}, ShaderContract{})
	assert.Error(t, err)
}

func TestSliceUint32(t *testing.T) {
	words := sliceUint32([]byte{0x03, 0x02, 0x23, 0x07, 0, 0, 1, 0})
	assert.Equal(t, []uint32{0x07230203, 0x00010000}, words)
}
