package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsByteSlice(t *testing.T) {
	type block struct {
		A uint32
		B float32
	}

	v := block{A: 0x01020304, B: 1}
	bytes := AsByteSlice(&v)

	require.Len(t, bytes, 8)

	// writing through the view mutates the struct
	bytes[0] = 0
	bytes[1] = 0
	bytes[2] = 0
	bytes[3] = 0
	assert.Equal(t, uint32(0), v.A)
}

func TestCheckParamsSize(t *testing.T) {
	assert.NoError(t, CheckParamsSize(make([]byte, 32), 32))
	assert.NoError(t, CheckParamsSize(nil, 0))

	err := CheckParamsSize(make([]byte, 16), 32)
	assert.ErrorIs(t, err, ErrParamsSize)

	err = CheckParamsSize(make([]byte, 33), 32)
	assert.ErrorIs(t, err, ErrParamsSize)
}
