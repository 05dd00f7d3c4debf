package gpu

import (
	"fmt"
	"unsafe"
)

// AsByteSlice views a struct's memory as a byte slice, suitable for
// upload as a push-constant block. The struct must follow std430 layout
// rules (four byte aligned scalars, no Go-only field types).
func AsByteSlice[T any](value *T) []byte {
	var zeroT T

	n := unsafe.Sizeof(zeroT)
	ptr := (*byte)(unsafe.Pointer(value))

	return unsafe.Slice(ptr, n)
}

// unsafePtr returns a pointer to the blob's first byte for push constant
// upload. Callers keep the slice alive across the recording call.
func unsafePtr(blob []byte) unsafe.Pointer {
	return unsafe.Pointer(&blob[0])
}

// CheckParamsSize validates a parameter blob against the size a shader
// declared for its push-constant range. A mismatch is a programming
// contract violation and is reported as fatal.
func CheckParamsSize(blob []byte, declared uint32) error {
	if uint32(len(blob)) != declared {
		return fmt.Errorf("parameter blob is %d bytes, shader declares %d: %w",
			len(blob), declared, ErrParamsSize)
	}

	return nil
}
