package gpu

import (
	"fmt"
	"os"
	"unsafe"

	vk "github.com/goki/vulkan"
)

// ShaderContract declares what a shader expects from its caller: how many
// storage images bind at descriptor set 0, and the size of its push
// constant parameter block. Stages validate frame inputs against it.
type ShaderContract struct {
	Slot0Images uint32
	ParamsSize  uint32
}

// Shader wraps a SPIR-V module together with its contract.
type Shader struct {
	Module   vk.ShaderModule
	Contract ShaderContract

	device vk.Device
}

// NewShader creates a shader module from SPIR-V bytecode.
func NewShader(device vk.Device, code []byte, contract ShaderContract) (*Shader, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, fmt.Errorf("spir-v bytecode length %d is not a positive multiple of 4", len(code))
	}

	createInfo := &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code)),
		PCode:    sliceUint32(code),
	}

	var module vk.ShaderModule
	if err := vkErr(vk.CreateShaderModule(device, createInfo, nil, &module), "create shader module"); err != nil {
		return nil, err
	}

	return &Shader{Module: module, Contract: contract, device: device}, nil
}

// LoadShader reads compiled SPIR-V from disk and creates a module from it.
func LoadShader(device vk.Device, path string, contract ShaderContract) (*Shader, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shader %q: %w", path, err)
	}

	shader, err := NewShader(device, code, contract)
	if err != nil {
		return nil, fmt.Errorf("shader %q: %w", path, err)
	}

	return shader, nil
}

// Release destroys the shader module.
func (s *Shader) Release() {
	if s.Module != vk.NullShaderModule {
		vk.DestroyShaderModule(s.device, s.Module, nil)
		s.Module = vk.NullShaderModule
	}
}

// sliceUint32 reinterprets SPIR-V bytes as the word stream Vulkan expects.
func sliceUint32(data []byte) []uint32 {
	return unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), len(data)/4)
}
