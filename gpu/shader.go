// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// ErrEmptyShader is returned when a shader source is empty.
var ErrEmptyShader = errors.New("gpu: shader source is empty")

// CompileWGSL compiles WGSL source to SPIR-V words.
func CompileWGSL(source string) ([]uint32, error) {
	if source == "" {
		return nil, ErrEmptyShader
	}
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("gpu: compile shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("gpu: compile shader: SPIR-V length %d is not word aligned", len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words.
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}

// ShaderModule creates a shader module from WGSL source. The device
// compiles the source itself, so this is cheap to call before a real
// adapter is known.
func (c *Context) ShaderModule(label, source string) (hal.ShaderModule, error) {
	if c.destroyed {
		return nil, ErrContextDestroyed
	}
	if source == "" {
		return nil, fmt.Errorf("%w: %q", ErrEmptyShader, label)
	}
	m, err := c.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{WGSL: source},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create shader module %q: %w", label, err)
	}
	return m, nil
}

// ShaderModuleSPIRV compiles WGSL on the CPU and creates the module from the
// resulting SPIR-V, for drivers that only accept SPIR-V.
func (c *Context) ShaderModuleSPIRV(label, source string) (hal.ShaderModule, error) {
	if c.destroyed {
		return nil, ErrContextDestroyed
	}
	code, err := CompileWGSL(source)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", label, err)
	}
	m, err := c.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: code},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create shader module %q: %w", label, err)
	}
	return m, nil
}
