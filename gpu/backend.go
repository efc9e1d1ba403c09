// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Backend is the draw-call strategy used by the renderers. It is chosen once
// when the Context is created.
type Backend uint8

const (
	// BackendAuto selects from capabilities. It is only valid as an input
	// to WithBackend and ParseBackend.
	BackendAuto Backend = iota

	// BackendIndirect issues instanced draws whose parameters come from a
	// GPU indirect buffer.
	BackendIndirect

	// BackendInstanced issues one instanced draw per partition and mesh.
	BackendInstanced

	// BackendVertexArray expands every element into its own vertices on
	// the CPU and issues plain draws.
	BackendVertexArray
)

// String returns the backend name.
func (b Backend) String() string {
	switch b {
	case BackendAuto:
		return "auto"
	case BackendIndirect:
		return "indirect"
	case BackendInstanced:
		return "instanced"
	case BackendVertexArray:
		return "vertex-array"
	default:
		return fmt.Sprintf("Backend(%d)", b)
	}
}

// ParseBackend parses the output of String.
func ParseBackend(s string) (Backend, error) {
	switch s {
	case "", "auto":
		return BackendAuto, nil
	case "indirect":
		return BackendIndirect, nil
	case "instanced":
		return BackendInstanced, nil
	case "vertex-array":
		return BackendVertexArray, nil
	}
	return BackendAuto, fmt.Errorf("gpu: unknown backend %q", s)
}

// Instanced reports whether the backend draws meshes per instance.
func (b Backend) Instanced() bool {
	return b == BackendIndirect || b == BackendInstanced
}

// SelectBackend picks the best backend the capabilities allow.
//
// Indirect draws need a non-zero first instance in the indirect arguments to
// address the selected partition. Instanced draws need one vertex buffer for
// the mesh and one for per-instance attributes.
func SelectBackend(caps Caps) Backend {
	switch {
	case caps.Features.Contains(gputypes.FeatureIndirectFirstInstance),
		caps.Downlevel&hal.DownlevelFlagsIndirectFirstInstance != 0:
		return BackendIndirect
	case caps.Limits.MaxVertexBuffers >= 2:
		return BackendInstanced
	default:
		return BackendVertexArray
	}
}
