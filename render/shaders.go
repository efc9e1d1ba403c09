// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import _ "embed"

//go:embed shaders/node.wgsl
var nodeShaderSource string

//go:embed shaders/edge.wgsl
var edgeShaderSource string

// Shader is a named WGSL source compiled into the renderers.
type Shader struct {
	Name   string
	Source string
}

// Shaders returns the WGSL programs used by the renderers, for offline
// validation.
func Shaders() []Shader {
	return []Shader{
		{Name: "node", Source: nodeShaderSource},
		{Name: "edge", Source: edgeShaderSource},
	}
}
