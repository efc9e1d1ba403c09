// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package graph

import (
	"math/rand/v2"

	"github.com/chewxy/math32"
)

// GenerateConfig describes a synthetic random graph.
type GenerateConfig struct {
	Nodes int
	Edges int

	// Spread is the half-width of the square the nodes are scattered in.
	// Defaults to 10 * sqrt(Nodes).
	Spread float32

	// DirectedRatio is the fraction of edges marked directed, in [0, 1].
	DirectedRatio float64

	Seed uint64
}

// Generate builds a Store with uniformly scattered nodes and random edges.
// The same config always yields the same graph.
func Generate(cfg GenerateConfig) *Store {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	s := NewStore()

	spread := cfg.Spread
	if spread <= 0 {
		spread = 10 * math32.Sqrt(float32(max(cfg.Nodes, 1)))
	}

	palette := []Color{
		RGBA(0x1f, 0x77, 0xb4, 0xff),
		RGBA(0xff, 0x7f, 0x0e, 0xff),
		RGBA(0x2c, 0xa0, 0x2c, 0xff),
		RGBA(0xd6, 0x27, 0x28, 0xff),
		RGBA(0x94, 0x67, 0xbd, 0xff),
	}

	for i := range cfg.Nodes {
		_ = s.AddNode(Node{
			ID:    NodeID(i),
			X:     (rng.Float32()*2 - 1) * spread,
			Y:     (rng.Float32()*2 - 1) * spread,
			Size:  2 + rng.Float32()*8,
			Color: palette[rng.IntN(len(palette))],
		})
	}
	if cfg.Nodes == 0 {
		return s
	}

	for i := range cfg.Edges {
		_ = s.AddEdge(Edge{
			ID:       EdgeID(i),
			Source:   NodeID(rng.IntN(cfg.Nodes)),
			Target:   NodeID(rng.IntN(cfg.Nodes)),
			Weight:   1 + rng.Float32()*9,
			Color:    RGBA(0x99, 0x99, 0x99, 0xff),
			Directed: rng.Float64() < cfg.DirectedRatio,
		})
	}
	return s
}
