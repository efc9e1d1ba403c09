// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"

	"github.com/gogpu/graphview/gpu"
	"github.com/gogpu/graphview/render"
	"github.com/spf13/cobra"
)

func newShadersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shaders",
		Short: "Compile the node and edge shaders to SPIR-V",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, s := range render.Shaders() {
				words, err := gpu.CompileWGSL(s.Source)
				if err != nil {
					return fmt.Errorf("shader %s: %w", s.Name, err)
				}
				fmt.Fprintf(out, "%s: ok (%d words)\n", s.Name, len(words))
			}
			return nil
		},
	}
}
