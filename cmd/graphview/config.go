// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"github.com/gogpu/graphview/config"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print a configuration file",
		Long: `Print the built-in configuration as TOML, or with --from the given file
merged over the defaults and validated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()
			if from != "" {
				var err error
				if cfg, err = config.Load(from); err != nil {
					return err
				}
			}
			return config.Write(cmd.OutOrStdout(), cfg)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "configuration file to normalize")
	return cmd
}
