// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"github.com/spf13/cobra"

	"github.com/ManuGH/hlsforge/internal/rendition"
)

func newRenditionsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "renditions",
		Short: "Print the effective default rendition ladder as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			return rendition.Encode(cmd.OutOrStdout(), cfg.EffectiveRenditions())
		},
	}
}
