// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	hflog "github.com/ManuGH/hlsforge/internal/log"
	"github.com/ManuGH/hlsforge/internal/rendition"
	"github.com/ManuGH/hlsforge/internal/transcode"
)

func newTranscodeCmd(opts *rootOptions) *cobra.Command {
	var (
		renditionsFile string
		showLogs       bool
		timeout        time.Duration
	)
	cmd := &cobra.Command{
		Use:   "transcode <input> <output-dir>",
		Short: "Transcode one file into an HLS ABR package",
		Long: `Transcode encodes <input> into one HLS variant per rendition inside
<output-dir> and writes the master playlist index.m3u8 next to them.
The path of the master playlist is printed on success.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			var renditions []rendition.Rendition
			if renditionsFile != "" {
				renditions, err = rendition.LoadFile(renditionsFile)
				if err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			tr := newTranscoder(cfg)
			input, output := args[0], args[1]
			manifest, err := tr.Transcode(ctx, input, output, transcode.Options{
				Renditions: renditions,
				ShowLogs:   showLogs,
			})
			if errors.Is(err, transcode.ErrCanceled) {
				report := tr.Cleanup(output)
				logger := hflog.WithComponent("cli")
				logger.Warn().
					Str(hflog.FieldEvent, "cli.canceled_cleanup").
					Str(hflog.FieldOutputDir, output).
					Int("removed", report.Removed).
					Msg("removed partial output of canceled transcode")
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), manifest)
			return err
		},
	}
	cmd.Flags().StringVar(&renditionsFile, "renditions", "", "YAML file with the rendition ladder (default: built-in ladder)")
	cmd.Flags().BoolVar(&showLogs, "show-logs", true, "log encoder progress and diagnostics")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "abort the transcode after this long (0 disables)")
	return cmd
}
