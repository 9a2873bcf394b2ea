// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ManuGH/hlsforge/internal/config"
	hflog "github.com/ManuGH/hlsforge/internal/log"
	"github.com/ManuGH/hlsforge/internal/transcode"
	"github.com/ManuGH/hlsforge/internal/version"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "hlsforge",
		Short:         "Package video files as HLS adaptive-bitrate streams",
		SilenceUsage:  true,
		SilenceErrors: false,
		Version:       version.String(),
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file (YAML)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(
		newTranscodeCmd(opts),
		newServeCmd(opts),
		newRenditionsCmd(opts),
		newConfigCmd(opts),
		newStorageCmd(),
		newVersionCmd(),
	)
	return root
}

// loadConfig loads configuration and configures the global logger from it.
func (o *rootOptions) loadConfig() (config.AppConfig, error) {
	cfg, err := config.NewLoader(strings.TrimSpace(o.configPath), version.Version).Load()
	if err != nil {
		return cfg, err
	}
	if o.logLevel != "" {
		if _, err := zerolog.ParseLevel(o.logLevel); err != nil {
			return cfg, fmt.Errorf("invalid --log-level %q: %w", o.logLevel, err)
		}
		cfg.LogLevel = o.logLevel
	}
	hflog.Configure(hflog.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: cfg.LogService,
		Version: cfg.Version,
	})
	return cfg, nil
}

func newTranscoder(cfg config.AppConfig) *transcode.Transcoder {
	return transcode.New(transcode.Config{
		FFmpegBin:   cfg.FFmpeg.Bin,
		FFprobeBin:  cfg.FFmpeg.FFprobeBin,
		KillTimeout: cfg.FFmpeg.KillTimeout,
		Settings:    cfg.Encoder.Settings(),
		Renditions:  cfg.EffectiveRenditions(),
		RemoveDir:   cfg.Cleanup.RemoveDir,
	})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "hlsforge", version.String())
			return err
		},
	}
}
