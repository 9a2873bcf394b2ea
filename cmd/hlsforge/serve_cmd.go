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
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/hlsforge/internal/api"
	"github.com/ManuGH/hlsforge/internal/config"
	"github.com/ManuGH/hlsforge/internal/health"
	"github.com/ManuGH/hlsforge/internal/jobs"
	hflog "github.com/ManuGH/hlsforge/internal/log"
	"github.com/ManuGH/hlsforge/internal/telemetry"
	"github.com/ManuGH/hlsforge/internal/validate"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP job API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.AppConfig) (err error) {
	logger := hflog.WithComponent("daemon")

	v := validate.New()
	v.Directory("Server.OutputRoot", cfg.Server.OutputRoot, false)
	if err := v.Err(); err != nil {
		return fmt.Errorf("output root: %w", err)
	}

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.LogService,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Telemetry.Environment,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	store, err := jobs.NewStore(cfg.Server.DBPath)
	if err != nil {
		_ = tp.Shutdown(context.WithoutCancel(ctx))
		return fmt.Errorf("job store: %w", err)
	}

	tr := newTranscoder(cfg)
	mgr := jobs.NewManager(tr, store, jobs.Config{
		MaxConcurrent: cfg.Server.MaxConcurrentJobs,
		JobTimeout:    cfg.Server.JobTimeout,
		ShowLogs:      true,
		OutputRoot:    cfg.Server.OutputRoot,
	})
	if _, err := mgr.Recover(ctx); err != nil {
		_ = store.Close()
		_ = tp.Shutdown(context.WithoutCancel(ctx))
		return fmt.Errorf("recover jobs: %w", err)
	}

	hm := health.NewManager(cfg.Version)
	hm.RegisterChecker(health.NewBinaryChecker("ffmpeg", cfg.FFmpeg.Bin))
	hm.RegisterChecker(health.NewBinaryChecker("ffprobe", cfg.FFmpeg.FFprobeBin))
	if ss, ok := store.(*jobs.SqliteStore); ok {
		hm.RegisterChecker(health.NewPingChecker("job_store", ss.DB.PingContext, 0))
	}

	tracing := ""
	if tp.Enabled() {
		tracing = cfg.LogService
	}
	srv := api.New(api.Config{
		ListenAddr:     cfg.Server.ListenAddr,
		RateLimitRPM:   cfg.Server.RateLimitRPM,
		TracingService: tracing,
		Health:         hm,
	}, mgr, tr.DefaultRenditions())

	logger.Info().
		Str(hflog.FieldEvent, "daemon.start").
		Str("addr", cfg.Server.ListenAddr).
		Str("db", cfg.Server.DBPath).
		Str("output_root", cfg.Server.OutputRoot).
		Int("max_jobs", cfg.Server.MaxConcurrentJobs).
		Msg("starting hlsforge server")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Str(hflog.FieldEvent, "daemon.stop").Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return errors.Join(
			srv.Shutdown(shutdownCtx),
			mgr.Shutdown(shutdownCtx),
			store.Close(),
			tp.Shutdown(shutdownCtx),
		)
	})
	return g.Wait()
}
