// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api exposes the job service over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuGH/hlsforge/internal/api/middleware"
	"github.com/ManuGH/hlsforge/internal/health"
	"github.com/ManuGH/hlsforge/internal/jobs"
	"github.com/ManuGH/hlsforge/internal/log"
	"github.com/ManuGH/hlsforge/internal/rendition"
	"github.com/ManuGH/hlsforge/internal/version"
)

// JobService is the job manager as seen by the handlers.
type JobService interface {
	Submit(ctx context.Context, req jobs.Request) (jobs.Record, error)
	Get(ctx context.Context, id string) (jobs.Record, error)
	List(ctx context.Context, limit int) ([]jobs.Record, error)
}

// Config configures the HTTP server.
type Config struct {
	ListenAddr   string
	RateLimitRPM int
	// TracingService names server spans; empty disables HTTP tracing.
	TracingService string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	// Health backs /healthz and /readyz; nil means no component checks.
	Health *health.Manager
}

// Server is the HTTP front of the job manager.
type Server struct {
	cfg      Config
	jobs     JobService
	defaults []rendition.Rendition
	router   chi.Router

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
}

// New builds a server. defaults is the ladder reported by
// /api/v1/renditions/default.
func New(cfg Config, svc JobService, defaults []rendition.Rendition) *Server {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 30 * time.Second
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 2 * time.Minute
	}
	if cfg.Health == nil {
		cfg.Health = health.NewManager(version.Version)
	}
	s := &Server{cfg: cfg, jobs: svc, defaults: defaults}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := middleware.NewRouter(middleware.StackConfig{
		EnableMetrics:  true,
		TracingService: s.cfg.TracingService,
		EnableLogging:  true,
	})

	r.Get("/healthz", s.cfg.Health.ServeHealth)
	r.Get("/readyz", s.cfg.Health.ServeReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if s.cfg.RateLimitRPM > 0 {
			r.Use(middleware.PerMinute(s.cfg.RateLimitRPM))
		}
		r.Post("/jobs", s.handleSubmitJob)
		r.Get("/jobs", s.handleListJobs)
		r.Get("/jobs/{id}", s.handleGetJob)
		r.Get("/renditions/default", s.handleDefaultRenditions)
	})
	return r
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens on the configured address and serves until Shutdown. It
// returns nil after a graceful shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.ListenAddr, err)
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout / 2,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
	}
	s.mu.Lock()
	s.srv = srv
	s.listener = ln
	s.mu.Unlock()

	logger := log.WithComponent("api")
	logger.Info().
		Str(log.FieldEvent, "api.listening").
		Str("addr", ln.Addr().String()).
		Msg("API server listening")

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

// Addr returns the bound address once serving.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	logger := log.WithComponent("api")
	logger.Info().Str(log.FieldEvent, "api.shutdown").Msg("shutting down API server")
	return srv.Shutdown(ctx)
}
