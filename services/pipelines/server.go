// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pipelines

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/AleutianAI/AleutianPipelines/services/pipelines/config"
	"github.com/AleutianAI/AleutianPipelines/services/pipelines/middleware"
	"github.com/AleutianAI/AleutianPipelines/services/pipelines/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/sync/errgroup"
)

// Server owns the router and HTTP lifecycle of the pipelines service.
//
// # Description
//
// NewServer wires the middleware chain and routes; Run listens until its
// context is cancelled and then drains in-flight requests within the
// configured shutdown timeout.
//
// # Thread Safety
//
// Run and Serve block and should be called once per Server.
type Server struct {
	cfg     config.Config
	router  *gin.Engine
	svc     *Service
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithMetrics records HTTP and validation metrics on m.
func WithMetrics(m *telemetry.Metrics) ServerOption {
	return func(s *Server) { s.metrics = m }
}

// WithLogger sets the server logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer builds a Server from configuration.
//
// # Middleware Order
//
//	Recovery ─► [Logger] ─► RequestID ─► otelgin ─► Metrics ─► CORS ─► RateLimit ─► BodyLimit
//
// gin.Logger is only attached when LogLevel is debug. GET /metrics is
// mounted when the Prometheus exporter is active.
func NewServer(cfg config.Config, opts ...ServerOption) *Server {
	s := &Server{
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.svc = NewService(ServiceConfig{
		MaxNodes: cfg.Limits.MaxNodes,
		MaxEdges: cfg.Limits.MaxEdges,
	}, WithServiceMetrics(s.metrics), WithServiceLogger(s.logger))

	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.LogLevel == "debug" {
		router.Use(gin.Logger())
	}
	router.Use(
		middleware.RequestID(),
		otelgin.Middleware(cfg.Telemetry.ServiceName),
		telemetry.MetricsMiddleware(s.metrics),
		middleware.CORS(cfg.CORS),
		middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
		middleware.BodyLimit(cfg.Server.MaxBodyBytes),
	)

	if cfg.Telemetry.MetricExporter == "prometheus" {
		if h := telemetry.MetricsHandler(); h != nil {
			router.GET("/metrics", gin.WrapH(h))
		}
	}

	RegisterRoutes(router.Group(""), NewHandlers(s.svc))
	s.router = router
	return s
}

// Router returns the configured gin engine, primarily for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run listens on the configured port and serves until ctx is cancelled.
//
// # Outputs
//
//   - error: Non-nil if the listener cannot be opened or serving fails.
//     A clean shutdown after cancellation returns nil.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: s.cfg.Server.ReadTimeout,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
		IdleTimeout:       s.cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("Starting pipelines server", slog.String("address", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("Shutting down pipelines server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
