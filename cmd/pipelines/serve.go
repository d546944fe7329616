// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AleutianAI/AleutianPipelines/pkg/logging"
	"github.com/AleutianAI/AleutianPipelines/services/pipelines"
	"github.com/AleutianAI/AleutianPipelines/services/pipelines/config"
	"github.com/AleutianAI/AleutianPipelines/services/pipelines/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
)

type serveOptions struct {
	port  int
	debug bool
}

func newServeCmd(configPath *string) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the pipelines HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = opts.port
			}
			if opts.debug {
				cfg.LogLevel = "debug"
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().IntVarP(&opts.port, "port", "p", 8000, "port to listen on")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "enable debug logging and gin debug mode")
	return cmd
}

func runServe(parent context.Context, cfg config.Config) error {
	logs, err := logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.LogLevel),
		JSON:    true,
		Output:  os.Stdout,
		Service: "pipelines",
		LogDir:  cfg.LogDir,
	})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logs.Close()
	logger := logs.Slog()
	slog.SetDefault(logger)

	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg.Telemetry.ServiceVersion = pipelines.ServiceVersion
	shutdownTelemetry, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	metrics, err := telemetry.NewMetrics(otel.Meter("aleutian.pipelines"))
	if err != nil {
		return fmt.Errorf("create metrics: %w", err)
	}

	logger.Info("Aleutian Pipelines",
		slog.String("version", pipelines.ServiceVersion),
		slog.Int("port", cfg.Server.Port),
		slog.String("trace_exporter", cfg.Telemetry.TraceExporter),
		slog.String("metric_exporter", cfg.Telemetry.MetricExporter),
		slog.Int("max_nodes", cfg.Limits.MaxNodes),
		slog.Int("max_edges", cfg.Limits.MaxEdges),
	)

	srv := pipelines.NewServer(cfg,
		pipelines.WithMetrics(metrics),
		pipelines.WithLogger(logger),
	)
	if err := srv.Run(ctx); err != nil {
		logger.Error("Server stopped with error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Server stopped")
	return nil
}
