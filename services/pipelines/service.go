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
	"fmt"
	"log/slog"
	"time"

	"github.com/AleutianAI/AleutianPipelines/services/pipelines/dag"
	"github.com/AleutianAI/AleutianPipelines/services/pipelines/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the tracer used for service spans.
const tracerName = "aleutian.pipelines"

// ServiceConfig bounds the pipelines the service will analyze.
type ServiceConfig struct {
	// MaxNodes is the largest accepted node list.
	MaxNodes int

	// MaxEdges is the largest accepted edge list.
	MaxEdges int
}

// DefaultServiceConfig returns limits generous enough for any editor graph.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxNodes: 10_000,
		MaxEdges: 50_000,
	}
}

// Service validates pipelines.
//
// Thread Safety:
//
//	Safe for concurrent use. Service holds no per-request state.
type Service struct {
	cfg     ServiceConfig
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceMetrics records validation metrics on m.
func WithServiceMetrics(m *telemetry.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithServiceLogger sets the service logger. Defaults to slog.Default().
func WithServiceLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a Service.
func NewService(cfg ServiceConfig, opts ...ServiceOption) *Service {
	s := &Service{
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Parse counts a pipeline's nodes and edges and determines whether it is a DAG.
//
// Description:
//
//	Enforces size limits, then hands node IDs and edge endpoints to the dag
//	core. Counts are the raw list lengths. Edges with an unknown endpoint do
//	not affect the verdict and are reported in DroppedEdges.
//
// Inputs:
//
//	ctx - Context for tracing.
//	p - A decoded pipeline. Must not be nil.
//
// Outputs:
//
//	*ParseResponse - Counts and verdict.
//	error - ErrInvalidPipeline, ErrTooManyNodes or ErrTooManyEdges (wrapped).
//
// Thread Safety: Safe for concurrent use.
func (s *Service) Parse(ctx context.Context, p *Pipeline) (*ParseResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "Service.Parse")
	defer span.End()

	if p == nil {
		err := fmt.Errorf("%w: nil pipeline", ErrInvalidPipeline)
		telemetry.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("pipeline.nodes", len(p.Nodes)),
		attribute.Int("pipeline.edges", len(p.Edges)),
	)

	if s.cfg.MaxNodes > 0 && len(p.Nodes) > s.cfg.MaxNodes {
		err := fmt.Errorf("%w: %d nodes, limit %d", ErrTooManyNodes, len(p.Nodes), s.cfg.MaxNodes)
		telemetry.RecordError(span, err)
		return nil, err
	}
	if s.cfg.MaxEdges > 0 && len(p.Edges) > s.cfg.MaxEdges {
		err := fmt.Errorf("%w: %d edges, limit %d", ErrTooManyEdges, len(p.Edges), s.cfg.MaxEdges)
		telemetry.RecordError(span, err)
		return nil, err
	}

	ids := make([]string, len(p.Nodes))
	for i, n := range p.Nodes {
		ids[i] = value(n.ID)
	}
	edges := make([]dag.Edge, len(p.Edges))
	for i, e := range p.Edges {
		edges[i] = dag.Edge{Source: value(e.Source), Target: value(e.Target)}
	}

	start := time.Now()
	result := dag.Analyze(ids, edges)
	elapsed := time.Since(start)

	s.metrics.RecordValidation(ctx, result.Acyclic, len(p.Nodes), result.DroppedEdges, elapsed.Seconds())

	span.AddEvent("dag.analyzed", trace.WithAttributes(
		attribute.Bool("pipeline.is_dag", result.Acyclic),
		attribute.Int("pipeline.dropped_edges", result.DroppedEdges),
		attribute.Int("pipeline.cycle_length", len(result.Cycle)),
	))
	telemetry.SetSpanOK(span)

	if result.DroppedEdges > 0 {
		telemetry.LoggerWithTrace(ctx, s.logger).Debug("Ignored edges with unknown endpoints",
			slog.Int("dropped_edges", result.DroppedEdges))
	}

	return &ParseResponse{
		NumNodes:     len(p.Nodes),
		NumEdges:     len(p.Edges),
		IsDAG:        result.Acyclic,
		Cycle:        result.Cycle,
		DroppedEdges: result.DroppedEdges,
	}, nil
}
