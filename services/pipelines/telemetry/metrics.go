// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics contains the instruments recorded by the pipelines service.
//
// Description:
//
//	HTTP instruments are recorded by MetricsMiddleware; validation
//	instruments by the service after each parse. All names carry the
//	"pipelines_" prefix.
//
// Thread Safety: Safe for concurrent use after creation.
type Metrics struct {
	// --- HTTP Metrics ---

	// HTTPRequestsTotal counts HTTP requests by method, route, and status.
	HTTPRequestsTotal metric.Int64Counter

	// HTTPRequestDuration records HTTP request duration in seconds.
	HTTPRequestDuration metric.Float64Histogram

	// HTTPActiveRequests tracks in-flight HTTP requests.
	HTTPActiveRequests metric.Int64UpDownCounter

	// --- Validation Metrics ---

	// ValidationsTotal counts validations by result (dag, cyclic).
	ValidationsTotal metric.Int64Counter

	// ValidationDuration records core validation time in seconds.
	ValidationDuration metric.Float64Histogram

	// GraphNodes records the submitted node count per validation.
	GraphNodes metric.Int64Histogram

	// DroppedEdgesTotal counts edges ignored for a dangling endpoint.
	DroppedEdgesTotal metric.Int64Counter

	// --- Error Metrics ---

	// ErrorsTotal counts rejected requests by error code.
	ErrorsTotal metric.Int64Counter
}

// NewMetrics registers all instruments with meter.
//
// Inputs:
//
//	meter - The OTel meter to use for registration.
//
// Outputs:
//
//	*Metrics - The instruments.
//	error - Non-nil if any registration fails.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.HTTPRequestsTotal, err = meter.Int64Counter(
		"pipelines_http_requests_total",
		metric.WithDescription("Total HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create http_requests_total: %w", err)
	}

	m.HTTPRequestDuration, err = meter.Float64Histogram(
		"pipelines_http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create http_request_duration_seconds: %w", err)
	}

	m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"pipelines_http_active_requests",
		metric.WithDescription("In-flight HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create http_active_requests: %w", err)
	}

	m.ValidationsTotal, err = meter.Int64Counter(
		"pipelines_validations_total",
		metric.WithDescription("Pipeline validations by result"),
		metric.WithUnit("{validation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create validations_total: %w", err)
	}

	m.ValidationDuration, err = meter.Float64Histogram(
		"pipelines_validation_duration_seconds",
		metric.WithDescription("Time spent in cycle detection"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create validation_duration_seconds: %w", err)
	}

	m.GraphNodes, err = meter.Int64Histogram(
		"pipelines_graph_nodes",
		metric.WithDescription("Nodes per submitted pipeline"),
		metric.WithUnit("{node}"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000),
	)
	if err != nil {
		return nil, fmt.Errorf("create graph_nodes: %w", err)
	}

	m.DroppedEdgesTotal, err = meter.Int64Counter(
		"pipelines_dropped_edges_total",
		metric.WithDescription("Edges ignored because an endpoint does not exist"),
		metric.WithUnit("{edge}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create dropped_edges_total: %w", err)
	}

	m.ErrorsTotal, err = meter.Int64Counter(
		"pipelines_errors_total",
		metric.WithDescription("Rejected requests by error code"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create errors_total: %w", err)
	}

	return m, nil
}

// RecordValidation records the outcome of one validation. Nil-safe.
func (m *Metrics) RecordValidation(ctx context.Context, acyclic bool, nodes, dropped int, seconds float64) {
	if m == nil {
		return
	}
	result := "dag"
	if !acyclic {
		result = "cyclic"
	}
	attrs := metric.WithAttributes(attribute.String("result", result))
	m.ValidationsTotal.Add(ctx, 1, attrs)
	m.ValidationDuration.Record(ctx, seconds, attrs)
	m.GraphNodes.Record(ctx, int64(nodes))
	if dropped > 0 {
		m.DroppedEdgesTotal.Add(ctx, int64(dropped))
	}
}

// RecordError counts a rejected request. Nil-safe.
func (m *Metrics) RecordError(ctx context.Context, code string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("code", code)))
}
