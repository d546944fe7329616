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

// ServiceVersion is the pipelines service version.
const ServiceVersion = "0.1.0"

// =============================================================================
// Request Types
// =============================================================================

// Pipeline is the graph document submitted by the pipeline editor.
type Pipeline struct {
	Nodes []Node `json:"nodes" yaml:"nodes" binding:"required,dive"`
	Edges []Edge `json:"edges" yaml:"edges" binding:"required,dive"`
}

// Node is one editor node. Only ID matters to validation; Type, Position
// and Data are opaque and passed through untouched.
//
// String fields are pointers so that "required" rejects a missing or null
// field while still accepting "".
type Node struct {
	ID       *string        `json:"id" yaml:"id" binding:"required"`
	Type     *string        `json:"type" yaml:"type" binding:"required"`
	Position map[string]any `json:"position" yaml:"position" binding:"required"`
	Data     map[string]any `json:"data" yaml:"data" binding:"required"`
}

// Edge connects Source to Target. ID is opaque.
type Edge struct {
	ID     *string `json:"id" yaml:"id" binding:"required"`
	Source *string `json:"source" yaml:"source" binding:"required"`
	Target *string `json:"target" yaml:"target" binding:"required"`
}

// value returns *p, or "" for a nil pointer.
func value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// =============================================================================
// Response Types
// =============================================================================

// ParseResponse is returned by POST /pipelines/parse.
type ParseResponse struct {
	// NumNodes is the length of the submitted node list.
	NumNodes int `json:"num_nodes"`

	// NumEdges is the length of the submitted edge list.
	NumEdges int `json:"num_edges"`

	// IsDAG is true when the graph has no directed cycle.
	IsDAG bool `json:"is_dag"`

	// Cycle lists one offending cycle, first node repeated at the end.
	Cycle []string `json:"cycle,omitempty"`

	// DroppedEdges counts edges ignored because an endpoint is not a node.
	DroppedEdges int `json:"dropped_edges"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// PingResponse is returned by GET /.
type PingResponse struct {
	Ping string `json:"Ping"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
