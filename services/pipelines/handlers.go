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
	"errors"
	"log/slog"
	"net/http"

	"github.com/AleutianAI/AleutianPipelines/services/pipelines/middleware"
	"github.com/AleutianAI/AleutianPipelines/services/pipelines/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handlers contains the HTTP handlers for the pipelines service.
type Handlers struct {
	svc *Service
}

// NewHandlers creates handlers for the given service.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

// HandleRoot handles GET /.
func (h *Handlers) HandleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{Ping: "Pong"})
}

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: ServiceVersion,
	})
}

// HandleParse handles POST /pipelines/parse.
//
// Description:
//
//	Decodes a pipeline, returns its node and edge counts and whether it is
//	a directed acyclic graph. The dag core only runs on a fully decoded
//	pipeline.
//
// Request Body:
//
//	Pipeline
//
// Response:
//
//	200 OK: ParseResponse
//	400 Bad Request: Body is not a pipeline (INVALID_REQUEST)
//	413 Request Entity Too Large: PAYLOAD_TOO_LARGE or PIPELINE_TOO_LARGE
//	500 Internal Server Error: Unexpected failure
func (h *Handlers) HandleParse(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	ctx := c.Request.Context()
	logger := telemetry.LoggerWithTrace(ctx, slog.With("request_id", requestID, "handler", "HandleParse"))

	var req Pipeline
	if err := c.ShouldBindJSON(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			logger.Warn("Request body too large", "limit", maxBytesErr.Limit)
			h.fail(c, http.StatusRequestEntityTooLarge, "request body too large", "PAYLOAD_TOO_LARGE", requestID)
			return
		}
		logger.Warn("Invalid request body", "error", err)
		h.fail(c, http.StatusBadRequest, "Invalid request body: "+err.Error(), "INVALID_REQUEST", requestID)
		return
	}

	resp, err := h.svc.Parse(ctx, &req)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errCode := "PARSE_FAILED"

		if errors.Is(err, ErrTooManyNodes) || errors.Is(err, ErrTooManyEdges) {
			statusCode = http.StatusRequestEntityTooLarge
			errCode = "PIPELINE_TOO_LARGE"
		} else if errors.Is(err, ErrInvalidPipeline) {
			statusCode = http.StatusBadRequest
			errCode = "INVALID_REQUEST"
		}

		logger.Warn("Parse rejected", "error", err, "code", errCode)
		h.fail(c, statusCode, err.Error(), errCode, requestID)
		return
	}

	logger.Info("Pipeline parsed",
		"num_nodes", resp.NumNodes,
		"num_edges", resp.NumEdges,
		"is_dag", resp.IsDAG,
		"dropped_edges", resp.DroppedEdges)

	c.JSON(http.StatusOK, resp)
}

// fail writes an ErrorResponse and counts it.
func (h *Handlers) fail(c *gin.Context, status int, msg, code, requestID string) {
	h.svc.metrics.RecordError(c.Request.Context(), code)
	c.JSON(status, ErrorResponse{
		Error:     msg,
		Code:      code,
		RequestID: requestID,
	})
}

// getOrCreateRequestID returns the ID assigned by middleware.RequestID, or
// assigns one when the handler is mounted without it.
func getOrCreateRequestID(c *gin.Context) string {
	if id := middleware.GetRequestID(c); id != "" {
		return id
	}
	requestID := c.GetHeader(middleware.RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header(middleware.RequestIDHeader, requestID)
	return requestID
}
