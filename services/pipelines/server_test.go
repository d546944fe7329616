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
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AleutianAI/AleutianPipelines/services/pipelines/config"
	"github.com/AleutianAI/AleutianPipelines/services/pipelines/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.Telemetry.TraceExporter = "none"
	cfg.Telemetry.MetricExporter = "none"
	cfg.Server.ShutdownTimeout = 2 * time.Second
	return cfg
}

const triangleBody = `{
	"nodes": [
		{"id": "A", "type": "t", "position": {"x": 0, "y": 0}, "data": {}},
		{"id": "B", "type": "t", "position": {"x": 0, "y": 0}, "data": {}},
		{"id": "C", "type": "t", "position": {"x": 0, "y": 0}, "data": {}}
	],
	"edges": [
		{"id": "1", "source": "A", "target": "B"},
		{"id": "2", "source": "B", "target": "C"},
		{"id": "3", "source": "C", "target": "A"}
	]
}`

func TestServer_ServeAndShutdown(t *testing.T) {
	srv := NewServer(testConfig())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String()
	resp, err := http.Post(url+"/pipelines/parse", "application/json", strings.NewReader(triangleBody))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"num_nodes":3,"num_edges":3,"is_dag":false,"cycle":["A","B","C","A"],"dropped_edges":0}`, string(body))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServer_CORSPreflight(t *testing.T) {
	router := NewServer(testConfig()).Router()

	req := httptest.NewRequest(http.MethodOptions, "/pipelines/parse", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestServer_CORSOnSimpleRequest(t *testing.T) {
	router := NewServer(testConfig()).Router()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.JSONEq(t, `{"Ping":"Pong"}`, w.Body.String())
}

func TestServer_NodeLimitFromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Limits.MaxNodes = 2
	router := NewServer(cfg).Router()

	req := httptest.NewRequest(http.MethodPost, "/pipelines/parse", strings.NewReader(triangleBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "PIPELINE_TOO_LARGE")
}

func TestServer_NoMetricsRouteWithoutPrometheus(t *testing.T) {
	router := NewServer(testConfig()).Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_PrometheusMetrics(t *testing.T) {
	cfg := testConfig()
	cfg.Telemetry.MetricExporter = "prometheus"

	shutdown, err := telemetry.Init(context.Background(), cfg.Telemetry)
	require.NoError(t, err)
	defer shutdown(context.Background())

	metrics, err := telemetry.NewMetrics(otel.Meter(tracerName))
	require.NoError(t, err)
	router := NewServer(cfg, WithMetrics(metrics)).Router()

	req := httptest.NewRequest(http.MethodPost, "/pipelines/parse", strings.NewReader(triangleBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
	assert.Contains(t, w.Body.String(), "pipelines_validations_total")
}
