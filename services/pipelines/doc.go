// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package pipelines serves pipeline graph validation over HTTP.
//
// A pipeline is the node/edge document produced by the visual pipeline
// editor. POST /pipelines/parse decodes it, counts its nodes and edges and
// asks package dag whether it is acyclic.
//
// # Layers
//
//	Server     http.Server lifecycle, middleware chain, /metrics
//	Handlers   gin handlers: decode, map errors to status codes
//	Service    limits, tracing, metrics around the dag core
//	dag        cycle detection (no I/O, no errors)
//
// # Usage
//
//	cfg, _ := config.Load("pipelines.yaml")
//	srv := pipelines.NewServer(cfg, pipelines.WithMetrics(metrics))
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package pipelines
