// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package middleware provides gin middleware for the pipelines service.
//
// # Chain
//
//	Request
//	   │
//	   ▼
//	RequestID ─► CORS ─► RateLimit ─► BodyLimit ─► Handler
//
// Rejections write the same {"error", "code"} body shape the handlers use.
package middleware

import (
	"net/http"
	"strings"

	"github.com/AleutianAI/AleutianPipelines/services/pipelines/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS creates the cross-origin middleware from configuration.
//
// # Description
//
// An origin list containing "*" admits every origin. Because browsers
// refuse a literal "*" alongside credentials, admitted origins are echoed
// back instead, which matches what a wildcard with credentials intends.
//
// # Inputs
//
//   - cfg: CORS policy. AllowOrigins must not be empty.
//
// # Outputs
//
//   - gin.HandlerFunc: Middleware ready for router.Use.
//
// # Limitations
//
//   - An "*" in AllowHeaders is sent literally; it is not expanded to the
//     preflight's requested headers.
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	cc := cors.Config{
		AllowMethods:     normalizeMethods(cfg.AllowMethods),
		AllowHeaders:     cfg.AllowHeaders,
		AllowCredentials: cfg.AllowCredentials,
		ExposeHeaders:    []string{RequestIDHeader},
		MaxAge:           cfg.MaxAge,
	}

	if containsWildcard(cfg.AllowOrigins) {
		cc.AllowOriginFunc = func(string) bool { return true }
	} else {
		cc.AllowOrigins = cfg.AllowOrigins
	}

	return cors.New(cc)
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

// normalizeMethods expands "*" to every standard method.
func normalizeMethods(methods []string) []string {
	for _, m := range methods {
		if m == "*" {
			return []string{
				http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
				http.MethodDelete, http.MethodHead, http.MethodOptions,
			}
		}
	}
	out := make([]string, len(methods))
	for i, m := range methods {
		out[i] = strings.ToUpper(m)
	}
	return out
}
