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
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the pipelines routes with the router.
//
// Description:
//
//	Registers the editor-facing endpoints on rg. Paths are unversioned
//	because the editor posts to /pipelines/parse directly.
//
// Endpoints:
//
//	GET  /                 - Ping
//	GET  /health           - Health check
//	POST /pipelines/parse  - Count nodes/edges and check for cycles
//
// Example:
//
//	handlers := pipelines.NewHandlers(pipelines.NewService(pipelines.DefaultServiceConfig()))
//	pipelines.RegisterRoutes(router.Group(""), handlers)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	rg.GET("/", handlers.HandleRoot)
	rg.GET("/health", handlers.HandleHealth)

	p := rg.Group("/pipelines")
	{
		p.POST("/parse", handlers.HandleParse)
	}
}
