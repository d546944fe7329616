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

import "errors"

// Sentinel errors for the pipelines service.
var (
	// ErrInvalidPipeline indicates the input could not be decoded into a pipeline.
	ErrInvalidPipeline = errors.New("invalid pipeline")

	// ErrTooManyNodes indicates the node list exceeds the configured limit.
	ErrTooManyNodes = errors.New("pipeline exceeds node limit")

	// ErrTooManyEdges indicates the edge list exceeds the configured limit.
	ErrTooManyEdges = errors.New("pipeline exceeds edge limit")
)
