// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package dag decides whether a pipeline graph is a Directed Acyclic Graph.
//
// The package is transport-agnostic: callers hand it a list of node
// identifiers and a list of directed edges and receive a verdict. It knows
// nothing about HTTP, JSON or the opaque node payloads carried by the
// pipeline editor.
//
// # Lenience
//
// Edges whose source or target is not a known node are dropped before the
// walk. They never count toward a cycle and never produce an error; the
// number dropped is reported in Result.DroppedEdges.
//
// # Algorithm
//
// White/gray/black depth-first search over an explicit stack of
// (node, next-neighbor) frames. A gray neighbor is a back edge and ends the
// whole check. Time is O(V+E), auxiliary space O(V), and there is no
// recursion, so graph depth is bounded only by memory.
//
// # Thread Safety
//
// Validate and Analyze allocate all state per call and are safe for
// concurrent use. A *Graph is immutable after NewGraph returns.
package dag
