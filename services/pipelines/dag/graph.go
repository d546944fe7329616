// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package dag

// Edge is a directed connection from Source to Target.
type Edge struct {
	Source string
	Target string
}

// Graph is the request-scoped view of a pipeline used for cycle detection.
//
// Description:
//
//	Node identifiers are interned to dense indices so that colors and
//	adjacency live in slices rather than maps. Duplicate identifiers collapse
//	to one node. Adjacency only ever references interned nodes.
//
// Thread Safety:
//
//	Immutable after construction; safe for concurrent reads.
type Graph struct {
	ids     []string
	index   map[string]int
	adj     [][]int
	edges   int
	dropped int
}

// NewGraph builds a Graph from node identifiers and edges.
//
// Description:
//
//	Interns nodes in first-seen order, then appends each surviving edge's
//	target to its source's neighbor list in input order. Edges with an
//	unknown source or target are counted as dropped and otherwise ignored.
//
// Inputs:
//
//	nodes - Node identifiers. May be empty or contain duplicates.
//	edges - Directed edges. May be empty or reference unknown nodes.
//
// Outputs:
//
//	*Graph - The constructed graph. Never nil.
func NewGraph(nodes []string, edges []Edge) *Graph {
	g := &Graph{
		ids:   make([]string, 0, len(nodes)),
		index: make(map[string]int, len(nodes)),
	}

	for _, id := range nodes {
		if _, seen := g.index[id]; seen {
			continue
		}
		g.index[id] = len(g.ids)
		g.ids = append(g.ids, id)
	}

	g.adj = make([][]int, len(g.ids))
	for _, e := range edges {
		src, okSrc := g.index[e.Source]
		dst, okDst := g.index[e.Target]
		if !okSrc || !okDst {
			g.dropped++
			continue
		}
		g.adj[src] = append(g.adj[src], dst)
		g.edges++
	}

	return g
}

// NodeCount returns the number of distinct nodes.
func (g *Graph) NodeCount() int {
	return len(g.ids)
}

// EdgeCount returns the number of edges that survived filtering.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// DroppedEdges returns the number of edges discarded for a dangling endpoint.
func (g *Graph) DroppedEdges() int {
	return g.dropped
}

// HasNode reports whether id is a node of the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.index[id]
	return ok
}

// Neighbors returns the targets of id's surviving edges in insertion order.
// Returns nil for unknown nodes.
func (g *Graph) Neighbors(id string) []string {
	i, ok := g.index[id]
	if !ok || len(g.adj[i]) == 0 {
		return nil
	}
	out := make([]string, len(g.adj[i]))
	for j, n := range g.adj[i] {
		out[j] = g.ids[n]
	}
	return out
}
