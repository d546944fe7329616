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

// color marks a node's DFS state.
type color uint8

const (
	white color = iota // unvisited
	gray               // on the active path
	black              // fully explored
)

// dfsFrame is one entry of the explicit DFS stack.
type dfsFrame struct {
	node int
	next int // index into adj[node] of the next neighbor to inspect
}

// Result is the outcome of analyzing a graph.
type Result struct {
	// Acyclic is true iff no directed cycle exists among surviving edges.
	Acyclic bool

	// Cycle is the first cycle found, starting and ending at the node the
	// back edge re-entered, e.g. [A B C A]. Nil when Acyclic.
	Cycle []string

	// NodeCount is the number of distinct nodes.
	NodeCount int

	// EdgeCount is the number of edges that survived filtering.
	EdgeCount int

	// DroppedEdges is the number of edges discarded for a dangling endpoint.
	DroppedEdges int
}

// Validate reports whether the graph formed by nodes and edges is acyclic.
//
// Description:
//
//	Edges referencing a node outside nodes are ignored. An empty node set or
//	an empty edge list is vacuously acyclic.
//
// Inputs:
//
//	nodes - Node identifiers.
//	edges - Directed edges.
//
// Outputs:
//
//	bool - True if no directed cycle exists.
//
// Example:
//
//	ok := dag.Validate([]string{"A", "B"}, []dag.Edge{{Source: "A", Target: "B"}})
//	// ok == true
//
// Thread Safety: Safe for concurrent use.
func Validate(nodes []string, edges []Edge) bool {
	return NewGraph(nodes, edges).Analyze().Acyclic
}

// Analyze is Validate with diagnostics.
//
// Thread Safety: Safe for concurrent use.
func Analyze(nodes []string, edges []Edge) Result {
	return NewGraph(nodes, edges).Analyze()
}

// Analyze runs three-color DFS over the graph.
//
// Description:
//
//	Every white node, in first-seen order, seeds a walk. Each step inspects
//	one neighbor of the frame on top of the stack: a gray neighbor closes a
//	cycle and ends the analysis, a white neighbor is pushed, a black neighbor
//	is skipped. A frame with no neighbors left turns its node black and pops.
//
// Outputs:
//
//	Result - Verdict plus counts; Cycle is set when a back edge is found.
//
// Thread Safety: Safe for concurrent use; all traversal state is local.
func (g *Graph) Analyze() Result {
	res := Result{
		Acyclic:      true,
		NodeCount:    len(g.ids),
		EdgeCount:    g.edges,
		DroppedEdges: g.dropped,
	}
	if g.edges == 0 {
		return res
	}

	colors := make([]color, len(g.ids))
	var stack []dfsFrame

	for root := range g.ids {
		if colors[root] != white {
			continue
		}
		colors[root] = gray
		stack = append(stack[:0], dfsFrame{node: root})

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			neighbors := g.adj[top.node]
			if top.next == len(neighbors) {
				colors[top.node] = black
				stack = stack[:len(stack)-1]
				continue
			}

			next := neighbors[top.next]
			top.next++

			switch colors[next] {
			case gray:
				res.Acyclic = false
				res.Cycle = g.cycleFrom(stack, next)
				return res
			case white:
				colors[next] = gray
				stack = append(stack, dfsFrame{node: next})
			}
		}
	}

	return res
}

// cycleFrom extracts the cycle closed by a back edge to entry.
// Gray nodes are exactly the nodes on the stack, so entry is always found.
func (g *Graph) cycleFrom(stack []dfsFrame, entry int) []string {
	start := 0
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].node == entry {
			start = i
			break
		}
	}

	cycle := make([]string, 0, len(stack)-start+1)
	for _, f := range stack[start:] {
		cycle = append(cycle, g.ids[f.node])
	}
	return append(cycle, g.ids[entry])
}
