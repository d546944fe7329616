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

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper: build edges from "src>dst" pairs.
func edges(pairs ...string) []Edge {
	out := make([]Edge, 0, len(pairs))
	for _, p := range pairs {
		var src, dst string
		for i := 0; i < len(p); i++ {
			if p[i] == '>' {
				src, dst = p[:i], p[i+1:]
				break
			}
		}
		out = append(out, Edge{Source: src, Target: dst})
	}
	return out
}

func TestValidate_Scenarios(t *testing.T) {
	tests := []struct {
		name  string
		nodes []string
		edges []Edge
		want  bool
	}{
		{name: "no nodes no edges", nodes: nil, edges: nil, want: true},
		{name: "empty slices", nodes: []string{}, edges: []Edge{}, want: true},
		{name: "single node", nodes: []string{"A"}, want: true},
		{name: "chain", nodes: []string{"A", "B", "C"}, edges: edges("A>B", "B>C"), want: true},
		{name: "triangle", nodes: []string{"A", "B", "C"}, edges: edges("A>B", "B>C", "C>A"), want: false},
		{name: "two cycle", nodes: []string{"A", "B"}, edges: edges("A>B", "B>A"), want: false},
		{name: "self loop", nodes: []string{"A"}, edges: edges("A>A"), want: false},
		{name: "path", nodes: []string{"a", "b", "c", "d"}, edges: edges("a>b", "b>c", "c>d"), want: true},
		{name: "path closed", nodes: []string{"a", "b", "c", "d"}, edges: edges("a>b", "b>c", "c>d", "d>a"), want: false},
		{name: "diamond", nodes: []string{"A", "B", "C", "D"}, edges: edges("A>B", "A>C", "B>D", "C>D"), want: true},
		{name: "nodes without edges", nodes: []string{"A", "B", "C"}, edges: nil, want: true},
		{name: "edges without nodes", nodes: nil, edges: edges("A>B", "B>A"), want: true},
		{
			name:  "cycle in second component",
			nodes: []string{"A", "B", "X", "Y", "Z"},
			edges: edges("A>B", "X>Y", "Y>Z", "Z>X"),
			want:  false,
		},
		{
			name:  "cross edge into finished subtree",
			nodes: []string{"A", "B", "C"},
			edges: edges("A>B", "C>B", "C>A"),
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.nodes, tt.edges))
		})
	}
}

func TestValidate_DanglingEdgesIgnored(t *testing.T) {
	nodes := []string{"A", "B", "C"}

	base := edges("A>B", "B>C")
	withDangling := append(edges("C>ghost", "ghost>A", "nowhere>void"), base...)
	assert.Equal(t, Validate(nodes, base), Validate(nodes, withDangling))

	cyclic := edges("A>B", "B>C", "C>A")
	withDangling = append(cyclic, edges("A>ghost")...)
	assert.Equal(t, Validate(nodes, cyclic), Validate(nodes, withDangling))

	// A dangling edge would close a cycle only if it were kept.
	assert.True(t, Validate([]string{"A", "B"}, edges("A>B", "B>ghost", "ghost>A")))
}

func TestValidate_DuplicateEdges(t *testing.T) {
	nodes := []string{"A", "B", "C"}
	assert.True(t, Validate(nodes, edges("A>B", "A>B", "B>C", "B>C")))
	assert.False(t, Validate(nodes, edges("A>B", "B>C", "C>A", "C>A")))
}

func TestValidate_DuplicateNodesCollapse(t *testing.T) {
	g := NewGraph([]string{"A", "A", "B"}, edges("A>B"))
	assert.Equal(t, 2, g.NodeCount())
	assert.True(t, g.Analyze().Acyclic)
}

func TestValidate_OrderInvariance(t *testing.T) {
	nodes := []string{"n0", "n1", "n2", "n3", "n4", "n5", "n6", "n7"}
	acyclic := edges("n0>n1", "n0>n2", "n1>n3", "n2>n3", "n3>n4", "n4>n5", "n5>n6", "n6>n7", "n2>n7")
	cyclic := append(edges("n7>n2"), acyclic...)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		a := append([]Edge(nil), acyclic...)
		c := append([]Edge(nil), cyclic...)
		n := append([]string(nil), nodes...)
		rng.Shuffle(len(a), func(i, j int) { a[i], a[j] = a[j], a[i] })
		rng.Shuffle(len(c), func(i, j int) { c[i], c[j] = c[j], c[i] })
		rng.Shuffle(len(n), func(i, j int) { n[i], n[j] = n[j], n[i] })

		require.True(t, Validate(n, a), "shuffle %d", i)
		require.False(t, Validate(n, c), "shuffle %d", i)
	}
}

func TestAnalyze_Diagnostics(t *testing.T) {
	t.Run("acyclic", func(t *testing.T) {
		res := Analyze([]string{"A", "B", "C"}, edges("A>B", "B>C", "C>ghost"))
		assert.True(t, res.Acyclic)
		assert.Nil(t, res.Cycle)
		assert.Equal(t, 3, res.NodeCount)
		assert.Equal(t, 2, res.EdgeCount)
		assert.Equal(t, 1, res.DroppedEdges)
	})

	t.Run("triangle", func(t *testing.T) {
		res := Analyze([]string{"A", "B", "C"}, edges("A>B", "B>C", "C>A"))
		require.False(t, res.Acyclic)
		assert.Equal(t, []string{"A", "B", "C", "A"}, res.Cycle)
	})

	t.Run("self loop", func(t *testing.T) {
		res := Analyze([]string{"A", "B"}, edges("A>B", "B>B"))
		require.False(t, res.Acyclic)
		assert.Equal(t, []string{"B", "B"}, res.Cycle)
	})

	t.Run("cycle below a tail", func(t *testing.T) {
		res := Analyze([]string{"S", "A", "B"}, edges("S>A", "A>B", "B>A"))
		require.False(t, res.Acyclic)
		assert.Equal(t, []string{"A", "B", "A"}, res.Cycle)
	})
}

func TestAnalyze_CycleIsMadeOfEdges(t *testing.T) {
	nodes := make([]string, 30)
	for i := range nodes {
		nodes[i] = fmt.Sprintf("node%d", i)
	}
	var es []Edge
	for i := 0; i < 29; i++ {
		es = append(es, Edge{Source: nodes[i], Target: nodes[i+1]})
		if i%3 == 0 && i+5 < 30 {
			es = append(es, Edge{Source: nodes[i], Target: nodes[i+5]})
		}
	}
	es = append(es, Edge{Source: nodes[20], Target: nodes[7]})

	g := NewGraph(nodes, es)
	res := g.Analyze()
	require.False(t, res.Acyclic)
	require.GreaterOrEqual(t, len(res.Cycle), 2)
	assert.Equal(t, res.Cycle[0], res.Cycle[len(res.Cycle)-1])

	for i := 0; i+1 < len(res.Cycle); i++ {
		assert.Contains(t, g.Neighbors(res.Cycle[i]), res.Cycle[i+1])
	}
}

func TestAnalyze_DeepPathNoRecursion(t *testing.T) {
	const n = 100_000
	nodes := make([]string, n)
	for i := range nodes {
		nodes[i] = fmt.Sprintf("node%d", i)
	}
	es := make([]Edge, 0, n)
	for i := 0; i+1 < n; i++ {
		es = append(es, Edge{Source: nodes[i], Target: nodes[i+1]})
	}

	assert.True(t, Validate(nodes, es))

	es = append(es, Edge{Source: nodes[n-1], Target: nodes[0]})
	res := Analyze(nodes, es)
	assert.False(t, res.Acyclic)
	assert.Len(t, res.Cycle, n+1)
}

func TestGraph_Accessors(t *testing.T) {
	g := NewGraph([]string{"A", "B", "C"}, edges("A>B", "A>C", "A>B", "B>missing"))

	assert.True(t, g.HasNode("A"))
	assert.False(t, g.HasNode("missing"))
	assert.Equal(t, []string{"B", "C", "B"}, g.Neighbors("A"))
	assert.Nil(t, g.Neighbors("C"))
	assert.Nil(t, g.Neighbors("missing"))
	assert.Equal(t, 3, g.EdgeCount())
	assert.Equal(t, 1, g.DroppedEdges())
}

func BenchmarkValidate_Layered(b *testing.B) {
	const layers, width = 50, 20
	var nodes []string
	var es []Edge
	for l := 0; l < layers; l++ {
		for w := 0; w < width; w++ {
			id := fmt.Sprintf("L%d_%d", l, w)
			nodes = append(nodes, id)
			if l > 0 {
				for p := 0; p < width; p += 4 {
					es = append(es, Edge{Source: fmt.Sprintf("L%d_%d", l-1, p), Target: id})
				}
			}
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !Validate(nodes, es) {
			b.Fatal("expected acyclic")
		}
	}
}
