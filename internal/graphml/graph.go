// Package graphml encodes and decodes the GraphML documents produced by
// the analysis backend and computes summary statistics over them.
//
// The dialect is the backend's: a graphml root in the
// graphdrawing.org namespace, string-typed keys for node id, name and
// type plus edge type, and a single graph element. Statistics treat the
// plant topology as undirected, matching how the backend analyzes it.
package graphml

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Node is one plant component.
type Node struct {
	ID   string
	Name string
	Type string
}

// Edge is one connection between components.
type Edge struct {
	Source string
	Target string
	Type   string
}

// Document is a decoded plant graph.
type Document struct {
	Nodes []Node
	Edges []Edge
}

// Stats summarizes a plant graph.
type Stats struct {
	// Components is the number of plant components (nodes).
	Components int
	// Connections is the number of distinct connections (edges).
	Connections int
	// Density is 2E / N(N-1), zero for graphs with fewer than two nodes.
	Density float64
	// Subsystems is the number of connected components.
	Subsystems int
	// Isolated is the number of components with no connections.
	Isolated int
}

// Stats computes summary statistics for the document. Edges referencing
// unknown components and self loops are ignored, and duplicate edges
// collapse, so Connections can be smaller than len(d.Edges).
func (d *Document) Stats() Stats {
	g := simple.NewUndirectedGraph()

	ids := make(map[string]int64, len(d.Nodes))
	for _, n := range d.Nodes {
		if _, ok := ids[n.ID]; ok {
			continue
		}
		gn := g.NewNode()
		g.AddNode(gn)
		ids[n.ID] = gn.ID()
	}

	for _, e := range d.Edges {
		from, okF := ids[e.Source]
		to, okT := ids[e.Target]
		if !okF || !okT || from == to {
			continue
		}
		g.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
	}

	n := g.Nodes().Len()
	m := g.Edges().Len()

	var density float64
	if n > 1 {
		density = float64(2*m) / float64(n*(n-1))
	}

	isolated := 0
	nodes := g.Nodes()
	for nodes.Next() {
		if g.From(nodes.Node().ID()).Len() == 0 {
			isolated++
		}
	}

	subsystems := 0
	if n > 0 {
		subsystems = len(topo.ConnectedComponents(g))
	}

	return Stats{
		Components:  n,
		Connections: m,
		Density:     density,
		Subsystems:  subsystems,
		Isolated:    isolated,
	}
}

// TypeCounts tallies components by type. Untyped components count
// under "unknown".
func (d *Document) TypeCounts() map[string]int {
	counts := make(map[string]int)
	for _, n := range d.Nodes {
		t := n.Type
		if t == "" {
			t = "unknown"
		}
		counts[t]++
	}
	return counts
}

// Neighbors returns the IDs of components directly connected to id.
func (d *Document) Neighbors(id string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(other string) {
		if other != id && !seen[other] {
			seen[other] = true
			out = append(out, other)
		}
	}
	for _, e := range d.Edges {
		switch id {
		case e.Source:
			add(e.Target)
		case e.Target:
			add(e.Source)
		}
	}
	return out
}
