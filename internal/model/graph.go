package model

import "sort"

// EdgeKind tells what constraint an edge was derived from.
type EdgeKind string

const (
	EdgeForeignKey EdgeKind = "foreign_key"
	EdgeSynonym    EdgeKind = "synonym"
)

// RelationshipEdge is one directed link in the relationship graph, derived
// from a foreign key or a synonym. Resolved is false when the target falls
// outside the retained object set; such edges are kept and rendered
// distinctly, never dropped.
type RelationshipEdge struct {
	Source   Identifier
	Target   Identifier
	Via      string
	Kind     EdgeKind
	Resolved bool
}

// Graph is the bidirectional relationship index over a snapshot. Forward
// and backward views are symmetric by construction: every edge appears in
// its source's outgoing set and its target's incoming set.
type Graph struct {
	edges    []RelationshipEdge
	outgoing map[string][]int
	incoming map[string][]int
}

// NewGraph indexes the given edges. Edges are ordered by source key, then
// constraint name, then target key, for stable diff-friendly output.
func NewGraph(edges []RelationshipEdge) *Graph {
	sorted := make([]RelationshipEdge, len(edges))
	copy(sorted, edges)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Source.Key() != b.Source.Key() {
			return a.Source.Key() < b.Source.Key()
		}
		if a.Via != b.Via {
			return a.Via < b.Via
		}
		return a.Target.Key() < b.Target.Key()
	})

	g := &Graph{
		edges:    sorted,
		outgoing: make(map[string][]int),
		incoming: make(map[string][]int),
	}
	for i, e := range sorted {
		g.outgoing[e.Source.Key()] = append(g.outgoing[e.Source.Key()], i)
		g.incoming[e.Target.Key()] = append(g.incoming[e.Target.Key()], i)
	}
	return g
}

// Edges returns all edges in canonical order.
func (g *Graph) Edges() []RelationshipEdge { return g.edges }

// Outgoing returns the edges where id is the source, in canonical order.
func (g *Graph) Outgoing(id Identifier) []RelationshipEdge {
	return g.pick(g.outgoing[id.Key()])
}

// Incoming returns the edges where id is the target, in canonical order.
func (g *Graph) Incoming(id Identifier) []RelationshipEdge {
	return g.pick(g.incoming[id.Key()])
}

func (g *Graph) pick(idx []int) []RelationshipEdge {
	if len(idx) == 0 {
		return nil
	}
	out := make([]RelationshipEdge, len(idx))
	for i, j := range idx {
		out[i] = g.edges[j]
	}
	return out
}
