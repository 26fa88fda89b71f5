package graph

// Options mirrors the graphlib options block of the structural form.
type Options struct {
	Directed   bool `json:"directed"`
	Multigraph bool `json:"multigraph"`
	Compound   bool `json:"compound"`
}

// NodeEntry is one node of the structural form.
type NodeEntry[N any] struct {
	V     string `json:"v"`
	Value N      `json:"value"`
}

// EdgeEntry is one edge of the structural form.
type EdgeEntry[E any] struct {
	V     string `json:"v"`
	W     string `json:"w"`
	Value E      `json:"value"`
}

// Structure is the plain, storage-friendly representation of a graph. Its
// JSON layout matches graphlib's json.write output so graphs written by
// other platform components can be read back.
type Structure[N, E any] struct {
	Options Options        `json:"options"`
	Nodes   []NodeEntry[N] `json:"nodes"`
	Edges   []EdgeEntry[E] `json:"edges"`
}

// Write converts the graph to its structural form. Values are copied by
// assignment, so pointer values stay shared with the graph.
func Write[N, E any](g *Graph[N, E]) *Structure[N, E] {
	s := &Structure[N, E]{
		Options: Options{Directed: true},
		Nodes:   make([]NodeEntry[N], 0, len(g.nodeOrder)),
		Edges:   make([]EdgeEntry[E], 0, len(g.edgeOrder)),
	}
	for _, n := range g.nodeOrder {
		s.Nodes = append(s.Nodes, NodeEntry[N]{V: n, Value: g.nodes[n]})
	}
	for _, k := range g.edgeOrder {
		s.Edges = append(s.Edges, EdgeEntry[E]{V: k.v, W: k.w, Value: g.edges[k]})
	}
	return s
}

// Read rebuilds a graph from its structural form, preserving node and edge
// order.
func Read[N, E any](s *Structure[N, E]) *Graph[N, E] {
	g := New[N, E]()
	if s == nil {
		return g
	}
	for _, n := range s.Nodes {
		g.SetNode(n.V, n.Value)
	}
	for _, e := range s.Edges {
		g.SetEdge(e.V, e.W, e.Value)
	}
	return g
}
