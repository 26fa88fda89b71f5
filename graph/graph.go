package graph

// Graph is a directed graph with node values of type N and edge values of
// type E. The zero value is not usable; call New.
type Graph[N, E any] struct {
	nodes     map[string]N
	nodeOrder []string

	edges     map[edgeKey]E
	edgeOrder []edgeKey

	preds map[string][]string
	succs map[string][]string
}

type edgeKey struct {
	v, w string
}

// New creates an empty graph.
func New[N, E any]() *Graph[N, E] {
	return &Graph[N, E]{
		nodes: make(map[string]N),
		edges: make(map[edgeKey]E),
		preds: make(map[string][]string),
		succs: make(map[string][]string),
	}
}

// SetNode inserts a node or replaces the value of an existing one.
func (g *Graph[N, E]) SetNode(name string, value N) {
	if _, ok := g.nodes[name]; !ok {
		g.nodeOrder = append(g.nodeOrder, name)
	}
	g.nodes[name] = value
}

// Node returns the value stored for name.
func (g *Graph[N, E]) Node(name string) (N, bool) {
	v, ok := g.nodes[name]
	return v, ok
}

// HasNode reports whether name is part of the graph.
func (g *Graph[N, E]) HasNode(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// Nodes returns all node names in insertion order.
func (g *Graph[N, E]) Nodes() []string {
	out := make([]string, len(g.nodeOrder))
	copy(out, g.nodeOrder)
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph[N, E]) NodeCount() int { return len(g.nodeOrder) }

// SetEdge inserts an edge from v to w or replaces its value. Missing
// endpoints are created with a zero value, as graphlib does.
func (g *Graph[N, E]) SetEdge(v, w string, value E) {
	for _, n := range []string{v, w} {
		if !g.HasNode(n) {
			var zero N
			g.SetNode(n, zero)
		}
	}
	k := edgeKey{v, w}
	if _, ok := g.edges[k]; !ok {
		g.edgeOrder = append(g.edgeOrder, k)
		g.succs[v] = append(g.succs[v], w)
		g.preds[w] = append(g.preds[w], v)
	}
	g.edges[k] = value
}

// Edge returns the value of the edge from v to w.
func (g *Graph[N, E]) Edge(v, w string) (E, bool) {
	val, ok := g.edges[edgeKey{v, w}]
	return val, ok
}

// HasEdge reports whether an edge from v to w exists.
func (g *Graph[N, E]) HasEdge(v, w string) bool {
	_, ok := g.edges[edgeKey{v, w}]
	return ok
}

// EdgeRef identifies an edge by its endpoints.
type EdgeRef struct {
	V string
	W string
}

// Edges returns all edges in insertion order.
func (g *Graph[N, E]) Edges() []EdgeRef {
	out := make([]EdgeRef, len(g.edgeOrder))
	for i, k := range g.edgeOrder {
		out[i] = EdgeRef{V: k.v, W: k.w}
	}
	return out
}

// EdgeCount returns the number of edges.
func (g *Graph[N, E]) EdgeCount() int { return len(g.edgeOrder) }

// Predecessors returns the sources of edges pointing at name, or nil if the
// node does not exist.
func (g *Graph[N, E]) Predecessors(name string) []string {
	if !g.HasNode(name) {
		return nil
	}
	out := make([]string, len(g.preds[name]))
	copy(out, g.preds[name])
	return out
}

// Successors returns the targets of edges leaving name, or nil if the node
// does not exist.
func (g *Graph[N, E]) Successors(name string) []string {
	if !g.HasNode(name) {
		return nil
	}
	out := make([]string, len(g.succs[name]))
	copy(out, g.succs[name])
	return out
}

// Sources returns nodes with in-degree 0 in insertion order.
func (g *Graph[N, E]) Sources() []string {
	var out []string
	for _, n := range g.nodeOrder {
		if len(g.preds[n]) == 0 {
			out = append(out, n)
		}
	}
	return out
}

// Sinks returns nodes with out-degree 0 in insertion order.
func (g *Graph[N, E]) Sinks() []string {
	var out []string
	for _, n := range g.nodeOrder {
		if len(g.succs[n]) == 0 {
			out = append(out, n)
		}
	}
	return out
}
