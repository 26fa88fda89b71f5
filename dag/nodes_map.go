package dag

import (
	"github.com/kbukum/jobgraph/graph"
	"github.com/kbukum/jobgraph/logger"
)

// NodesMap is the dependency graph of one job.
type NodesMap struct {
	g    *graph.Graph[*Node, EdgeValue]
	opts options
	log  *logger.Logger
}

func newNodesMap(opts ...Option) *NodesMap {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &NodesMap{
		g:    graph.New[*Node, EdgeValue](),
		opts: o,
		log:  o.log,
	}
}

// Edge describes one edge of the graph.
type Edge struct {
	Source string    `json:"source"`
	Target string    `json:"target"`
	Value  EdgeValue `json:"value"`
}

// GetNode returns the node named name, or nil.
func (m *NodesMap) GetNode(name string) *Node {
	n, _ := m.g.Node(name)
	return n
}

// AllNodes returns every node in insertion order, synthetic execution nodes
// included.
func (m *NodesMap) AllNodes() []*Node {
	names := m.g.Nodes()
	out := make([]*Node, 0, len(names))
	for _, name := range names {
		if n := m.GetNode(name); n != nil {
			out = append(out, n)
		}
	}
	return out
}

// SetNode merges patch into the node named name. It reports false when the
// node does not exist.
func (m *NodesMap) SetNode(name string, patch NodePatch) bool {
	n := m.GetNode(name)
	if n == nil {
		return false
	}
	patch.apply(n)
	return true
}

// Sources returns the entry nodes.
func (m *NodesMap) Sources() []string { return m.g.Sources() }

// Sinks returns the nodes without children.
func (m *NodesMap) Sinks() []string { return m.g.Sinks() }

// Parents returns the predecessors of name in edge insertion order.
func (m *NodesMap) Parents(name string) []string { return m.g.Predecessors(name) }

// Children returns the successors of name in edge insertion order.
func (m *NodesMap) Children(name string) []string { return m.g.Successors(name) }

// GetEdge returns the edge from source to target.
func (m *NodesMap) GetEdge(source, target string) (EdgeValue, bool) {
	return m.g.Edge(source, target)
}

// EdgeTypes returns the types of the edge from source to target, or nil.
func (m *NodesMap) EdgeTypes(source, target string) []EdgeType {
	e, _ := m.g.Edge(source, target)
	return e.Types
}

// SetEdge creates or replaces the edge from source to target.
func (m *NodesMap) SetEdge(source, target string, value EdgeValue) {
	m.g.SetEdge(source, target, value)
}

// UpdateEdge merges value into the existing edge. Non-nil types replace the
// old ones and props are merged key by key.
func (m *NodesMap) UpdateEdge(source, target string, value EdgeValue) {
	old, _ := m.g.Edge(source, target)
	if value.Types != nil {
		old.Types = value.Types
	}
	if len(value.Props) > 0 {
		props := make(map[string]any, len(old.Props)+len(value.Props))
		for k, v := range old.Props {
			props[k] = v
		}
		for k, v := range value.Props {
			props[k] = v
		}
		old.Props = props
	}
	m.g.SetEdge(source, target, old)
}

// Edges returns every edge in insertion order.
func (m *NodesMap) Edges() []Edge {
	refs := m.g.Edges()
	out := make([]Edge, 0, len(refs))
	for _, r := range refs {
		v, _ := m.g.Edge(r.V, r.W)
		out = append(out, Edge{Source: r.V, Target: r.W, Value: v})
	}
	return out
}

// task is a pointer to whichever entity owns a task id.
type task struct {
	node  *Node
	batch *Batch
}

func (t task) snapshot() Task {
	if t.batch != nil {
		return t.batch.Task()
	}
	return t.node.Task()
}

// flatTasks lists every task: batched nodes through their elements, other
// nodes as themselves.
func (m *NodesMap) flatTasks() []task {
	var out []task
	for _, n := range m.AllNodes() {
		if n.IsBatched() {
			for _, b := range n.Batch {
				out = append(out, task{node: n, batch: b})
			}
			continue
		}
		out = append(out, task{node: n})
	}
	return out
}

func (m *NodesMap) taskByID(taskID string) (task, bool) {
	if taskID == "" {
		return task{}, false
	}
	for _, t := range m.flatTasks() {
		if t.batch != nil && t.batch.TaskID == taskID {
			return t, true
		}
		if t.batch == nil && t.node.TaskID == taskID {
			return t, true
		}
	}
	return task{}, false
}
