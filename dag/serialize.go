package dag

import (
	"encoding/json"

	apperrors "github.com/kbukum/jobgraph/errors"
	"github.com/kbukum/jobgraph/graph"
)

// Structure is the storable form of a NodesMap.
type Structure = graph.Structure[*Node, EdgeValue]

// NodeEntry is one node of a Structure.
type NodeEntry = graph.NodeEntry[*Node]

// Graph returns the structural form of the map. Node values are shared with
// the map; encode the result before mutating the map again.
func (m *NodesMap) Graph() *Structure {
	return graph.Write(m.g)
}

// SetGraph replaces the map's graph with s.
func (m *NodesMap) SetGraph(s *Structure) {
	g := graph.Read(s)
	for _, name := range g.Nodes() {
		if n, _ := g.Node(name); n != nil && n.Batch == nil {
			n.Batch = []*Batch{}
		}
	}
	m.g = g
}

// FromGraph restores a map from its structural form.
func FromGraph(s *Structure, opts ...Option) *NodesMap {
	m := newNodesMap(opts...)
	m.SetGraph(s)
	return m
}

// MarshalGraph encodes the map's structural form as JSON.
func (m *NodesMap) MarshalGraph() ([]byte, error) {
	data, err := json.Marshal(m.Graph())
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return data, nil
}

// UnmarshalGraph decodes a JSON structural form into a map.
func UnmarshalGraph(data []byte, opts ...Option) (*NodesMap, error) {
	var s Structure
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, apperrors.InvalidInput("graph", err.Error()).WithCause(err)
	}
	return FromGraph(&s, opts...), nil
}
