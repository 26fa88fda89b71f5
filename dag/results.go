package dag

import apperrors "github.com/kbukum/jobgraph/errors"

// NodeResults returns the whole-node result of the node named name: an
// empty list when it was skipped, the element results when it is batched,
// its own result otherwise.
func (m *NodesMap) NodeResults(name string) (any, error) {
	n := m.GetNode(name)
	if n == nil {
		return nil, apperrors.NodeNotFound(name)
	}
	return nodeResults(n), nil
}

// ParentsResultsIndex returns, for every parent of name, the result of its
// batch element at index. Parents without such an element report nil.
func (m *NodesMap) ParentsResultsIndex(name string, index int) []ParentResult {
	parents := m.Parents(name)
	out := make([]ParentResult, 0, len(parents))
	for _, p := range parents {
		r := ParentResult{Node: p}
		if n := m.GetNode(p); n != nil {
			if b := batchAt(n, index); b != nil {
				r.Result = b.Result
			}
		}
		out = append(out, r)
	}
	return out
}

// PipelineResults returns the final results of the job: every node without
// regular children, plus nodes marked IncludeInResults. Execution nodes are
// ignored both as results and as children. Batched nodes contribute one
// entry per element.
func (m *NodesMap) PipelineResults() []NodeResult {
	var out []NodeResult
	for _, n := range m.AllNodes() {
		if n.AlgorithmExecution {
			continue
		}
		if m.hasRegularChildren(n.NodeName) && !n.IncludeInResults {
			continue
		}
		if n.IsBatched() {
			for _, b := range n.Batch {
				out = append(out, batchResultOf(n, b))
			}
			continue
		}
		out = append(out, nodeResultOf(n))
	}
	return out
}

func (m *NodesMap) hasRegularChildren(name string) bool {
	for _, c := range m.Children(name) {
		if n := m.GetNode(c); n != nil && !n.AlgorithmExecution {
			return true
		}
	}
	return false
}

// ExtractPaths returns the paths the children of name reference on it, in
// child and input order. Bare references without a path are skipped.
func (m *NodesMap) ExtractPaths(name string) []string {
	var paths []string
	for _, c := range m.Children(name) {
		child := m.GetNode(c)
		if child == nil {
			continue
		}
		for _, in := range child.Input {
			for _, ref := range m.opts.parser.ExtractNodesFromInput(in) {
				if ref.NodeName == name && ref.Path != "" {
					paths = append(paths, ref.Path)
				}
			}
		}
	}
	return paths
}
