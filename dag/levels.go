package dag

import "github.com/kbukum/jobgraph/logger"

// assignLevels sets every node's level to its longest distance from an
// entry node. Acyclic graphs are relaxed in topological order. Graphs with
// cycles (allowed on streaming pipelines) are leveled one strongly connected
// component at a time: a component is entered at the longest distance of its
// outside parents, and members inside a cycle take the shortest walk from
// those entry points. Nodes reachable only through a cycle keep level -1.
func (m *NodesMap) assignLevels() {
	for _, n := range m.AllNodes() {
		n.Level = -1
	}
	if order, ok := m.g.TopologicalSort(); ok {
		m.relaxLevels(order)
		return
	}
	for _, comp := range m.g.StronglyConnected() {
		m.levelComponent(comp)
	}
	for _, n := range m.AllNodes() {
		if n.Level < 0 {
			m.log.Warn("node is not reachable from any entry node", logger.Fields(logger.FieldNode, n.NodeName))
		}
	}
}

func (m *NodesMap) relaxLevels(order []string) {
	for _, name := range order {
		n := m.GetNode(name)
		if n == nil {
			continue
		}
		if len(m.Parents(name)) == 0 {
			n.Level = 0
		}
		if n.Level < 0 {
			continue
		}
		for _, child := range m.Children(name) {
			if c := m.GetNode(child); c != nil && c.Level < n.Level+1 {
				c.Level = n.Level + 1
			}
		}
	}
}

// levelComponent levels the members of one strongly connected component.
// Components before it in topological order are already leveled.
func (m *NodesMap) levelComponent(members []string) {
	in := make(map[string]bool, len(members))
	for _, name := range members {
		in[name] = true
	}

	entry := make(map[string]int)
	for _, name := range members {
		parents := m.Parents(name)
		level := -1
		if len(parents) == 0 {
			level = 0
		}
		for _, p := range parents {
			if in[p] {
				continue
			}
			if pn := m.GetNode(p); pn != nil && pn.Level >= 0 && pn.Level+1 > level {
				level = pn.Level + 1
			}
		}
		if level >= 0 {
			entry[name] = level
		}
	}

	reach := make(map[string]int, len(entry))
	for name, level := range entry {
		reach[name] = level
	}
	for changed := true; changed; {
		changed = false
		for _, name := range members {
			level, ok := reach[name]
			if !ok {
				continue
			}
			for _, child := range m.Children(name) {
				if !in[child] {
					continue
				}
				if cur, ok := reach[child]; !ok || level+1 < cur {
					reach[child] = level + 1
					changed = true
				}
			}
		}
	}

	for _, name := range members {
		n := m.GetNode(name)
		if n == nil {
			continue
		}
		if level, ok := entry[name]; ok {
			n.Level = level
		} else if level, ok := reach[name]; ok {
			n.Level = level
		}
	}
}
