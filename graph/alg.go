package graph

// TopologicalSort orders the nodes with Kahn's algorithm so that every edge
// points forward. Ties keep insertion order. ok is false when the graph has
// a cycle; the returned slice then holds only the nodes that could be ordered.
func (g *Graph[N, E]) TopologicalSort() (order []string, ok bool) {
	inDegree := make(map[string]int, len(g.nodeOrder))
	for _, n := range g.nodeOrder {
		inDegree[n] = len(g.preds[n])
	}

	var queue []string
	for _, n := range g.nodeOrder {
		if inDegree[n] == 0 {
			queue = append(queue, n)
		}
	}

	order = make([]string, 0, len(g.nodeOrder))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)
		for _, dep := range g.succs[n] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	return order, len(order) == len(g.nodeOrder)
}

// IsAcyclic reports whether the graph has no directed cycle. Self loops count
// as cycles.
func (g *Graph[N, E]) IsAcyclic() bool {
	const (
		white = iota
		grey
		black
	)
	color := make(map[string]int, len(g.nodeOrder))

	type frame struct {
		node string
		next int
	}

	for _, root := range g.nodeOrder {
		if color[root] != white {
			continue
		}
		stack := []frame{{node: root}}
		color[root] = grey
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			succs := g.succs[top.node]
			if top.next == len(succs) {
				color[top.node] = black
				stack = stack[:len(stack)-1]
				continue
			}
			child := succs[top.next]
			top.next++
			switch color[child] {
			case grey:
				return false
			case white:
				color[child] = grey
				stack = append(stack, frame{node: child})
			}
		}
	}
	return true
}

// StronglyConnected returns the strongly connected components in
// topological order: no edge leads from a later component to an earlier
// one. Members keep insertion order.
func (g *Graph[N, E]) StronglyConnected() [][]string {
	var (
		index   = make(map[string]int, len(g.nodeOrder))
		low     = make(map[string]int, len(g.nodeOrder))
		onStack = make(map[string]bool, len(g.nodeOrder))
		stack   []string
		comps   [][]string
		next    int
	)

	var visit func(v string)
	visit = func(v string) {
		index[v] = next
		low[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.succs[v] {
			if _, seen := index[w]; !seen {
				visit(w)
				low[v] = min(low[v], low[w])
			} else if onStack[w] {
				low[v] = min(low[v], index[w])
			}
		}

		if low[v] != index[v] {
			return
		}
		members := make(map[string]bool)
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			members[w] = true
			if w == v {
				break
			}
		}
		comp := make([]string, 0, len(members))
		for _, n := range g.nodeOrder {
			if members[n] {
				comp = append(comp, n)
			}
		}
		comps = append(comps, comp)
	}

	for _, n := range g.nodeOrder {
		if _, seen := index[n]; !seen {
			visit(n)
		}
	}

	// Components complete sinks first.
	for i, j := 0, len(comps)-1; i < j; i, j = i+1, j-1 {
		comps[i], comps[j] = comps[j], comps[i]
	}
	return comps
}
