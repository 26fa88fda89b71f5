// Package graph provides the directed graph store the pipeline engine is built
// on: nodes keyed by name, at most one edge per ordered (source, target) pair,
// each carrying a caller-defined value.
//
// Iteration order is deterministic. Nodes come back in insertion order and a
// node's predecessors and successors come back in the order their edges were
// added, which is what the completion propagator relies on when it orders
// aggregated parent output.
package graph
