// Package dag tracks the dependency graph of a single pipeline job.
//
// A NodesMap is built from a pipeline descriptor: node inputs are parsed for
// references to other nodes, typed edges are created, the structure is
// validated and every node gets a level (its longest distance from an entry
// node). At run time the orchestrator feeds task state changes into the map
// and asks which downstream nodes became ready:
//
//	task, err := nodes.UpdateTaskState(taskID, dag.TaskState{Status: dag.StatusPtr(dag.StatusSucceed)})
//	ready := nodes.OnTaskCompleted(task)
//
// Readiness depends on the edge types between parent and child. WaitNode and
// WaitBatch edges wait for every parent to finish. WaitAny edges fire per
// batch index once all WaitAny parents finished that index.
//
// The map is not safe for concurrent use. Callers serialize access per job.
package dag
