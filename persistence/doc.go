// Package persistence stores execution graphs between engine calls.
//
// A Store keeps the structural form of a dag.NodesMap keyed by job id.
// Three backends are provided: an in-memory store for tests and single
// process use, a Redis store built on redis.TypedStore and a SQL store built
// on GORM. Component picks one from Config and manages its connection:
//
//	c := persistence.NewComponent(cfg, log, metrics)
//	if err := c.Start(ctx); err != nil {
//	    return err
//	}
//	err := persistence.SaveGraph(ctx, c.Store(), jobID, nodesMap)
//
// Loading a job that was never saved returns (nil, nil) from Store.Load
// and a NOT_FOUND error from LoadGraph.
package persistence
