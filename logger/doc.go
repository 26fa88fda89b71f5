// Package logger wraps zerolog with the structured-field conventions used by
// the graph engine and its storage and dispatch adapters.
//
//	log := logger.New(&logger.Config{Level: "debug", Format: "json"}, "jobgraph")
//	log.WithComponent("dag").Debug("node ready", logger.Fields(logger.FieldNode, "green"))
package logger
