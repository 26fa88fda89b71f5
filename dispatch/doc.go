// Package dispatch delivers ready nodes produced by completion propagation
// to the sinks that start them.
//
// A Bus fans each batch of ready nodes out to its subscribers. Subscribers
// register with a glob pattern matched against "<jobID>:<nodeName>":
//
//	bus := dispatch.NewBus(log, metrics)
//	bus.Subscribe("kafka", "*", dispatch.NewKafkaSink(producer, cfg.ReadyTopic, log).Handle)
//	bus.Subscribe("outputs", "*:output*", notifyOutputs)
//
//	err := bus.Publish(ctx, jobID, ready)
package dispatch
