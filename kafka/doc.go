// Package kafka holds the Kafka connection settings and lifecycle
// component shared by the producer and consumer subpackages.
//
// The engine reads task state events from Config.TaskTopic and writes
// ready node descriptors to Config.ReadyTopic:
//
//	kafka:
//	  enabled: true
//	  brokers: ["localhost:9092"]
//	  group_id: jobgraph
//	  task_topic: jobgraph.tasks
//	  ready_topic: jobgraph.ready
package kafka
