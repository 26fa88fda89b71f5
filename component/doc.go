// Package component defines lifecycle-managed infrastructure for the
// jobgraph engine.
//
// Graph store backends, the Kafka dispatch sink and any other piece that
// must be started before the engine runs implement Component and are
// registered with a Registry, which starts them in order, stops them in
// reverse order and aggregates their health.
package component
