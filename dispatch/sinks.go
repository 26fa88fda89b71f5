package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kbukum/jobgraph/dag"
	apperrors "github.com/kbukum/jobgraph/errors"
	"github.com/kbukum/jobgraph/logger"
	"github.com/kbukum/jobgraph/resilience"
)

// MessageWriter is satisfied by kafka producer.Producer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// KafkaSink publishes ready nodes to a topic, one message per node.
type KafkaSink struct {
	w     MessageWriter
	topic string
	log   *logger.Logger
}

// NewKafkaSink creates a sink writing to topic.
func NewKafkaSink(w MessageWriter, topic string, log *logger.Logger) *KafkaSink {
	if log == nil {
		log = logger.Nop()
	}
	return &KafkaSink{w: w, topic: topic, log: log.WithComponent("dispatch.kafka")}
}

// Handle is a Handler.
func (s *KafkaSink) Handle(ctx context.Context, jobID string, nodes []dag.ReadyNode) error {
	msgs := make([]kafkago.Message, 0, len(nodes))
	for _, n := range nodes {
		m := NewMessage(jobID, n)
		value, err := json.Marshal(m)
		if err != nil {
			return apperrors.Internal(err).WithDetail("node", n.NodeName)
		}
		msgs = append(msgs, kafkago.Message{
			Topic: s.topic,
			Key:   []byte(m.Key()),
			Value: value,
			Headers: []kafkago.Header{
				{Key: "content-type", Value: []byte(ContentType)},
				{Key: "event-id", Value: []byte(m.EventID)},
			},
		})
	}
	if err := s.w.WriteMessages(ctx, msgs...); err != nil {
		return err
	}
	s.log.Debug("Ready nodes published", logger.Fields(
		logger.FieldJobID, jobID,
		"topic", s.topic,
		"count", len(msgs),
	))
	return nil
}

// LogSink logs every ready node. Used when no transport is configured.
func LogSink(log *logger.Logger) Handler {
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithComponent("dispatch.log")
	return func(_ context.Context, jobID string, nodes []dag.ReadyNode) error {
		for _, n := range nodes {
			log.Info("Node ready", logger.Fields(
				logger.FieldJobID, jobID,
				logger.FieldNode, n.NodeName,
				logger.FieldBatchIndex, n.Index,
				"parents", len(n.ParentOutput),
			))
		}
		return nil
	}
}

// Guard runs h behind br. While the breaker is open h is skipped and the
// call fails with CONNECTION_FAILED for sink.
func Guard(br *resilience.Breaker, sink string, h Handler) Handler {
	return func(ctx context.Context, jobID string, nodes []dag.ReadyNode) error {
		err := br.Execute(func() error { return h(ctx, jobID, nodes) })
		if errors.Is(err, resilience.ErrCircuitOpen) {
			return apperrors.ConnectionFailed(sink, err).WithDetail("jobId", jobID)
		}
		return err
	}
}

// Collector keeps every ready node it receives, grouped by job.
type Collector struct {
	mu    sync.Mutex
	ready map[string][]dag.ReadyNode
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{ready: make(map[string][]dag.ReadyNode)}
}

// Handle is a Handler.
func (c *Collector) Handle(_ context.Context, jobID string, nodes []dag.ReadyNode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ready[jobID] = append(c.ready[jobID], nodes...)
	return nil
}

// Ready returns the nodes collected for jobID.
func (c *Collector) Ready(jobID string) []dag.ReadyNode {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]dag.ReadyNode, len(c.ready[jobID]))
	copy(out, c.ready[jobID])
	return out
}

// Drain returns and forgets the nodes collected for jobID.
func (c *Collector) Drain(jobID string) []dag.ReadyNode {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.ready[jobID]
	delete(c.ready, jobID)
	return out
}
