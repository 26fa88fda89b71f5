// Package producer writes messages to Kafka with retries and structured
// logging.
package producer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kbukum/jobgraph/kafka"
	"github.com/kbukum/jobgraph/logger"
	"github.com/kbukum/jobgraph/resilience"
)

// Writer is the part of kafka-go's Writer the producer uses.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Producer wraps a kafka-go Writer with TLS/SASL and retries.
type Producer struct {
	writer  Writer
	retries int
	backoff time.Duration
	log     *logger.Logger
	mu      sync.RWMutex
	closed  bool
}

// New creates a producer writing to cfg.Brokers. Messages must carry their
// topic.
func New(cfg kafka.Config, log *logger.Logger) (*Producer, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("kafka producer config: %w", err)
	}
	if !cfg.Enabled {
		return nil, fmt.Errorf("kafka is disabled")
	}
	if log == nil {
		log = logger.Nop()
	}
	plog := log.WithComponent("kafka.producer")

	transport, err := kafka.CreateTransport(&cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka producer transport: %w", err)
	}

	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Transport:    transport,
		Balancer:     &kafkago.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: kafka.ParseDuration(cfg.BatchTimeout),
		RequiredAcks: kafkago.RequiredAcks(cfg.RequiredAcks),
		Compression:  kafka.ResolveCompression(cfg.Compression),
		WriteTimeout: kafka.ParseDuration(cfg.WriteTimeout),
		ErrorLogger: kafkago.LoggerFunc(func(msg string, args ...interface{}) {
			plog.Error("writer: " + fmt.Sprintf(msg, args...))
		}),
	}

	plog.Info("Kafka producer initialized", logger.Fields(
		"brokers", cfg.Brokers,
		"compression", cfg.Compression,
		"batch_size", cfg.BatchSize,
	))
	return NewWithWriter(w, cfg.Retries, log), nil
}

// NewWithWriter creates a producer on an existing writer.
func NewWithWriter(w Writer, retries int, log *logger.Logger) *Producer {
	if retries <= 0 {
		retries = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Producer{
		writer:  w,
		retries: retries,
		backoff: 100 * time.Millisecond,
		log:     log.WithComponent("kafka.producer"),
	}
}

// WriteMessages sends msgs, retrying transient failures with exponential
// backoff.
func (p *Producer) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return fmt.Errorf("producer is closed")
	}

	err := resilience.Retry(ctx, resilience.RetryConfig{
		MaxAttempts:    p.retries,
		InitialBackoff: p.backoff,
		RetryIf:        kafka.IsRetryableError,
		OnRetry: func(attempt int, err error, wait time.Duration) {
			p.log.Warn("Kafka write failed, retrying", logger.Fields(
				"attempt", attempt,
				"backoff", wait.String(),
				logger.FieldError, err.Error(),
			))
		},
	}, func(ctx context.Context) error {
		return p.writer.WriteMessages(ctx, msgs...)
	})
	if err == nil || (ctx.Err() != nil && errors.Is(err, ctx.Err())) {
		return err
	}

	topic := ""
	if len(msgs) > 0 {
		topic = msgs[0].Topic
	}
	return kafka.FromKafka(err, topic)
}

// Close shuts down the producer. Safe to call multiple times.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.writer.Close()
}
