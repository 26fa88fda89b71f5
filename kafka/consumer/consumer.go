// Package consumer reads messages from a Kafka topic and commits them once
// handled.
package consumer

import (
	"context"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kbukum/jobgraph/kafka"
	"github.com/kbukum/jobgraph/logger"
)

// MessageHandler processes one message. A returned error is logged and the
// message is still committed; redelivery is left to the handler's own
// retries.
type MessageHandler func(ctx context.Context, msg kafkago.Message) error

// Reader is the part of kafka-go's Reader the consumer uses.
type Reader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

const maxBackoff = 30 * time.Second

// Consumer reads a single topic in a consumer group.
type Consumer struct {
	reader   Reader
	topic    string
	log      *logger.Logger
	failures int
	backoff  time.Duration
}

// New creates a consumer for topic in cfg.GroupID.
func New(cfg kafka.Config, topic string, log *logger.Logger) (*Consumer, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("kafka consumer config: %w", err)
	}
	if !cfg.Enabled {
		return nil, fmt.Errorf("kafka is disabled")
	}
	if log == nil {
		log = logger.Nop()
	}

	dialer, err := kafka.CreateDialer(&cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer dialer: %w", err)
	}

	clog := log.WithComponent("kafka.consumer")
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:           cfg.Brokers,
		Topic:             topic,
		GroupID:           cfg.GroupID,
		Dialer:            dialer,
		StartOffset:       kafkago.FirstOffset,
		MinBytes:          1,
		MaxBytes:          10e6,
		SessionTimeout:    kafka.ParseDuration(cfg.SessionTimeout),
		HeartbeatInterval: kafka.ParseDuration(cfg.HeartbeatInterval),
		ErrorLogger: kafkago.LoggerFunc(func(msg string, args ...interface{}) {
			clog.Error("reader: "+fmt.Sprintf(msg, args...), logger.Fields("topic", topic))
		}),
	})

	clog.Info("Kafka consumer initialized", logger.Fields(
		"topic", topic,
		"group_id", cfg.GroupID,
		"brokers", cfg.Brokers,
	))
	return NewWithReader(reader, topic, log), nil
}

// NewWithReader creates a consumer on an existing reader.
func NewWithReader(r Reader, topic string, log *logger.Logger) *Consumer {
	if log == nil {
		log = logger.Nop()
	}
	return &Consumer{
		reader:  r,
		topic:   topic,
		log:     log.WithComponent("kafka.consumer"),
		backoff: time.Second,
	}
}

// Consume fetches messages in a loop, calling handler for each and
// committing it afterwards. It blocks until ctx is cancelled.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if waitErr := c.handleFailure(ctx, err); waitErr != nil {
				return waitErr
			}
			continue
		}
		c.failures = 0

		if err := handler(ctx, msg); err != nil {
			c.log.Error("Message processing failed", logger.Fields(
				logger.FieldError, err.Error(),
				"topic", msg.Topic,
				"offset", msg.Offset,
			))
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.log.Warn("Commit failed", logger.Fields(logger.FieldError, err.Error(), "offset", msg.Offset))
		}
	}
}

func (c *Consumer) handleFailure(ctx context.Context, err error) error {
	c.failures++
	if c.failures <= 3 {
		c.log.Error("Kafka read error", logger.Fields(
			logger.FieldError, err.Error(),
			"failures", c.failures,
			"topic", c.topic,
		))
	}

	backoff := time.Duration(c.failures) * c.backoff
	if backoff > maxBackoff {
		backoff = maxBackoff
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(backoff):
		return nil
	}
}

// Topic returns the consumer's topic.
func (c *Consumer) Topic() string { return c.topic }

// Close shuts down the reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

type boundConsumer struct {
	*Consumer
	handler MessageHandler
}

func (b boundConsumer) Consume(ctx context.Context) error {
	return b.Consumer.Consume(ctx, b.handler)
}

// Bind pairs c with handler so it can be run by kafka.Component.
func Bind(c *Consumer, handler MessageHandler) kafka.ConsumerRunner {
	return boundConsumer{Consumer: c, handler: handler}
}
