package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kbukum/jobgraph/component"
	"github.com/kbukum/jobgraph/logger"
)

// ProducerCloser is satisfied by any producer that can be closed.
type ProducerCloser interface {
	Close() error
}

// ConsumerRunner is a consumer bound to its handler.
type ConsumerRunner interface {
	Consume(ctx context.Context) error
	Close() error
	Topic() string
}

// Component runs the injected consumers in the background and closes them
// and the producer on Stop.
type Component struct {
	cfg       Config
	log       *logger.Logger
	producer  ProducerCloser
	consumers []ConsumerRunner
	cancelFn  context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	running   bool
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a Kafka component for use with the component registry.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	if log == nil {
		log = logger.Nop()
	}
	cfg.ApplyDefaults()
	return &Component{
		cfg: cfg,
		log: log.WithComponent("kafka"),
	}
}

// SetProducer injects a producer. Must be called before Start.
func (c *Component) SetProducer(p ProducerCloser) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.producer = p
}

// AddConsumer injects a consumer. Must be called before Start.
func (c *Component) AddConsumer(cr ConsumerRunner) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consumers = append(c.consumers, cr)
}

// Name returns the component name.
func (c *Component) Name() string { return "kafka" }

// Start runs every consumer in its own goroutine.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	consumeCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancelFn = cancel

	for _, cr := range c.consumers {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			if err := cr.Consume(consumeCtx); err != nil && !errors.Is(err, context.Canceled) {
				c.log.Error("Consumer stopped with error", logger.Fields(
					"topic", cr.Topic(),
					logger.FieldError, err.Error(),
				))
			}
		}()
	}

	c.running = true
	c.log.Info("Kafka component started", logger.Fields("consumers", len(c.consumers)))
	return nil
}

// Stop cancels the consumers, waits for them and closes everything.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}

	if c.cancelFn != nil {
		c.cancelFn()
	}
	c.wg.Wait()

	var errs []error
	for _, cr := range c.consumers {
		if err := cr.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.consumers = nil

	if c.producer != nil {
		if err := c.producer.Close(); err != nil {
			errs = append(errs, err)
		}
		c.producer = nil
	}

	c.running = false
	return errors.Join(errs...)
}

// Health dials the first broker and asks for cluster metadata.
func (c *Component) Health(ctx context.Context) component.Health {
	c.mu.Lock()
	running := c.running
	cfg := c.cfg
	c.mu.Unlock()

	unhealthy := func(msg string) component.Health {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: msg}
	}

	if !running {
		return unhealthy("kafka not started")
	}
	dialer, err := CreateDialer(&cfg)
	if err != nil {
		return unhealthy(fmt.Sprintf("dialer: %v", err))
	}
	conn, err := dialer.DialContext(ctx, "tcp", cfg.Brokers[0])
	if err != nil {
		return unhealthy(fmt.Sprintf("broker unreachable: %v", err))
	}
	defer conn.Close()

	if _, err := conn.Brokers(); err != nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusDegraded,
			Message: fmt.Sprintf("broker metadata: %v", err),
		}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe summarizes brokers and topics.
func (c *Component) Describe() component.Description {
	c.mu.Lock()
	defer c.mu.Unlock()

	details := fmt.Sprintf("brokers=%v", c.cfg.Brokers)
	topics := make([]string, 0, len(c.consumers))
	for _, cr := range c.consumers {
		topics = append(topics, cr.Topic())
	}
	if len(topics) > 0 {
		details += fmt.Sprintf(" consume=%v", topics)
	}
	if c.producer != nil {
		details += " produce=" + c.cfg.ReadyTopic
	}
	return component.Description{Name: "Kafka", Type: "kafka", Details: details}
}
