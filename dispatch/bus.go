package dispatch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/kbukum/jobgraph/dag"
	apperrors "github.com/kbukum/jobgraph/errors"
	"github.com/kbukum/jobgraph/logger"
	"github.com/kbukum/jobgraph/observability"
)

// Handler receives the ready nodes of one job.
type Handler func(ctx context.Context, jobID string, nodes []dag.ReadyNode) error

// Publisher is what the engine depends on to hand off ready nodes.
type Publisher interface {
	Publish(ctx context.Context, jobID string, nodes []dag.ReadyNode) error
}

type subscriber struct {
	name    string
	pattern string
	handler Handler
}

// Bus fans ready nodes out to subscribers in registration order.
type Bus struct {
	mu      sync.RWMutex
	subs    []subscriber
	log     *logger.Logger
	metrics *observability.EngineMetrics
}

var _ Publisher = (*Bus)(nil)

// NewBus creates an empty bus. log and metrics may be nil.
func NewBus(log *logger.Logger, metrics *observability.EngineMetrics) *Bus {
	if log == nil {
		log = logger.Nop()
	}
	return &Bus{log: log.WithComponent("dispatch"), metrics: metrics}
}

// Subscribe registers handler under name for nodes whose "<jobID>:<nodeName>"
// key matches pattern. An empty pattern matches everything.
func (b *Bus) Subscribe(name, pattern string, handler Handler) error {
	if handler == nil {
		return apperrors.InvalidInput("handler", "must not be nil")
	}
	if pattern == "" {
		pattern = "*"
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return apperrors.InvalidInput("pattern", err.Error()).WithDetail("subscriber", name)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.subs {
		if s.name == name {
			return apperrors.InvalidInput("name", "subscriber already registered").
				WithDetail("subscriber", name)
		}
	}
	b.subs = append(b.subs, subscriber{name: name, pattern: pattern, handler: handler})
	b.log.Debug("Subscriber registered", logger.Fields("subscriber", name, "pattern", pattern))
	return nil
}

// Unsubscribe removes the subscriber registered under name.
func (b *Bus) Unsubscribe(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.name == name {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Subscribers returns the registered subscriber names.
func (b *Bus) Subscribers() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, len(b.subs))
	for i, s := range b.subs {
		out[i] = s.name
	}
	return out
}

// Publish hands nodes to every matching subscriber. All subscribers are
// called even when one fails; the failures are joined.
func (b *Bus) Publish(ctx context.Context, jobID string, nodes []dag.ReadyNode) error {
	if len(nodes) == 0 {
		return nil
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanDispatch)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrJobID, jobID)
	observability.SetSpanAttribute(ctx, observability.AttrReady, len(nodes))

	b.mu.RLock()
	subs := make([]subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	if len(subs) == 0 {
		b.log.Warn("No subscribers for ready nodes", logger.Fields(
			logger.FieldJobID, jobID,
			"ready", len(nodes),
		))
		return nil
	}

	var errs []error
	for _, s := range subs {
		matched := s.match(jobID, nodes)
		if len(matched) == 0 {
			continue
		}
		if err := s.handler(ctx, jobID, matched); err != nil {
			b.metrics.RecordDispatch(ctx, s.name, len(matched), "error")
			b.log.Error("Dispatch failed", logger.Fields(
				logger.FieldJobID, jobID,
				"subscriber", s.name,
				logger.FieldError, err.Error(),
			))
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
			continue
		}
		b.metrics.RecordDispatch(ctx, s.name, len(matched), "ok")
	}

	if err := errors.Join(errs...); err != nil {
		observability.SetSpanError(ctx, err)
		b.metrics.RecordError(ctx, "dispatch")
		return err
	}
	return nil
}

func (s subscriber) match(jobID string, nodes []dag.ReadyNode) []dag.ReadyNode {
	if s.pattern == "*" {
		return nodes
	}
	var out []dag.ReadyNode
	for _, n := range nodes {
		if ok, _ := filepath.Match(s.pattern, jobID+":"+n.NodeName); ok {
			out = append(out, n)
		}
	}
	return out
}
