package persistence

import (
	"context"
	"fmt"

	"github.com/kbukum/jobgraph/component"
	"github.com/kbukum/jobgraph/database"
	"github.com/kbukum/jobgraph/database/migration"
	apperrors "github.com/kbukum/jobgraph/errors"
	"github.com/kbukum/jobgraph/logger"
	"github.com/kbukum/jobgraph/observability"
	"github.com/kbukum/jobgraph/redis"
)

// Component opens the configured backend and exposes it as a Store.
type Component struct {
	cfg     Config
	log     *logger.Logger
	metrics *observability.EngineMetrics

	backend component.Component
	store   Store
}

// NewComponent creates a graph store component. metrics and log may be nil.
func NewComponent(cfg Config, log *logger.Logger, metrics *observability.EngineMetrics) *Component {
	if log == nil {
		log = logger.Nop()
	}
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, log: log, metrics: metrics}
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Name returns the component name.
func (c *Component) Name() string { return "graph-store" }

// Store returns the instrumented store, or nil before Start.
func (c *Component) Store() Store { return c.store }

// Start opens the backend connection and, for the database backend, applies
// the schema migrations.
func (c *Component) Start(ctx context.Context) error {
	if err := c.cfg.Validate(); err != nil {
		return apperrors.InvalidInput("persistence", err.Error())
	}

	var store Store
	switch c.cfg.Type {
	case TypeMemory:
		store = NewMemoryStore(c.cfg.ttl())
	case TypeRedis:
		rc := redis.NewComponent(c.cfg.Redis, c.log)
		if err := rc.Start(ctx); err != nil {
			return err
		}
		c.backend = rc
		store = NewRedisStore(rc.Client(), c.cfg.KeyPrefix, c.cfg.ttl())
	case TypeDatabase:
		dc := database.NewComponent(c.cfg.Database, c.log).
			WithMigrations(Migrations, MigrationsPath, migration.SQLite)
		if err := dc.Start(ctx); err != nil {
			return err
		}
		c.backend = dc
		store = NewDatabaseStore(dc.DB())
	}

	c.store = Instrument(store, c.cfg.Type, c.metrics, c.log)
	c.log.Info("Graph store started", logger.Fields("backend", c.cfg.Type))
	return nil
}

// Stop closes the backend connection.
func (c *Component) Stop(ctx context.Context) error {
	c.store = nil
	if c.backend == nil {
		return nil
	}
	err := c.backend.Stop(ctx)
	c.backend = nil
	return err
}

// Health reports the backend's health under the component's name.
func (c *Component) Health(ctx context.Context) component.Health {
	switch {
	case c.store == nil:
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "graph store not started"}
	case c.backend == nil:
		return component.Health{Name: c.Name(), Status: component.StatusHealthy, Message: c.cfg.Type}
	}
	h := c.backend.Health(ctx)
	h.Name = c.Name()
	return h
}

// Describe summarizes the selected backend.
func (c *Component) Describe() component.Description {
	details := c.cfg.Type
	switch c.cfg.Type {
	case TypeRedis:
		details = fmt.Sprintf("redis %s prefix=%s", c.cfg.Redis.Addr, c.cfg.KeyPrefix)
	case TypeDatabase:
		details = fmt.Sprintf("database %s", c.cfg.Database.DSN)
	}
	if c.cfg.TTL != "" {
		details += " ttl=" + c.cfg.TTL
	}
	return component.Description{Name: "Graph Store", Type: "persistence", Details: details}
}
