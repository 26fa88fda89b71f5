package database

import (
	"context"
	"embed"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kbukum/jobgraph/component"
	"github.com/kbukum/jobgraph/database/migration"
	"github.com/kbukum/jobgraph/logger"
)

// DriverFunc builds a GORM dialector from a DSN.
type DriverFunc func(dsn string) gorm.Dialector

type versionedMigrations struct {
	fs     embed.FS
	path   string
	driver migration.DriverFunc
}

// Component wraps DB and implements component.Component for lifecycle management.
type Component struct {
	db         *DB
	cfg        Config
	log        *logger.Logger
	driver     DriverFunc
	models     []interface{}
	migrations *versionedMigrations
}

// NewComponent creates a database component. SQLite is used unless
// WithDriver selects another dialector.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	if log == nil {
		log = logger.Nop()
	}
	cfg.ApplyDefaults()
	return &Component{
		cfg:    cfg,
		log:    log.WithComponent("database"),
		driver: sqlite.Open,
	}
}

// WithDriver sets the dialector constructor.
func (c *Component) WithDriver(fn DriverFunc) *Component {
	c.driver = fn
	return c
}

// WithAutoMigrate registers models for GORM auto-migration on Start. It only
// runs when Config.AutoMigrate is set.
func (c *Component) WithAutoMigrate(models ...interface{}) *Component {
	c.models = append(c.models, models...)
	return c
}

// WithMigrations applies the versioned SQL migrations under path in fs on
// Start, using driver to talk to the database.
func (c *Component) WithMigrations(fs embed.FS, path string, driver migration.DriverFunc) *Component {
	c.migrations = &versionedMigrations{fs: fs, path: path, driver: driver}
	return c
}

// DB returns the underlying *DB, or nil if not started.
func (c *Component) DB() *DB {
	return c.db
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Name returns the component name.
func (c *Component) Name() string { return "database" }

// Start connects and applies migrations.
func (c *Component) Start(ctx context.Context) error {
	db, err := New(ctx, c.driver(c.cfg.DSN), c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("database start: %w", err)
	}

	if c.migrations != nil {
		if err := migration.MigrateUp(db.GormDB, c.migrations.fs, c.migrations.path, c.migrations.driver); err != nil {
			_ = db.Close()
			return fmt.Errorf("database migrate: %w", err)
		}
		version, _, _ := migration.MigrateVersion(db.GormDB, c.migrations.fs, c.migrations.path, c.migrations.driver)
		c.log.Debug("Schema migrated", logger.Fields("version", version))
	}
	if c.cfg.AutoMigrate && len(c.models) > 0 {
		if err := db.AutoMigrate(c.models...); err != nil {
			_ = db.Close()
			return fmt.Errorf("database auto-migrate: %w", err)
		}
	}

	c.db = db
	c.log.Info("Database component started")
	return nil
}

// Stop closes the connection pool.
func (c *Component) Stop(_ context.Context) error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Health pings the database and reports pool usage in the message.
func (c *Component) Health(ctx context.Context) component.Health {
	if c.db == nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: "database not initialized",
		}
	}

	stats, err := c.db.CheckHealth(ctx)
	if err != nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: fmt.Sprintf("ping failed: %v", err),
		}
	}

	return component.Health{
		Name:    c.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("open=%d in_use=%d idle=%d", stats.OpenConns, stats.InUseConns, stats.IdleConns),
	}
}

// Describe summarizes the pool settings.
func (c *Component) Describe() component.Description {
	details := fmt.Sprintf("pool=%d/%d", c.cfg.MaxOpenConns, c.cfg.MaxIdleConns)
	if c.cfg.AutoMigrate {
		details += " auto-migrate=on"
	}
	return component.Description{
		Name:    "Database",
		Type:    "database",
		Details: details,
	}
}
