package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/kbukum/jobgraph/errors"
	"github.com/kbukum/jobgraph/logger"
)

// DB wraps a GORM database with structured logging.
type DB struct {
	GormDB *gorm.DB
	log    *logger.Logger
	cfg    Config
	closed bool
	mu     sync.Mutex
}

// New opens a database connection, retrying with a linear backoff until
// cfg.MaxRetries attempts have failed or ctx is done.
func New(ctx context.Context, dialector gorm.Dialector, cfg Config, log *logger.Logger) (*DB, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.InvalidInput("database", err.Error())
	}
	if log == nil {
		log = logger.Nop()
	}

	slowThreshold, _ := time.ParseDuration(cfg.SlowQueryThreshold)
	gormCfg := &gorm.Config{
		Logger: newGormLogger(log, slowThreshold, parseLogLevel(cfg.LogLevel)),
	}

	var err error
	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, apperrors.ConnectionFailed("database", ctx.Err())
		}

		var db *gorm.DB
		if db, err = open(ctx, dialector, gormCfg, cfg); err == nil {
			log.Debug("Database connection established", logger.Fields("attempt", attempt))
			return &DB{GormDB: db, log: log, cfg: cfg}, nil
		}

		if attempt < cfg.MaxRetries {
			backoff := time.Duration(attempt) * time.Second
			log.Warn("Database connection attempt failed, retrying", logger.Fields(
				"attempt", attempt,
				logger.FieldError, err.Error(),
				"backoff", backoff.String(),
			))
			if waitErr := contextSleep(ctx, backoff); waitErr != nil {
				return nil, apperrors.ConnectionFailed("database", waitErr)
			}
		}
	}

	return nil, apperrors.ConnectionFailed("database", fmt.Errorf("after %d attempts: %w", cfg.MaxRetries, err))
}

func open(ctx context.Context, dialector gorm.Dialector, gormCfg *gorm.Config, cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	if lifetime, parseErr := time.ParseDuration(cfg.ConnMaxLifetime); parseErr == nil {
		sqlDB.SetConnMaxLifetime(lifetime)
	}
	if idleTime, parseErr := time.ParseDuration(cfg.ConnMaxIdleTime); parseErr == nil {
		sqlDB.SetConnMaxIdleTime(idleTime)
	}
	return db, nil
}

func contextSleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Close closes the underlying sql.DB connection pool. Safe to call multiple times.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}

	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return err
	}
	d.closed = true
	return sqlDB.Close()
}

// PingContext verifies the database connection is alive.
func (d *DB) PingContext(ctx context.Context) error {
	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// WithContext returns a GORM session scoped to the given context.
func (d *DB) WithContext(ctx context.Context) *gorm.DB {
	return d.GormDB.WithContext(ctx)
}

// AutoMigrate runs GORM auto-migration for the given models.
func (d *DB) AutoMigrate(models ...interface{}) error {
	for _, model := range models {
		if err := d.GormDB.AutoMigrate(model); err != nil {
			return apperrors.StorageError("auto-migrate", err).WithDetail("model", fmt.Sprintf("%T", model))
		}
	}
	d.log.Debug("Auto-migration completed", logger.Fields("models", len(models)))
	return nil
}

// TransactionFunc defines a function that runs within a transaction.
type TransactionFunc func(tx *gorm.DB) error

// WithTransaction executes fn within a transaction. A panic in fn rolls the
// transaction back and is re-raised.
func (d *DB) WithTransaction(ctx context.Context, fn TransactionFunc) error {
	tx := d.GormDB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return apperrors.StorageError("begin transaction", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			d.log.Error("Transaction rolled back due to panic", logger.Fields("panic", fmt.Sprintf("%v", r)))
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			return fmt.Errorf("transaction failed: %w, rollback failed: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return apperrors.StorageError("commit", err)
	}
	return nil
}

// Stats reports pool usage.
type Stats struct {
	OpenConns  int           `json:"open_connections"`
	InUseConns int           `json:"in_use_connections"`
	IdleConns  int           `json:"idle_connections"`
	Latency    time.Duration `json:"latency"`
}

// CheckHealth pings the database and reports pool statistics.
func (d *DB) CheckHealth(ctx context.Context) (Stats, error) {
	start := time.Now()
	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return Stats{}, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return Stats{Latency: time.Since(start)}, err
	}
	s := sqlDB.Stats()
	return Stats{
		OpenConns:  s.OpenConnections,
		InUseConns: s.InUse,
		IdleConns:  s.Idle,
		Latency:    time.Since(start),
	}, nil
}
