// Package database provides a GORM wrapper with pooled connections,
// connect retries, transactions and a component for lifecycle management.
//
// The dialector is pluggable through Component.WithDriver and defaults to
// SQLite. Schemas are created either by GORM auto-migration of registered
// models or by versioned SQL files applied through the migration
// subpackage:
//
//	db := database.NewComponent(cfg, log).
//	    WithMigrations(migrationsFS, "migrations", migration.SQLite)
//	if err := db.Start(ctx); err != nil {
//	    return err
//	}
//
// FromDatabase maps driver errors onto the errors package codes.
package database
