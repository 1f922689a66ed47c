// Package managers handles the business logic and orchestrates interactions between the application and the database.
package managers

import (
	"context"
	_ "embed"
	"fmt"

	log "github.com/sirupsen/logrus"

	"library-admin/internal/interfaces"
)

//go:embed schema.sql
var schemaSQL string

// DatabaseMgr defines the interface for database management.
// It provides methods for interacting with the database connection pool.
type DatabaseMgr interface {
	GetPool() interfaces.PgxPoolIface
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close()
}

// DatabaseManager is responsible for managing the database connection pool.
// The pool is created once by the initializer and injected here, every other manager borrows it through GetPool.
type DatabaseManager struct {
	Pool interfaces.PgxPoolIface
}

// GetPool returns the database connection pool managed by the DatabaseManager.
// This pool is used for executing database operations.
func (dbMgr *DatabaseManager) GetPool() interfaces.PgxPoolIface {
	return dbMgr.Pool
}

// Ping acquires a connection, checks it and releases it again.
func (dbMgr *DatabaseManager) Ping(ctx context.Context) error {
	return dbMgr.Pool.Ping(ctx)
}

// Migrate creates the library tables if they do not exist yet.
func (dbMgr *DatabaseManager) Migrate(ctx context.Context) error {
	log.Info("Applying database schema")
	if _, err := dbMgr.Pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	log.Info("Database schema up to date")
	return nil
}

// Close drains the pool. Pools without a Close method (test doubles) are left alone.
func (dbMgr *DatabaseManager) Close() {
	if closer, ok := dbMgr.Pool.(interface{ Close() }); ok {
		log.Info("Closing database pool")
		closer.Close()
	}
}

// NewDatabaseManager creates and initializes a new instance of DatabaseManager with the provided database connection pool.
// It logs the initialization process and returns the newly created DatabaseManager.
func NewDatabaseManager(pool interfaces.PgxPoolIface) DatabaseMgr {
	log.Info("Initializing database manager")
	return &DatabaseManager{Pool: pool}
}
