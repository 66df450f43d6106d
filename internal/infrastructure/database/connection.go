package database

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/Josh-IE/risk-management/internal/config"
)

// Connection wraps the *sql.DB of the configured driver.
// sql.DB is already safe for concurrent use and pools its own connections.
type Connection struct {
	db     *sql.DB
	driver string
}

var tlsOnce sync.Once // TLS config may only be registered once per process

// Open connects to the store described by cfg and pings it
func Open(ctx context.Context, cfg *config.Config) (*Connection, error) {
	registerTLS(cfg)
	return OpenDSN(ctx, cfg.DBDriver, cfg.DatabaseDSN())
}

// registerTLS makes the "tidb" TLS profile named by TLS DSNs available to
// the MySQL driver
func registerTLS(cfg *config.Config) {
	if cfg.DBDriver != config.DriverMySQL || !cfg.DBTLS {
		return
	}
	tlsOnce.Do(func() {
		if err := mysql.RegisterTLSConfig("tidb", &tls.Config{
			MinVersion: tls.VersionTLS12,
			ServerName: cfg.DBHost,
		}); err != nil {
			log.Printf("⚠️  Failed to register TLS config: %v", err)
		}
	})
}

// OpenDSN connects using an explicit driver name and DSN
func OpenDSN(ctx context.Context, driver, dsn string) (*Connection, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == config.DriverMySQL {
		// MaxIdleConns matches MaxOpenConns so pooled connections are reused
		db.SetMaxOpenConns(100)
		db.SetMaxIdleConns(100)
		db.SetConnMaxLifetime(5 * time.Minute)
		db.SetConnMaxIdleTime(3 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Connection{db: db, driver: driver}, nil
}

// DB returns the underlying *sql.DB connection
func (c *Connection) DB() *sql.DB {
	return c.db
}

// Driver returns the driver name the connection was opened with
func (c *Connection) Driver() string {
	return c.driver
}

// Ping checks the store is reachable
func (c *Connection) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes the database connection
func (c *Connection) Close() error {
	return c.db.Close()
}
