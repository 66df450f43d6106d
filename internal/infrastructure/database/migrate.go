package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"

	"github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/Josh-IE/risk-management/internal/config"
)

//go:embed migrations/mysql/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// Migrate applies the embedded migrations of cfg's driver
func Migrate(cfg *config.Config) error {
	registerTLS(cfg)
	return MigrateDSN(cfg.DBDriver, cfg.DatabaseDSN())
}

// MigrateDSN applies every pending migration over a dedicated connection,
// closed before returning
func MigrateDSN(driver, dsn string) error {
	if driver == config.DriverMySQL {
		mc, err := mysql.ParseDSN(dsn)
		if err != nil {
			return fmt.Errorf("failed to parse DSN: %w", err)
		}
		mc.MultiStatements = true
		dsn = mc.FormatDSN()
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}

	var target database.Driver
	switch driver {
	case config.DriverMySQL:
		target, err = migratemysql.WithInstance(db, &migratemysql.Config{})
	case config.DriverSQLite:
		target, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	default:
		err = fmt.Errorf("unsupported driver %q", driver)
	}
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialise migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations/"+driver)
	if err != nil {
		_ = target.Close()
		return fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driver, target)
	if err != nil {
		_ = target.Close()
		return fmt.Errorf("failed to initialise migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	log.Printf("✅ Migrations applied (driver=%s version=%d dirty=%t)", driver, version, dirty)
	return nil
}
