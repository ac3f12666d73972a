// Package database owns the lifecycle of the GORM connection pool: it is
// opened once at process start, migrated, injected into the repositories and
// closed on shutdown.
package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"chemstore/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds database connection details.
type Config struct {
	Driver string
	DSN    string
	// Verbose turns on GORM's SQL logging.
	Verbose bool
}

// Open connects to the configured database and tunes its connection pool.
func Open(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newLogger(log.New(os.Stdout, "\r\n", log.LstdFlags), cfg.Verbose),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get connection pool: %w", err)
	}
	if cfg.Driver == DriverSQLite {
		// SQLite allows a single writer; one connection also keeps in-memory
		// databases alive for the life of the pool.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	log.Printf("Connected to %s database", cfg.Driver)
	return db, nil
}

// newLogger logs slow queries and failures to w. Lookups that find nothing
// are routine for the repositories and stay quiet.
func newLogger(w logger.Writer, verbose bool) logger.Interface {
	level := logger.Warn
	if verbose {
		level = logger.Info
	}
	return logger.New(w, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// Migrate creates or updates the schema of every model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get connection pool: %w", err)
	}
	return sqlDB.Close()
}
