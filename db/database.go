package db

import (
	"database/sql"
	"fmt"
	"log"

	"pems_api_go/config"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the shared engine handle. It is schema-agnostic: all tenant work goes
// through SessionFor / WithTenant, which remap unqualified table references
// into the tenant's schema.
var DB *gorm.DB

var (
	driverName    string
	controlSchema string
)

// Initialize opens the shared connection pool for the single logical database
func Initialize(cfg *config.Config) error {
	logLevel := logger.Info
	if cfg.Environment == "production" {
		logLevel = logger.Warn
	}

	var (
		dial gorm.Dialector
		err  error
	)
	switch cfg.DBDriver {
	case "sqlite":
		dial = sqlite.Open(cfg.DSN())
	default:
		dial = postgres.Open(cfg.DSN())
	}

	DB, err = gorm.Open(dial, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	driverName = cfg.DBDriver
	controlSchema = cfg.ControlSchema

	log.Println("Database connection established")
	return nil
}

// ControlSchema returns the schema holding the agency directory
func ControlSchema() string {
	return controlSchema
}

// pool returns the shared *sql.DB connection pool behind the engine
func pool() (*sql.DB, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB, nil
}

// dialectorFor builds a dialector that reuses the shared pool instead of
// opening new connections
func dialectorFor(conn gorm.ConnPool) gorm.Dialector {
	if driverName == "sqlite" {
		return &sqlite.Dialector{Conn: conn}
	}
	return postgres.New(postgres.Config{Conn: conn})
}

// Close closes the shared connection pool
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}
