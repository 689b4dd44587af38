package storage

import (
	"fmt"

	"github.com/memoriabot/memoria/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB holds the database connection
type DB struct {
	*gorm.DB
}

// New creates a new database connection with SQL logging off
func New(cfg *config.DatabaseConfig) (*DB, error) {
	return NewWithLogger(cfg, logger.Silent)
}

// LogLevelFor maps an environment name to a gorm log level. Development
// gets full statement logging, everything else stays silent.
func LogLevelFor(environment string) logger.LogLevel {
	if environment == "development" {
		return logger.Info
	}
	return logger.Silent
}

// NewWithLogger creates a new database connection with custom logger level
func NewWithLogger(cfg *config.DatabaseConfig, logLevel logger.LogLevel) (*DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DB{db}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
