// Package db provides functions to initialize and manage the SQLite database for Handoff.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DBConfig holds configuration options for database initialization
type DBConfig struct {
	// Path specifies the database file path. Use ":memory:" for an in-memory database
	Path string
	// LogLevel specifies the GORM logging level
	LogLevel logger.LogLevel
}

// InitDatabase creates and configures a SQLite database with the given
// configuration. The caller is responsible for running migrations afterwards.
func InitDatabase(config DBConfig) (*gorm.DB, error) {
	dsn := config.Path
	if dsn != ":memory:" {
		dir := filepath.Dir(config.Path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			slog.Error("Failed to create data directory", "dir", dir, "error", err)
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(config.LogLevel),
	})
	if err != nil {
		slog.Error("Failed to connect to database", "dsn", dsn, "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	pragmas := "PRAGMA foreign_keys = ON;"
	if dsn != ":memory:" {
		// Performance settings only make sense for file-backed databases
		pragmas += `
		PRAGMA journal_mode       = WAL;
		PRAGMA synchronous        = NORMAL;
		PRAGMA mmap_size          = 134217728;
		PRAGMA journal_size_limit = 27103364;
		PRAGMA cache_size         = 2000;`
	}

	if err := database.Exec(pragmas).Error; err != nil {
		slog.Error("Failed to configure database", "error", err)
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	slog.Debug("Database initialized", "path", config.Path)
	return database, nil
}

// InitDB opens the application database at the given path and returns it.
// The GORM log level follows the application slog level.
func InitDB(databasePath string) (*gorm.DB, error) {
	slog.Debug("Initializing database", "path", databasePath)

	database, err := InitDatabase(DBConfig{
		Path:     databasePath,
		LogLevel: getGormLogLevel(),
	})
	if err != nil {
		return nil, err
	}

	return database, nil
}

// getGormLogLevel maps the application log level to a GORM log level
func getGormLogLevel() logger.LogLevel {
	l := slog.Default()

	switch {
	case l.Enabled(context.TODO(), slog.LevelDebug):
		return logger.Info // Show SQL queries only when debug logging is enabled
	case l.Enabled(context.TODO(), slog.LevelInfo), l.Enabled(context.TODO(), slog.LevelWarn):
		return logger.Warn
	case l.Enabled(context.TODO(), slog.LevelError):
		return logger.Error
	default:
		return logger.Silent
	}
}
