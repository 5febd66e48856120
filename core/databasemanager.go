package core

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type LogLevel int

const (
	LogLevelSilent LogLevel = iota + 1
	LogLevelError
	LogLevelWarn
	LogLevelInfo
)

// DatabaseManager owns the MySQL pool shared by the request handlers.
type DatabaseManager struct {
	db *gorm.DB
}

// New opens the pool. TranslateError is on so a unique-key violation
// surfaces as gorm.ErrDuplicatedKey, which the attendance layer relies on.
func New(dsn string, maxConnection int, logLevel LogLevel) (*DatabaseManager, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(gormLogLevel(logLevel)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxConnection)
	sqlDB.SetMaxIdleConns(maxConnection)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping pool: %w", err)
	}

	return &DatabaseManager{db: db}, nil
}

// NewWithDB wraps an already-open gorm handle. Used by tests and tools
// that manage their own connection.
func NewWithDB(db *gorm.DB) *DatabaseManager {
	return &DatabaseManager{db: db}
}

func gormLogLevel(level LogLevel) logger.LogLevel {
	switch level {
	case LogLevelError:
		return logger.Error
	case LogLevelWarn:
		return logger.Warn
	case LogLevelInfo:
		return logger.Info
	default:
		return logger.Silent
	}
}

// Exec runs fn against a context-bound session.
func (dm *DatabaseManager) Exec(ctx context.Context, fn func(db *gorm.DB) error) error {
	return fn(dm.db.WithContext(ctx))
}

// DB exposes the underlying handle for code that manages its own scope.
func (dm *DatabaseManager) DB(ctx context.Context) *gorm.DB {
	return dm.db.WithContext(ctx)
}

// Migrate creates or updates the schema for all models.
func (dm *DatabaseManager) Migrate() error {
	return dm.db.AutoMigrate(
		&Department{},
		&Employee{},
		&Attendance{},
		&Salary{},
	)
}

// Close closes the pool.
func (dm *DatabaseManager) Close() error {
	sqlDB, err := dm.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
