package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	maxOpenConns          = 25
	maxIdleConns          = 5
	connMaxLifetime       = 5 * time.Minute
	defaultConnectTimeout = 5 * time.Second
)

// Options configures the SQLite connection
type Options struct {
	// Path is the database file, e.g. "./data/classroom.db"
	Path string

	// ConnectionTimeout bounds the initial ping and is used as the SQLite
	// busy timeout for writers waiting on the progress tables
	ConnectionTimeout time.Duration

	// EnableWAL switches the journal to write-ahead logging
	EnableWAL bool
}

// dsn builds the go-sqlite3 connection string. Foreign keys are always on:
// modules, interaction points and progress rows reference their parents.
func (o Options) dsn() string {
	dsn := fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=%d", o.Path, o.ConnectionTimeout.Milliseconds())
	if o.EnableWAL {
		dsn += "&_journal_mode=WAL"
	}
	return dsn
}

// DB wraps a GORM database connection
type DB struct {
	*gorm.DB
}

// New opens the classroom database and verifies the connection
func New(opts Options) (*DB, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if opts.ConnectionTimeout <= 0 {
		opts.ConnectionTimeout = defaultConnectTimeout
	}

	gormDB, err := gorm.Open(sqlite.Open(opts.dsn()), &gorm.Config{
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		// Constraint failures come back as gorm.ErrDuplicatedKey / ErrForeignKeyViolated
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", opts.Path, err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectionTimeout)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", opts.Path, err)
	}

	return &DB{DB: gormDB}, nil
}

// Health pings the database; used by the readiness endpoint
func (db *DB) Health(ctx context.Context) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// GetSQLDB returns the underlying sql.DB for migrations
func (db *DB) GetSQLDB() (*sql.DB, error) {
	return db.DB.DB()
}
