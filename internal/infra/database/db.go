package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"

	sqliteFileName = "session.db"
)

const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 25
	defaultConnMaxLifetime = 5 * time.Minute
	defaultConnMaxIdleTime = 1 * time.Minute
)

// Open returns a connection to the credential store for the given dialect.
// For sqlite3 target is a directory that is created if missing; for
// postgres it is a connection URL.
func Open(dialect, target string) (*sql.DB, error) {
	switch dialect {
	case DialectPostgres:
		return NewPostgresConnection(target)
	case DialectSQLite:
		return NewSQLiteConnection(target)
	default:
		return nil, fmt.Errorf("unsupported credential store dialect %q", dialect)
	}
}

// NewPostgresConnection creates and returns a new PostgreSQL database connection.
// It also pings the database to ensure connectivity.
func NewPostgresConnection(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open(DialectPostgres, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)
	db.SetConnMaxIdleTime(defaultConnMaxIdleTime)

	return ping(db)
}

// NewSQLiteConnection opens session.db inside dir.
func NewSQLiteConnection(dir string) (*sql.DB, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create credential directory %s: %w", dir, err)
	}

	db, err := sql.Open(DialectSQLite, SQLiteDSN(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	return ping(db)
}

// SQLiteDSN is the go-sqlite3 DSN of the credential file in dir.
// Foreign keys must be on for the device store's cascading deletes.
func SQLiteDSN(dir string) string {
	return "file:" + filepath.Join(dir, sqliteFileName) + "?_foreign_keys=on&_busy_timeout=5000"
}

func ping(db *sql.DB) (*sql.DB, error) {
	if err := db.Ping(); err != nil {
		db.Close() // Close the connection if ping fails
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}
