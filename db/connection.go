// Package db persists plugin execution history in DuckDB.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/marcboeker/go-duckdb/v2"
	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
)

// DB represents the database connection
type DB struct {
	conn *sql.DB
	path string
}

var (
	mu       sync.Mutex
	instance *DB
)

// Init opens the database at path and applies pending migrations. An empty
// path keeps everything in memory. Calling Init again is a no-op until Close.
func Init(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return nil
	}

	// Create directory if it doesn't exist
	if path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return serr.Wrap(err, "failed to create data directory", "dir", dir)
			}
		}
	}

	conn, err := sql.Open("duckdb", path)
	if err != nil {
		return serr.Wrap(err, "failed to open database", "path", path)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return serr.Wrap(err, "failed to ping database", "path", path)
	}

	d := &DB{conn: conn, path: path}
	if err := d.Migrate(); err != nil {
		conn.Close()
		return serr.Wrap(err, "failed to run migrations")
	}

	instance = d
	logger.Info("Database connected", "path", displayPath(path))
	return nil
}

// Close shuts the database down. Safe to call when Init never ran.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if instance == nil {
		return nil
	}
	err := instance.conn.Close()
	instance = nil
	if err != nil {
		return serr.Wrap(err, "failed to close database")
	}
	logger.Info("Database closed")
	return nil
}

// get returns the current instance, or nil before Init.
func get() *DB {
	mu.Lock()
	defer mu.Unlock()
	return instance
}

func displayPath(path string) string {
	if path == "" {
		return "in-memory"
	}
	return path
}

// Transaction executes a function within a database transaction
func (db *DB) Transaction(fn func(*sql.Tx) error) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return serr.Wrap(err, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p) // re-throw panic after rollback
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return serr.Wrap(err, "failed to commit transaction")
	}

	return nil
}

// Query executes a query that returns rows
func (db *DB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, serr.Wrap(err, fmt.Sprintf("query failed: %s", query))
	}
	return rows, nil
}

// QueryRow executes a query that returns a single row
func (db *DB) QueryRow(query string, args ...interface{}) *sql.Row {
	return db.conn.QueryRow(query, args...)
}

// Exec executes a query that doesn't return rows
func (db *DB) Exec(query string, args ...interface{}) (sql.Result, error) {
	result, err := db.conn.Exec(query, args...)
	if err != nil {
		return nil, serr.Wrap(err, fmt.Sprintf("exec failed: %s", query))
	}
	return result, nil
}
