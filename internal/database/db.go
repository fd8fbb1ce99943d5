package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the database connection
type DB struct {
	*sqlx.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	username   TEXT UNIQUE NOT NULL,
	password   TEXT NOT NULL,
	is_admin   INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS entries (
	id              TEXT PRIMARY KEY,
	website_address TEXT NOT NULL,
	video_link      TEXT,
	description     TEXT,
	remarks         TEXT,
	created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	created_by      TEXT REFERENCES users(id)
);
`

// Connect opens (creating if necessary) the SQLite database file
func Connect(path string) (*DB, error) {
	if err := ensureDatabaseFile(path); err != nil {
		return nil, err
	}

	db, err := sqlx.Connect("sqlite3", fmt.Sprintf("file:%s?_loc=UTC", path))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite is single-writer; a single connection avoids busy errors
	db.SetMaxOpenConns(1)

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db}, nil
}

// ensureDatabaseFile creates the data directory and an empty database file
// when they do not exist yet.
func ensureDatabaseFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create database file: %w", err)
		}
		f.Close()
	}

	return nil
}

// EnsureSchema creates the users and entries tables when absent.
// Safe to call on every process start.
func (db *DB) EnsureSchema() error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
