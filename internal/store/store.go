// Package store is the SQLite record store for schedule entries, technicians
// and services. Every query is scoped by the owner's email.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

// ErrNotFound is returned when a row does not exist for the owner.
var ErrNotFound = errors.New("record not found")

// instantLayout is the fixed-width UTC layout of appointment_date, so that
// range queries can compare the column as text.
const instantLayout = "2006-01-02T15:04:05Z"

// DB is the SQLite-backed record store.
type DB struct {
	*sql.DB
	path   string
	tables TableNames
	logger *zerolog.Logger
}

// NewDB opens the database at path and runs migrations.
func NewDB(path string, tables TableNames, logger *zerolog.Logger) (*DB, error) {
	tables = tables.WithDefaults()
	if err := tables.Validate(); err != nil {
		return nil, err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect db: %w", err)
	}

	instance := &DB{DB: db, path: path, tables: tables, logger: logger}
	if err := instance.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info().Str("path", path).Str("schedule_table", tables.Schedule).Msg("Database initialized")
	return instance, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Tables returns the physical table names in use.
func (db *DB) Tables() TableNames {
	return db.tables
}

func (db *DB) createTables() error {
	t := db.tables
	queries := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			user_email TEXT NOT NULL,
			name TEXT NOT NULL,
			email TEXT,
			specialty TEXT,
			is_active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`, t.Technicians),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			user_email TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			duration_minutes INTEGER NOT NULL DEFAULT 0,
			price_cents INTEGER NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`, t.Services),

		// appointment_date is nullable: rows written by other tools may lack it.
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			user_email TEXT NOT NULL,
			technician_id TEXT NOT NULL,
			service_id TEXT,
			customer_email TEXT,
			appointment_date TEXT,
			duration_minutes INTEGER NOT NULL DEFAULT 0,
			block_type TEXT NOT NULL DEFAULT '',
			title TEXT,
			status TEXT NOT NULL DEFAULT 'scheduled',
			notes TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`, t.Schedule),

		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_owner_date ON %[1]s(user_email, appointment_date)`, t.Schedule),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_technician ON %[1]s(technician_id, appointment_date)`, t.Schedule),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_owner ON %[1]s(user_email, is_active)`, t.Technicians),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_owner ON %[1]s(user_email, is_active)`, t.Services),
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration %s: %w", trimSQL(q), err)
		}
	}
	return nil
}

func trimSQL(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}

func formatInstant(t time.Time) string {
	return t.UTC().Format(instantLayout)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
