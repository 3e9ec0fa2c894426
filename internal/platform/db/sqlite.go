package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// SQLiteTimeLayout is the fixed-width UTC layout timestamps are stored with
// in SQLite, so text ordering matches time ordering.
const SQLiteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS patient (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	age        INTEGER NOT NULL,
	gender     TEXT NOT NULL,
	contact    TEXT NOT NULL,
	address    TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS doctor (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	specialization TEXT NOT NULL,
	experience     INTEGER NOT NULL,
	contact        TEXT NOT NULL,
	email          TEXT NOT NULL,
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS appointment (
	id         TEXT PRIMARY KEY,
	patient_id TEXT NOT NULL,
	doctor_id  TEXT NOT NULL,
	appt_date  TEXT NOT NULL,
	appt_time  TEXT NOT NULL,
	reason     TEXT NOT NULL,
	status     TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_appointment_patient ON appointment (patient_id);
CREATE INDEX IF NOT EXISTS idx_appointment_doctor ON appointment (doctor_id);
CREATE INDEX IF NOT EXISTS idx_appointment_date ON appointment (appt_date, appt_time);
`

// OpenSQLite opens the database at path and creates the clinic tables when
// missing. ":memory:" yields a private in-memory database held on a single
// connection.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		path = "clinic.db"
	}
	inMemory := path == ":memory:" || strings.Contains(path, "mode=memory")
	if !inMemory {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if inMemory {
		conn.SetMaxOpenConns(1)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := conn.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		conn.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}
	if _, err := conn.ExecContext(ctx, sqliteSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}
	return conn, nil
}

// FormatTime renders t for storage in SQLite.
func FormatTime(t time.Time) string {
	return t.UTC().Format(SQLiteTimeLayout)
}

// ParseTime reverses FormatTime.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(SQLiteTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t, nil
}
