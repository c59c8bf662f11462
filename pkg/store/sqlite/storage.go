package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const MemoryPath = ":memory:"

// ErrNotFound is returned by the stores when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

const ProfilesSchema = `
	CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'freelancer' CHECK (role IN ('freelancer', 'admin')),
		created_at TEXT NOT NULL
	);
`

const CompaniesSchema = `
	CREATE TABLE IF NOT EXISTS companies (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		tax_number TEXT,
		city TEXT
	);
`

const ActivitiesSchema = `
	CREATE TABLE IF NOT EXISTS activities (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		hourly_rate TEXT NOT NULL
	);
`

const WorkEntriesSchema = `
	CREATE TABLE IF NOT EXISTS work_entries (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		company_id TEXT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
		activity_id TEXT NOT NULL REFERENCES activities(id),
		month TEXT NOT NULL,
		hours TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
`

const WorkEntriesIndex = `
	CREATE INDEX IF NOT EXISTS idx_work_entries_lookup ON work_entries (user_id, company_id, month);
`

const ReportTemplatesSchema = `
	CREATE TABLE IF NOT EXISTS report_templates (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		definition TEXT NOT NULL,
		styles TEXT
	);
`

const ReportConfigsSchema = `
	CREATE TABLE IF NOT EXISTS report_configs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		company_id TEXT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
		template_id TEXT NOT NULL REFERENCES report_templates(id),
		location TEXT,
		intro_text TEXT,
		outro_text TEXT,
		UNIQUE (user_id, company_id)
	);
`

const GeneratedReportsSchema = `
	CREATE TABLE IF NOT EXISTS generated_reports (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		company_id TEXT NOT NULL,
		month TEXT NOT NULL,
		report_date TEXT NOT NULL,
		storage_path TEXT,
		persisted INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);
`

const GeneratedReportsIndex = `
	CREATE INDEX IF NOT EXISTS idx_generated_reports_user ON generated_reports (user_id, created_at);
`

var bootQueries = []string{
	ProfilesSchema,
	CompaniesSchema,
	ActivitiesSchema,
	WorkEntriesSchema,
	WorkEntriesIndex,
	ReportTemplatesSchema,
	ReportConfigsSchema,
	GeneratedReportsSchema,
	GeneratedReportsIndex,
}

type Settings struct {
	DbPath string `mapstructure:"path"`
}

// NewDB opens the SQLite database at settings.DbPath and applies the schema.
// The pool holds a single connection; PRAGMAs and :memory: databases are per connection.
func NewDB(settings Settings) (*sql.DB, error) {
	path := settings.DbPath
	if path == "" {
		path = MemoryPath
	}
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	if err := migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	for i, query := range bootQueries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

// fixed width, so text order is time order
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTime renders t the way timestamps are stored: RFC 3339 in UTC with nanoseconds.
func FormatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}
