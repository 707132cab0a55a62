package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// SetClock overrides the store's time source. Tests use it to pin "today"
// across day-boundary scenarios.
func (s *Store) SetClock(now func() time.Time) { s.now = now }

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS mantras (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		name          TEXT NOT NULL UNIQUE,
		mala_size     INTEGER NOT NULL DEFAULT 108,
		practice_days TEXT NOT NULL DEFAULT '0,1,2,3,4,5,6',
		total_count   INTEGER NOT NULL DEFAULT 0,
		today_count   INTEGER NOT NULL DEFAULT 0,
		created_at    TEXT NOT NULL,
		last_updated  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS daily_records (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		mantra_id        INTEGER NOT NULL REFERENCES mantras(id) ON DELETE CASCADE,
		date             TEXT NOT NULL,
		count            INTEGER NOT NULL DEFAULT 0,
		remark           TEXT NOT NULL DEFAULT '',
		beads_updated    INTEGER NOT NULL DEFAULT 0,
		settings_updated INTEGER NOT NULL DEFAULT 0,
		last_updated     TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		UNIQUE(mantra_id, date)
	);

	CREATE INDEX IF NOT EXISTS idx_records_mantra ON daily_records(mantra_id);
	CREATE INDEX IF NOT EXISTS idx_records_date   ON daily_records(date);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('last_reset_date',   ''),
		('sort_option',       'newest'),
		('default_mantra_id', ''),
		('history_days',      '30');
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/japa/japa.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "japa", "japa.db"), nil
}
