package db

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS friends (
    id TEXT PRIMARY KEY,
    first_name TEXT NOT NULL,
    last_name TEXT,
    relation TEXT,
    long_distance BOOLEAN NOT NULL DEFAULT 0,
    max_time_amount INTEGER CHECK (max_time_amount IS NULL OR max_time_amount > 0),
    max_time_unit TEXT CHECK (max_time_unit IS NULL OR max_time_unit IN ('day', 'week', 'month', 'year')),
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS tags (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at DATETIME NOT NULL
);

-- No foreign keys: deleting a friend leaves hangs pointing at the old id.
CREATE TABLE IF NOT EXISTS friend_tags (
    friend_id TEXT NOT NULL,
    tag_id TEXT NOT NULL,
    PRIMARY KEY (friend_id, tag_id)
);

CREATE TABLE IF NOT EXISTS hangs (
    id TEXT PRIMARY KEY,
    date_contacted DATETIME NOT NULL,
    notes TEXT,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS hang_friends (
    hang_id TEXT NOT NULL,
    friend_id TEXT NOT NULL,
    PRIMARY KEY (hang_id, friend_id),
    FOREIGN KEY (hang_id) REFERENCES hangs (id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_friends_name ON friends (first_name, last_name);
CREATE INDEX IF NOT EXISTS idx_tags_name ON tags (name);
CREATE INDEX IF NOT EXISTS idx_friend_tags_tag ON friend_tags (tag_id);
CREATE INDEX IF NOT EXISTS idx_hangs_date ON hangs (date_contacted DESC);
CREATE INDEX IF NOT EXISTS idx_hang_friends_friend ON hang_friends (friend_id);`

// Initialize creates a new database with the complete schema
func Initialize(dbPath string) error {
	if _, err := os.Stat(dbPath); err == nil {
		return fmt.Errorf("database already exists at %s", dbPath)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}

	conn, err := sqlx.Open("sqlite3", dsn(dbPath))
	if err != nil {
		return fmt.Errorf("creating database: %w", err)
	}
	defer conn.Close()

	if _, err := conn.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

func dsn(dbPath string) string {
	return "file:" + dbPath + "?_foreign_keys=on&_busy_timeout=5000"
}
