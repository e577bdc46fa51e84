// Package catalog provides the SQLite-backed cache of discovered
// presentation metadata. It exists so listing stays cheap for large
// libraries; the manifest documents on disk remain the source of truth
// and the catalog is rebuilt from them at any time.
package catalog

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS presentations (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL DEFAULT '',
	slide_count  INTEGER NOT NULL DEFAULT 0,
	tab_count    INTEGER NOT NULL DEFAULT 0,
	group_count  INTEGER NOT NULL DEFAULT 0,
	has_manifest INTEGER NOT NULL DEFAULT 0,
	checksum     TEXT NOT NULL DEFAULT '',
	updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS assets (
	presentation TEXT NOT NULL,
	file         TEXT NOT NULL,
	is_index     INTEGER NOT NULL DEFAULT 0,
	size         INTEGER NOT NULL DEFAULT 0,
	updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (presentation, file)
);

CREATE INDEX IF NOT EXISTS idx_assets_presentation ON assets(presentation);
`

// DB wraps a sql.DB with catalog-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("catalog: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
