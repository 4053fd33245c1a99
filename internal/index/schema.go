// Package index provides a SQLite-backed card index with optional FTS5 search.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/cardex/internal/vcard"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS cards (
	path       TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	sort_name  TEXT NOT NULL DEFAULT '',
	checksum   TEXT NOT NULL DEFAULT '',
	valid      INTEGER NOT NULL DEFAULT 0,
	error_code TEXT NOT NULL DEFAULT '',
	op_length  INTEGER NOT NULL DEFAULT 0,
	body       TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS properties (
	path     TEXT NOT NULL REFERENCES cards(path) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	grp      TEXT NOT NULL DEFAULT '',
	name     TEXT NOT NULL,
	vals     TEXT NOT NULL DEFAULT '',
	PRIMARY KEY(path, position)
);

CREATE INDEX IF NOT EXISTS idx_cards_sort_name ON cards(sort_name);
CREATE INDEX IF NOT EXISTS idx_properties_name ON properties(name);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn      *sql.DB
	parseOpts []vcard.ParseOption
}

// Open opens (or creates) the SQLite database and applies the schema.
// opts are used whenever the index parses a card file.
func Open(dsn string, opts ...vcard.ParseOption) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn, parseOpts: opts}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
