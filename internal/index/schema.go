// Package index provides a SQLite-backed search index over quote
// shards, with optional FTS5 full-text search. The index is a derived
// cache: the JSON shard files stay canonical and the database can be
// rebuilt from them at any time.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS shards (
	path     TEXT PRIMARY KEY,
	folder   TEXT NOT NULL,
	checksum TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS quotes (
	shard_path TEXT NOT NULL,
	folder     TEXT NOT NULL,
	pos        INTEGER NOT NULL,
	quote      TEXT NOT NULL DEFAULT '',
	author     TEXT NOT NULL DEFAULT '',
	source     TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_quotes_shard ON quotes(shard_path);
CREATE INDEX IF NOT EXISTS idx_quotes_folder ON quotes(folder);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
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
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
