//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"

	"github.com/avigne/quotevault/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS quotes_fts USING fts5(
			shard_path UNINDEXED,
			folder UNINDEXED,
			quote,
			author,
			source,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsInsert(tx *sql.Tx, path, folder string, q models.Quote) error {
	_, err := tx.Exec(`
		INSERT INTO quotes_fts (shard_path, folder, quote, author, source)
		VALUES (?, ?, ?, ?, ?)
	`, path, folder, q.Text(), q.Author(), q.Source())
	if err != nil {
		return fmt.Errorf("index: insert fts: %w", err)
	}
	return nil
}

func ftsDeleteShard(tx *sql.Tx, path string) {
	_, _ = tx.Exec(`DELETE FROM quotes_fts WHERE shard_path = ?`, path)
}

// Search performs an FTS5 full-text search across quote, author, and
// source fields.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT folder, quote, author, source
		FROM quotes_fts
		WHERE quotes_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Folder, &r.Quote, &r.Author, &r.Source); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
