//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"

	"github.com/avigne/quotevault/internal/models"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search falls back to LIKE on the quotes table.
	return nil
}

func ftsInsert(_ *sql.Tx, _, _ string, _ models.Quote) error {
	// Records are already stored in the quotes table; nothing extra to do.
	return nil
}

func ftsDeleteShard(_ *sql.Tx, _ string) {}

// Search performs a LIKE-based search (fallback when FTS5 is not
// compiled in).
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT folder, quote, author, source
		FROM quotes
		WHERE quote LIKE ? OR author LIKE ? OR source LIKE ?
		LIMIT ?
	`, like, like, like, limit)
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
