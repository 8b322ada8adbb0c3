package index

import (
	"database/sql"
	"fmt"

	"github.com/avigne/quotevault/internal/models"
)

// SearchResult is one search hit.
type SearchResult struct {
	Folder string `json:"folder"`
	Quote  string `json:"quote"`
	Author string `json:"author,omitempty"`
	Source string `json:"source,omitempty"`
}

// ReplaceShard replaces every indexed record of one shard file within
// a transaction and records the shard's checksum.
func (db *DB) ReplaceShard(path, folder, checksum string, items []models.Quote) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO shards (path, folder, checksum)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			folder   = excluded.folder,
			checksum = excluded.checksum
	`, path, folder, checksum)
	if err != nil {
		return fmt.Errorf("index: upsert shard: %w", err)
	}

	_, _ = tx.Exec(`DELETE FROM quotes WHERE shard_path = ?`, path)
	ftsDeleteShard(tx, path)

	if len(items) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO quotes (shard_path, folder, pos, quote, author, source)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("index: prepare record insert: %w", err)
		}
		defer stmt.Close()
		for pos, q := range items {
			if _, err := stmt.Exec(path, folder, pos, q.Text(), q.Author(), q.Source()); err != nil {
				return fmt.Errorf("index: insert record: %w", err)
			}
			if err := ftsInsert(tx, path, folder, q); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// DeleteShard removes a shard and its records from the index.
func (db *DB) DeleteShard(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDeleteShard(tx, path)
	_, _ = tx.Exec(`DELETE FROM quotes WHERE shard_path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM shards WHERE path = ?`, path)

	return tx.Commit()
}

// AllChecksums returns the stored checksum of every indexed shard.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM shards`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// Random returns one uniformly random indexed record, or nil when the
// index is empty.
func (db *DB) Random() (*SearchResult, error) {
	var r SearchResult
	err := db.conn.QueryRow(`
		SELECT folder, quote, author, source
		FROM quotes
		ORDER BY RANDOM()
		LIMIT 1
	`).Scan(&r.Folder, &r.Quote, &r.Author, &r.Source)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: random: %w", err)
	}
	return &r, nil
}

// FolderTotals returns per-folder record counts for every indexed
// folder, ordered by folder path.
func (db *DB) FolderTotals() ([]models.FolderInfo, error) {
	rows, err := db.conn.Query(`
		SELECT folder, COUNT(*)
		FROM quotes
		GROUP BY folder
		ORDER BY folder
	`)
	if err != nil {
		return nil, fmt.Errorf("index: folder totals: %w", err)
	}
	defer rows.Close()
	var out []models.FolderInfo
	for rows.Next() {
		var fi models.FolderInfo
		if err := rows.Scan(&fi.Path, &fi.Total); err != nil {
			return nil, err
		}
		out = append(out, fi)
	}
	return out, rows.Err()
}
