package index

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"path"

	"github.com/avigne/quotevault/internal/quotes"
	"github.com/avigne/quotevault/internal/storage"
)

// Sync walks the library and brings the index up to date:
//   - new/changed shard files are decoded and re-indexed
//   - shards removed from disk are deleted from the index
//
// Shards that fail to read or decode are skipped with a warning; the
// canonical data is on disk and a later sync retries them.
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	folders, err := store.Folders()
	if err != nil {
		return err
	}
	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{})
	for _, folder := range folders {
		entries, err := store.ReadDir(folder)
		if err != nil {
			logger.Warn("sync: list folder failed", slog.String("folder", folder), slog.String("error", err.Error()))
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			n, ok := quotes.ParseShardName(e.Name())
			if !ok || n == 0 {
				continue
			}
			shardPath := path.Join(folder, e.Name())
			disk[shardPath] = struct{}{}

			data, err := store.Read(shardPath)
			if err != nil {
				logger.Warn("sync: read failed", slog.String("path", shardPath), slog.String("error", err.Error()))
				continue
			}
			cs := checksum(data)
			if checksums[shardPath] == cs {
				continue
			}
			items, err := quotes.DecodeItems(data)
			if err != nil {
				logger.Warn("sync: decode failed", slog.String("path", shardPath), slog.String("error", err.Error()))
				continue
			}
			if err := db.ReplaceShard(shardPath, folder, cs, items); err != nil {
				logger.Warn("sync: index failed", slog.String("path", shardPath), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: indexed", slog.String("path", shardPath), slog.Int("records", len(items)))
			}
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteShard(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

func checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
