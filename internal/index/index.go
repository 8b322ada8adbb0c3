package index

import "github.com/avigne/quotevault/internal/models"

// QuoteIndex defines the interface for quote indexing operations.
// Consumers should depend on this interface rather than the concrete
// *DB type to facilitate testing with mocks.
type QuoteIndex interface {
	ReplaceShard(path, folder, checksum string, items []models.Quote) error
	DeleteShard(path string) error
	AllChecksums() (map[string]string, error)
	Search(query string, limit int) ([]SearchResult, error)
	Random() (*SearchResult, error)
	FolderTotals() ([]models.FolderInfo, error)
	Close() error
}

// Verify *DB satisfies QuoteIndex at compile time.
var _ QuoteIndex = (*DB)(nil)
