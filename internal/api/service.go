package api

import (
	"github.com/avigne/quotevault/internal/index"
	"github.com/avigne/quotevault/internal/models"
	"github.com/avigne/quotevault/internal/quotes"
	"github.com/avigne/quotevault/internal/storage"
)

// Service coordinates storage, the folder engine, and the search index
// for the API layer.
type Service struct {
	store storage.Provider
	db    *index.DB
	chunk int
}

// NewService creates a new API service.
func NewService(store storage.Provider, db *index.DB, chunk int) *Service {
	return &Service{store: store, db: db, chunk: chunk}
}

// Folders lists every quote folder with its record total, computed
// live from the shard files rather than the index.
func (s *Service) Folders() ([]models.FolderInfo, error) {
	dirs, err := s.store.Folders()
	if err != nil {
		return nil, err
	}
	out := make([]models.FolderInfo, 0, len(dirs))
	for _, dir := range dirs {
		folder := quotes.New(s.store, dir, s.chunk)
		files, _, err := folder.Files()
		if err != nil {
			return nil, err
		}
		total, err := folder.Total(files)
		if err != nil {
			return nil, err
		}
		out = append(out, models.FolderInfo{Path: dir, Total: total})
	}
	return out, nil
}

// Random returns one random record, or nil when the library is empty.
func (s *Service) Random() (*index.SearchResult, error) {
	return s.db.Random()
}

// Search runs a full-text query against the index.
func (s *Service) Search(query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}
