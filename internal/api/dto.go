package api

import (
	"github.com/avigne/quotevault/internal/index"
	"github.com/avigne/quotevault/internal/models"
)

// FolderListResponse wraps the folder listing.
type FolderListResponse struct {
	Folders []models.FolderInfo `json:"folders"`
	Total   int                 `json:"total"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results"`
}
