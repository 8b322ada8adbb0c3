package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/avigne/quotevault/internal/index"
)

// Handler holds API route handlers.
type Handler struct {
	svc *Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// ListFolders handles GET /api/folders.
func (h *Handler) ListFolders(w http.ResponseWriter, _ *http.Request) {
	folders, err := h.svc.Folders()
	if err != nil {
		slog.Error("list folders failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	total := 0
	for _, f := range folders {
		total += f.Total
	}
	writeJSON(w, http.StatusOK, FolderListResponse{Folders: folders, Total: total})
}

// RandomQuote handles GET /api/quotes/random.
func (h *Handler) RandomQuote(w http.ResponseWriter, _ *http.Request) {
	r, err := h.svc.Random()
	if err != nil {
		slog.Error("random quote failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if r == nil {
		writeJSON(w, http.StatusNotFound, errorBody("library is empty"))
		return
	}
	writeJSON(w, http.StatusOK, r)
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("q is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := h.svc.Search(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
