package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/avigne/quotevault/internal/index"
	"github.com/avigne/quotevault/internal/models"
	"github.com/avigne/quotevault/internal/storage"
)

// testEnv sets up a temp library, SQLite index, service, and router.
// An empty authToken means auth is disabled.
func testEnv(t *testing.T, authToken string) (http.Handler, string) {
	t.Helper()

	root := t.TempDir()
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}

	db, err := index.Open(filepath.Join(t.TempDir(), "api-test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	svc := NewService(store, db, 100)
	router := NewRouter(svc, authToken != "", authToken, nil)
	return router, root
}

func seedFolder(t *testing.T, root, dir string, items []models.Quote) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(dir))
	if err := os.MkdirAll(abs, 0o755); err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(items)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(abs, "1.json"), data, 0o644); err != nil {
		t.Fatal(err)
	}
	hdr := []byte(`{"total":` + jsonInt(len(items)) + `,"chunk_size":100}`)
	if err := os.WriteFile(filepath.Join(abs, "0.json"), hdr, 0o644); err != nil {
		t.Fatal(err)
	}
}

func jsonInt(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestListFolders(t *testing.T) {
	router, root := testEnv(t, "")
	seedFolder(t, root, "poetry", []models.Quote{{"a", "A", ""}, {"b", "B", ""}})
	seedFolder(t, root, "films", []models.Quote{{"c", "C", ""}})

	req := httptest.NewRequest(http.MethodGet, "/folders", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp FolderListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Folders) != 2 || resp.Total != 3 {
		t.Errorf("resp = %+v, want 2 folders totalling 3", resp)
	}
}

func TestRandomQuoteEmptyLibrary(t *testing.T) {
	router, _ := testEnv(t, "")
	req := httptest.NewRequest(http.MethodGet, "/quotes/random", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for empty library", w.Code)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	router, _ := testEnv(t, "")
	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 without q", w.Code)
	}
}

func TestSearchReturnsEmptyResults(t *testing.T) {
	router, _ := testEnv(t, "")
	req := httptest.NewRequest(http.MethodGet, "/search?q=nothing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp SearchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Results == nil || len(resp.Results) != 0 {
		t.Errorf("results = %v, want empty non-nil slice", resp.Results)
	}
}

func TestAuthRejectsMissingToken(t *testing.T) {
	router, _ := testEnv(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/folders", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without token", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/folders", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 with wrong token", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/folders", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 with valid token", w.Code)
	}
}
