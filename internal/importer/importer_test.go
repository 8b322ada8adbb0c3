package importer

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/avigne/quotevault/internal/models"
	"github.com/avigne/quotevault/internal/storage"
)

const csvExport = "Catégorie,Citation,Auteur,Source\n" +
	"poetry,Première citation,Hugo,Les Contemplations\n" +
	"poetry,Deuxième citation,Rimbaud,\n" +
	"../../etc,Escape attempt,Nobody,\n" +
	"missing,Lost quote,Nobody,\n"

func testImporter(t *testing.T, url string) (*Importer, *storage.FS) {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "poetry"), 0o755); err != nil {
		t.Fatal(err)
	}
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	cols := Columns{Category: "Catégorie", Quote: "Citation", Author: "Auteur", Source: "Source"}
	return New(store, 100, url, cols, logger), store
}

func TestRunImportsRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(csvExport))
	}))
	defer srv.Close()

	im, store := testImporter(t, srv.URL)
	added, err := im.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// The escape attempt and the missing folder are skipped.
	if added != 2 {
		t.Errorf("added = %d, want 2", added)
	}

	data, err := store.Read("poetry/1.json")
	if err != nil {
		t.Fatalf("read shard: %v", err)
	}
	var items []models.Quote
	if err := json.Unmarshal(data, &items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("records = %d, want 2", len(items))
	}
	if items[0].Text() != "Première citation" || items[0].Author() != "Hugo" {
		t.Errorf("first record = %v", items[0])
	}
	// Trailing empty source is trimmed.
	if len(items[1]) != 2 {
		t.Errorf("second record = %v, want trailing empty field trimmed", items[1])
	}

	var hdr map[string]any
	hdrData, err := store.Read("poetry/0.json")
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(hdrData, &hdr); err != nil {
		t.Fatal(err)
	}
	if hdr["total"].(float64) != 2 {
		t.Errorf("header total = %v, want 2", hdr["total"])
	}
}

func TestRunMissingColumn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("Wrong,Header\nrow,data\n"))
	}))
	defer srv.Close()

	im, _ := testImporter(t, srv.URL)
	if _, err := im.Run(context.Background()); err == nil {
		t.Error("expected error for missing columns")
	}
}

func TestRunNoURL(t *testing.T) {
	im, _ := testImporter(t, "")
	if _, err := im.Run(context.Background()); err == nil {
		t.Error("expected error when no URL is configured")
	}
}

func TestRunServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	im, _ := testImporter(t, srv.URL)
	if _, err := im.Run(context.Background()); err == nil {
		t.Error("expected error for failing download")
	}
}
