// Package importer pulls quote rows from a spreadsheet CSV export and
// appends them to their folders.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/carlmjohnson/requests"

	"github.com/avigne/quotevault/internal/apperr"
	"github.com/avigne/quotevault/internal/models"
	"github.com/avigne/quotevault/internal/quotes"
	"github.com/avigne/quotevault/internal/storage"
)

// Columns names the spreadsheet columns holding each record field.
type Columns struct {
	Category string
	Quote    string
	Author   string
	Source   string
}

// Importer downloads a CSV export and appends one record per row to
// the folder named by the row's category column.
type Importer struct {
	store   storage.Provider
	chunk   int
	url     string
	columns Columns
	logger  *slog.Logger
}

// New creates an Importer. url is the CSV export endpoint; chunk is
// the shard size handed to the folder engine.
func New(store storage.Provider, chunk int, url string, columns Columns, logger *slog.Logger) *Importer {
	return &Importer{store: store, chunk: chunk, url: url, columns: columns, logger: logger}
}

// Run downloads the export and imports every row. Rows with a
// suspicious category path (escaping the library root) or a category
// folder that does not exist are skipped with a warning; any other
// failure aborts the run. It returns the number of records added.
func (im *Importer) Run(ctx context.Context) (int, error) {
	if im.url == "" {
		return 0, fmt.Errorf("importer: no spreadsheet URL configured")
	}

	im.logger.Info("downloading spreadsheet export", slog.String("url", im.url))
	var body string
	fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := requests.URL(im.url).ToString(&body).Fetch(fetchCtx); err != nil {
		return 0, fmt.Errorf("importer: download export: %w", err)
	}

	rows, err := im.parseRows(body)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, row := range rows {
		ok, err := im.importRow(row)
		if err != nil {
			return added, err
		}
		if ok {
			added++
		}
	}

	im.logger.Info("import finished", slog.Int("added", added))
	if added > 0 {
		im.logger.Info("now please delete the imported rows from the spreadsheet")
	}
	return added, nil
}

// row is one parsed spreadsheet line.
type row struct {
	category string
	quote    models.Quote
}

// parseRows maps the CSV header to the configured columns and extracts
// every record row.
func (im *Importer) parseRows(body string) ([]row, error) {
	r := csv.NewReader(strings.NewReader(body))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("importer: parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	col := func(header []string, name string) (int, error) {
		for i, h := range header {
			if strings.TrimSpace(h) == name {
				return i, nil
			}
		}
		return 0, fmt.Errorf("importer: column %q not found in export header", name)
	}
	header := records[0]
	catIdx, err := col(header, im.columns.Category)
	if err != nil {
		return nil, err
	}
	quoteIdx, err := col(header, im.columns.Quote)
	if err != nil {
		return nil, err
	}
	authorIdx, err := col(header, im.columns.Author)
	if err != nil {
		return nil, err
	}
	sourceIdx, err := col(header, im.columns.Source)
	if err != nil {
		return nil, err
	}

	field := func(rec []string, idx int) string {
		if idx < len(rec) {
			return rec[idx]
		}
		return ""
	}

	var out []row
	for _, rec := range records[1:] {
		out = append(out, row{
			category: strings.TrimSpace(field(rec, catIdx)),
			quote: models.NewQuote(
				field(rec, quoteIdx),
				field(rec, authorIdx),
				field(rec, sourceIdx),
			),
		})
	}
	return out, nil
}

// importRow appends one record to its category folder. It reports
// whether the record was added.
func (im *Importer) importRow(r row) (bool, error) {
	info, err := im.store.Stat(r.category)
	switch {
	case errors.Is(err, apperr.ErrOutsideRoot):
		im.logger.Warn("suspicious category path, ignoring row",
			slog.String("category", r.category))
		return false, nil
	case errors.Is(err, fs.ErrNotExist):
		im.logger.Warn("category folder does not exist, ignoring row",
			slog.String("category", r.category))
		return false, nil
	case err != nil:
		return false, fmt.Errorf("importer: stat category: %w", err)
	case !info.IsDir():
		im.logger.Warn("category is not a folder, ignoring row",
			slog.String("category", r.category))
		return false, nil
	}

	folder := quotes.New(im.store, r.category, im.chunk)
	if err := folder.Add(r.quote); err != nil {
		return false, fmt.Errorf("importer: add to %s: %w", r.category, err)
	}
	return true, nil
}
