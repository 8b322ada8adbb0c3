package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"

	"github.com/avigne/quotevault/internal"
	"github.com/avigne/quotevault/internal/importer"
	"github.com/avigne/quotevault/internal/index"
	"github.com/avigne/quotevault/internal/mcpserver"
	"github.com/avigne/quotevault/internal/models"
	"github.com/avigne/quotevault/internal/quotes"
	"github.com/avigne/quotevault/internal/storage"
	pkgconfig "github.com/avigne/quotevault/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	found, err := pkgconfig.LoadIfExists(cmd.String("config"), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !found {
		// Defaults are used as-is; still run validation on them.
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// consoleLogger builds a human-oriented logger for the one-shot CLI
// commands. The serve command uses JSON logging instead.
func consoleLogger(level slog.Level) *slog.Logger {
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
}

func openStore(cfg *internal.Config) (*storage.FS, error) {
	if err := os.MkdirAll(cfg.Library.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create library dir: %w", err)
	}
	return storage.NewFS(cfg.Library.Path)
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runAdd(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	in := bufio.NewReader(os.Stdin)
	prompt := func(label string) (string, error) {
		fmt.Printf("%s: ", label)
		line, err := in.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
		}
		return strings.TrimSpace(line), nil
	}

	dir := strings.TrimSpace(cmd.Args().First())
	if dir == "" {
		dir, err = prompt("Folder")
		if err != nil {
			return err
		}
	}
	info, err := store.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("folder does not exist: %s", dir)
	}

	text, err := prompt("Quote")
	if err != nil {
		return err
	}
	author, err := prompt("Author")
	if err != nil {
		return err
	}
	source, err := prompt("Source")
	if err != nil {
		return err
	}

	q := models.NewQuote(text, author, source)
	if len(q) == 0 {
		return fmt.Errorf("quote text must not be empty")
	}
	if err := quotes.New(store, dir, cfg.Library.ChunkSize).Add(q); err != nil {
		return err
	}
	fmt.Printf("added to %s: %s\n", dir, q.Text())
	return nil
}

// checkLibrary validates every quote folder and logs the findings.
// It returns the total finding count.
func checkLibrary(store *storage.FS, chunk int, logger *slog.Logger) (int, error) {
	dirs, err := store.Folders()
	if err != nil {
		return 0, err
	}

	count := 0
	for _, dir := range dirs {
		findings, err := quotes.New(store, dir, chunk).Check()
		if err != nil {
			return count, fmt.Errorf("check %s: %w", dir, err)
		}
		for _, f := range findings {
			logger.Warn("finding",
				slog.String("folder", dir),
				slog.String("kind", string(f.Kind)),
				slog.String("file", f.File),
				slog.String("detail", f.Detail))
		}
		count += len(findings)
	}
	return count, nil
}

func runCheck(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	logger := consoleLogger(cfg.App.LogLevel)

	count, err := checkLibrary(store, cfg.Library.ChunkSize, logger)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%d findings", count)
	}
	logger.Info("library is clean")
	return nil
}

func runFix(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	logger := consoleLogger(cfg.App.LogLevel)

	count, err := checkLibrary(store, cfg.Library.ChunkSize, logger)
	if err != nil {
		return err
	}
	logger.Info("check complete", slog.Int("findings", count))

	dirs, err := store.Folders()
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := quotes.New(store, dir, cfg.Library.ChunkSize).Fix(); err != nil {
			return fmt.Errorf("fix %s: %w", dir, err)
		}
		logger.Info("folder rewritten", slog.String("folder", dir))
	}
	return nil
}

func runFetch(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	logger := consoleLogger(cfg.App.LogLevel)

	url := cfg.Sheets.URL
	if url == "" {
		url = os.Getenv("GOOGLE_SHEETS_URL")
	}
	if url == "" {
		return fmt.Errorf("no spreadsheet URL: set sheets.url in the config or GOOGLE_SHEETS_URL")
	}

	im := importer.New(store, cfg.Library.ChunkSize, url, importer.Columns{
		Category: cfg.Sheets.Columns.Category,
		Quote:    cfg.Sheets.Columns.Quote,
		Author:   cfg.Sheets.Columns.Author,
		Source:   cfg.Sheets.Columns.Source,
	}, logger)

	added, err := im.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("import complete", slog.Int("added", added))
	return nil
}

func runSearch(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("usage: quotevault search <query>")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	logger := consoleLogger(cfg.App.LogLevel)

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	if err := index.Sync(db, store, logger); err != nil {
		return fmt.Errorf("sync index: %w", err)
	}

	results, err := db.Search(query, 20)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("no quotes found")
		return nil
	}
	for _, res := range results {
		line := res.Quote
		if res.Author != "" {
			line += " - " + res.Author
		}
		if res.Source != "" {
			line += " (" + res.Source + ")"
		}
		fmt.Printf("[%s] %s\n", res.Folder, line)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	// Stdout carries the MCP protocol, so log to stderr only.
	logger := consoleLogger(cfg.App.LogLevel)

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	return mcpserver.New(store, db, cfg.Library.ChunkSize).ServeStdio()
}

func main() {
	cmd := &cli.Command{
		Name:  "quotevault",
		Usage: "Sharded quote library with consistency checks, full-text search, and spreadsheet import",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Interactively add a quote to an existing folder",
				ArgsUsage: "[folder]",
				Action:    runAdd,
			},
			{
				Name:   "check",
				Usage:  "Validate every quote folder and report findings",
				Action: runCheck,
			},
			{
				Name:   "fix",
				Usage:  "Validate, then rewrite every quote folder into canonical shards",
				Action: runFix,
			},
			{
				Name:   "fetch",
				Usage:  "Import quotes from the configured spreadsheet CSV export",
				Action: runFetch,
			},
			{
				Name:      "search",
				Usage:     "Full-text search through the library",
				ArgsUsage: "<query>",
				Action:    runSearch,
			},
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server with live indexing",
				Action: runServe,
			},
			{
				Name:   "mcp",
				Usage:  "Run the MCP server on stdin/stdout",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
