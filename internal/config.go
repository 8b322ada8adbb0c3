package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Library LibraryConfig     `yaml:"library"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Auth    AuthConfig        `yaml:"auth"`
	Sheets  SheetsConfig      `yaml:"sheets"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Library.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.Sheets.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration for serve mode.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// LibraryConfig holds the quote library root and shard sizing.
type LibraryConfig struct {
	Path      string `yaml:"path"`
	ChunkSize int    `yaml:"chunk_size"`
}

// Validate validates the library configuration.
func (c *LibraryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.ChunkSize, validation.Required, validation.Min(1)),
	)
}

// SQLiteConfig holds the path of the derived search index database.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration for the HTTP API.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// SheetsConfig holds the spreadsheet import source: the CSV export URL
// and the column headers the importer maps rows with. URL is only
// required when the fetch command runs, so it is not validated here.
type SheetsConfig struct {
	URL     string        `yaml:"url"`
	Columns ColumnsConfig `yaml:"columns"`
}

// ColumnsConfig names the spreadsheet columns holding each record field.
type ColumnsConfig struct {
	Category string `yaml:"category"`
	Quote    string `yaml:"quote"`
	Author   string `yaml:"author"`
	Source   string `yaml:"source"`
}

// Validate validates the sheets configuration.
func (c *SheetsConfig) Validate() error {
	return validation.ValidateStruct(&c.Columns,
		validation.Field(&c.Columns.Category, validation.Required),
		validation.Field(&c.Columns.Quote, validation.Required),
		validation.Field(&c.Columns.Author, validation.Required),
		validation.Field(&c.Columns.Source, validation.Required),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
// The default column headers match the historical Google Sheets form.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Library: LibraryConfig{
			Path:      "./library",
			ChunkSize: 100,
		},
		SQLite: SQLiteConfig{
			Path: "./quotevault.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Sheets: SheetsConfig{
			Columns: ColumnsConfig{
				Category: "Catégorie",
				Quote:    "Citation",
				Author:   "Auteur (la personne qui a dit la citation)",
				Source:   "Source (œuvre, chanson, ...)",
			},
		},
	}
}
