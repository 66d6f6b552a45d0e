// Package config loads and saves the TOML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"heropick/internal/capture"
	"heropick/internal/scoring"
	"heropick/internal/tables"
	"heropick/internal/vision"
)

// DefaultPath is the config file looked up in the working directory
const DefaultPath = "config.toml"

// Table sources
const (
	SourceCSV      = "csv"
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
)

// Config represents the application configuration.
type Config struct {
	Paths       PathsConfig       `toml:"paths"`
	Recognition RecognitionConfig `toml:"recognition"`
	Scoring     ScoringConfig     `toml:"scoring"`
	Tables      TablesConfig      `toml:"tables"`
	Overlay     OverlayConfig     `toml:"overlay"`
	Player      PlayerConfig      `toml:"player"`
	Capture     CaptureConfig     `toml:"capture"`
}

// PathsConfig locates the files the pipeline reads and writes.
type PathsConfig struct {
	Templates  string `toml:"templates"`   // Hero icon directory
	CaptureDir string `toml:"capture_dir"` // Screenshot and variant crops
	Lineup     string `toml:"lineup"`      // Recognized roster output
	Matchups   string `toml:"matchups"`    // Matchup sheet (CSV)
	Winrates   string `toml:"winrates"`    // Per-map win-rate sheets (<map-slug>.csv)
	RatesDir   string `toml:"rates_dir"`   // Downloaded rates pages
	Database   string `toml:"database"`    // SQLite snapshot (empty = user config dir)
}

// RecognitionConfig contains template matching settings.
type RecognitionConfig struct {
	TemplateSize int `toml:"template_size"`
}

// ScoringConfig contains score weights.
type ScoringConfig struct {
	AllyWeight float64 `toml:"ally_weight"`
}

// TablesConfig selects where matchup and map tables come from.
type TablesConfig struct {
	Source        string `toml:"source"` // csv, sqlite or postgres
	WinrateColumn int    `toml:"winrate_column"`
	ManifestURL   string `toml:"manifest_url"`
}

// OverlayConfig contains the websocket overlay settings.
type OverlayConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

// PlayerConfig holds the player's choices made from the menu.
type PlayerConfig struct {
	Role          string   `toml:"role"`
	Map           string   `toml:"map"`
	Favorites     []string `toml:"favorites"`
	OnlyFavorites bool     `toml:"only_favorites"`
}

// CaptureConfig contains screen capture settings.
type CaptureConfig struct {
	Display        int    `toml:"display"`
	ScreenshotFile string `toml:"screenshot_file"` // Replay a saved screenshot instead of grabbing the screen
	Debounce       string `toml:"debounce"`        // Watch mode quiet period
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			Templates:  "heroes",
			CaptureDir: "print",
			Lineup:     "lineup.txt",
			Matchups:   "heroes.csv",
			Winrates:   "winrates",
			RatesDir:   "winratemaps",
		},
		Recognition: RecognitionConfig{
			TemplateSize: vision.DefaultTemplateSize,
		},
		Scoring: ScoringConfig{
			AllyWeight: scoring.DefaultAllyWeight,
		},
		Tables: TablesConfig{
			Source:        SourceCSV,
			WinrateColumn: tables.DefaultWinrateColumn,
		},
		Overlay: OverlayConfig{
			Enabled: false,
			Addr:    "127.0.0.1:7777",
		},
		Player: PlayerConfig{
			Role: string(capture.RoleOpen),
		},
		Capture: CaptureConfig{
			Debounce: "500ms",
		},
	}
}

// Load loads the configuration from path. Returns default config if the file doesn't exist.
// Keys missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

// Save saves the configuration to path.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Recognition.TemplateSize <= 0 {
		return fmt.Errorf("template size must be positive: %d", c.Recognition.TemplateSize)
	}

	if c.Scoring.AllyWeight < 0 {
		return fmt.Errorf("ally weight cannot be negative: %v", c.Scoring.AllyWeight)
	}

	switch strings.ToLower(c.Tables.Source) {
	case SourceCSV, SourceSQLite, SourcePostgres:
	default:
		return fmt.Errorf("unknown table source %q", c.Tables.Source)
	}

	if c.Tables.WinrateColumn < 1 {
		return fmt.Errorf("winrate column must be at least 1: %d", c.Tables.WinrateColumn)
	}

	if _, err := capture.ParseRole(c.Player.Role); err != nil {
		return err
	}

	if _, err := time.ParseDuration(c.Capture.Debounce); err != nil {
		return fmt.Errorf("invalid debounce %q: %w", c.Capture.Debounce, err)
	}

	if c.Paths.Templates == "" || c.Paths.Lineup == "" || c.Paths.CaptureDir == "" {
		return fmt.Errorf("templates, capture_dir and lineup paths are required")
	}

	return nil
}

// Weights returns the scoring weights.
func (c *Config) Weights() scoring.Weights {
	return scoring.Weights{Ally: c.Scoring.AllyWeight}
}

// Role returns the parsed player role, defaulting to open queue.
func (c *Config) Role() capture.Role {
	return c.Player.ParsedRole()
}

// ParsedRole returns the player role, defaulting to open queue.
func (p PlayerConfig) ParsedRole() capture.Role {
	r, err := capture.ParseRole(p.Role)
	if err != nil {
		return capture.RoleOpen
	}
	return r
}

// GetDebounce returns the watch debounce as a duration.
func (c *Config) GetDebounce() time.Duration {
	d, err := time.ParseDuration(c.Capture.Debounce)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}
