package data

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"heropick/internal/rates"
)

// Matchup kinds stored in the matchups table
const (
	KindAlly  = "ally"
	KindEnemy = "enemy"
)

// TableDB stores matchup and map win-rate snapshots with remote update capability
type TableDB struct {
	db             *sql.DB
	currentVersion string
	cache          *SetCache
}

// Manifest represents the remote manifest.json structure
type Manifest struct {
	Version    string `json:"version"`
	DataURL    string `json:"data_url"`
	DataSha256 string `json:"data_sha256"`
	UpdatedAt  string `json:"updated_at"`
	ForceReset bool   `json:"force_reset"`
}

// DataExport represents the data.json snapshot
type DataExport struct {
	Version     string        `json:"version"`
	GeneratedAt string        `json:"generatedAt"`
	Heroes      []HeroJSON    `json:"heroes"`
	Matchups    []MatchupJSON `json:"matchups"`
	Winrates    []WinrateJSON `json:"winrates"`
}

// HeroJSON registers a hero column in a matchup table
type HeroJSON struct {
	Kind     string `json:"kind"`
	Hero     string `json:"hero"`
	Position int    `json:"position"`
}

type MatchupJSON struct {
	Kind  string  `json:"kind"`
	Hero  string  `json:"hero"`
	Other string  `json:"other"`
	Value float64 `json:"value"`
}

type WinrateJSON struct {
	Map   string  `json:"map"`
	Hero  string  `json:"hero"`
	Value float64 `json:"value"`
}

// DefaultDBPath returns the table database location under the user config dir
func DefaultDBPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = "."
	}
	return filepath.Join(configDir, "HeroPick", "tables.db")
}

// NewTableDB opens (creating if needed) the table database at path
func NewTableDB(path string) (*TableDB, error) {
	if path == "" {
		path = DefaultDBPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	tdb := &TableDB{db: db, cache: NewSetCache()}
	if err := tdb.init(); err != nil {
		db.Close()
		return nil, err
	}

	tdb.loadCurrentVersion()
	return tdb, nil
}

// init creates the schema
func (t *TableDB) init() error {
	schema := `
		CREATE TABLE IF NOT EXISTS data_version (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			version TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS matchup_heroes (
			kind TEXT NOT NULL,
			hero TEXT NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (kind, hero)
		);

		CREATE TABLE IF NOT EXISTS matchups (
			kind TEXT NOT NULL,
			hero TEXT NOT NULL,
			other TEXT NOT NULL,
			value REAL NOT NULL,
			PRIMARY KEY (kind, hero, other)
		);

		CREATE TABLE IF NOT EXISTS winrates (
			map TEXT NOT NULL,
			hero TEXT NOT NULL,
			value REAL NOT NULL,
			PRIMARY KEY (map, hero)
		);
	`

	if _, err := t.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// loadCurrentVersion loads the snapshot version from the database
func (t *TableDB) loadCurrentVersion() {
	var version string
	err := t.db.QueryRow("SELECT version FROM data_version WHERE id = 1").Scan(&version)
	if err == nil {
		t.currentVersion = version
	}
}

// GetCurrentVersion returns the locally stored snapshot version
func (t *TableDB) GetCurrentVersion() string {
	return t.currentVersion
}

// CheckForUpdates fetches the remote manifest and imports a newer snapshot
func (t *TableDB) CheckForUpdates(manifestURL string) error {
	if manifestURL == "" {
		return fmt.Errorf("manifest URL not configured")
	}

	fmt.Printf("[Tables] Checking for updates from: %s\n", manifestURL)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(manifestURL)
	if err != nil {
		return fmt.Errorf("failed to fetch manifest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("manifest fetch returned status %d", resp.StatusCode)
	}

	var manifest Manifest
	if err := json.NewDecoder(resp.Body).Decode(&manifest); err != nil {
		return fmt.Errorf("failed to parse manifest: %w", err)
	}

	fmt.Printf("[Tables] Remote version: %s, Local version: %s, ForceReset: %v\n",
		manifest.Version, t.currentVersion, manifest.ForceReset)

	if manifest.ForceReset {
		fmt.Println("[Tables] Force reset requested - clearing local data")
		if err := t.clearLocalData(); err != nil {
			return err
		}
	}

	// Versions are timestamps or dotted numbers of fixed width, so string order works
	if manifest.Version != "" && manifest.Version <= t.currentVersion {
		fmt.Println("[Tables] Local data is up to date")
		return nil
	}

	fmt.Printf("[Tables] Downloading new data from: %s\n", manifest.DataURL)
	if err := t.downloadAndImport(manifest.DataURL, manifest.DataSha256, manifest.Version); err != nil {
		return fmt.Errorf("failed to download and import data: %w", err)
	}

	t.loadCurrentVersion()
	fmt.Printf("[Tables] Updated to version: %s\n", t.currentVersion)
	return nil
}

// downloadAndImport downloads data.json and imports it into SQLite
func (t *TableDB) downloadAndImport(dataURL, expectedSha256, manifestVersion string) error {
	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Get(dataURL)
	if err != nil {
		return fmt.Errorf("failed to fetch data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("data fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read data: %w", err)
	}

	if expectedSha256 != "" {
		sum := sha256.Sum256(body)
		actualSha256 := hex.EncodeToString(sum[:])
		if actualSha256 != expectedSha256 {
			return fmt.Errorf("SHA256 mismatch: expected %s, got %s", expectedSha256, actualSha256)
		}
		fmt.Println("[Tables] SHA256 verified successfully")
	}

	var data DataExport
	if err := json.Unmarshal(body, &data); err != nil {
		return fmt.Errorf("failed to parse data: %w", err)
	}

	return t.ImportData(&data, manifestVersion)
}

// ImportData replaces the stored tables with a snapshot in a single transaction
func (t *TableDB) ImportData(data *DataExport, version string) error {
	tx, err := t.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"matchup_heroes", "matchups", "winrates"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	stmtHeroes, err := tx.Prepare(`
		INSERT INTO matchup_heroes (kind, hero, position) VALUES (?, ?, ?)
		ON CONFLICT(kind, hero) DO UPDATE SET position = excluded.position
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare matchup_heroes statement: %w", err)
	}
	defer stmtHeroes.Close()

	for _, h := range data.Heroes {
		if _, err := stmtHeroes.Exec(h.Kind, h.Hero, h.Position); err != nil {
			return fmt.Errorf("failed to insert matchup_heroes: %w", err)
		}
	}

	stmtMatchups, err := tx.Prepare(`
		INSERT INTO matchups (kind, hero, other, value) VALUES (?, ?, ?, ?)
		ON CONFLICT(kind, hero, other) DO UPDATE SET value = excluded.value
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare matchups statement: %w", err)
	}
	defer stmtMatchups.Close()

	for _, m := range data.Matchups {
		if _, err := stmtMatchups.Exec(m.Kind, m.Hero, m.Other, m.Value); err != nil {
			return fmt.Errorf("failed to insert matchups: %w", err)
		}
	}

	stmtWinrates, err := tx.Prepare(`
		INSERT INTO winrates (map, hero, value) VALUES (?, ?, ?)
		ON CONFLICT(map, hero) DO UPDATE SET value = excluded.value
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare winrates statement: %w", err)
	}
	defer stmtWinrates.Close()

	for _, w := range data.Winrates {
		if _, err := stmtWinrates.Exec(rates.Slug(w.Map), w.Hero, w.Value); err != nil {
			return fmt.Errorf("failed to insert winrates: %w", err)
		}
	}

	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO data_version (id, version, updated_at)
		VALUES (1, ?, datetime('now'))
	`, version); err != nil {
		return fmt.Errorf("failed to update version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	t.currentVersion = version
	t.cache.Clear()

	fmt.Printf("[Tables] Imported: %d heroes, %d matchup cells, %d map scores\n",
		len(data.Heroes), len(data.Matchups), len(data.Winrates))
	return nil
}

// HasData checks if the database has any matchup data
func (t *TableDB) HasData() bool {
	var count int
	err := t.db.QueryRow("SELECT COUNT(*) FROM matchup_heroes").Scan(&count)
	return err == nil && count > 0
}

// clearLocalData clears the version tracking to force a redownload
func (t *TableDB) clearLocalData() error {
	if _, err := t.db.Exec("DELETE FROM data_version"); err != nil {
		return fmt.Errorf("failed to clear version: %w", err)
	}
	t.currentVersion = ""
	return nil
}

// ForceUpdate clears local version and triggers a fresh download
func (t *TableDB) ForceUpdate(manifestURL string) error {
	fmt.Println("[Tables] Force update requested - clearing local version")
	if err := t.clearLocalData(); err != nil {
		return err
	}
	return t.CheckForUpdates(manifestURL)
}

// Close closes the database connection
func (t *TableDB) Close() error {
	return t.db.Close()
}
