package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"heropick/internal/data"
	"heropick/internal/heroes"
	"heropick/internal/rates"
	"heropick/internal/stats"
	"heropick/internal/tables"
)

// CLI flags
var (
	matchupsPath = flag.String("matchups", "heroes.csv", "Matchup sheet (CSV)")
	ratesDir     = flag.String("rates-dir", "winratemaps", "Directory of downloaded rates pages")
	outputDir    = flag.String("output-dir", "./export", "Directory to output data.json and manifest.json")
	version      = flag.String("version", "", "Snapshot version (default: current UTC date)")
	dataURL      = flag.String("data-url", "", "Public URL of data.json recorded in the manifest")
	fetch        = flag.Bool("fetch", false, "Download rates pages before building")
	publish      = flag.Bool("publish", false, "Also publish the snapshot to PostgreSQL (DATABASE_URL)")
)

func main() {
	flag.Parse()

	// Load .env
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			fmt.Printf("Loaded .env from: %s\n", path)
			break
		}
	}

	ctx := context.Background()

	if *version == "" {
		*version = time.Now().UTC().Format("2006.01.02")
	}

	if *fetch {
		saved, err := rates.NewFetcher().FetchAll(ctx, heroes.Maps, *ratesDir)
		if err != nil {
			log.Fatalf("Failed to fetch rates pages: %v", err)
		}
		fmt.Printf("Fetched %d pages\n", saved)
	}

	ally, enemy, err := tables.LoadMatchupsCSV(*matchupsPath)
	if err != nil {
		log.Fatalf("Failed to load matchups: %v", err)
	}
	fmt.Printf("Loaded matchups: %d ally rows, %d enemy rows\n", ally.Len(), enemy.Len())

	// Per-map sheets are kept next to the snapshot for inspection
	sheetDir := filepath.Join(*outputDir, "winrates")
	if err := os.MkdirAll(sheetDir, 0755); err != nil {
		log.Fatalf("Failed to create %s: %v", sheetDir, err)
	}

	winrates := make(map[string]*tables.WinrateTable)
	for i, m := range heroes.Maps {
		fmt.Printf("\n[%d/%d] %s\n", i+1, len(heroes.Maps), m)

		sheet := rates.SheetPath(sheetDir, m)
		if _, err := rates.Extract(*ratesDir, m, sheet); err != nil {
			log.Printf("  Skipping: %v", err)
			continue
		}
		table, err := tables.LoadWinratesCSV(sheet, tables.DefaultWinrateColumn)
		if err != nil {
			log.Printf("  Skipping: %v", err)
			continue
		}
		winrates[m] = table
	}

	if len(winrates) == 0 {
		fmt.Println("Warning: no map win rates found, snapshot has matchups only")
	}

	export := data.BuildExport(*version, ally, enemy, winrates)
	manifest, err := data.ExportSnapshot(*outputDir, export, *dataURL)
	if err != nil {
		log.Fatalf("Failed to export snapshot: %v", err)
	}
	fmt.Printf("\nExported version %s (%d maps) sha256 %s\n", manifest.Version, len(winrates), manifest.DataSha256)

	if *publish {
		databaseURL := os.Getenv("DATABASE_URL")
		if databaseURL == "" {
			log.Fatal("DATABASE_URL environment variable not set")
		}
		provider, err := stats.NewProvider(ctx, databaseURL)
		if err != nil {
			log.Fatalf("Failed to connect: %v", err)
		}
		defer provider.Close()

		if err := provider.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to create schema: %v", err)
		}
		if err := provider.Publish(ctx, export); err != nil {
			log.Fatalf("Failed to publish: %v", err)
		}
	}
}
