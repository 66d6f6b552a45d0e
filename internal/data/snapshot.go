package data

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"heropick/internal/tables"
)

// BuildExport flattens matchup tables and per-map win rates into a snapshot
func BuildExport(version string, ally, enemy *tables.MatchupTable, winrates map[string]*tables.WinrateTable) *DataExport {
	export := &DataExport{
		Version:     version,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}

	for _, kt := range []struct {
		kind  string
		table *tables.MatchupTable
	}{{KindAlly, ally}, {KindEnemy, enemy}} {
		heroes := kt.table.Heroes()
		for i, h := range heroes {
			export.Heroes = append(export.Heroes, HeroJSON{Kind: kt.kind, Hero: h, Position: i})
		}
		for _, h := range heroes {
			row := kt.table.Row(h)
			others := make([]string, 0, len(row))
			for other := range row {
				others = append(others, other)
			}
			sort.Strings(others)
			for _, other := range others {
				export.Matchups = append(export.Matchups, MatchupJSON{Kind: kt.kind, Hero: h, Other: other, Value: row[other]})
			}
		}
	}

	mapNames := make([]string, 0, len(winrates))
	for m := range winrates {
		mapNames = append(mapNames, m)
	}
	sort.Strings(mapNames)
	for _, mapName := range mapNames {
		for _, e := range winrates[mapName].Top(-1) {
			export.Winrates = append(export.Winrates, WinrateJSON{Map: mapName, Hero: e.Hero, Value: e.Value})
		}
	}
	return export
}

// ExportSnapshot writes data.json and manifest.json into outputDir.
// dataURL is recorded in the manifest and may be filled in later.
func ExportSnapshot(outputDir string, export *DataExport, dataURL string) (*Manifest, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	dataPath := filepath.Join(outputDir, "data.json")
	dataFile, err := os.Create(dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create data.json: %w", err)
	}
	defer dataFile.Close()

	// Write to file and compute SHA256 simultaneously
	hasher := sha256.New()
	encoder := json.NewEncoder(io.MultiWriter(dataFile, hasher))
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(export); err != nil {
		return nil, fmt.Errorf("failed to write data.json: %w", err)
	}

	manifest := &Manifest{
		Version:    export.Version,
		DataURL:    dataURL,
		DataSha256: hex.EncodeToString(hasher.Sum(nil)),
		UpdatedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	fmt.Printf("  Wrote data.json: %d heroes, %d matchup cells, %d map scores\n",
		len(export.Heroes), len(export.Matchups), len(export.Winrates))
	fmt.Printf("  SHA256: %s\n", manifest.DataSha256)

	manifestFile, err := os.Create(filepath.Join(outputDir, "manifest.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to create manifest.json: %w", err)
	}
	defer manifestFile.Close()

	manifestEncoder := json.NewEncoder(manifestFile)
	manifestEncoder.SetIndent("", "  ")
	if err := manifestEncoder.Encode(manifest); err != nil {
		return nil, fmt.Errorf("failed to write manifest.json: %w", err)
	}

	fmt.Printf("  Wrote manifest.json: version=%s\n", manifest.Version)
	return manifest, nil
}
