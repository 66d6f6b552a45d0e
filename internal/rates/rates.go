// Package rates downloads per-map hero win rates and turns them into the
// win-rate sheet the scoring engine reads.
package rates

import (
	"encoding/csv"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"heropick/internal/fuzzy"
)

const ratesBaseURL = "https://overwatch.blizzard.com/en-us/rates/"

// Tiers are the skill tiers averaged into a map score
var Tiers = []string{"Master", "Grandmaster"}

var (
	heroPattern = regexp.MustCompile(`(?i)\{"name"\s*:\s*"([^"]+)"[^}]*?"winrate"\s*:\s*(\d+(?:\.\d+)?)`)
	slugStrip   = strings.NewReplacer(":", "", "'", "", ".", "")
	nameStrip   = strings.NewReplacer(":", "", ".", "")
)

// Slug converts a map name to the form the rates site uses
func Slug(mapName string) string {
	s := slugStrip.Replace(fuzzy.Normalize(mapName))
	return strings.Join(strings.Fields(s), "-")
}

// RatesURL builds the rates page address for a map slug and tier
func RatesURL(slug, tier string) string {
	return fmt.Sprintf("%s?input=PC&map=%s&region=Americas&role=Damage&rq=2&tier=%s",
		ratesBaseURL, slug, tier)
}

// PagePath is where a downloaded page for slug and tier is stored
func PagePath(dir, slug, tier string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.html", slug, tier))
}

// SheetPath is where the win-rate sheet for mapName is written inside dir
func SheetPath(dir, mapName string) string {
	return filepath.Join(dir, Slug(mapName)+".csv")
}

// Rate is one hero's win rate with the text it was written as
type Rate struct {
	Value float64
	Text  string
}

// ParseHTML extracts hero win rates embedded in a rates page
func ParseHTML(raw string) map[string]Rate {
	text := html.UnescapeString(raw)
	out := make(map[string]Rate)

	for _, m := range heroPattern.FindAllStringSubmatch(text, -1) {
		name := nameStrip.Replace(strings.TrimSpace(m[1]))
		wr := strings.TrimSpace(m[2])
		v, err := strconv.ParseFloat(wr, 64)
		if err != nil {
			continue
		}
		out[name] = Rate{Value: v, Text: wr}
	}
	return out
}

// Row is one line of the win-rate sheet. Average and Score are set only when
// both tiers have data for the hero.
type Row struct {
	Hero        string
	Master      *Rate
	Grandmaster *Rate
	Average     float64
	Score       float64
	HasScore    bool
}

// MapScore converts an averaged win rate into a score centered on 50%
func MapScore(avg float64) float64 {
	return (0.2*avg - 10.0) * 2
}

// Combine merges both tiers into rows sorted case-insensitively by hero
func Combine(master, grandmaster map[string]Rate) []Row {
	names := make(map[string]bool)
	for n := range master {
		names[n] = true
	}
	for n := range grandmaster {
		names[n] = true
	}

	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Slice(sorted, func(i, j int) bool {
		li, lj := strings.ToLower(sorted[i]), strings.ToLower(sorted[j])
		if li != lj {
			return li < lj
		}
		return sorted[i] < sorted[j]
	})

	rows := make([]Row, 0, len(sorted))
	for _, n := range sorted {
		row := Row{Hero: n}
		if r, ok := master[n]; ok {
			row.Master = &r
		}
		if r, ok := grandmaster[n]; ok {
			row.Grandmaster = &r
		}
		if row.Master != nil && row.Grandmaster != nil {
			row.Average = (row.Master.Value + row.Grandmaster.Value) / 2
			row.Score = MapScore(row.Average)
			row.HasScore = true
		}
		rows = append(rows, row)
	}
	return rows
}

func commaDecimal(s string) string {
	return strings.ReplaceAll(s, ".", ",")
}

// WriteCSV writes the win-rate sheet with comma decimal separators
func WriteCSV(path string, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create win-rate sheet: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Write([]string{"Hero", "Winrate Master", "Winrate Grandmaster", "Average", "Score"})
	for _, r := range rows {
		record := make([]string, 5)
		record[0] = r.Hero
		if r.Master != nil {
			record[1] = commaDecimal(r.Master.Text)
		}
		if r.Grandmaster != nil {
			record[2] = commaDecimal(r.Grandmaster.Text)
		}
		if r.HasScore {
			record[3] = commaDecimal(fmt.Sprintf("%.2f", r.Average))
			record[4] = commaDecimal(fmt.Sprintf("%.2f", r.Score))
		}
		w.Write(record)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write win-rate sheet: %w", err)
	}
	return nil
}

// Extract reads both tier pages for a map from dir and writes the win-rate sheet
func Extract(dir, mapName, outPath string) ([]Row, error) {
	slug := Slug(mapName)
	byTier := make([]map[string]Rate, len(Tiers))

	for i, tier := range Tiers {
		path := PagePath(dir, slug, tier)
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s page for %s: %w", tier, mapName, err)
		}
		byTier[i] = ParseHTML(string(raw))
	}

	rows := Combine(byTier[0], byTier[1])
	if len(rows) == 0 {
		return nil, fmt.Errorf("no win rates found for %s", mapName)
	}

	if err := WriteCSV(outPath, rows); err != nil {
		return nil, err
	}
	fmt.Printf("[Rates] Saved %d heroes for %s to %s\n", len(rows), mapName, outPath)
	return rows, nil
}
