package tables

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const (
	enemySuffix = " Enemy"
	allySuffix  = " Ally"

	// DefaultWinrateColumn is the score column written by the rates exporter
	DefaultWinrateColumn = 4
)

// ErrMissingTable means a required table file is absent
var ErrMissingTable = errors.New("required table file is missing")

// ParseDecimal parses a number that may use a comma as decimal separator
func ParseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")
	return strconv.ParseFloat(s, 64)
}

// ReadMatchups parses the wide matchup sheet.
//
// The header's first cell labels the row column; every other header is
// "<Hero> Enemy" or "<Hero> Ally". Each row starts with the other hero's name,
// so the cell at (row e, column "h Enemy") is h's value against enemy e.
// Empty cells are absent data. Unparsable cells are reported and skipped.
// When a row name repeats, the first row wins and later ones are skipped.
func ReadMatchups(r io.Reader) (ally, enemy *MatchupTable, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read matchup header: %w", err)
	}

	type column struct {
		hero  string
		table *MatchupTable
	}
	ally = NewMatchupTable()
	enemy = NewMatchupTable()
	columns := make([]*column, len(header))

	for i, h := range header {
		if i == 0 {
			continue
		}
		h = strings.TrimSpace(h)
		switch {
		case strings.HasSuffix(h, enemySuffix):
			hero := strings.TrimSuffix(h, enemySuffix)
			enemy.AddHero(hero)
			columns[i] = &column{hero: hero, table: enemy}
		case strings.HasSuffix(h, allySuffix):
			hero := strings.TrimSuffix(h, allySuffix)
			ally.AddHero(hero)
			columns[i] = &column{hero: hero, table: ally}
		}
	}

	seen := make(map[string]int)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			fmt.Printf("[Tables] Skipping matchup line %d: %v\n", line, err)
			continue
		}
		if len(record) == 0 {
			continue
		}

		other := strings.TrimSpace(record[0])
		if other == "" {
			continue
		}
		if first, dup := seen[other]; dup {
			fmt.Printf("[Tables] Skipping duplicate matchup row %s on line %d, keeping line %d\n", other, line, first)
			continue
		}
		seen[other] = line

		for i := 1; i < len(record) && i < len(columns); i++ {
			col := columns[i]
			cell := strings.TrimSpace(record[i])
			if col == nil || cell == "" {
				continue
			}
			v, err := ParseDecimal(cell)
			if err != nil {
				fmt.Printf("[Tables] Skipping %s/%s on line %d: %q is not a number\n", col.hero, other, line, cell)
				continue
			}
			col.table.Set(col.hero, other, v)
		}
	}

	return ally, enemy, nil
}

// LoadMatchupsCSV reads the matchup sheet from disk
func LoadMatchupsCSV(path string) (ally, enemy *MatchupTable, err error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrMissingTable, path)
		}
		return nil, nil, fmt.Errorf("failed to open matchups: %w", err)
	}
	defer f.Close()

	ally, enemy, err = ReadMatchups(f)
	if err != nil {
		return nil, nil, err
	}
	fmt.Printf("[Tables] Loaded matchups for %d heroes (enemy) / %d heroes (ally) from %s\n",
		enemy.Len(), ally.Len(), path)
	return ally, enemy, nil
}

// ReadWinrates parses a win-rate sheet: hero name in the first column and the
// score in column (zero-based). Rows with a blank name or blank score carry no
// data and are skipped; a score that does not parse counts as 0.
func ReadWinrates(r io.Reader, column int) (*WinrateTable, error) {
	if column <= 0 {
		column = DefaultWinrateColumn
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return NewWinrateTable(), nil
		}
		return nil, fmt.Errorf("failed to read winrate header: %w", err)
	}

	table := NewWinrateTable()
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Printf("[Tables] Skipping winrate row: %v\n", err)
			continue
		}
		if len(record) <= column {
			continue
		}

		hero := strings.TrimSpace(record[0])
		raw := strings.TrimSpace(record[column])
		if hero == "" || raw == "" {
			continue
		}

		v, err := ParseDecimal(raw)
		if err != nil {
			v = 0.0
		}
		table.Set(hero, v)
	}
	return table, nil
}

// LoadWinratesCSV reads a win-rate sheet from disk
func LoadWinratesCSV(path string, column int) (*WinrateTable, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingTable, path)
		}
		return nil, fmt.Errorf("failed to open winrates: %w", err)
	}
	defer f.Close()
	return ReadWinrates(f, column)
}

// CSVSource loads tables from the matchup sheet and the selected map's own
// win-rate sheet. SheetPath maps a map name to its sheet file.
type CSVSource struct {
	MatchupsPath  string
	SheetPath     func(mapName string) string
	WinrateColumn int
}

// LoadTables implements Source. Without a selected map every hero gets a
// neutral map score and no win-rate sheet is read. A selected map whose sheet
// is absent is ErrMissingTable, never another map's sheet.
func (s *CSVSource) LoadTables(ctx context.Context, mapName string) (*Set, error) {
	ally, enemy, err := LoadMatchupsCSV(s.MatchupsPath)
	if err != nil {
		return nil, err
	}

	if mapName == "" {
		fmt.Println("[Tables] No map selected - map scores are neutral")
		return &Set{Ally: ally, Enemy: enemy, Winrates: NewWinrateTable()}, nil
	}

	if s.SheetPath == nil {
		return nil, fmt.Errorf("%w: no win-rate sheet location for %s", ErrMissingTable, mapName)
	}
	winrates, err := LoadWinratesCSV(s.SheetPath(mapName), s.WinrateColumn)
	if err != nil {
		return nil, err
	}

	return &Set{Ally: ally, Enemy: enemy, Winrates: winrates}, nil
}
