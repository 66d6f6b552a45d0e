// Package tables holds the matchup and map win-rate data the scoring engine
// reads, plus loaders for the files and databases they come from.
package tables

import (
	"context"
	"sort"
)

// MatchupTable maps (hero, other hero) to an affinity value.
// A missing cell means no data, which is different from zero.
type MatchupTable struct {
	cells  map[string]map[string]float64
	heroes []string // discovery order
}

// NewMatchupTable creates an empty table
func NewMatchupTable() *MatchupTable {
	return &MatchupTable{cells: make(map[string]map[string]float64)}
}

// Set stores the value of hero against other
func (t *MatchupTable) Set(hero, other string, value float64) {
	t.AddHero(hero)
	t.cells[hero][other] = value
}

// AddHero registers a hero without any cells, keeping first-seen order
func (t *MatchupTable) AddHero(hero string) {
	if _, ok := t.cells[hero]; ok {
		return
	}
	t.cells[hero] = make(map[string]float64)
	t.heroes = append(t.heroes, hero)
}

// Get returns the value of hero against other and whether the cell exists
func (t *MatchupTable) Get(hero, other string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	row, ok := t.cells[hero]
	if !ok {
		return 0, false
	}
	v, ok := row[other]
	return v, ok
}

// Has reports whether the table has a row for hero
func (t *MatchupTable) Has(hero string) bool {
	if t == nil {
		return false
	}
	_, ok := t.cells[hero]
	return ok
}

// Row returns a copy of hero's cells keyed by the other hero
func (t *MatchupTable) Row(hero string) map[string]float64 {
	if t == nil {
		return nil
	}
	out := make(map[string]float64, len(t.cells[hero]))
	for k, v := range t.cells[hero] {
		out[k] = v
	}
	return out
}

// Heroes returns the heroes with rows, in discovery order
func (t *MatchupTable) Heroes() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.heroes))
	copy(out, t.heroes)
	return out
}

// Len returns the number of heroes with rows
func (t *MatchupTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.heroes)
}

// WinrateTable maps a hero to its map-adjusted score
type WinrateTable struct {
	values map[string]float64
	heroes []string
}

// NewWinrateTable creates an empty table
func NewWinrateTable() *WinrateTable {
	return &WinrateTable{values: make(map[string]float64)}
}

// Set stores the score for hero
func (t *WinrateTable) Set(hero string, value float64) {
	if _, ok := t.values[hero]; !ok {
		t.heroes = append(t.heroes, hero)
	}
	t.values[hero] = value
}

// Get returns the score for hero and whether there is map data for it
func (t *WinrateTable) Get(hero string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	v, ok := t.values[hero]
	return v, ok
}

// Lookup returns the score for hero, or fallback when there is no data
func (t *WinrateTable) Lookup(hero string, fallback float64) float64 {
	if v, ok := t.Get(hero); ok {
		return v
	}
	return fallback
}

// Len returns the number of heroes with map data
func (t *WinrateTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.heroes)
}

// Entry is one hero's map score
type Entry struct {
	Hero  string
	Value float64
}

// Top returns the n best scores, highest first; ties keep insertion order
func (t *WinrateTable) Top(n int) []Entry {
	if t == nil {
		return nil
	}
	entries := make([]Entry, 0, len(t.heroes))
	for _, h := range t.heroes {
		entries = append(entries, Entry{Hero: h, Value: t.values[h]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Value > entries[j].Value
	})
	if n >= 0 && n < len(entries) {
		entries = entries[:n]
	}
	return entries
}

// Set bundles everything needed for one scoring run
type Set struct {
	Ally     *MatchupTable // synergy with teammates
	Enemy    *MatchupTable // counter value against opponents
	Winrates *WinrateTable // current map
}

// Pickable returns the heroes present in both matchup tables, in the enemy
// table's discovery order. A hero with only one table populated cannot be scored.
func (s *Set) Pickable() []string {
	if s == nil {
		return nil
	}
	var out []string
	for _, h := range s.Enemy.Heroes() {
		if s.Ally.Has(h) {
			out = append(out, h)
		}
	}
	return out
}

// Source loads a table set for a map. An empty map name means no map is selected.
type Source interface {
	LoadTables(ctx context.Context, mapName string) (*Set, error)
}
