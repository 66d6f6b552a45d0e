package data

import (
	"context"
	"fmt"

	"heropick/internal/rates"
	"heropick/internal/tables"
)

// LoadTables implements tables.Source from the stored snapshot. Sets are
// cached per map until the next import.
func (t *TableDB) LoadTables(ctx context.Context, mapName string) (*tables.Set, error) {
	key := rates.Slug(mapName)
	if set, ok := t.cache.Get(key); ok {
		return set, nil
	}

	ally, err := t.loadMatchups(ctx, KindAlly)
	if err != nil {
		return nil, err
	}
	enemy, err := t.loadMatchups(ctx, KindEnemy)
	if err != nil {
		return nil, err
	}
	if ally.Len() == 0 || enemy.Len() == 0 {
		return nil, fmt.Errorf("%w: no matchup data in database", tables.ErrMissingTable)
	}

	winrates := tables.NewWinrateTable()
	if key != "" {
		winrates, err = t.loadWinrates(ctx, key)
		if err != nil {
			return nil, err
		}
		if winrates.Len() == 0 {
			return nil, fmt.Errorf("%w: no win rates for %s", tables.ErrMissingTable, mapName)
		}
	}

	set := &tables.Set{Ally: ally, Enemy: enemy, Winrates: winrates}
	t.cache.Set(key, set)
	return set, nil
}

func (t *TableDB) loadMatchups(ctx context.Context, kind string) (*tables.MatchupTable, error) {
	table := tables.NewMatchupTable()

	rows, err := t.db.QueryContext(ctx, `
		SELECT hero FROM matchup_heroes
		WHERE kind = ?
		ORDER BY position, hero
	`, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s heroes: %w", kind, err)
	}
	for rows.Next() {
		var hero string
		if err := rows.Scan(&hero); err != nil {
			rows.Close()
			return nil, err
		}
		table.AddHero(hero)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = t.db.QueryContext(ctx, `
		SELECT hero, other, value FROM matchups
		WHERE kind = ?
	`, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s matchups: %w", kind, err)
	}
	defer rows.Close()

	for rows.Next() {
		var hero, other string
		var value float64
		if err := rows.Scan(&hero, &other, &value); err != nil {
			return nil, err
		}
		table.Set(hero, other, value)
	}
	return table, rows.Err()
}

func (t *TableDB) loadWinrates(ctx context.Context, mapKey string) (*tables.WinrateTable, error) {
	rows, err := t.db.QueryContext(ctx, `
		SELECT hero, value FROM winrates
		WHERE map = ?
		ORDER BY hero
	`, mapKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query winrates: %w", err)
	}
	defer rows.Close()

	table := tables.NewWinrateTable()
	for rows.Next() {
		var hero string
		var value float64
		if err := rows.Scan(&hero, &value); err != nil {
			return nil, err
		}
		table.Set(hero, value)
	}
	return table, rows.Err()
}

// MapsWithData returns the map keys that have win rates stored
func (t *TableDB) MapsWithData(ctx context.Context) ([]string, error) {
	rows, err := t.db.QueryContext(ctx, "SELECT DISTINCT map FROM winrates ORDER BY map")
	if err != nil {
		return nil, fmt.Errorf("failed to query maps: %w", err)
	}
	defer rows.Close()

	var maps []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		maps = append(maps, m)
	}
	return maps, rows.Err()
}
