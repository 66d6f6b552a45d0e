package main

import (
	"context"
	"fmt"

	"heropick/internal/heroes"
	"heropick/internal/tables"
)

// metaSize is how many heroes the map meta lists
const metaSize = 5

// MetaHero is one hero in the map meta list
type MetaHero struct {
	Name  string  `json:"name"`
	Role  string  `json:"role"`
	Score float64 `json:"score"`
}

// MapMeta holds the best heroes on the selected map
type MapMeta struct {
	Map     string     `json:"map"`
	HasData bool       `json:"hasData"`
	Heroes  []MetaHero `json:"heroes"`
}

// buildMapMeta lists the top heroes by map score
func buildMapMeta(mapName string, winrates *tables.WinrateTable) MapMeta {
	meta := MapMeta{Map: mapName}
	for _, e := range winrates.Top(metaSize) {
		role, _ := heroes.RoleOf(e.Hero)
		meta.Heroes = append(meta.Heroes, MetaHero{
			Name:  e.Hero,
			Role:  string(role),
			Score: e.Value,
		})
	}
	meta.HasData = len(meta.Heroes) > 0
	return meta
}

// showMapMeta loads the selected map's table and prints and pushes its top heroes
func (a *App) showMapMeta(ctx context.Context) {
	mapName := a.player().Map
	if mapName == "" {
		return
	}
	set, err := a.source.LoadTables(ctx, mapName)
	if err != nil {
		fmt.Printf("[Meta] Failed to load %s: %v\n", mapName, err)
		return
	}

	meta := buildMapMeta(mapName, set.Winrates)
	if !meta.HasData {
		fmt.Printf("[Meta] No map scores for %s\n", mapName)
		return
	}

	fmt.Fprintf(a.out, "Top heroes on %s:\n", meta.Map)
	for i, h := range meta.Heroes {
		fmt.Fprintf(a.out, "  %d. %-15s %-8s %6.2f\n", i+1, h.Name, h.Role, h.Score)
	}
	a.emitMapMeta(meta)
}
