package main

import (
	"fmt"

	"heropick/internal/lineup"
	"heropick/internal/overlay"
	"heropick/internal/scoring"
)

// emit sends an event to connected overlays when the hub is running
func (a *App) emit(event string, payload interface{}) {
	if a.hub == nil {
		return
	}
	if err := a.hub.Broadcast(event, payload); err != nil {
		fmt.Printf("[Overlay] %v\n", err)
	}
}

func (a *App) emitStatus(status string) {
	if a.hub == nil {
		return
	}
	player := a.player()
	a.emit(overlay.EventStatus, map[string]interface{}{
		"status": status,
		"role":   string(player.ParsedRole()),
		"map":    player.Map,
	})
}

// emitRoster prints and pushes the recognized teams
func (a *App) emitRoster(variant string, roster lineup.Roster) {
	fmt.Printf("[App] Allies:  %s\n", formatSlots(roster.Allies))
	fmt.Printf("[App] Enemies: %s\n", formatSlots(roster.Enemies))

	a.emit(overlay.EventRoster, map[string]interface{}{
		"variant": variant,
		"allies":  roster.Allies,
		"enemies": roster.Enemies,
	})
}

// emitRanking pushes the ranked recommendations; the top pick is highlighted
func (a *App) emitRanking(ranked []scoring.HeroScore, mapName string) {
	payload := map[string]interface{}{
		"hasRanking": len(ranked) > 0,
		"map":        mapName,
		"ranking":    ranked,
	}
	if len(ranked) > 0 {
		payload["best"] = ranked[0].Name
		fmt.Printf("[App] Best pick: %s (%.2f)\n", ranked[0].Name, ranked[0].Total)
	}
	a.emit(overlay.EventRanking, payload)
}

func (a *App) emitTeamComp(comp TeamCompData) {
	a.emit(overlay.EventTeamComp, comp)
}

func (a *App) emitMapMeta(meta MapMeta) {
	a.emit(overlay.EventMapMeta, meta)
}

func formatSlots(names []string) string {
	out := ""
	for i, name := range names {
		if i > 0 {
			out += ", "
		}
		if name == "" {
			name = "?"
		}
		out += name
	}
	return out
}
