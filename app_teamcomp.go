package main

import (
	"fmt"

	"heropick/internal/heroes"
	"heropick/internal/lineup"
)

// RoleCount holds how many heroes of each role a team fields
type RoleCount struct {
	Tank    int `json:"tank"`
	Damage  int `json:"damage"`
	Support int `json:"support"`
	Unknown int `json:"unknown"`
}

// TeamCompData holds the analyzed composition of both teams
type TeamCompData struct {
	Allies  RoleCount `json:"allies"`
	Enemies RoleCount `json:"enemies"`
	// Roles the ally side is missing for a standard 1/2/2 lineup, counting the player
	Missing []string `json:"missing"`
}

// analyzeTeamComp counts roles on each side of the roster
func analyzeTeamComp(roster lineup.Roster) TeamCompData {
	comp := TeamCompData{
		Allies:  countRoles(roster.Allies),
		Enemies: countRoles(roster.Enemies),
	}

	// Allies are four of five; the player fills whichever slot is open
	want := map[heroes.Role]int{heroes.Tank: 1, heroes.Damage: 2, heroes.Support: 2}
	have := map[heroes.Role]int{
		heroes.Tank:    comp.Allies.Tank,
		heroes.Damage:  comp.Allies.Damage,
		heroes.Support: comp.Allies.Support,
	}
	for _, r := range heroes.RoleOrder {
		if have[r] < want[r] {
			comp.Missing = append(comp.Missing, string(r))
		}
	}

	fmt.Printf("[TeamComp] Allies %d/%d/%d, enemies %d/%d/%d (tank/damage/support)\n",
		comp.Allies.Tank, comp.Allies.Damage, comp.Allies.Support,
		comp.Enemies.Tank, comp.Enemies.Damage, comp.Enemies.Support)

	return comp
}

func countRoles(names []string) RoleCount {
	var c RoleCount
	for _, name := range names {
		if name == "" {
			continue
		}
		role, ok := heroes.RoleOf(name)
		if !ok {
			c.Unknown++
			continue
		}
		switch role {
		case heroes.Tank:
			c.Tank++
		case heroes.Damage:
			c.Damage++
		case heroes.Support:
			c.Support++
		}
	}
	return c
}
