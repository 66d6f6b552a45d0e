// Package heroes lists the hero pool by role and the map pool
package heroes

import "heropick/internal/fuzzy"

// Role is a hero's class
type Role string

const (
	Tank    Role = "Tank"
	Damage  Role = "Damage"
	Support Role = "Support"
)

// RoleOrder is the order roles are listed in
var RoleOrder = []Role{Tank, Damage, Support}

// Roles maps each role to its heroes
var Roles = map[Role][]string{
	Damage: {
		"Ashe", "Bastion", "Cassidy", "Echo", "Freja", "Genji", "Hanzo",
		"Junkrat", "Mei", "Pharah", "Reaper", "Sojourn", "Soldier 76",
		"Sombra", "Symmetra", "Torbjörn", "Tracer", "Vendetta", "Venture",
		"Widowmaker",
	},
	Support: {
		"Ana", "Baptiste", "Brigitte", "Illari", "Juno", "Kiriko",
		"Lifeweaver", "Lúcio", "Mercy", "Moira", "Wuyang", "Zenyatta",
	},
	Tank: {
		"DVa", "Doomfist", "Hazard", "Junker Queen", "Mauga", "Orisa",
		"Ramattra", "Reinhardt", "Roadhog", "Sigma", "Winston",
		"Wrecking Ball", "Zarya",
	},
}

// Maps is the competitive map pool
var Maps = []string{
	// Control
	"Antarctic Peninsula", "Busan", "Ilios", "Lijiang Tower", "Nepal", "Oasis", "Samoa",
	// Escort
	"Circuit Royal", "Dorado", "Havana", "Junkertown", "Rialto", "Route 66",
	"Shambali Monastery", "Watchpoint: Gibraltar",
	// Hybrid
	"Blizzard World", "Eichenwalde", "Hollywood", "King's Row", "Midtown", "Numbani", "Paraíso",
	// Push
	"Colosseo", "Esperança", "New Queen Street", "Runasapi",
	// Flashpoint
	"Aatlis", "New Junk City", "Suravasa",
}

// All returns every hero, grouped by role in RoleOrder
func All() []string {
	var out []string
	for _, r := range RoleOrder {
		out = append(out, Roles[r]...)
	}
	return out
}

// RoleOf returns the role of a hero. Names are compared accent- and case-insensitively.
func RoleOf(name string) (Role, bool) {
	n := fuzzy.Normalize(name)
	for _, r := range RoleOrder {
		for _, h := range Roles[r] {
			if fuzzy.Normalize(h) == n {
				return r, true
			}
		}
	}
	return "", false
}

// FindHero resolves free-typed input to a hero name
func FindHero(input string) (string, bool) {
	return fuzzy.BestMatch(input, All(), fuzzy.DefaultCutoff)
}

// FindMap resolves free-typed input to a map name
func FindMap(input string) (string, bool) {
	return fuzzy.BestMatch(input, Maps, fuzzy.DefaultCutoff)
}

// ByRole groups names by role, keeping input order and dropping duplicates.
// Unknown names are left out.
func ByRole(names []string) map[Role][]string {
	out := make(map[Role][]string)
	seen := make(map[string]bool)
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		if r, ok := RoleOf(n); ok {
			out[r] = append(out[r], n)
		}
	}
	return out
}
