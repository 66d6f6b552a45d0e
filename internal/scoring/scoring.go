// Package scoring ranks pickable heroes by counter value against the enemy
// team, synergy with allies and the current map's win rate.
package scoring

import (
	"heropick/internal/lineup"
	"heropick/internal/tables"
)

// DefaultAllyWeight discounts synergy relative to direct counter-play
const DefaultAllyWeight = 0.65

// Weights scales the score components
type Weights struct {
	Ally float64 `json:"ally"`
}

// DefaultWeights returns the standard weighting
func DefaultWeights() Weights {
	return Weights{Ally: DefaultAllyWeight}
}

// HeroScore is the composite score for one pickable hero
type HeroScore struct {
	Name       string  `json:"name"`
	EnemyScore float64 `json:"enemyScore"`
	AllyScore  float64 `json:"allyScore"`
	MapScore   float64 `json:"mapScore"`
	Total      float64 `json:"total"`
}

// Score computes a HeroScore for every pickable hero in discovery order.
// Missing cells and missing map data contribute zero; empty roster slots are
// ignored. The result depends only on the arguments.
func Score(roster lineup.Roster, set *tables.Set, w Weights) []HeroScore {
	if set == nil {
		return nil
	}

	pickable := set.Pickable()
	scores := make([]HeroScore, 0, len(pickable))
	for _, hero := range pickable {
		scores = append(scores, scoreHero(hero, roster, set, w))
	}
	return scores
}

// scoreHero sums one hero's components
func scoreHero(hero string, roster lineup.Roster, set *tables.Set, w Weights) HeroScore {
	var enemyScore float64
	for _, enemy := range roster.Enemies {
		if enemy == "" {
			continue
		}
		if v, ok := set.Enemy.Get(hero, enemy); ok {
			enemyScore += v
		}
	}

	var allyScore float64
	for _, ally := range roster.Allies {
		if ally == "" {
			continue
		}
		if v, ok := set.Ally.Get(hero, ally); ok {
			allyScore += v * w.Ally
		}
	}

	mapScore := set.Winrates.Lookup(hero, 0.0)

	return HeroScore{
		Name:       hero,
		EnemyScore: enemyScore,
		AllyScore:  allyScore,
		MapScore:   mapScore,
		Total:      enemyScore + allyScore + mapScore,
	}
}
