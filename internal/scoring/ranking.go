package scoring

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Rank orders scores by total, highest first. Equal totals keep their input
// order. The input slice is not modified.
func Rank(scores []HeroScore) []HeroScore {
	ranked := make([]HeroScore, len(scores))
	copy(ranked, scores)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Total > ranked[j].Total
	})
	return ranked
}

// Filter keeps only the named heroes, preserving order
func Filter(scores []HeroScore, names []string) []HeroScore {
	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[n] = true
	}

	var out []HeroScore
	for _, s := range scores {
		if keep[s.Name] {
			out = append(out, s)
		}
	}
	return out
}

// Render writes the ranking as a fixed-width table
func Render(w io.Writer, ranked []HeroScore) error {
	var b strings.Builder
	rule := strings.Repeat("=", 70)

	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "%-6s | %-15s | %8s | %8s | %8s | %8s\n", "RANK", "HERO", "ENEMY", "ALLY", "MAP", "TOTAL")
	b.WriteString(rule + "\n")

	for i, s := range ranked {
		fmt.Fprintf(&b, "%-6d | %-15s | %8.2f | %8.2f | %8.2f | %8.2f\n",
			i+1, s.Name, s.EnemyScore, s.AllyScore, s.MapScore, s.Total)
	}

	b.WriteString(strings.Repeat("-", 70) + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}
