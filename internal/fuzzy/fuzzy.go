// Package fuzzy matches free-typed hero and map names against known lists
package fuzzy

import (
	"strings"
	"unicode"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultCutoff is the minimum similarity accepted by BestMatch
const DefaultCutoff = 0.4

// Normalize folds accents, lower-cases and trims s
func Normalize(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// Similarity is 1 minus the Levenshtein distance over the longer length, in [0, 1]
func Similarity(a, b string) float64 {
	return strutil.Similarity(a, b, metrics.NewLevenshtein())
}

// BestMatch returns the candidate closest to query. An exact match after
// normalization wins outright; otherwise the highest similarity at or above cutoff,
// with ties going to the earlier candidate.
func BestMatch(query string, candidates []string, cutoff float64) (string, bool) {
	q := Normalize(query)
	if q == "" {
		return "", false
	}

	for _, c := range candidates {
		if Normalize(c) == q {
			return c, true
		}
	}

	best, bestScore := "", -1.0
	for _, c := range candidates {
		score := Similarity(q, Normalize(c))
		if score >= cutoff && score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, bestScore >= 0
}
