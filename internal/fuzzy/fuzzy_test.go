package fuzzy

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Lúcio", "lucio"},
		{"  Torbjörn ", "torbjorn"},
		{"Esperança", "esperanca"},
		{"Paraíso", "paraiso"},
		{"D.Va", "d.va"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"abcd", "abcd", 1.0},
		{"abcd", "bcde", 0.5},
		{"abc", "xyz", 0},
		{"", "", 1.0},
		{"ana", "", 0},
		{"kingsrow", "king's row", 0.8},
		{"widow maker", "widowmaker", 1 - 1.0/11},
	}
	for _, tt := range tests {
		if got := Similarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestBestMatch(t *testing.T) {
	maps := []string{"Ilios", "King's Row", "Kanezaka", "Esperança", "Watchpoint: Gibraltar"}

	tests := []struct {
		name   string
		query  string
		want   string
		wantOK bool
	}{
		{"exact ignoring case", "ilios", "Ilios", true},
		{"accent folded", "esperanca", "Esperança", true},
		{"typo", "kings row", "King's Row", true},
		{"missing prefix", "gibraltar", "Watchpoint: Gibraltar", true},
		{"missing letter", "ilio", "Ilios", true},
		{"nothing close", "qqqq", "", false},
		{"empty", "   ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BestMatch(tt.query, maps, DefaultCutoff)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("BestMatch(%q) = %q, %v; want %q, %v", tt.query, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestBestMatchTieKeepsFirst(t *testing.T) {
	got, ok := BestMatch("ab", []string{"abx", "aby"}, DefaultCutoff)
	if !ok || got != "abx" {
		t.Errorf("BestMatch() = %q, %v; want abx", got, ok)
	}
}
