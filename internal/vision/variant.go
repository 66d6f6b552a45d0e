package vision

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"heropick/internal/lineup"
)

// Variant is one crop-geometry hypothesis: the same roster slots cropped at
// different screen offsets, in fixed slot order (allies then enemies).
type Variant struct {
	ID       string
	Captures []Capture
	Skipped  []string // sources that could not be read
}

// LoadVariant reads the captures in dir ordered by modification time (ties by
// name). A missing directory yields an empty variant; unreadable files are
// reported and skipped.
func LoadVariant(dir, id string) Variant {
	v := Variant{ID: id}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			fmt.Printf("[Variant] Cannot read %s: %v\n", dir, err)
		} else {
			fmt.Printf("[Variant] Missing folder (skipping): %s\n", dir)
		}
		return v
	}

	type file struct {
		path    string
		modTime time.Time
	}
	var files []file
	for _, entry := range entries {
		if entry.IsDir() || !IsImageFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			v.Skipped = append(v.Skipped, entry.Name())
			continue
		}
		files = append(files, file{path: filepath.Join(dir, entry.Name()), modTime: info.ModTime()})
	}

	// ReadDir is name-sorted, so a stable sort keeps name order among equal mtimes
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].modTime.Before(files[j].modTime)
	})

	for _, f := range files {
		c, err := LoadCapture(f.path)
		if err != nil {
			fmt.Printf("[Variant] Failed to open %s: %v -> skipping\n", f.path, err)
			v.Skipped = append(v.Skipped, f.path)
			continue
		}
		v.Captures = append(v.Captures, c)
	}

	return v
}

// Evaluation is the recognition outcome for one variant
type Evaluation struct {
	VariantID string
	Results   []MatchResult
	Quality   float64 // mean distance; +Inf when the variant had no captures
}

// Evaluate runs recognition over every capture in slot order
func (r *Recognizer) Evaluate(v Variant) Evaluation {
	eval := Evaluation{VariantID: v.ID, Quality: math.Inf(1)}
	if len(v.Captures) == 0 {
		return eval
	}

	distances := make([]float64, 0, len(v.Captures))
	for _, c := range v.Captures {
		res := r.Match(c)
		eval.Results = append(eval.Results, res)
		distances = append(distances, res.Distance)
	}
	eval.Quality = stat.Mean(distances, nil)
	return eval
}

// Labels returns the matched label per slot ("" for unmatched slots)
func (e Evaluation) Labels() []string {
	labels := make([]string, len(e.Results))
	for i, res := range e.Results {
		labels[i] = res.Label
	}
	return labels
}

// Selection is the winning variant plus every evaluation that competed
type Selection struct {
	Winner      Evaluation
	Evaluations []Evaluation
}

// Roster splits the winner's slots into allies and enemies
func (s Selection) Roster() lineup.Roster {
	return lineup.NewRoster(s.Winner.Labels())
}

// SelectVariant evaluates every variant and keeps the one with the lowest mean
// distance; ties go to the earlier variant. The boolean is false when no variant
// produced a single capture ("no roster found"), which is not an error.
func SelectVariant(r *Recognizer, variants []Variant) (Selection, bool) {
	sel := Selection{}
	best := -1
	for _, v := range variants {
		eval := r.Evaluate(v)
		sel.Evaluations = append(sel.Evaluations, eval)

		if math.IsInf(eval.Quality, 1) {
			fmt.Printf("[Variant] %s: no captures\n", v.ID)
			continue
		}
		fmt.Printf("[Variant] %s: %d captures | avg score = %.4f\n", v.ID, len(eval.Results), eval.Quality)

		if best < 0 || eval.Quality < sel.Evaluations[best].Quality {
			best = len(sel.Evaluations) - 1
		}
	}

	if best < 0 {
		return sel, false
	}
	sel.Winner = sel.Evaluations[best]
	return sel, true
}
