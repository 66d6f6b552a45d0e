package vision

import (
	"fmt"
)

// Capture is an unlabeled crop awaiting classification
type Capture struct {
	Source string
	Pixels *Gray
}

// LoadCapture reads a capture at its native resolution
func LoadCapture(path string) (Capture, error) {
	gray, err := LoadGray(path)
	if err != nil {
		return Capture{}, err
	}
	return Capture{Source: path, Pixels: gray}, nil
}

// MatchResult is the closest template for one capture.
// An empty Label means recognition failed for that slot.
type MatchResult struct {
	Capture  Capture
	Label    string
	Distance float64
}

// Matched reports whether a template was assigned
func (m MatchResult) Matched() bool {
	return m.Label != ""
}

// Recognizer classifies captures against a template store
type Recognizer struct {
	store *TemplateStore
}

// NewRecognizer creates a recognizer. An empty store is a configuration error.
func NewRecognizer(store *TemplateStore) (*Recognizer, error) {
	if store.Len() == 0 {
		return nil, ErrEmptyTemplateStore
	}
	return &Recognizer{store: store}, nil
}

// Match returns the template closest to the capture.
// Templates are resampled to the capture's shape, never the other way round.
// The running best starts at 1.0 (worst possible) and only a strictly smaller
// distance replaces it, so the first template in store order wins ties.
func (r *Recognizer) Match(c Capture) MatchResult {
	result := MatchResult{Capture: c, Distance: 1.0}
	if c.Pixels.Empty() {
		return result
	}

	for _, t := range r.store.templates {
		tpl := t.Pixels
		if !tpl.SameShape(c.Pixels) {
			tpl = tpl.Resample(c.Pixels.Width, c.Pixels.Height)
		}

		d, err := Distance(c.Pixels, tpl)
		if err != nil {
			fmt.Printf("[Recognize] %s vs %s: %v\n", c.Source, t.Label, err)
			continue
		}

		// d <= 1.0 always, so the first comparable template is taken even at the bound
		if !result.Matched() || d < result.Distance {
			result.Distance = d
			result.Label = t.Label
		}
	}

	return result
}
