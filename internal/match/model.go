package match

import (
	"fmt"
	"math"
)

// Weights blends trust and the four compatibility factors into the final
// match score. Components must sum to 1.0.
type Weights struct {
	Trust        float64 `json:"trust"`
	Location     float64 `json:"location"`
	History      float64 `json:"history"`
	Preference   float64 `json:"preference"`
	Availability float64 `json:"availability"`
}

// Sum returns the total of all weight components.
func (w Weights) Sum() float64 {
	return w.Trust + w.Location + w.History + w.Preference + w.Availability
}

// Model is an immutable weight snapshot. Matching always runs against a
// specific model version; weight updates produce a new snapshot via Retrain
// instead of mutating shared state.
type Model struct {
	Version int     `json:"version"`
	Weights Weights `json:"weights"`
}

// DefaultModel is version 1 with the production weight blend.
func DefaultModel() Model {
	return Model{
		Version: 1,
		Weights: Weights{
			Trust:        0.35,
			Location:     0.25,
			History:      0.20,
			Preference:   0.15,
			Availability: 0.05,
		},
	}
}

// Retrain returns a new snapshot with the given weights and a bumped
// version. The receiver is left untouched; in-flight matching against it
// stays valid. Weights must sum to 1.0 within a small tolerance.
func (m Model) Retrain(w Weights) (Model, error) {
	if math.Abs(w.Sum()-1.0) > 1e-9 {
		return Model{}, fmt.Errorf("match: weights sum to %.6f, want 1.0", w.Sum())
	}
	for _, v := range []float64{w.Trust, w.Location, w.History, w.Preference, w.Availability} {
		if v < 0 {
			return Model{}, fmt.Errorf("match: negative weight %.6f", v)
		}
	}
	return Model{Version: m.Version + 1, Weights: w}, nil
}
