// Package epidemic provides the distance-weighted transmission model.
//
// Distances are floored Euclidean (see world.FlooredEuclidean). The probability
// table is indexed by distance-1, so table[0] applies to adjacent cells; a
// distance of 0 (shared cell) uses table[0] as well. Distances beyond the table
// never transmit and the neighbor search radius is bounded to len(table).
package epidemic

import (
	"github.com/talgya/contagion/internal/world"
)

// Uniform is any source of uniform samples in [0, 1).
type Uniform interface {
	Float64() float64
}

// Model holds the transmission probability table.
type Model struct {
	table []float64
}

// NewModel validates and wraps a probability table. The table must be
// non-empty, contain probabilities in [0, 1], and be non-increasing.
func NewModel(probabilities []float64) (*Model, error) {
	if len(probabilities) == 0 {
		return nil, world.Configf("infection_probabilities", "must not be empty")
	}
	for i, p := range probabilities {
		if p < 0 || p > 1 {
			return nil, world.Configf("infection_probabilities", "entry %d = %g is not a probability", i, p)
		}
		if i > 0 && p > probabilities[i-1] {
			return nil, world.Configf("infection_probabilities", "entry %d = %g increases with distance", i, p)
		}
	}
	return &Model{table: append([]float64(nil), probabilities...)}, nil
}

// Radius is the largest distance that can transmit.
func (m *Model) Radius() int {
	return len(m.table)
}

// Probability returns the transmission probability at a floored-Euclidean distance.
func (m *Model) Probability(distance int) float64 {
	switch {
	case distance <= 0:
		return m.table[0]
	case distance > len(m.table):
		return 0
	default:
		return m.table[distance-1]
	}
}

// Presence is what eligibility needs to know about one agent.
type Presence struct {
	HomeID world.HomeID
	AtHome bool // Standing on a cell of its own household
}

// Eligible reports whether two agents may transmit to each other: members of
// the same household always can; strangers only when neither is at home.
func Eligible(a, b Presence) bool {
	if a.HomeID != world.NoHome && a.HomeID == b.HomeID {
		return true
	}
	return !a.AtHome && !b.AtHome
}

// Attempt decides one transmission from source to a healthy target.
// The distance and eligibility gates short-circuit before the random draw, so
// a sample is consumed only for pairs that could actually transmit.
func (m *Model) Attempt(distance int, source, target Presence, rng Uniform) bool {
	if distance > m.Radius() || !Eligible(source, target) {
		return false
	}
	return rng.Float64() < m.Probability(distance)
}
