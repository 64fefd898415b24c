package epidemic

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/contagion/internal/world"
)

type countingRand struct {
	r     *rand.Rand
	draws int
}

func (c *countingRand) Float64() float64 {
	c.draws++
	return c.r.Float64()
}

func TestNewModelRejectsBadTables(t *testing.T) {
	for name, table := range map[string][]float64{
		"empty":      nil,
		"negative":   {0.5, -0.1},
		"above one":  {1.2},
		"increasing": {0.1, 0.3},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewModel(table)
			require.Error(t, err)
			assert.True(t, errors.Is(err, world.ErrConfiguration))
		})
	}
}

func TestProbabilityLookup(t *testing.T) {
	m, err := NewModel([]float64{0.9, 0.5, 0.1})
	require.NoError(t, err)

	assert.Equal(t, 3, m.Radius())
	assert.Equal(t, 0.9, m.Probability(0))
	assert.Equal(t, 0.9, m.Probability(1))
	assert.Equal(t, 0.5, m.Probability(2))
	assert.Equal(t, 0.1, m.Probability(3))
	assert.Equal(t, 0.0, m.Probability(4))
}

func TestEligibility(t *testing.T) {
	home2 := world.HomeID(2)
	home3 := world.HomeID(3)

	assert.True(t, Eligible(Presence{HomeID: home2, AtHome: true}, Presence{HomeID: home2, AtHome: true}), "same household indoors")
	assert.True(t, Eligible(Presence{HomeID: home2, AtHome: false}, Presence{HomeID: home3, AtHome: false}), "strangers outdoors")
	assert.False(t, Eligible(Presence{HomeID: home2, AtHome: true}, Presence{HomeID: home3, AtHome: false}), "one stranger indoors")
	assert.False(t, Eligible(Presence{HomeID: home2, AtHome: true}, Presence{HomeID: home3, AtHome: true}), "neighbors across a wall")
	assert.False(t, Eligible(Presence{AtHome: true}, Presence{AtHome: true}), "no household is not a shared household")
}

func TestAttemptSkipsDrawWhenGated(t *testing.T) {
	m, err := NewModel([]float64{1})
	require.NoError(t, err)
	rng := &countingRand{r: rand.New(rand.NewSource(1))}

	indoors := Presence{HomeID: 2, AtHome: true}
	stranger := Presence{HomeID: 3, AtHome: true}

	assert.False(t, m.Attempt(1, indoors, stranger, rng))
	assert.False(t, m.Attempt(2, Presence{}, Presence{}, rng))
	assert.Equal(t, 0, rng.draws)

	assert.True(t, m.Attempt(1, Presence{}, Presence{}, rng))
	assert.Equal(t, 1, rng.draws)
}

func TestAttemptConvergesToTable(t *testing.T) {
	if testing.Short() {
		t.Skip("statistical test")
	}
	table := []float64{0.6, 0.3, 0.05}
	m, err := NewModel(table)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(99))
	outside := Presence{}

	const trials = 200000
	for d := 1; d <= len(table); d++ {
		hits := 0
		for i := 0; i < trials; i++ {
			if m.Attempt(d, outside, outside, rng) {
				hits++
			}
		}
		assert.InDelta(t, table[d-1], float64(hits)/trials, 0.01, "distance %d", d)
	}
}
