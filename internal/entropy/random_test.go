package entropy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceIsDeterministic(t *testing.T) {
	a := New(7)
	b := New(7)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
	assert.Equal(t, a.Perm(20), b.Perm(20))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-0.5, 0.0, 1.0))
	assert.Equal(t, 1.0, Clamp(1.5, 0.0, 1.0))
	assert.Equal(t, 0.25, Clamp(0.25, 0.0, 1.0))
	assert.Equal(t, 3, Clamp(9, 1, 3))
}

func TestClippedNormalStaysInRange(t *testing.T) {
	s := New(3)
	for i := 0; i < 10000; i++ {
		v := s.ClippedNormal(0.5, 2.0, 0, 1)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestBernoulliExtremes(t *testing.T) {
	s := New(11)
	for i := 0; i < 1000; i++ {
		assert.False(t, s.Bernoulli(0))
		assert.True(t, s.Bernoulli(1))
	}
}

func TestRandomSeedNonZero(t *testing.T) {
	assert.NotZero(t, RandomSeed())
}
