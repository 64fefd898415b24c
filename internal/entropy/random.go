// Package entropy provides the seeded random source every stochastic decision
// in a run draws from. One Source per simulation keeps runs reproducible.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mathrand "math/rand"

	"golang.org/x/exp/constraints"
)

// Source is a deterministic pseudo-random generator. Not safe for concurrent use.
type Source struct {
	rng *mathrand.Rand
}

// New creates a Source seeded with seed.
func New(seed int64) *Source {
	return &Source{rng: mathrand.New(mathrand.NewSource(seed))}
}

// Float64 returns a uniform sample in [0, 1).
func (s *Source) Float64() float64 {
	return s.rng.Float64()
}

// Intn returns a uniform integer in [0, n). Panics if n <= 0.
func (s *Source) Intn(n int) int {
	return s.rng.Intn(n)
}

// Perm returns a uniformly random permutation of [0, n).
func (s *Source) Perm(n int) []int {
	return s.rng.Perm(n)
}

// Shuffle randomizes the order of n elements using swap.
func (s *Source) Shuffle(n int, swap func(i, j int)) {
	s.rng.Shuffle(n, swap)
}

// Bernoulli returns true with probability p. Always consumes one sample.
func (s *Source) Bernoulli(p float64) bool {
	return s.rng.Float64() < p
}

// ClippedNormal draws from N(mean, stddev²) and clamps the result to [lo, hi].
func (s *Source) ClippedNormal(mean, stddev, lo, hi float64) float64 {
	return Clamp(mean+s.rng.NormFloat64()*stddev, lo, hi)
}

// Clamp limits v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RandomSeed returns a non-zero seed from crypto/rand, for runs configured with seed 0.
func RandomSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// This should never happen; fall back to a fixed seed.
		return 1
	}
	seed := int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
	if seed == 0 {
		return 1
	}
	return seed
}
