package agents

import (
	"sync"

	"github.com/talgya/contagion/internal/world"
)

// ExcursionGate bounds how many agents may be outside at once.
// It is owned by the simulation and shared by every agent in it.
type ExcursionGate struct {
	mu       sync.Mutex
	capacity int
	outside  int
}

// NewExcursionGate creates a gate. Capacity 0 is legal and keeps everyone home.
func NewExcursionGate(capacity int) (*ExcursionGate, error) {
	if capacity < 0 {
		return nil, world.Configf("num_agents_allowed_outside", "must not be negative, got %d", capacity)
	}
	return &ExcursionGate{capacity: capacity}, nil
}

// Acquire takes a slot if one is free. A full gate is a normal outcome.
func (g *ExcursionGate) Acquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.outside >= g.capacity {
		return false
	}
	g.outside++
	return true
}

// Release frees a slot. Releasing an empty gate is a no-op.
func (g *ExcursionGate) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.outside > 0 {
		g.outside--
	}
}

// Outside returns how many slots are currently held.
func (g *ExcursionGate) Outside() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.outside
}

// Capacity returns the maximum number of concurrent slots.
func (g *ExcursionGate) Capacity() int {
	return g.capacity
}
