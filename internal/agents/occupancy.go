package agents

import (
	"sync"

	"github.com/talgya/contagion/internal/world"
)

// Occupancy is the multi-occupancy spatial index: which agents stand on which
// cell. Every placed agent appears in exactly one cell list, the one matching
// its Position. Cell lists keep arrival order so scans are deterministic.
type Occupancy struct {
	mu     sync.RWMutex
	width  int
	height int
	cells  [][]*Agent
}

// NewOccupancy creates an empty index sized to m.
func NewOccupancy(m *world.Map) *Occupancy {
	return &Occupancy{
		width:  m.Width,
		height: m.Height,
		cells:  make([][]*Agent, m.Width*m.Height),
	}
}

func (o *Occupancy) inBounds(c world.Coord) bool {
	return c.Row >= 0 && c.Row < o.height && c.Col >= 0 && c.Col < o.width
}

func (o *Occupancy) index(c world.Coord) int {
	return c.Row*o.width + c.Col
}

func (o *Occupancy) outOfBounds(c world.Coord) error {
	return &world.OutOfBoundsError{Coord: c, Width: o.width, Height: o.height}
}

// Place puts a not-yet-indexed agent on pos.
func (o *Occupancy) Place(a *Agent, pos world.Coord) error {
	if !o.inBounds(pos) {
		return o.outOfBounds(pos)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	i := o.index(pos)
	o.cells[i] = append(o.cells[i], a)
	a.Position = pos
	return nil
}

// Move relocates an indexed agent. Removal from the old cell, insertion into
// the new one and the Position update happen under one lock.
func (o *Occupancy) Move(a *Agent, to world.Coord) error {
	if !o.inBounds(to) {
		return o.outOfBounds(to)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if to == a.Position {
		return nil
	}
	from := o.index(a.Position)
	o.cells[from] = remove(o.cells[from], a)
	i := o.index(to)
	o.cells[i] = append(o.cells[i], a)
	a.Position = to
	return nil
}

// MustMove is Move for destinations the caller has already bounds-checked.
func (o *Occupancy) MustMove(a *Agent, to world.Coord) {
	if err := o.Move(a, to); err != nil {
		panic(err)
	}
}

func remove(list []*Agent, a *Agent) []*Agent {
	for i, x := range list {
		if x == a {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}

// AgentsAt returns a copy of the agents on pos. Out-of-bounds cells are empty.
func (o *Occupancy) AgentsAt(pos world.Coord) []*Agent {
	if !o.inBounds(pos) {
		return nil
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]*Agent(nil), o.cells[o.index(pos)]...)
}

// Count returns the number of agents on pos.
func (o *Occupancy) Count(pos world.Coord) int {
	if !o.inBounds(pos) {
		return 0
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.cells[o.index(pos)])
}

// IsTaken reports whether any agent on pos satisfies pred. A nil pred matches anyone.
func (o *Occupancy) IsTaken(pos world.Coord, pred func(*Agent) bool) bool {
	if !o.inBounds(pos) {
		return false
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, a := range o.cells[o.index(pos)] {
		if pred == nil || pred(a) {
			return true
		}
	}
	return false
}

// NeighborsWithin returns every agent in the Chebyshev ball of the given
// radius around pos, scanning rows bottom to top. The center cell is included
// only when includeCenter is set.
func (o *Occupancy) NeighborsWithin(pos world.Coord, radius int, includeCenter bool) []*Agent {
	o.mu.RLock()
	defer o.mu.RUnlock()
	var out []*Agent
	o.scan(pos, radius, includeCenter, func(a *Agent) {
		out = append(out, a)
	})
	return out
}

// CountNeighbors counts agents in the Chebyshev ball around pos, excluding
// the center cell and the given agent.
func (o *Occupancy) CountNeighbors(pos world.Coord, radius int, exclude *Agent) int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	n := 0
	o.scan(pos, radius, false, func(a *Agent) {
		if a != exclude {
			n++
		}
	})
	return n
}

func (o *Occupancy) scan(pos world.Coord, radius int, includeCenter bool, fn func(*Agent)) {
	for row := pos.Row - radius; row <= pos.Row+radius; row++ {
		for col := pos.Col - radius; col <= pos.Col+radius; col++ {
			c := world.Coord{Row: row, Col: col}
			if !o.inBounds(c) || (c == pos && !includeCenter) {
				continue
			}
			for _, a := range o.cells[o.index(c)] {
				fn(a)
			}
		}
	}
}

// Len returns the number of indexed agents.
func (o *Occupancy) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	n := 0
	for _, list := range o.cells {
		n += len(list)
	}
	return n
}
