package world

import (
	"fmt"
	"math/rand"
	"sort"
)

// Options carries construction-time settings that cannot change afterwards.
type Options struct {
	// Walls are cells forced inaccessible regardless of their layout code.
	Walls []Coord
	// Entrances are the configured departure points into common space.
	// Empty means derive them: every accessible common cell touching a home.
	Entrances []Coord
	// TargetCount is how many common cells to draw as excursion targets.
	TargetCount int
	// Seed drives the target-cell draw.
	Seed int64
}

// Map is the immutable grid layout the simulation runs on.
type Map struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	cells     []Cell // Row-major, index = row*Width + col
	homes     map[HomeID][]Coord
	homeIDs   []HomeID
	entrances []Coord
	targets   []Coord
}

// NewMap builds a map from rows of layout codes. layout[0] is the bottom row.
func NewMap(layout [][]int, opts Options) (*Map, error) {
	if len(layout) == 0 || len(layout[0]) == 0 {
		return nil, Configf("map", "layout is empty")
	}
	height := len(layout)
	width := len(layout[0])

	m := &Map{
		Width:  width,
		Height: height,
		cells:  make([]Cell, 0, width*height),
		homes:  make(map[HomeID][]Coord),
	}

	for row, codes := range layout {
		if len(codes) != width {
			return nil, Configf("map", "row %d has %d cells, want %d", row, len(codes), width)
		}
		for col, code := range codes {
			c := Cell{Coord: Coord{Row: row, Col: col}}
			switch {
			case code < 0:
				return nil, Configf("map", "invalid cell code %d at %s", code, c.Coord)
			case code == CodeUnreachable:
				c.Type = CellUnreachable
			case code == CodeCommon:
				c.Type = CellCommon
				c.Accessible = true
			default:
				c.Type = CellHome
				c.HomeID = HomeID(code)
				c.Accessible = true
				m.homes[c.HomeID] = append(m.homes[c.HomeID], c.Coord)
			}
			m.cells = append(m.cells, c)
		}
	}

	for _, w := range opts.Walls {
		if !m.InBounds(w) {
			return nil, Configf("map.walls", "wall %s is outside the map", w)
		}
		m.cells[m.index(w)].Accessible = false
	}

	for id := range m.homes {
		m.homeIDs = append(m.homeIDs, id)
	}
	sort.Slice(m.homeIDs, func(i, j int) bool { return m.homeIDs[i] < m.homeIDs[j] })

	if err := m.initEntrances(opts.Entrances); err != nil {
		return nil, err
	}
	if opts.TargetCount < 0 {
		return nil, Configf("num_target_cells", "must not be negative, got %d", opts.TargetCount)
	}
	m.initTargets(opts.TargetCount, opts.Seed)

	return m, nil
}

func (m *Map) initEntrances(configured []Coord) error {
	if len(configured) > 0 {
		for _, e := range configured {
			if !m.InBounds(e) {
				return Configf("entrances", "entrance %s is outside the map", e)
			}
			c := m.cells[m.index(e)]
			if c.Type != CellCommon || !c.Accessible {
				return Configf("entrances", "entrance %s is not accessible common space", e)
			}
			m.entrances = append(m.entrances, e)
		}
		return nil
	}

	// Doorsteps: accessible common cells adjacent to any home cell.
	for _, c := range m.cells {
		if c.Type != CellCommon || !c.Accessible {
			continue
		}
		for _, n := range c.Coord.Neighbors() {
			if m.InBounds(n) && m.cells[m.index(n)].IsHome() {
				m.entrances = append(m.entrances, c.Coord)
				break
			}
		}
	}
	return nil
}

func (m *Map) initTargets(count int, seed int64) {
	common := m.CommonCells()
	if count >= len(common) {
		m.targets = common
		return
	}
	rng := rand.New(rand.NewSource(seed + 500))
	rng.Shuffle(len(common), func(i, j int) { common[i], common[j] = common[j], common[i] })
	m.targets = common[:count]
}

func (m *Map) index(c Coord) int {
	return c.Row*m.Width + c.Col
}

// InBounds returns true if the coordinate lies on the map.
func (m *Map) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < m.Height && c.Col >= 0 && c.Col < m.Width
}

// CellAt returns the cell at c, or an *OutOfBoundsError.
func (m *Map) CellAt(c Coord) (Cell, error) {
	if !m.InBounds(c) {
		return Cell{}, &OutOfBoundsError{Coord: c, Width: m.Width, Height: m.Height}
	}
	return m.cells[m.index(c)], nil
}

// MustCellAt is CellAt for callers that have already bounds-checked c.
// An out-of-bounds coordinate here is a programming error and aborts the run.
func (m *Map) MustCellAt(c Coord) Cell {
	cell, err := m.CellAt(c)
	if err != nil {
		panic(err)
	}
	return cell
}

// Accessible reports whether an agent may stand on c. Out-of-bounds is never accessible.
func (m *Map) Accessible(c Coord) bool {
	return m.InBounds(c) && m.cells[m.index(c)].Accessible
}

// HomeCellsFor returns the footprint of one household.
func (m *Map) HomeCellsFor(id HomeID) []Coord {
	return append([]Coord(nil), m.homes[id]...)
}

// HomeIDs returns every household id on the map in ascending order.
func (m *Map) HomeIDs() []HomeID {
	return append([]HomeID(nil), m.homeIDs...)
}

// HomeCells returns every accessible home cell in row-major order.
func (m *Map) HomeCells() []Coord {
	var out []Coord
	for _, c := range m.cells {
		if c.IsHome() && c.Accessible {
			out = append(out, c.Coord)
		}
	}
	return out
}

// CommonCells returns every accessible common cell in row-major order.
func (m *Map) CommonCells() []Coord {
	var out []Coord
	for _, c := range m.cells {
		if c.Type == CellCommon && c.Accessible {
			out = append(out, c.Coord)
		}
	}
	return out
}

// Entrances returns the departure points into common space.
func (m *Map) Entrances() []Coord {
	return append([]Coord(nil), m.entrances...)
}

// TargetCells returns the precomputed excursion targets.
func (m *Map) TargetCells() []Coord {
	return append([]Coord(nil), m.targets...)
}

// EntranceArea returns the entrance itself plus its accessible common Moore neighbors.
func (m *Map) EntranceArea(entrance Coord) []Coord {
	var out []Coord
	if c, err := m.CellAt(entrance); err == nil && c.Type == CellCommon && c.Accessible {
		out = append(out, entrance)
	}
	for _, n := range entrance.Neighbors() {
		if !m.InBounds(n) {
			continue
		}
		c := m.cells[m.index(n)]
		if c.Type == CellCommon && c.Accessible {
			out = append(out, n)
		}
	}
	return out
}

// Each calls fn for every cell in row-major order.
func (m *Map) Each(fn func(Cell)) {
	for _, c := range m.cells {
		fn(c)
	}
}

// CellCount returns the total number of cells in the map.
func (m *Map) CellCount() int {
	return len(m.cells)
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(%dx%d, homes=%d, entrances=%d, targets=%d)",
		m.Width, m.Height, len(m.homeIDs), len(m.entrances), len(m.targets))
}

// FlipRows returns a copy of a top-origin layout with row 0 at the bottom.
func FlipRows(layout [][]int) [][]int {
	out := make([][]int, len(layout))
	for i, row := range layout {
		out[len(layout)-1-i] = append([]int(nil), row...)
	}
	return out
}

// TypeCounts returns the number of cells of each type.
func TypeCounts(m *Map) map[CellType]int {
	counts := make(map[CellType]int)
	for _, c := range m.cells {
		counts[c.Type]++
	}
	return counts
}
