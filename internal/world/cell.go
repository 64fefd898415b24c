// Package world provides the grid layout, cell types, and spatial helpers.
// Coordinates are (row, col) with row 0 at the bottom of the map.
package world

import (
	"fmt"
	"math"
)

// Coord identifies a cell on the grid.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Add returns c offset by d.
func (c Coord) Add(d Coord) Coord {
	return Coord{Row: c.Row + d.Row, Col: c.Col + d.Col}
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// CellType classifies what a cell is used for.
type CellType uint8

const (
	CellUnreachable CellType = iota // Outside the walkable area
	CellCommon                      // Public space shared by all households
	CellHome                        // Part of a household footprint
)

// Layout codes as supplied by map producers.
const (
	CodeUnreachable = 0
	CodeCommon      = 1
	CodeFirstHome   = 2 // Codes >= 2 are household identifiers
)

// HomeID identifies a household. Zero means "no household".
type HomeID int

// NoHome is the home id of every non-home cell.
const NoHome HomeID = 0

// Cell is a single immutable grid square.
type Cell struct {
	Coord      Coord    `json:"coord"`
	Type       CellType `json:"type"`
	HomeID     HomeID   `json:"home_id,omitempty"` // Set iff Type == CellHome
	Accessible bool     `json:"accessible"`
}

// IsHome reports whether the cell belongs to a household.
func (c Cell) IsHome() bool {
	return c.Type == CellHome
}

// CellTypeName returns a human-readable name for a cell type.
func CellTypeName(t CellType) string {
	switch t {
	case CellUnreachable:
		return "unreachable"
	case CellCommon:
		return "common"
	case CellHome:
		return "home"
	default:
		return "unknown"
	}
}

// MooreDirections defines the eight neighbor offsets, row-major from the bottom-left.
var MooreDirections = [8]Coord{
	{Row: -1, Col: -1},
	{Row: -1, Col: 0},
	{Row: -1, Col: 1},
	{Row: 0, Col: -1},
	{Row: 0, Col: 1},
	{Row: 1, Col: -1},
	{Row: 1, Col: 0},
	{Row: 1, Col: 1},
}

// Neighbors returns the eight Moore-adjacent coordinates. Some may be out of bounds.
func (c Coord) Neighbors() [8]Coord {
	var result [8]Coord
	for i, dir := range MooreDirections {
		result[i] = c.Add(dir)
	}
	return result
}

// Chebyshev returns the Moore-neighborhood distance max(|dr|, |dc|).
func Chebyshev(a, b Coord) int {
	dr := abs(a.Row - b.Row)
	dc := abs(a.Col - b.Col)
	if dr > dc {
		return dr
	}
	return dc
}

// Euclidean returns the straight-line distance between two cells.
func Euclidean(a, b Coord) float64 {
	dr := float64(a.Row - b.Row)
	dc := float64(a.Col - b.Col)
	return math.Sqrt(dr*dr + dc*dc)
}

// FlooredEuclidean returns floor(sqrt(dr² + dc²)). Infection probability
// tables are indexed by this value, not by Chebyshev distance.
func FlooredEuclidean(a, b Coord) int {
	return int(math.Floor(Euclidean(a, b)))
}
