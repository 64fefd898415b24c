// Household placement: scores candidate footprints and stamps homes into a layout.
package world

import (
	"math/rand"
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// HomeSeed describes one placed household footprint.
type HomeSeed struct {
	Origin Coord // Bottom-left cell
	Width  int
	Height int
	ID     HomeID
	Score  float64 // Desirability score
}

// Contains reports whether c lies inside the footprint.
func (h HomeSeed) Contains(c Coord) bool {
	return c.Row >= h.Origin.Row && c.Row < h.Origin.Row+h.Height &&
		c.Col >= h.Origin.Col && c.Col < h.Origin.Col+h.Width
}

// PlaceHomes stamps up to cfg.Homes households into layout, highest noise
// desirability first. Homes keep a one-cell gap from each other and each one
// touches at least one common cell so its residents can reach an entrance.
func PlaceHomes(layout [][]int, cfg GenConfig, seed int64) []HomeSeed {
	if len(layout) == 0 || cfg.HomeWidth <= 0 || cfg.HomeHeight <= 0 {
		return nil
	}
	rng := rand.New(rand.NewSource(seed + 200))
	siteNoise := opensimplex.NewNormalized(seed + 1)

	height := len(layout)
	width := len(layout[0])

	type scored struct {
		origin Coord
		score  float64
	}
	var candidates []scored

	for row := 0; row+cfg.HomeHeight <= height; row++ {
		for col := 0; col+cfg.HomeWidth <= width; col++ {
			cx := float64(col) + float64(cfg.HomeWidth)/2
			cy := float64(row) + float64(cfg.HomeHeight)/2
			s := octaveNoise(siteNoise, cx, cy, 2, 0.1, 0.5) + rng.Float64()*0.05
			candidates = append(candidates, scored{Coord{Row: row, Col: col}, s})
		}
	}

	// Sort by score descending; stable so equal scores keep row-major order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	var seeds []HomeSeed
	for _, c := range candidates {
		if len(seeds) >= cfg.Homes {
			break
		}
		h := HomeSeed{
			Origin: c.origin,
			Width:  cfg.HomeWidth,
			Height: cfg.HomeHeight,
			ID:     HomeID(CodeFirstHome + len(seeds)),
			Score:  c.score,
		}
		if tooClose(h, seeds) || !hasDoorstep(layout, h) {
			continue
		}
		stamp(layout, h)
		seeds = append(seeds, h)
	}

	return seeds
}

// tooClose reports whether h, grown by one cell on every side, overlaps an existing home.
func tooClose(h HomeSeed, existing []HomeSeed) bool {
	for _, o := range existing {
		rowsOverlap := h.Origin.Row-1 < o.Origin.Row+o.Height && o.Origin.Row < h.Origin.Row+h.Height+1
		colsOverlap := h.Origin.Col-1 < o.Origin.Col+o.Width && o.Origin.Col < h.Origin.Col+h.Width+1
		if rowsOverlap && colsOverlap {
			return true
		}
	}
	return false
}

// hasDoorstep reports whether the ring around h contains a common cell.
func hasDoorstep(layout [][]int, h HomeSeed) bool {
	for row := h.Origin.Row - 1; row <= h.Origin.Row+h.Height; row++ {
		for col := h.Origin.Col - 1; col <= h.Origin.Col+h.Width; col++ {
			if row < 0 || row >= len(layout) || col < 0 || col >= len(layout[row]) {
				continue
			}
			if h.Contains(Coord{Row: row, Col: col}) {
				continue
			}
			if layout[row][col] == CodeCommon {
				return true
			}
		}
	}
	return false
}

func stamp(layout [][]int, h HomeSeed) {
	for row := h.Origin.Row; row < h.Origin.Row+h.Height; row++ {
		for col := h.Origin.Col; col < h.Origin.Col+h.Width; col++ {
			layout[row][col] = int(h.ID)
		}
	}
}
