// Layout generation using layered simplex noise.
// Produces common space broken up by unreachable patches, then places households.
package world

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds layout generation parameters.
type GenConfig struct {
	Width         int     // Cells per row
	Height        int     // Rows
	Homes         int     // Households to place (fewer if space runs out)
	HomeWidth     int     // Household footprint width
	HomeHeight    int     // Household footprint height
	ObstacleLevel float64 // Noise above this becomes unreachable; >= 1 disables obstacles
	Seed          int64   // Noise and placement seed
}

// DefaultGenConfig returns a town-sized layout.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Width:         40,
		Height:        40,
		Homes:         12,
		HomeWidth:     4,
		HomeHeight:    3,
		ObstacleLevel: 0.7,
		Seed:          0,
	}
}

// SmallTestConfig returns a tiny obstacle-free layout for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Width:         12,
		Height:        12,
		Homes:         3,
		HomeWidth:     3,
		HomeHeight:    2,
		ObstacleLevel: 1,
		Seed:          42,
	}
}

// Generate creates a layout of cell codes with row 0 at the bottom.
func Generate(cfg GenConfig) [][]int {
	seed := cfg.Seed
	obstacleNoise := opensimplex.NewNormalized(seed)

	layout := make([][]int, cfg.Height)
	for row := range layout {
		layout[row] = make([]int, cfg.Width)
		for col := range layout[row] {
			v := octaveNoise(obstacleNoise, float64(col), float64(row), 3, 0.12, 0.5)
			if v > cfg.ObstacleLevel {
				layout[row][col] = CodeUnreachable
			} else {
				layout[row][col] = CodeCommon
			}
		}
	}

	PlaceHomes(layout, cfg, seed)
	return layout
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
