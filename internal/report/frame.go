package report

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/talgya/contagion/internal/agents"
	"github.com/talgya/contagion/internal/engine"
	"github.com/talgya/contagion/internal/world"
)

var (
	unreachableColor = color.RGBA{0, 0, 0, 255}
	commonColor      = color.RGBA{235, 235, 235, 255}
	homeColor        = color.RGBA{222, 184, 135, 255}
	wallColor        = color.RGBA{84, 110, 122, 255}

	diseaseColors = map[agents.DiseaseState]color.RGBA{
		agents.Healthy:   {0, 170, 0, 255},
		agents.Infected:  {255, 0, 0, 255},
		agents.Recovered: {102, 102, 102, 255},
	}
)

// RenderFrame draws the grid with row 0 at the bottom and one square marker
// per occupied cell, colored by the disease state of the last agent drawn there.
func RenderFrame(m *world.Map, snap engine.Snapshot, cellSize int) *image.RGBA {
	if cellSize < 1 {
		cellSize = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, m.Width*cellSize, m.Height*cellSize))

	m.Each(func(c world.Cell) {
		fill(img, cellRect(m, c.Coord, cellSize, 0), cellColor(c))
	})

	inset := cellSize / 5
	for _, a := range snap.Agents {
		fill(img, cellRect(m, a.Position, cellSize, inset), diseaseColors[a.Disease])
	}
	return img
}

func cellColor(c world.Cell) color.RGBA {
	switch {
	case c.Type == world.CellUnreachable:
		return unreachableColor
	case !c.Accessible:
		return wallColor
	case c.IsHome():
		return homeColor
	default:
		return commonColor
	}
}

func cellRect(m *world.Map, c world.Coord, size, inset int) image.Rectangle {
	x := c.Col * size
	y := (m.Height - 1 - c.Row) * size
	return image.Rect(x+inset, y+inset, x+size-inset, y+size-inset)
}

func fill(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(img, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
}
