package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/talgya/contagion/internal/metrics"
)

// ErrTooFewSamples is returned when a chart would have fewer than two points.
var ErrTooFewSamples = errors.New("need at least two samples to plot")

var (
	infectedColor  = chart.ColorRed
	healthyColor   = chart.ColorGreen
	recoveredColor = drawing.ColorFromHex("666666")
)

// WriteChart renders Infected, Healthy and Recovered over time as a PNG.
func WriteChart(w io.Writer, samples []metrics.Sample) error {
	if len(samples) < 2 {
		return ErrTooFewSamples
	}

	ticks, infected, healthy, recovered := metrics.Columns(samples)
	yMax := float64(samples[0].Total())
	if yMax < 1 {
		yMax = 1
	}

	graph := chart.Chart{
		Width:  960,
		Height: 480,
		Background: chart.Style{
			Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name: "Tick",
			Style: chart.Style{
				FontSize: 10.0,
			},
			Range: &chart.ContinuousRange{Min: 0, Max: ticks[len(ticks)-1]},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		YAxis: chart.YAxis{
			Name: "Agents",
			Style: chart.Style{
				FontSize: 10.0,
			},
			Range: &chart.ContinuousRange{Min: 0, Max: yMax},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Infected",
				XValues: ticks,
				YValues: infected,
				Style: chart.Style{
					StrokeColor: infectedColor,
					StrokeWidth: 2.0,
				},
			},
			chart.ContinuousSeries{
				Name:    "Healthy",
				XValues: ticks,
				YValues: healthy,
				Style: chart.Style{
					StrokeColor: healthyColor,
					StrokeWidth: 2.0,
				},
			},
			chart.ContinuousSeries{
				Name:    "Recovered",
				XValues: ticks,
				YValues: recovered,
				Style: chart.Style{
					StrokeColor: recoveredColor,
					StrokeWidth: 2.0,
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.PNG, w)
}

// SaveChart writes the chart to path.
func SaveChart(path string, samples []metrics.Sample) error {
	if len(samples) < 2 {
		return ErrTooFewSamples
	}
	return writeFile(path, func(w io.Writer) error { return WriteChart(w, samples) })
}
