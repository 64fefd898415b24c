// Package report renders a finished or running simulation to files: the
// series as CSV and a PNG line chart, and the grid as an MJPEG replay.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/talgya/contagion/internal/metrics"
)

var csvHeader = []string{"tick", "infected", "healthy", "recovered", "outside"}

// WriteCSV writes one row per sample under a header row.
func WriteCSV(w io.Writer, samples []metrics.Sample) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			strconv.FormatUint(s.Tick, 10),
			strconv.Itoa(s.Infected),
			strconv.Itoa(s.Healthy),
			strconv.Itoa(s.Recovered),
			strconv.Itoa(s.Outside),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// SaveCSV writes the series to path.
func SaveCSV(path string, samples []metrics.Sample) error {
	return writeFile(path, func(w io.Writer) error { return WriteCSV(w, samples) })
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
