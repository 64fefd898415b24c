package report

import (
	"bytes"
	"fmt"
	"image/jpeg"

	"github.com/icza/mjpeg"

	"github.com/talgya/contagion/internal/engine"
	"github.com/talgya/contagion/internal/world"
)

// VideoRecorder appends one rendered frame per snapshot to an MJPEG AVI file.
type VideoRecorder struct {
	writer   mjpeg.AviWriter
	m        *world.Map
	cellSize int
	quality  int
	frames   int
	buf      bytes.Buffer
}

// NewVideoRecorder creates the AVI file at path.
func NewVideoRecorder(path string, m *world.Map, cellSize, fps int) (*VideoRecorder, error) {
	if cellSize < 1 {
		cellSize = 1
	}
	if fps < 1 {
		fps = 1
	}
	w, err := mjpeg.New(path, int32(m.Width*cellSize), int32(m.Height*cellSize), int32(fps))
	if err != nil {
		return nil, fmt.Errorf("create video %s: %w", path, err)
	}
	return &VideoRecorder{
		writer:   w,
		m:        m,
		cellSize: cellSize,
		quality:  90,
	}, nil
}

// AddFrame renders snap and appends it.
func (v *VideoRecorder) AddFrame(snap engine.Snapshot) error {
	img := RenderFrame(v.m, snap, v.cellSize)

	v.buf.Reset()
	if err := jpeg.Encode(&v.buf, img, &jpeg.Options{Quality: v.quality}); err != nil {
		return fmt.Errorf("encode frame %d: %w", snap.Tick, err)
	}
	if err := v.writer.AddFrame(v.buf.Bytes()); err != nil {
		return fmt.Errorf("add frame %d: %w", snap.Tick, err)
	}
	v.frames++
	return nil
}

// Frames returns the number of frames written so far.
func (v *VideoRecorder) Frames() int {
	return v.frames
}

// Close finalizes the AVI index.
func (v *VideoRecorder) Close() error {
	return v.writer.Close()
}
