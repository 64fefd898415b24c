package world

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration matches every *ConfigurationError via errors.Is.
	ErrConfiguration = errors.New("configuration error")
	// ErrOutOfBounds matches every *OutOfBoundsError via errors.Is.
	ErrOutOfBounds = errors.New("coordinate out of bounds")
)

// ConfigurationError reports malformed input detected before a run starts.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrConfiguration) true.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// Configf builds a ConfigurationError with a formatted reason.
func Configf(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// OutOfBoundsError reports a coordinate outside the map extent.
type OutOfBoundsError struct {
	Coord  Coord
	Width  int
	Height int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("coordinate %s outside %dx%d map", e.Coord, e.Width, e.Height)
}

// Is makes errors.Is(err, ErrOutOfBounds) true.
func (e *OutOfBoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}
