// Package config loads and validates run configuration from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/talgya/contagion/internal/agents"
	"github.com/talgya/contagion/internal/engine"
	"github.com/talgya/contagion/internal/epidemic"
	"github.com/talgya/contagion/internal/world"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// Report fields by their YAML names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// Point is a [row, col] pair.
type Point [2]int

// Coord converts p to a grid coordinate.
func (p Point) Coord() world.Coord {
	return world.Coord{Row: p[0], Col: p[1]}
}

// Config is the full run configuration.
type Config struct {
	Seed                    int64     `yaml:"seed"` // 0 = pick one at startup
	Ticks                   int       `yaml:"ticks" validate:"min=0"`
	Population              int       `yaml:"population" validate:"min=1"`
	MaxInfectionTicks       int       `yaml:"max_infection_ticks" validate:"min=1"`
	MaxOutsideTicks         int       `yaml:"max_outside_ticks" validate:"min=1"`
	NumTargetCells          int       `yaml:"num_target_cells" validate:"min=0"`
	NumAgentsAllowedOutside int       `yaml:"num_agents_allowed_outside" validate:"min=0"`
	Entrances               []Point   `yaml:"entrances,omitempty"`
	InitiallyInfected       float64   `yaml:"initially_infected_population" validate:"gte=0,lte=1"`
	InitiallyRecovered      float64   `yaml:"initially_recovered_population" validate:"gte=0,lte=1"`
	InfectionProbabilities  []float64 `yaml:"infection_probabilities" validate:"required,min=1,dive,gte=0,lte=1"`
	GoingOutMean            float64   `yaml:"going_out_probability_mean" validate:"gte=0,lte=1"`
	GoingOutStdDev          float64   `yaml:"going_out_probability_stddev" validate:"gte=0"`
	ReportEvery             int       `yaml:"report_every" validate:"min=0"`
	Map                     MapConfig `yaml:"map"`
}

// MapConfig selects a fixed layout or a generated one.
type MapConfig struct {
	Origin   string          `yaml:"origin,omitempty" validate:"omitempty,oneof=bottom top"`
	Layout   [][]int         `yaml:"layout,omitempty"`
	Walls    []Point         `yaml:"walls,omitempty"`
	Generate *GenerateConfig `yaml:"generate,omitempty"`
}

// GenerateConfig mirrors world.GenConfig for YAML.
type GenerateConfig struct {
	Width         int     `yaml:"width" validate:"min=1"`
	Height        int     `yaml:"height" validate:"min=1"`
	Homes         int     `yaml:"homes" validate:"min=1"`
	HomeWidth     int     `yaml:"home_width" validate:"min=1"`
	HomeHeight    int     `yaml:"home_height" validate:"min=1"`
	ObstacleLevel float64 `yaml:"obstacle_level" validate:"gt=0"`
}

// Default returns the built-in scenario.
func Default() *Config {
	return &Config{
		Seed:                    42,
		Ticks:                   500,
		Population:              100,
		MaxInfectionTicks:       14,
		MaxOutsideTicks:         20,
		NumTargetCells:          10,
		NumAgentsAllowedOutside: 20,
		InitiallyInfected:       0.05,
		InfectionProbabilities:  []float64{0.3, 0.1},
		GoingOutMean:            0.1,
		GoingOutStdDev:          0.05,
		ReportEvery:             engine.DefaultReportEvery,
		Map: MapConfig{
			Origin:   "bottom",
			Generate: defaultGenerate(),
		},
	}
}

func defaultGenerate() *GenerateConfig {
	g := world.DefaultGenConfig()
	return &GenerateConfig{
		Width:         g.Width,
		Height:        g.Height,
		Homes:         g.Homes,
		HomeWidth:     g.HomeWidth,
		HomeHeight:    g.HomeHeight,
		ObstacleLevel: g.ObstacleLevel,
	}
}

// Load reads and validates a YAML file. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	cfg.Map.Generate = nil

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, world.Configf("yaml", "%v", err)
	}

	switch {
	case cfg.Map.Layout == nil && cfg.Map.Generate == nil:
		cfg.Map.Generate = defaultGenerate()
	case cfg.Map.Generate != nil:
		cfg.Map.Generate.fillDefaults()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fillDefaults replaces unset generation fields with the default town.
func (g *GenerateConfig) fillDefaults() {
	d := defaultGenerate()
	if g.Width == 0 {
		g.Width = d.Width
	}
	if g.Height == 0 {
		g.Height = d.Height
	}
	if g.Homes == 0 {
		g.Homes = d.Homes
	}
	if g.HomeWidth == 0 {
		g.HomeWidth = d.HomeWidth
	}
	if g.HomeHeight == 0 {
		g.HomeHeight = d.HomeHeight
	}
	if g.ObstacleLevel == 0 {
		g.ObstacleLevel = d.ObstacleLevel
	}
}

// Validate checks field ranges and cross-field rules. Failures are
// *world.ConfigurationError.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}

	if c.InitiallyInfected+c.InitiallyRecovered > 1 {
		return world.Configf("initially_infected_population",
			"infected (%g) and recovered (%g) fractions exceed 1", c.InitiallyInfected, c.InitiallyRecovered)
	}
	if _, err := epidemic.NewModel(c.InfectionProbabilities); err != nil {
		return err
	}

	hasLayout := len(c.Map.Layout) > 0
	hasGenerate := c.Map.Generate != nil
	if hasLayout == hasGenerate {
		return world.Configf("map", "exactly one of layout or generate must be set")
	}
	return nil
}

// formatValidationError converts the first validator error into a
// ConfigurationError named after the YAML field.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return world.Configf("config", "%v", err)
	}

	e := validationErrs[0]
	field := e.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}

	switch e.Tag() {
	case "required":
		return world.Configf(field, "field is required")
	case "min", "gte":
		return world.Configf(field, "must be at least %s, got %v", e.Param(), e.Value())
	case "max", "lte":
		return world.Configf(field, "must not exceed %s, got %v", e.Param(), e.Value())
	case "gt":
		return world.Configf(field, "must be greater than %s, got %v", e.Param(), e.Value())
	case "oneof":
		return world.Configf(field, "must be one of [%s], got %v", e.Param(), e.Value())
	default:
		return world.Configf(field, "failed %s validation", e.Tag())
	}
}

// Marshal encodes the configuration as YAML, for archiving alongside a run.
func (c *Config) Marshal() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// BuildMap constructs the grid: the configured layout, or a generated one
// seeded from the run seed.
func (c *Config) BuildMap() (*world.Map, error) {
	var layout [][]int
	walls := points(c.Map.Walls)
	entrances := points(c.Entrances)

	if g := c.Map.Generate; g != nil {
		layout = world.Generate(world.GenConfig{
			Width:         g.Width,
			Height:        g.Height,
			Homes:         g.Homes,
			HomeWidth:     g.HomeWidth,
			HomeHeight:    g.HomeHeight,
			ObstacleLevel: g.ObstacleLevel,
			Seed:          c.Seed,
		})
	} else {
		layout = c.Map.Layout
		if c.Map.Origin == "top" {
			layout = world.FlipRows(layout)
			flip(walls, len(layout))
			flip(entrances, len(layout))
		}
	}

	return world.NewMap(layout, world.Options{
		Walls:       walls,
		Entrances:   entrances,
		TargetCount: c.NumTargetCells,
		Seed:        c.Seed,
	})
}

// SpawnConfig returns the per-agent parameters.
func (c *Config) SpawnConfig() agents.SpawnConfig {
	return agents.SpawnConfig{
		MaxInfectionTicks: c.MaxInfectionTicks,
		MaxOutsideTicks:   c.MaxOutsideTicks,
		GoingOutMean:      c.GoingOutMean,
		GoingOutStdDev:    c.GoingOutStdDev,
	}
}

// PopulationRequest returns the initial population description.
func (c *Config) PopulationRequest() engine.PopulationRequest {
	return engine.PopulationRequest{
		Size:               c.Population,
		InitiallyInfected:  c.InitiallyInfected,
		InitiallyRecovered: c.InitiallyRecovered,
	}
}

// Params returns the simulation-wide settings.
func (c *Config) Params() engine.Params {
	return engine.Params{
		Seed:                   c.Seed,
		GateCapacity:           c.NumAgentsAllowedOutside,
		InfectionProbabilities: append([]float64(nil), c.InfectionProbabilities...),
	}
}

func points(ps []Point) []world.Coord {
	out := make([]world.Coord, len(ps))
	for i, p := range ps {
		out[i] = p.Coord()
	}
	return out
}

// flip converts top-origin rows to bottom-origin in place.
func flip(cs []world.Coord, height int) {
	for i := range cs {
		cs[i].Row = height - 1 - cs[i].Row
	}
}
