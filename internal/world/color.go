package world

import (
	"errors"
	"fmt"
	"math/rand"
)

// Color is an HSL triple: hue in degrees, saturation and lightness in [0, 1].
type Color struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	L float64 `json:"l"`
}

// ColorConfig holds the legal range and per-tick drift of each channel.
type ColorConfig struct {
	H Range `json:"h" yaml:"h"`
	S Range `json:"s" yaml:"s"`
	L Range `json:"l" yaml:"l"`
}

// DefaultColorConfig spans the whole HSL space with gentle drift.
func DefaultColorConfig() ColorConfig {
	return ColorConfig{
		H: Range{Min: 0, Max: 360, Delta: 10},
		S: Range{Min: 0, Max: 1, Delta: 0.05},
		L: Range{Min: 0, Max: 1, Delta: 0.05},
	}
}

// Validate checks every channel and reports all failures together.
func (c ColorConfig) Validate() error {
	var errs []error
	if err := c.H.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("hue: %w", err))
	}
	if err := c.S.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("saturation: %w", err))
	}
	if err := c.L.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("lightness: %w", err))
	}
	return errors.Join(errs...)
}

// Contains reports whether every channel of color is inside its configured range.
func (c ColorConfig) Contains(color Color) bool {
	return c.H.Contains(color.H) && c.S.Contains(color.S) && c.L.Contains(color.L)
}

// RandomColor samples each channel independently.
func RandomColor(rng *rand.Rand, cfg ColorConfig) Color {
	return Color{
		H: cfg.H.Sample(rng),
		S: cfg.S.Sample(rng),
		L: cfg.L.Sample(rng),
	}
}

// Step drifts each channel independently by at most its configured delta.
func (c Color) Step(rng *rand.Rand, cfg ColorConfig) Color {
	return Color{
		H: cfg.H.Step(rng, c.H),
		S: cfg.S.Step(rng, c.S),
		L: cfg.L.Step(rng, c.L),
	}
}

// String formats the color as a CSS hsl() value.
func (c Color) String() string {
	return fmt.Sprintf("hsl(%.2f, %.2f%%, %.2f%%)", c.H, c.S*100, c.L*100)
}
