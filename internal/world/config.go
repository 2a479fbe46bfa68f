package world

import (
	"errors"
	"fmt"
)

const (
	DefaultWidth            = 750.0
	DefaultHeight           = 750.0
	DefaultMaxPositionDelta = 20.0
)

// Config describes the space circles live in and how far they may drift per tick.
type Config struct {
	View             ViewWindow  `json:"view" yaml:"view"`
	Colors           ColorConfig `json:"colors" yaml:"colors"`
	MaxPositionDelta float64     `json:"maxPositionDelta" yaml:"max_position_delta"`
}

// DefaultConfig mirrors the reference 750×750 canvas.
func DefaultConfig() Config {
	return Config{
		View: ViewWindow{
			XMin: 0,
			XMax: DefaultWidth,
			YMin: 0,
			YMax: DefaultHeight,
		},
		Colors:           DefaultColorConfig(),
		MaxPositionDelta: DefaultMaxPositionDelta,
	}
}

// Validate reports every invalid field of the configuration.
func (cfg Config) Validate() error {
	var errs []error
	if err := cfg.View.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("view: %w", err))
	}
	if err := cfg.Colors.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("colors: %w", err))
	}
	if !isFinite(cfg.MaxPositionDelta) || cfg.MaxPositionDelta < 0 {
		errs = append(errs, fmt.Errorf("max position delta: %w: %v", ErrInvalidDelta, cfg.MaxPositionDelta))
	}
	return errors.Join(errs...)
}

// Contains reports whether circle sits inside the view with every color channel in range.
func (cfg Config) Contains(circle Circle) bool {
	return cfg.View.Contains(circle.Position) && cfg.Colors.Contains(circle.Color)
}
