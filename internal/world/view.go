package world

import (
	"errors"
	"fmt"
	"math/rand"
)

// Position is a point in view coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ViewWindow is the rectangle circles are confined to.
type ViewWindow struct {
	XMin float64 `json:"xMin" yaml:"x_min"`
	XMax float64 `json:"xMax" yaml:"x_max"`
	YMin float64 `json:"yMin" yaml:"y_min"`
	YMax float64 `json:"yMax" yaml:"y_max"`
}

// NewViewWindow validates and returns a ViewWindow.
func NewViewWindow(xMin, xMax, yMin, yMax float64) (ViewWindow, error) {
	view := ViewWindow{XMin: xMin, XMax: xMax, YMin: yMin, YMax: yMax}
	if err := view.Validate(); err != nil {
		return ViewWindow{}, err
	}
	return view, nil
}

// Validate reports ErrInvalidRange for each inverted or non-finite axis.
func (v ViewWindow) Validate() error {
	var errs []error
	if !isFinite(v.XMin) || !isFinite(v.XMax) || v.XMin > v.XMax {
		errs = append(errs, fmt.Errorf("x axis: %w: min=%v max=%v", ErrInvalidRange, v.XMin, v.XMax))
	}
	if !isFinite(v.YMin) || !isFinite(v.YMax) || v.YMin > v.YMax {
		errs = append(errs, fmt.Errorf("y axis: %w: min=%v max=%v", ErrInvalidRange, v.YMin, v.YMax))
	}
	return errors.Join(errs...)
}

func (v ViewWindow) Width() float64 {
	return v.XMax - v.XMin
}

func (v ViewWindow) Height() float64 {
	return v.YMax - v.YMin
}

// Contains reports whether p lies inside the closed rectangle.
func (v ViewWindow) Contains(p Position) bool {
	return p.X >= v.XMin && p.X <= v.XMax && p.Y >= v.YMin && p.Y <= v.YMax
}

// RandomPosition draws x and y independently and uniformly.
func (v ViewWindow) RandomPosition(rng *rand.Rand) Position {
	return Position{
		X: RandomBetween(rng, v.XMin, v.XMax),
		Y: RandomBetween(rng, v.YMin, v.YMax),
	}
}
