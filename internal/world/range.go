package world

import (
	"fmt"
	"math"
	"math/rand"
)

// Range bounds one scalar dimension and the largest change it may make per tick.
type Range struct {
	Min   float64 `json:"min" yaml:"min"`
	Max   float64 `json:"max" yaml:"max"`
	Delta float64 `json:"delta" yaml:"delta"`
}

// NewRange validates and returns a Range.
func NewRange(min, max, delta float64) (Range, error) {
	r := Range{Min: min, Max: max, Delta: delta}
	if err := r.Validate(); err != nil {
		return Range{}, err
	}
	return r, nil
}

// Validate reports ErrInvalidRange or ErrInvalidDelta.
func (r Range) Validate() error {
	if !isFinite(r.Min) || !isFinite(r.Max) || r.Min > r.Max {
		return fmt.Errorf("%w: min=%v max=%v", ErrInvalidRange, r.Min, r.Max)
	}
	if !isFinite(r.Delta) || r.Delta < 0 {
		return fmt.Errorf("%w: delta=%v", ErrInvalidDelta, r.Delta)
	}
	return nil
}

// Sample draws uniformly from [Min, Max).
func (r Range) Sample(rng *rand.Rand) float64 {
	return RandomBetween(rng, r.Min, r.Max)
}

// Step moves current by at most Delta without leaving [Min, Max).
func (r Range) Step(rng *rand.Rand, current float64) float64 {
	return BoundedStep(rng, r.Min, r.Max, current, r.Delta)
}

// Contains reports whether v lies in the closed interval [Min, Max].
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
