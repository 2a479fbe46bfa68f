package world

import "math/rand"

// Radius bounds for freshly created circles. They do not depend on any config.
const (
	MinRadius = 0.1
	MaxRadius = 20.0
)

// Circle is a drifting colored disc. Copies are independent snapshots.
type Circle struct {
	Position Position `json:"position"`
	Radius   float64  `json:"radius"`
	Color    Color    `json:"color"`
}

// RandomCircle places a new circle anywhere in view with a random radius and color.
func RandomCircle(rng *rand.Rand, view ViewWindow, colors ColorConfig) Circle {
	return Circle{
		Position: view.RandomPosition(rng),
		Radius:   RandomBetween(rng, MinRadius, MaxRadius),
		Color:    RandomColor(rng, colors),
	}
}

// Update advances position and color by one bounded random step. The radius is fixed.
func (c *Circle) Update(rng *rand.Rand, view ViewWindow, maxPositionDelta float64, colors ColorConfig) {
	c.Position.X = BoundedStep(rng, view.XMin, view.XMax, c.Position.X, maxPositionDelta)
	c.Position.Y = BoundedStep(rng, view.YMin, view.YMax, c.Position.Y, maxPositionDelta)
	c.Color = c.Color.Step(rng, colors)
}
