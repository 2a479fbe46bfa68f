package world

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rng(t *testing.T) *rand.Rand {
	t.Helper()
	return NewDeterministicRNG("test", t.Name())
}

func TestRandomCircleRadiusBounds(t *testing.T) {
	r := rng(t)
	cfg := DefaultConfig()
	for i := 0; i < 10000; i++ {
		c := RandomCircle(r, cfg.View, cfg.Colors)
		require.GreaterOrEqual(t, c.Radius, MinRadius)
		require.Less(t, c.Radius, MaxRadius)
		require.True(t, cfg.Contains(c))
	}
}

func TestCircleUpdateKeepsInvariants(t *testing.T) {
	r := rng(t)
	cfg := Config{
		View:             ViewWindow{XMin: 0, XMax: 50, YMin: 0, YMax: 20},
		Colors:           DefaultColorConfig(),
		MaxPositionDelta: 15,
	}
	c := RandomCircle(r, cfg.View, cfg.Colors)
	radius := c.Radius
	for i := 0; i < 20000; i++ {
		prev := c
		c.Update(r, cfg.View, cfg.MaxPositionDelta, cfg.Colors)
		require.Equal(t, radius, c.Radius)
		require.True(t, cfg.Contains(c), "iteration %d escaped: %+v", i, c)
		require.LessOrEqual(t, c.Position.X-prev.Position.X, cfg.MaxPositionDelta+1e-9)
		require.LessOrEqual(t, prev.Position.X-c.Position.X, cfg.MaxPositionDelta+1e-9)
		require.LessOrEqual(t, c.Position.Y-prev.Position.Y, cfg.MaxPositionDelta+1e-9)
		require.LessOrEqual(t, prev.Position.Y-c.Position.Y, cfg.MaxPositionDelta+1e-9)
	}
}

func TestCircleUpdateIsDeterministicForSeed(t *testing.T) {
	cfg := DefaultConfig()
	run := func() Circle {
		r := NewDeterministicRNG("seed", "circle")
		c := RandomCircle(r, cfg.View, cfg.Colors)
		for i := 0; i < 100; i++ {
			c.Update(r, cfg.View, cfg.MaxPositionDelta, cfg.Colors)
		}
		return c
	}
	assert.Equal(t, run(), run())
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.View.XMin = 1000
	cfg.MaxPositionDelta = -1
	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidRange)
	require.ErrorIs(t, err, ErrInvalidDelta)
}
