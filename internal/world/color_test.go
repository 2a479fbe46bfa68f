package world

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomColorWithinDefaultRanges(t *testing.T) {
	rng := NewDeterministicRNG("color", "random")
	cfg := DefaultColorConfig()
	for i := 0; i < 10000; i++ {
		c := RandomColor(rng, cfg)
		require.GreaterOrEqual(t, c.H, 0.0)
		require.Less(t, c.H, 360.0)
		require.GreaterOrEqual(t, c.S, 0.0)
		require.LessOrEqual(t, c.S, 1.0)
		require.GreaterOrEqual(t, c.L, 0.0)
		require.LessOrEqual(t, c.L, 1.0)
	}
}

func TestColorStepStaysInConfiguredRanges(t *testing.T) {
	rng := NewDeterministicRNG("color", "step")
	cfg := ColorConfig{
		H: Range{Min: 100, Max: 140, Delta: 7},
		S: Range{Min: 0.2, Max: 0.4, Delta: 0.1},
		L: Range{Min: 0.5, Max: 0.5, Delta: 0.1},
	}
	c := RandomColor(rng, cfg)
	for i := 0; i < 5000; i++ {
		next := c.Step(rng, cfg)
		require.True(t, cfg.Contains(next), "step %d out of range: %+v", i, next)
		require.LessOrEqual(t, next.H-c.H, 7.0+1e-9)
		require.LessOrEqual(t, c.H-next.H, 7.0+1e-9)
		require.Equal(t, 0.5, next.L)
		c = next
	}
}

func TestColorString(t *testing.T) {
	tests := []struct {
		color Color
		want  string
	}{
		{Color{H: 0, S: 0, L: 0}, "hsl(0.00, 0.00%, 0.00%)"},
		{Color{H: 359.999, S: 1, L: 0.5}, "hsl(360.00, 100.00%, 50.00%)"},
		{Color{H: 12.3456, S: 0.123456, L: 0.987654}, "hsl(12.35, 12.35%, 98.77%)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.color.String())
	}
}

func TestColorConfigValidateNamesChannel(t *testing.T) {
	cfg := DefaultColorConfig()
	cfg.S = Range{Min: 1, Max: 0}
	cfg.L.Delta = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRange))
	assert.True(t, errors.Is(err, ErrInvalidDelta))
	assert.Contains(t, err.Error(), "saturation")
	assert.Contains(t, err.Error(), "lightness")
	assert.NotContains(t, err.Error(), "hue")
}
