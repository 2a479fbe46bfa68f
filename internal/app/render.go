package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"yew-art/server/internal/render"
	"yew-art/server/internal/sim"
)

// RenderOptions drives a headless run.
type RenderOptions struct {
	Simulation sim.Config
	// Circles is the live set size; values below the configured initial
	// count are ignored.
	Circles int
	Ticks   int
}

// RenderStats summarizes a headless run.
type RenderStats struct {
	Circles int
	History int
	Ticks   int
}

// RenderOnce builds a simulation, advances it synchronously and writes the
// resulting frame as an SVG document.
func RenderOnce(opts RenderOptions, w io.Writer) (RenderStats, error) {
	if err := opts.validate(); err != nil {
		return RenderStats{}, err
	}
	simulation, err := sim.New(opts.Simulation)
	if err != nil {
		return RenderStats{}, err
	}
	for simulation.Len() < opts.Circles {
		simulation.AddCircle()
	}
	for i := 0; i < opts.Ticks; i++ {
		simulation.Tick()
	}

	if err := render.WriteSVG(w, simulation.RenderState()); err != nil {
		return RenderStats{}, fmt.Errorf("write svg: %w", err)
	}
	return RenderStats{
		Circles: simulation.Len(),
		History: simulation.HistoryLen(),
		Ticks:   opts.Ticks,
	}, nil
}

func (opts RenderOptions) validate() error {
	if opts.Ticks < 0 {
		return fmt.Errorf("ticks must not be negative: %d", opts.Ticks)
	}
	if err := opts.Simulation.Validate(); err != nil {
		return fmt.Errorf("invalid simulation config: %w", err)
	}
	return nil
}

// RenderFile runs RenderOnce into a temporary file beside path and renames it
// into place, so a failed run leaves any existing file untouched.
func RenderFile(opts RenderOptions, path string) (RenderStats, error) {
	if err := opts.validate(); err != nil {
		return RenderStats{}, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".yew-art-*.svg")
	if err != nil {
		return RenderStats{}, fmt.Errorf("create temp file for %s: %w", path, err)
	}
	stats, err := RenderOnce(opts, tmp)
	err = errors.Join(err, tmp.Close())
	if err == nil {
		err = os.Rename(tmp.Name(), path)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return RenderStats{}, err
	}
	return stats, nil
}
