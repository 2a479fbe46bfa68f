package sim

import (
	"errors"
	"fmt"
	"math/rand"

	"yew-art/server/internal/world"
)

const (
	DefaultHistoryCapacity = 10000
	DefaultInitialCircles  = 1
)

// Config gathers everything a Simulation needs at construction.
type Config struct {
	world.Config    `yaml:",inline"`
	HistoryCapacity int    `json:"historyCapacity" yaml:"history_capacity"`
	InitialCircles  int    `json:"initialCircles" yaml:"initial_circles"`
	Seed            string `json:"seed" yaml:"seed"`
}

// DefaultConfig returns the reference canvas with a single starting circle.
func DefaultConfig() Config {
	return Config{
		Config:          world.DefaultConfig(),
		HistoryCapacity: DefaultHistoryCapacity,
		InitialCircles:  DefaultInitialCircles,
		Seed:            world.DefaultSeed,
	}
}

// Validate reports every field that would make the simulation ill-defined.
func (cfg Config) Validate() error {
	var errs []error
	if err := cfg.Config.Validate(); err != nil {
		errs = append(errs, err)
	}
	if cfg.HistoryCapacity < 1 {
		errs = append(errs, fmt.Errorf("%w: history capacity %d, need at least 1", world.ErrInvalidCapacity, cfg.HistoryCapacity))
	}
	if cfg.InitialCircles < 0 {
		errs = append(errs, fmt.Errorf("initial circles must not be negative: %d", cfg.InitialCircles))
	}
	return errors.Join(errs...)
}

// RenderState is what a renderer needs to draw one frame.
type RenderState struct {
	View    world.ViewWindow `json:"view"`
	History []world.Circle   `json:"history"`
	Circles []world.Circle   `json:"circles"`
}

// Ordered lists history before live circles so live circles paint on top.
func (s RenderState) Ordered() []world.Circle {
	out := make([]world.Circle, 0, len(s.History)+len(s.Circles))
	out = append(out, s.History...)
	out = append(out, s.Circles...)
	return out
}

// Delta is what a viewer holding the trail up to some cursor lacks: the
// history pushed since then plus the current live circles.
type Delta struct {
	View    world.ViewWindow
	History []world.Circle
	Circles []world.Circle
	// HistoryEnd is the cursor after applying History.
	HistoryEnd uint64
	// HistoryCap bounds the trail the viewer keeps.
	HistoryCap int
	// Reset means History replaces the viewer's trail instead of extending it.
	Reset bool
}

// Simulation owns the live circles and their history trail. It is not safe for
// concurrent use; Controller serializes access.
type Simulation struct {
	config  Config
	rng     *rand.Rand
	circles []world.Circle
	history *world.History
}

// New validates cfg and seeds the initial circles.
func New(cfg Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}
	history, err := world.NewHistory(cfg.HistoryCapacity)
	if err != nil {
		return nil, err
	}
	s := &Simulation{
		config:  cfg,
		rng:     world.NewDeterministicRNG(cfg.Seed, "simulation"),
		circles: make([]world.Circle, 0, cfg.InitialCircles),
		history: history,
	}
	for i := 0; i < cfg.InitialCircles; i++ {
		s.AddCircle()
	}
	return s, nil
}

func (s *Simulation) Config() Config {
	return s.config
}

// AddCircle appends a randomly generated circle and returns a copy of it.
func (s *Simulation) AddCircle() world.Circle {
	circle := world.RandomCircle(s.rng, s.config.View, s.config.Colors)
	s.circles = append(s.circles, circle)
	return circle
}

// Tick records every live circle into history, then moves it one step. It
// returns the number of circles advanced.
func (s *Simulation) Tick() int {
	before := make([]world.Circle, len(s.circles))
	copy(before, s.circles)
	for i := range s.circles {
		s.history.Push(before[i])
		s.circles[i].Update(s.rng, s.config.View, s.config.MaxPositionDelta, s.config.Colors)
	}
	return len(before)
}

// RenderState copies the current frame.
func (s *Simulation) RenderState() RenderState {
	circles := make([]world.Circle, len(s.circles))
	copy(circles, s.circles)
	return RenderState{
		View:    s.config.View,
		History: s.history.Snapshot(),
		Circles: circles,
	}
}

// DeltaSince copies the part of the frame newer than cursor. Reset is set when
// some of that history was already evicted.
func (s *Simulation) DeltaSince(cursor uint64) Delta {
	circles := make([]world.Circle, len(s.circles))
	copy(circles, s.circles)
	history, truncated := s.history.Since(cursor)
	if history == nil {
		history = []world.Circle{}
	}
	return Delta{
		View:       s.config.View,
		History:    history,
		Circles:    circles,
		HistoryEnd: s.history.Total(),
		HistoryCap: s.history.Cap(),
		Reset:      truncated,
	}
}

func (s *Simulation) Len() int {
	return len(s.circles)
}

func (s *Simulation) HistoryLen() int {
	return s.history.Len()
}
