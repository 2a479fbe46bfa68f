package sim

import (
	"errors"
	"sync"
	"time"

	"yew-art/server/internal/telemetry"
	"yew-art/server/logging"
)

// DefaultInterval is the play cadence: roughly 33 ticks per second.
const DefaultInterval = 30 * time.Millisecond

// Status reports whether the periodic timer is active.
type Status int

const (
	StatusPaused Status = iota
	StatusRunning
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// LoopConfig tunes the periodic tick.
type LoopConfig struct {
	Interval time.Duration
}

// LoopHooks are invoked outside the controller lock.
type LoopHooks struct {
	AfterStep      func(StepResult)
	OnStatusChange func(Status)
}

// StepResult summarises one tick.
type StepResult struct {
	Tick     uint64
	Now      time.Time
	Duration time.Duration
	Budget   time.Duration
	Advanced int
	Circles  int
	History  int
	Manual   bool
}

// Overran reports whether the tick took longer than the play interval.
func (r StepResult) Overran() bool {
	return r.Budget > 0 && r.Duration > r.Budget
}

var errNilSimulation = errors.New("sim: nil simulation")

// Controller serializes access to a Simulation and owns its play/pause timer.
// At most one timer goroutine is active at a time.
type Controller struct {
	mu         sync.Mutex
	sim        *Simulation
	config     LoopConfig
	hooks      LoopHooks
	deps       Deps
	status     Status
	generation uint64
	tick       uint64
	stop       chan struct{}
	done       chan struct{}
	closed     bool
}

// NewController wraps simulation. The controller starts paused.
func NewController(simulation *Simulation, cfg LoopConfig, hooks LoopHooks, deps Deps) (*Controller, error) {
	if simulation == nil {
		return nil, errNilSimulation
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if deps.Clock == nil {
		deps.Clock = logging.SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = telemetry.LoggerFunc(nil)
	}
	return &Controller{
		sim:    simulation,
		config: cfg,
		hooks:  hooks,
		deps:   deps,
		status: StatusPaused,
	}, nil
}

func (c *Controller) Interval() time.Duration {
	return c.config.Interval
}

// Status returns the current play state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Tick returns the number of ticks applied so far.
func (c *Controller) Tick() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tick
}

// Toggle flips between paused and running and returns the new status.
func (c *Controller) Toggle() Status {
	c.mu.Lock()
	if c.closed {
		status := c.status
		c.mu.Unlock()
		return status
	}
	if c.status == StatusRunning {
		c.pauseLocked()
	} else {
		c.startLocked()
	}
	status := c.status
	c.mu.Unlock()

	c.notifyStatus(status)
	return status
}

// Start begins periodic ticking. It is a no-op while already running.
func (c *Controller) Start() bool {
	c.mu.Lock()
	if c.closed || c.status == StatusRunning {
		c.mu.Unlock()
		return false
	}
	c.startLocked()
	c.mu.Unlock()

	c.notifyStatus(StatusRunning)
	return true
}

// Pause stops periodic ticking. No timer tick is applied once Pause returns.
func (c *Controller) Pause() bool {
	c.mu.Lock()
	if c.status != StatusRunning {
		c.mu.Unlock()
		return false
	}
	c.pauseLocked()
	c.mu.Unlock()

	c.notifyStatus(StatusPaused)
	return true
}

// Step applies one tick regardless of the play state.
func (c *Controller) Step() StepResult {
	result, _ := c.advance(0, true)
	return result
}

// AddCircle appends one random circle; the play state is unchanged.
func (c *Controller) AddCircle() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sim.AddCircle()
	return c.sim.Len()
}

// RenderState copies the current frame.
func (c *Controller) RenderState() RenderState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sim.RenderState()
}

// Frame is a Delta stamped with the controller's tick and play state.
type Frame struct {
	Delta
	Tick   uint64
	Status Status
}

// Frame copies everything newer than cursor under one lock so the tick, status
// and history agree.
func (c *Controller) Frame(cursor uint64) Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Frame{Delta: c.sim.DeltaSince(cursor), Tick: c.tick, Status: c.status}
}

// FullFrame copies the whole retained trail for a viewer that has none.
func (c *Controller) FullFrame() Frame {
	frame := c.Frame(0)
	frame.Reset = true
	return frame
}

// Counts returns the live circle and history lengths.
func (c *Controller) Counts() (circles, history int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sim.Len(), c.sim.HistoryLen()
}

// Close pauses, waits for the timer goroutine to exit and refuses further starts.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	wasRunning := c.status == StatusRunning
	done := c.done
	if wasRunning {
		c.pauseLocked()
	}
	c.mu.Unlock()

	if done != nil {
		<-done
	}
	c.deps.Logger.Printf("animation controller closed after %d ticks", c.Tick())
	if wasRunning {
		c.notifyStatus(StatusPaused)
	}
}

func (c *Controller) startLocked() {
	c.generation++
	c.status = StatusRunning
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.run(c.generation, c.stop, c.done)
}

// pauseLocked invalidates the running generation so a fire racing the pause is
// discarded by advance.
func (c *Controller) pauseLocked() {
	c.generation++
	c.status = StatusPaused
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

func (c *Controller) run(generation uint64, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(c.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if _, ok := c.advance(generation, false); !ok {
				return
			}
		}
	}
}

func (c *Controller) advance(generation uint64, manual bool) (StepResult, bool) {
	c.mu.Lock()
	if !manual && (c.status != StatusRunning || c.generation != generation) {
		current := c.generation
		c.mu.Unlock()
		c.deps.Logger.Printf("dropping stale timer fire for generation %d (current %d)", generation, current)
		return StepResult{}, false
	}
	clock := c.deps.Clock
	start := clock.Now()
	advanced := c.sim.Tick()
	c.tick++
	result := StepResult{
		Tick:     c.tick,
		Now:      start,
		Duration: clock.Now().Sub(start),
		Budget:   c.config.Interval,
		Advanced: advanced,
		Circles:  c.sim.Len(),
		History:  c.sim.HistoryLen(),
		Manual:   manual,
	}
	c.mu.Unlock()

	if c.hooks.AfterStep != nil {
		c.hooks.AfterStep(result)
	}
	return result, true
}

func (c *Controller) notifyStatus(status Status) {
	if c.hooks.OnStatusChange != nil {
		c.hooks.OnStatusChange(status)
	}
}
