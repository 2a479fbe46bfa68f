package sim

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(t *testing.T, interval time.Duration, hooks LoopHooks) *Controller {
	t.Helper()
	s := newTestSimulation(t, nil)
	c, err := NewController(s, LoopConfig{Interval: interval}, hooks, Deps{})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestNewControllerRejectsNilSimulation(t *testing.T) {
	c, err := NewController(nil, LoopConfig{}, LoopHooks{}, Deps{})
	require.Error(t, err)
	assert.Nil(t, c)
}

func TestNewControllerDefaultsInterval(t *testing.T) {
	c := newTestController(t, 0, LoopHooks{})
	assert.Equal(t, DefaultInterval, c.Interval())
}

func TestToggleFlipsStatusWithoutTicking(t *testing.T) {
	var statuses []Status
	var mu sync.Mutex
	c := newTestController(t, time.Hour, LoopHooks{
		OnStatusChange: func(s Status) {
			mu.Lock()
			statuses = append(statuses, s)
			mu.Unlock()
		},
	})

	assert.Equal(t, StatusPaused, c.Status())
	assert.Equal(t, StatusRunning, c.Toggle())
	assert.Equal(t, StatusRunning, c.Status())
	assert.Equal(t, StatusPaused, c.Toggle())
	assert.Equal(t, StatusPaused, c.Status())

	assert.Zero(t, c.Tick())
	_, history := c.Counts()
	assert.Zero(t, history)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Status{StatusRunning, StatusPaused}, statuses)
}

func TestRunningControllerTicksPeriodically(t *testing.T) {
	var steps atomic.Int64
	c := newTestController(t, time.Millisecond, LoopHooks{
		AfterStep: func(result StepResult) {
			assert.False(t, result.Manual)
			steps.Add(1)
		},
	})

	c.Toggle()
	require.Eventually(t, func() bool { return steps.Load() >= 3 }, 2*time.Second, time.Millisecond)
	c.Toggle()

	_, history := c.Counts()
	assert.GreaterOrEqual(t, history, 3)
}

func TestPauseStopsFurtherTicks(t *testing.T) {
	c := newTestController(t, time.Millisecond, LoopHooks{})

	c.Toggle()
	require.Eventually(t, func() bool { return c.Tick() > 0 }, 2*time.Second, time.Millisecond)
	require.True(t, c.Pause())

	paused := c.Tick()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, paused, c.Tick())
}

func TestStartWhileRunningIsIgnored(t *testing.T) {
	c := newTestController(t, time.Hour, LoopHooks{})
	assert.True(t, c.Start())
	assert.False(t, c.Start())
	assert.Equal(t, StatusRunning, c.Status())
	assert.True(t, c.Pause())
	assert.False(t, c.Pause())
}

func TestStaleGenerationIsDropped(t *testing.T) {
	c := newTestController(t, time.Hour, LoopHooks{})
	c.Start()
	c.mu.Lock()
	stale := c.generation
	c.mu.Unlock()

	c.Pause()
	c.Start()

	_, ok := c.advance(stale, false)
	assert.False(t, ok)
	assert.Zero(t, c.Tick())
}

type lineRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *lineRecorder) Printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func (r *lineRecorder) contains(substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, line := range r.lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func TestControllerLogsStaleFireAndClose(t *testing.T) {
	logs := &lineRecorder{}
	c, err := NewController(newTestSimulation(t, nil), LoopConfig{Interval: time.Hour}, LoopHooks{}, Deps{Logger: logs})
	require.NoError(t, err)

	c.Start()
	c.mu.Lock()
	stale := c.generation
	c.mu.Unlock()
	c.Pause()

	_, ok := c.advance(stale, false)
	require.False(t, ok)
	assert.True(t, logs.contains("dropping stale timer fire"))

	c.Step()
	c.Close()
	assert.True(t, logs.contains("closed after 1 ticks"))
}

func TestFrameCarriesOnlyNewHistory(t *testing.T) {
	c := newTestController(t, time.Hour, LoopHooks{})

	full := c.FullFrame()
	assert.True(t, full.Reset)
	assert.Empty(t, full.History)
	assert.Len(t, full.Circles, 1)
	assert.Equal(t, DefaultHistoryCapacity, full.HistoryCap)
	assert.Equal(t, StatusPaused, full.Status)

	c.Step()
	c.Step()
	delta := c.Frame(full.HistoryEnd)
	assert.False(t, delta.Reset)
	assert.Len(t, delta.History, 2)
	assert.Equal(t, uint64(2), delta.HistoryEnd)
	assert.Equal(t, uint64(2), delta.Tick)

	fromStart := c.Frame(0)
	assert.False(t, fromStart.Reset)
	assert.Len(t, fromStart.History, 2)

	idle := c.Frame(delta.HistoryEnd)
	assert.Empty(t, idle.History)
	assert.False(t, idle.Reset)
}

func TestStepWorksWhilePaused(t *testing.T) {
	var results []StepResult
	c := newTestController(t, time.Hour, LoopHooks{
		AfterStep: func(r StepResult) { results = append(results, r) },
	})

	result := c.Step()
	assert.Equal(t, uint64(1), result.Tick)
	assert.True(t, result.Manual)
	assert.Equal(t, 1, result.Advanced)
	assert.Equal(t, 1, result.History)
	assert.Equal(t, StatusPaused, c.Status())
	require.Len(t, results, 1)
}

func TestAddCircleKeepsStatus(t *testing.T) {
	c := newTestController(t, time.Hour, LoopHooks{})
	c.Toggle()
	assert.Equal(t, 2, c.AddCircle())
	assert.Equal(t, StatusRunning, c.Status())
	c.Toggle()
	assert.Equal(t, 3, c.AddCircle())
	assert.Equal(t, StatusPaused, c.Status())
}

func TestCloseStopsTimerAndRefusesStart(t *testing.T) {
	c := newTestController(t, time.Millisecond, LoopHooks{})
	c.Toggle()
	c.Close()
	assert.Equal(t, StatusPaused, c.Status())
	assert.False(t, c.Start())
	assert.Equal(t, StatusPaused, c.Toggle())
	c.Close()
}

func TestStepResultOverran(t *testing.T) {
	assert.True(t, StepResult{Duration: 40 * time.Millisecond, Budget: 30 * time.Millisecond}.Overran())
	assert.False(t, StepResult{Duration: 10 * time.Millisecond, Budget: 30 * time.Millisecond}.Overran())
	assert.False(t, StepResult{Duration: time.Second}.Overran())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "paused", StatusPaused.String())
	assert.Equal(t, "running", StatusRunning.String())
	assert.Equal(t, "unknown", Status(9).String())
}
