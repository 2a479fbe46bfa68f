package app

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"yew-art/server/internal/sim"
)

func TestRenderOnceAdvancesAndWrites(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.Seed = "headless"
	cfg.HistoryCapacity = 4

	var buf bytes.Buffer
	stats, err := RenderOnce(RenderOptions{Simulation: cfg, Circles: 2, Ticks: 3}, &buf)
	require.NoError(t, err)
	require.Equal(t, RenderStats{Circles: 2, History: 4, Ticks: 3}, stats)
	require.Equal(t, 6, strings.Count(buf.String(), "<circle"))
}

func TestRenderOnceRejectsInvalidConfig(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.HistoryCapacity = 0

	_, err := RenderOnce(RenderOptions{Simulation: cfg}, &bytes.Buffer{})
	require.Error(t, err)

	_, err = RenderOnce(RenderOptions{Simulation: sim.DefaultConfig(), Ticks: -1}, &bytes.Buffer{})
	require.Error(t, err)
}

func TestRenderFileLeavesNothingBehindOnInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "yew-art.svg")
	cfg := sim.DefaultConfig()
	cfg.HistoryCapacity = 0

	_, err := RenderFile(RenderOptions{Simulation: cfg}, out)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRenderFileKeepsExistingFileOnFailure(t *testing.T) {
	out := filepath.Join(t.TempDir(), "yew-art.svg")
	require.NoError(t, os.WriteFile(out, []byte("previous"), 0o644))

	_, err := RenderFile(RenderOptions{Simulation: sim.DefaultConfig(), Ticks: -1}, out)
	require.Error(t, err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "previous", string(data))

	stats, err := RenderFile(RenderOptions{Simulation: sim.DefaultConfig(), Ticks: 2}, out)
	require.NoError(t, err)
	require.Equal(t, 2, stats.History)
	data, err = os.ReadFile(out)
	require.NoError(t, err)
	require.Contains(t, string(data), "<svg")

	entries, err := os.ReadDir(filepath.Dir(out))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
