package logging_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yew-art/server/logging"
	"yew-art/server/logging/sinks"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func TestRouterForwardsAndFilters(t *testing.T) {
	memory := sinks.NewMemorySink()
	cfg := logging.DefaultConfig()
	cfg.Fields = map[string]any{"service": "yew-art"}
	stamp := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	router, err := logging.NewRouter(fixedClock{now: stamp}, cfg, []logging.NamedSink{{Name: "memory", Sink: memory}})
	require.NoError(t, err)

	ctx := context.Background()
	router.Publish(ctx, logging.Event{Type: "test.debug", Severity: logging.SeverityDebug})
	router.Publish(ctx, logging.Event{Type: "test.info", Severity: logging.SeverityInfo, Tick: 7})
	router.Publish(ctx, logging.Event{Severity: logging.SeverityError})

	require.NoError(t, router.Close(ctx))

	events := memory.Events()
	require.Len(t, events, 1)
	assert.Equal(t, logging.EventType("test.info"), events[0].Type)
	assert.Equal(t, uint64(7), events[0].Tick)
	assert.Equal(t, stamp, events[0].Time)
	assert.Equal(t, "yew-art", events[0].Extra["service"])
	stats := router.Stats()
	assert.EqualValues(t, 1, stats.EventsTotal)
	assert.Zero(t, stats.DroppedTotal)
	assert.Equal(t, map[string]uint64{"memory": 0}, stats.SinkDropped)
}

func TestRouterFieldsDoNotOverrideEventExtra(t *testing.T) {
	memory := sinks.NewMemorySink()
	cfg := logging.DefaultConfig()
	cfg.Fields = map[string]any{"seed": "default", "service": "yew-art"}
	router, err := logging.NewRouter(nil, cfg, []logging.NamedSink{{Name: "memory", Sink: memory}})
	require.NoError(t, err)

	router.Publish(context.Background(), logging.Event{
		Type:     "test.extra",
		Severity: logging.SeverityWarn,
		Extra:    map[string]any{"seed": "custom"},
	})
	require.NoError(t, router.Close(context.Background()))

	events := memory.OfType("test.extra")
	require.Len(t, events, 1)
	assert.Equal(t, "custom", events[0].Extra["seed"])
	assert.Equal(t, "yew-art", events[0].Extra["service"])
	assert.False(t, events[0].Time.IsZero())
}

func TestConfigEnableSinkIsIdempotent(t *testing.T) {
	cfg := logging.DefaultConfig()
	assert.True(t, cfg.HasSink(logging.SinkConsole))
	assert.False(t, cfg.HasSink(logging.SinkJSON))

	cfg.EnableSink(logging.SinkJSON)
	cfg.EnableSink(logging.SinkJSON)
	assert.Equal(t, []string{logging.SinkConsole, logging.SinkJSON}, cfg.EnabledSinks)
}

func TestRouterIgnoresPublishAfterClose(t *testing.T) {
	memory := sinks.NewMemorySink()
	router, err := logging.NewRouter(nil, logging.DefaultConfig(), []logging.NamedSink{{Name: "memory", Sink: memory}})
	require.NoError(t, err)
	require.NoError(t, router.Close(context.Background()))

	router.Publish(context.Background(), logging.Event{Type: "late", Severity: logging.SeverityError})
	assert.Empty(t, memory.Events())
}

func TestParseSeverity(t *testing.T) {
	for _, sev := range []logging.Severity{logging.SeverityDebug, logging.SeverityInfo, logging.SeverityWarn, logging.SeverityError} {
		parsed, ok := logging.ParseSeverity(sev.String())
		require.True(t, ok)
		assert.Equal(t, sev, parsed)
	}
	_, ok := logging.ParseSeverity("loud")
	assert.False(t, ok)

	text, err := logging.SeverityWarn.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "warn", string(text))
}
