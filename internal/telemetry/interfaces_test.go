package telemetry

import (
	"bytes"
	"log"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapLogger(t *testing.T) {
	t.Run("nil logger", func(t *testing.T) {
		logger := WrapLogger(nil)
		logger.Printf("ignored %d", 42)
	})

	t.Run("forwards to logger", func(t *testing.T) {
		var buf bytes.Buffer
		base := log.New(&buf, "", 0)
		logger := WrapLogger(base)
		logger.Printf("hello %s", "world")
		assert.Equal(t, "hello world\n", buf.String())
	})
}

func TestWrapSlog(t *testing.T) {
	var buf bytes.Buffer
	logger := WrapSlog(slog.New(slog.NewTextHandler(&buf, nil)))
	logger.Printf("ticks=%d", 7)
	assert.Contains(t, buf.String(), `msg="ticks=7"`)

	provider, ok := logger.(interface{ StandardLogger() *log.Logger })
	require.True(t, ok)
	provider.StandardLogger().Print("bridged")
	assert.Contains(t, buf.String(), "bridged")

	WrapSlog(nil).Printf("ignored")
}

func TestLoggerFunc(t *testing.T) {
	var got string
	LoggerFunc(func(format string, args ...any) { got = format }).Printf("x")
	assert.Equal(t, "x", got)

	var nilFunc LoggerFunc
	nilFunc.Printf("ignored")
}

func TestNopMetrics(t *testing.T) {
	m := NopMetrics()
	m.Add("ignored", 1)
	m.Store("ignored", 1)
}
