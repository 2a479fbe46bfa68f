package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	server "yew-art/server"
	servernet "yew-art/server/internal/net"
	"yew-art/server/internal/net/ws"
	"yew-art/server/internal/sim"
	"yew-art/server/internal/telemetry"
	"yew-art/server/logging"
	loggingSinks "yew-art/server/logging/sinks"
)

// NewLogger builds the operational logger the server prints through.
func NewLogger(color bool) telemetry.Logger {
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
		NoColor:    !color,
	})
	return telemetry.WrapSlog(slog.New(handler))
}

// Run serves the simulation until ctx is cancelled or the listener fails.
func Run(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	telemetryLogger := cfg.Logger
	if telemetryLogger == nil {
		telemetryLogger = NewLogger(cfg.Logging.Color)
	}

	router, err := newRouter(loggingConfig(cfg), os.Stdout)
	if err != nil {
		return fmt.Errorf("failed to construct logging router: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			telemetryLogger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	metrics := telemetry.NewPrometheusMetrics()

	hubCfg := server.DefaultHubConfig()
	hubCfg.Simulation = cfg.Simulation
	hubCfg.Loop = sim.LoopConfig{Interval: cfg.TickInterval}
	hubCfg.AutoStart = cfg.AutoStart
	hubCfg.Logger = telemetryLogger
	hubCfg.Metrics = metrics

	hub, err := server.NewHub(hubCfg, router)
	if err != nil {
		return fmt.Errorf("failed to construct hub: %w", err)
	}
	defer hub.Close()

	clientDir := cfg.ClientDir
	if clientDir == "" {
		if resolved, err := server.ResolveClientAssetsDir(); err == nil {
			clientDir = resolved
		} else {
			telemetryLogger.Printf("serving without client assets: %v", err)
		}
	}

	handler := servernet.NewHTTPHandler(hub, servernet.HTTPHandlerConfig{
		ClientDir:     clientDir,
		Logger:        telemetryLogger,
		Observability: cfg.Observability,
		Metrics:       metrics.Handler(),
		Websocket: ws.HandlerConfig{
			CommandRate:  rate.Limit(cfg.CommandRate),
			CommandBurst: cfg.CommandBurst,
		},
	})

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	telemetryLogger.Printf("server listening on %s", listener.Addr())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		hub.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		telemetryLogger.Printf("server stopped")
		return nil
	})
	return g.Wait()
}

// loggingConfig maps the file settings onto the event router's config.
func loggingConfig(cfg Config) logging.Config {
	logConfig := logging.DefaultConfig()
	logConfig.Console.UseColor = cfg.Logging.Color
	if severity, ok := logging.ParseSeverity(cfg.Logging.MinimumSeverity); ok {
		logConfig.MinimumSeverity = severity
	}
	logConfig.Fields = map[string]any{"seed": cfg.Simulation.Seed}
	if cfg.Logging.JSONPath != "" {
		logConfig.JSON.FilePath = cfg.Logging.JSONPath
		logConfig.EnableSink(logging.SinkJSON)
	}
	return logConfig
}

func newRouter(logConfig logging.Config, console io.Writer) (*logging.Router, error) {
	var sinks []logging.NamedSink
	if logConfig.HasSink(logging.SinkConsole) {
		sinks = append(sinks, logging.NamedSink{Name: logging.SinkConsole, Sink: loggingSinks.NewConsoleSink(console, logConfig.Console)})
	}
	if logConfig.HasSink(logging.SinkJSON) {
		jsonSink, err := loggingSinks.OpenJSONFile(logConfig.JSON)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, logging.NamedSink{Name: logging.SinkJSON, Sink: jsonSink})
	}
	return logging.NewRouter(logging.SystemClock{}, logConfig, sinks)
}
