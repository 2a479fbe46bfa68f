package net

import (
	"encoding/json"
	"fmt"
	"log"
	nethttp "net/http"
	"net/http/pprof"
	"time"

	"yew-art/server"
	"yew-art/server/internal/net/ws"
	"yew-art/server/internal/observability"
	"yew-art/server/internal/render"
	"yew-art/server/internal/telemetry"
)

type HTTPHandlerConfig struct {
	ClientDir     string
	Logger        telemetry.Logger
	Observability observability.Config
	// Metrics is mounted at /metrics when metrics are enabled.
	Metrics   nethttp.Handler
	Websocket ws.HandlerConfig
}

type stepResponse struct {
	Tick           uint64 `json:"tick"`
	Circles        int    `json:"circles"`
	History        int    `json:"history"`
	DurationMicros int64  `json:"durationMicros"`
}

func NewHTTPHandler(hub *server.Hub, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.WrapLogger(log.Default())
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		circles, history := hub.Counts()
		payload := struct {
			Status         string `json:"status"`
			ServerTime     int64  `json:"serverTime"`
			Simulation     string `json:"simulation"`
			Tick           uint64 `json:"tick"`
			TickIntervalMs int64  `json:"tickIntervalMillis"`
			Circles        int    `json:"circles"`
			History        int    `json:"history"`
			Sessions       any    `json:"sessions"`
			Heartbeat      int64  `json:"heartbeatMillis"`
			Telemetry      any    `json:"telemetry"`
		}{
			Status:         "ok",
			ServerTime:     time.Now().UnixMilli(),
			Simulation:     hub.Status().String(),
			Tick:           hub.Tick(),
			TickIntervalMs: hub.TickInterval().Milliseconds(),
			Circles:        circles,
			History:        history,
			Sessions:       hub.DiagnosticsSnapshot(),
			Heartbeat:      server.HeartbeatInterval().Milliseconds(),
			Telemetry:      hub.TelemetrySnapshot(),
		}
		writeJSON(w, payload)
	})

	mux.HandleFunc("/state", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		data, _, err := hub.MarshalState()
		if err != nil {
			logger.Printf("failed to marshal state: %v", err)
			httpError(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	mux.HandleFunc("/circles", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		count := hub.AddCircle()
		writeJSON(w, struct {
			Circles int `json:"circles"`
		}{Circles: count})
	})

	mux.HandleFunc("/step", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		result := hub.Step()
		writeJSON(w, stepResponse{
			Tick:           result.Tick,
			Circles:        result.Circles,
			History:        result.History,
			DurationMicros: result.Duration.Microseconds(),
		})
	})

	mux.HandleFunc("/toggle", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		status := hub.Toggle()
		writeJSON(w, struct {
			Status string `json:"status"`
		}{Status: status.String()})
	})

	mux.HandleFunc("/export", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		doc, err := hub.ExportSVG()
		if err != nil {
			logger.Printf("export failed: %v", err)
			httpError(w, "export failed", nethttp.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", render.ExportContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", render.ExportFilename))
		w.Write(doc)
	})

	wsCfg := cfg.Websocket
	if wsCfg.Logger == nil {
		wsCfg.Logger = logger
	}
	mux.HandleFunc("/ws", ws.NewHandler(hub, wsCfg).Handle)

	if cfg.Observability.EnableMetrics && cfg.Metrics != nil {
		mux.Handle("/metrics", cfg.Metrics)
	}

	if cfg.Observability.EnablePprof {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	if cfg.ClientDir != "" {
		fs := nethttp.FileServer(nethttp.Dir(cfg.ClientDir))
		mux.Handle("/", fs)
	}

	return mux
}

func writeJSON(w nethttp.ResponseWriter, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		httpError(w, "failed to encode", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}
