package ws

import (
	"log"
	nethttp "net/http"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"yew-art/server"
	"yew-art/server/internal/telemetry"
)

const (
	// DefaultCommandRate bounds control messages per second for one viewer.
	DefaultCommandRate  = 20
	DefaultCommandBurst = 10
)

type HandlerConfig struct {
	Logger telemetry.Logger
	// CommandRate and CommandBurst size each session's limiter. Heartbeats
	// are not limited.
	CommandRate  rate.Limit
	CommandBurst int
}

// Handler upgrades viewer connections and runs their sessions.
type Handler struct {
	hub          *server.Hub
	logger       telemetry.Logger
	upgrader     websocket.Upgrader
	commandRate  rate.Limit
	commandBurst int
}

func NewHandler(hub *server.Hub, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.WrapLogger(log.Default())
	}
	limit := cfg.CommandRate
	if limit <= 0 {
		limit = DefaultCommandRate
	}
	burst := cfg.CommandBurst
	if burst <= 0 {
		burst = DefaultCommandBurst
	}

	return &Handler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *nethttp.Request) bool {
				return true
			},
		},
		commandRate:  limit,
		commandBurst: burst,
	}
}

func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}
	h.Serve(conn)
}

// Serve runs a session on an upgraded connection until the viewer leaves.
func (h *Handler) Serve(conn *websocket.Conn) {
	if h == nil || h.hub == nil || conn == nil {
		return
	}

	sub, err := h.hub.Subscribe(conn)
	if err != nil {
		message := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
		conn.WriteMessage(websocket.CloseMessage, message)
		conn.Close()
		return
	}

	s := newSession(h.hub, sub, h.logger, rate.NewLimiter(h.commandRate, h.commandBurst))
	s.run(conn)
}
