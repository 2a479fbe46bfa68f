package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"yew-art/server/internal/net/proto"
	"yew-art/server/internal/render"
	"yew-art/server/internal/sim"
	"yew-art/server/internal/telemetry"
	"yew-art/server/logging"
	loggingLifecycle "yew-art/server/logging/lifecycle"
	loggingNetwork "yew-art/server/logging/network"
	loggingSimulation "yew-art/server/logging/simulation"
)

// HubConfig captures the simulation and transport settings for a hub.
type HubConfig struct {
	Simulation sim.Config
	Loop       sim.LoopConfig
	// AutoStart begins playing as soon as the hub is built.
	AutoStart bool
	Logger    telemetry.Logger
	Metrics   telemetry.Metrics
	Clock     logging.Clock
}

// DefaultHubConfig returns the reference simulation, paused, at the 30 ms cadence.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		Simulation: sim.DefaultConfig(),
		Loop:       sim.LoopConfig{Interval: sim.DefaultInterval},
	}
}

type tickObserver interface {
	ObserveTick(time.Duration)
}

// Hub owns the single simulation, its play timer and every connected viewer.
type Hub struct {
	controller *sim.Controller
	publisher  logging.Publisher
	logger     telemetry.Logger
	metrics    telemetry.Metrics
	clock      logging.Clock
	telemetry  *telemetryCounters

	mu          sync.Mutex
	subscribers map[string]*Subscriber
	closed      bool

	// frameMu orders frame snapshots with their enqueueing so every viewer
	// sees history cursors in increasing order.
	frameMu sync.Mutex
	// historySent is the history cursor every subscriber has been sent.
	historySent uint64
}

// SubscriberConn is the subset of a websocket connection the hub writes to.
type SubscriberConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Subscriber is one connected viewer. Writes are queued and drained by a
// dedicated writer goroutine so a slow viewer never holds up the play timer.
type Subscriber struct {
	ID          string
	conn        SubscriberConn
	connectedAt time.Time

	mu     sync.Mutex
	send   chan outboundMessage
	closed bool

	lastHeartbeat time.Time
	lastRTT       time.Duration
}

type outboundMessage struct {
	messageType int
	data        []byte
}

var (
	errSubscriberBacklogged = errors.New("subscriber outbound queue full")
	errSubscriberClosed     = errors.New("subscriber closed")
)

// WriteMessage queues data for the writer goroutine. It never blocks: a full
// queue is reported as an error and the caller drops the viewer.
func (s *Subscriber) WriteMessage(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errSubscriberClosed
	}
	select {
	case s.send <- outboundMessage{messageType: messageType, data: data}:
		return nil
	default:
		return errSubscriberBacklogged
	}
}

func (s *Subscriber) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Subscriber) closeQueue() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.send)
	}
}

type diagnosticsSession struct {
	ID            string `json:"id"`
	ConnectedAt   int64  `json:"connectedAt"`
	LastHeartbeat int64  `json:"lastHeartbeat"`
	RTTMillis     int64  `json:"rttMillis"`
}

// NewHub validates the configuration and builds the simulation. Configuration
// errors surface here rather than during ticking.
func NewHub(cfg HubConfig, pub logging.Publisher) (*Hub, error) {
	simulation, err := sim.New(cfg.Simulation)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.WrapLogger(log.Default())
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = telemetry.NopMetrics()
	}
	if pub == nil {
		pub = logging.NopPublisher()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = logging.SystemClock{}
	}

	hub := &Hub{
		publisher:   pub,
		logger:      logger,
		metrics:     metrics,
		clock:       clock,
		telemetry:   newTelemetryCounters(),
		subscribers: make(map[string]*Subscriber),
	}

	controller, err := sim.NewController(simulation, cfg.Loop, sim.LoopHooks{
		AfterStep:      hub.afterStep,
		OnStatusChange: hub.statusChanged,
	}, sim.Deps{Logger: logger, Clock: clock})
	if err != nil {
		return nil, err
	}
	hub.controller = controller

	circles, history := controller.Counts()
	metrics.Store(telemetry.KeyCircles, uint64(circles))
	metrics.Store(telemetry.KeyHistory, uint64(history))

	if cfg.AutoStart {
		controller.Start()
	}
	return hub, nil
}

// AddCircle grows the live set by one random circle.
func (h *Hub) AddCircle() int {
	count := h.controller.AddCircle()
	h.metrics.Store(telemetry.KeyCircles, uint64(count))
	loggingSimulation.CircleAdded(context.Background(), h.publisher, h.controller.Tick(), loggingSimulation.CircleRef(count-1), loggingSimulation.CircleAddedPayload{Circles: count})
	h.BroadcastState()
	return count
}

// Step applies one manual tick.
func (h *Hub) Step() sim.StepResult {
	return h.controller.Step()
}

// Toggle flips play/pause.
func (h *Hub) Toggle() sim.Status {
	return h.controller.Toggle()
}

func (h *Hub) Status() sim.Status {
	return h.controller.Status()
}

func (h *Hub) Tick() uint64 {
	return h.controller.Tick()
}

func (h *Hub) TickInterval() time.Duration {
	return h.controller.Interval()
}

// RenderState returns the current frame.
func (h *Hub) RenderState() sim.RenderState {
	return h.controller.RenderState()
}

// ExportSVG renders the current frame as a standalone document. A failure is
// reported to the caller and logged; the simulation is untouched.
func (h *Hub) ExportSVG() ([]byte, error) {
	state := h.controller.RenderState()
	tick := h.controller.Tick()
	traceID := uuid.NewString()

	var buf bytes.Buffer
	if err := render.WriteSVG(&buf, state); err != nil {
		h.telemetry.RecordExport(false)
		loggingSimulation.ExportFailed(context.Background(), h.publisher, tick, traceID, loggingSimulation.ExportPayload{
			Filename: render.ExportFilename,
			Error:    err.Error(),
		})
		return nil, fmt.Errorf("render export: %w", err)
	}

	h.telemetry.RecordExport(true)
	h.metrics.Add(telemetry.KeyExports, 1)
	loggingSimulation.Exported(context.Background(), h.publisher, tick, traceID, loggingSimulation.ExportPayload{
		Bytes:    buf.Len(),
		Shapes:   len(state.History) + len(state.Circles),
		Filename: render.ExportFilename,
	})
	return buf.Bytes(), nil
}

// MarshalState encodes the full current frame with the whole retained trail
// and reports how many shapes it carries.
func (h *Hub) MarshalState() ([]byte, int, error) {
	frame := h.controller.FullFrame()
	msg := proto.NewStateMessage(frame, h.clock.Now())
	data, err := proto.Encode(msg)
	if err != nil {
		return nil, 0, err
	}
	return data, msg.Shapes(), nil
}

var errHubClosed = errors.New("hub closed")

// Subscribe registers a viewer connection under a fresh session id, queues the
// full frame for it and starts its writer.
func (h *Hub) Subscribe(conn SubscriberConn) (*Subscriber, error) {
	now := h.clock.Now()
	sub := &Subscriber{
		ID:            uuid.NewString(),
		conn:          conn,
		connectedAt:   now,
		send:          make(chan outboundMessage, outboundQueueSize),
		lastHeartbeat: now,
	}

	h.frameMu.Lock()
	frame := h.controller.FullFrame()
	data, err := proto.Encode(proto.NewStateMessage(frame, now))
	if err != nil {
		h.frameMu.Unlock()
		return nil, fmt.Errorf("marshal initial state: %w", err)
	}
	// Queue is empty and unshared, so this cannot fail.
	_ = sub.WriteMessage(websocket.TextMessage, data)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		h.frameMu.Unlock()
		return nil, errHubClosed
	}
	if len(h.subscribers) == 0 {
		h.historySent = frame.HistoryEnd
	}
	h.subscribers[sub.ID] = sub
	count := len(h.subscribers)
	h.mu.Unlock()
	h.frameMu.Unlock()

	go h.writeLoop(sub)

	h.metrics.Store(telemetry.KeySessions, uint64(count))
	loggingLifecycle.SessionConnected(context.Background(), h.publisher, frame.Tick, sessionRef(sub.ID), loggingLifecycle.SessionConnectedPayload{Sessions: count}, nil)
	return sub, nil
}

// writeLoop drains a subscriber's queue onto its connection until the queue
// is closed or a write fails.
func (h *Hub) writeLoop(sub *Subscriber) {
	for msg := range sub.send {
		err := sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err == nil {
			err = sub.conn.WriteMessage(msg.messageType, msg.data)
		}
		if err != nil {
			if !sub.isClosed() {
				h.dropSubscriber(sub, len(msg.data), err, "write_failed")
			}
			return
		}
	}
}

func (h *Hub) dropSubscriber(sub *Subscriber, size int, err error, reason string) {
	h.logger.Printf("failed to send update to %s: %v", sub.ID, err)
	loggingNetwork.BroadcastFailed(context.Background(), h.publisher, h.controller.Tick(), sessionRef(sub.ID), loggingNetwork.BroadcastPayload{Bytes: size, Error: err.Error()}, nil)
	h.Disconnect(sub.ID, reason)
}

// Disconnect removes a viewer, stops its writer and closes its connection.
func (h *Hub) Disconnect(id, reason string) bool {
	h.mu.Lock()
	sub, ok := h.subscribers[id]
	if ok {
		delete(h.subscribers, id)
	}
	count := len(h.subscribers)
	h.mu.Unlock()

	if !ok {
		return false
	}
	sub.closeQueue()
	sub.conn.Close()
	h.metrics.Store(telemetry.KeySessions, uint64(count))
	loggingLifecycle.SessionDisconnected(context.Background(), h.publisher, h.controller.Tick(), sessionRef(id), loggingLifecycle.SessionDisconnectedPayload{Reason: reason, Sessions: count}, nil)
	return true
}

// UpdateHeartbeat records a viewer ping and returns the latest round trip.
func (h *Hub) UpdateHeartbeat(id string, receivedAt time.Time, clientSent int64) (time.Duration, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.subscribers[id]
	if !ok {
		return 0, false
	}
	sub.lastHeartbeat = receivedAt

	if clientSent > 0 {
		clientTime := time.UnixMilli(clientSent)
		if clientTime.Before(receivedAt.Add(maxClockSkew)) {
			rtt := receivedAt.Sub(clientTime)
			if rtt < 0 {
				rtt = 0
			}
			sub.lastRTT = rtt
		}
	}
	return sub.lastRTT, true
}

// BroadcastState queues the live circles and the history added since the
// previous broadcast for every viewer. It never waits on a connection; a
// viewer whose queue is full is dropped.
func (h *Hub) BroadcastState() {
	h.frameMu.Lock()
	defer h.frameMu.Unlock()

	h.mu.Lock()
	if len(h.subscribers) == 0 {
		h.mu.Unlock()
		return
	}
	subs := make([]*Subscriber, 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		subs = append(subs, sub)
	}
	cursor := h.historySent
	h.mu.Unlock()

	frame := h.controller.Frame(cursor)
	msg := proto.NewStateMessage(frame, h.clock.Now())
	data, err := proto.Encode(msg)
	if err != nil {
		h.logger.Printf("failed to marshal state message: %v", err)
		return
	}
	h.mu.Lock()
	h.historySent = frame.HistoryEnd
	h.mu.Unlock()

	delivered := 0
	for _, sub := range subs {
		if err := sub.WriteMessage(websocket.TextMessage, data); err != nil {
			if errors.Is(err, errSubscriberClosed) {
				continue
			}
			h.dropSubscriber(sub, len(data), err, "backlogged")
			continue
		}
		delivered++
	}
	h.telemetry.RecordBroadcast(len(data), msg.Shapes(), delivered)
	h.metrics.Add(telemetry.KeyBroadcastBytes, uint64(len(data)*delivered))
}

// RecordRateLimited notes a command dropped by a session's limiter.
func (h *Hub) RecordRateLimited(id, command string) {
	h.metrics.Add(telemetry.KeyRateLimited, 1)
	loggingNetwork.CommandRateLimited(context.Background(), h.publisher, h.controller.Tick(), sessionRef(id), loggingNetwork.CommandPayload{Command: command}, nil)
}

// SessionCount reports connected viewers.
func (h *Hub) SessionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// DiagnosticsSnapshot exposes heartbeat data for the diagnostics endpoint.
func (h *Hub) DiagnosticsSnapshot() []diagnosticsSession {
	h.mu.Lock()
	defer h.mu.Unlock()

	sessions := make([]diagnosticsSession, 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		sessions = append(sessions, diagnosticsSession{
			ID:            sub.ID,
			ConnectedAt:   sub.connectedAt.UnixMilli(),
			LastHeartbeat: sub.lastHeartbeat.UnixMilli(),
			RTTMillis:     sub.lastRTT.Milliseconds(),
		})
	}
	return sessions
}

// TelemetrySnapshot exposes the hub counters.
func (h *Hub) TelemetrySnapshot() telemetrySnapshot {
	return h.telemetry.Snapshot()
}

// Counts returns the live circle and history lengths.
func (h *Hub) Counts() (circles, history int) {
	return h.controller.Counts()
}

// Close stops the play timer and drops every viewer.
func (h *Hub) Close() {
	h.controller.Close()

	h.mu.Lock()
	h.closed = true
	ids := make([]string, 0, len(h.subscribers))
	for id := range h.subscribers {
		ids = append(ids, id)
	}
	h.mu.Unlock()

	for _, id := range ids {
		h.Disconnect(id, "shutdown")
	}
}

func (h *Hub) afterStep(result sim.StepResult) {
	overran := result.Overran()
	h.telemetry.RecordTick(result.Duration, result.Manual, overran)
	h.metrics.Add(telemetry.KeyTicks, 1)
	if result.Manual {
		h.metrics.Add(telemetry.KeyManualSteps, 1)
	}
	h.metrics.Store(telemetry.KeyHistory, uint64(result.History))
	if observer, ok := h.metrics.(tickObserver); ok {
		observer.ObserveTick(result.Duration)
	}

	if overran {
		h.metrics.Add(telemetry.KeyTickOverruns, 1)
		ratio := 0.0
		if result.Budget > 0 {
			ratio = float64(result.Duration) / float64(result.Budget)
		}
		loggingSimulation.TickBudgetOverrun(context.Background(), h.publisher, result.Tick, loggingSimulation.TickBudgetOverrunPayload{
			DurationMillis: result.Duration.Milliseconds(),
			BudgetMillis:   result.Budget.Milliseconds(),
			Ratio:          math.Round(ratio*100) / 100,
			Circles:        result.Circles,
		}, nil)
	}

	h.BroadcastState()
}

func (h *Hub) statusChanged(status sim.Status) {
	loggingSimulation.StatusChanged(context.Background(), h.publisher, h.controller.Tick(), loggingSimulation.StatusChangedPayload{Status: status.String()})
	h.BroadcastState()
}

func sessionRef(id string) logging.EntityRef {
	return logging.EntityRef{ID: id, Kind: logging.EntityKindSession}
}
