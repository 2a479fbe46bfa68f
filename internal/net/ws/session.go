package ws

import (
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"yew-art/server"
	"yew-art/server/internal/net/proto"
	"yew-art/server/internal/telemetry"
)

type subscription interface {
	WriteMessage(messageType int, data []byte) error
}

type messageReader interface {
	ReadMessage() (messageType int, p []byte, err error)
}

type session struct {
	hub     *server.Hub
	id      string
	sub     subscription
	logger  telemetry.Logger
	limiter *rate.Limiter
	now     func() time.Time
}

func newSession(hub *server.Hub, sub *server.Subscriber, logger telemetry.Logger, limiter *rate.Limiter) *session {
	return &session{
		hub:     hub,
		id:      sub.ID,
		sub:     sub,
		logger:  logger,
		limiter: limiter,
		now:     time.Now,
	}
}

// run reads control messages until the viewer leaves. The hub has already
// queued the full frame for this viewer.
func (s *session) run(conn messageReader) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			s.hub.Disconnect(s.id, "closed")
			return
		}

		msg, err := proto.DecodeClientMessage(payload)
		if err != nil {
			s.logger.Printf("discarding malformed message from %s: %v", s.id, err)
			continue
		}
		if !s.dispatch(msg) {
			s.hub.Disconnect(s.id, "write_failed")
			return
		}
	}
}

// dispatch handles one control message. It returns false once the viewer can
// no longer be written to.
func (s *session) dispatch(msg proto.ClientMessage) bool {
	if msg.Type == proto.TypeHeartbeat {
		return s.heartbeat(msg.SentAt)
	}

	switch msg.Type {
	case proto.TypeAddCircle, proto.TypeStep, proto.TypeToggle, proto.TypeSave:
	default:
		s.logger.Printf("unknown message type %q from %s", msg.Type, s.id)
		return s.write(proto.NewErrorMessage(proto.ReasonUnknownType, msg.Type))
	}

	if !s.limiter.Allow() {
		s.hub.RecordRateLimited(s.id, msg.Type)
		return s.write(proto.NewErrorMessage(proto.ReasonRateLimited, msg.Type))
	}

	switch msg.Type {
	case proto.TypeAddCircle:
		s.hub.AddCircle()
	case proto.TypeStep:
		s.hub.Step()
	case proto.TypeToggle:
		s.hub.Toggle()
	case proto.TypeSave:
		doc, err := s.hub.ExportSVG()
		if err != nil {
			s.logger.Printf("export for %s failed: %v", s.id, err)
			return s.write(proto.NewErrorMessage(proto.ReasonExportFailed, msg.Type))
		}
		return s.write(proto.NewExportMessage(doc))
	}
	return true
}

func (s *session) heartbeat(clientSent int64) bool {
	now := s.now()
	rtt, ok := s.hub.UpdateHeartbeat(s.id, now, clientSent)
	if !ok {
		return true
	}
	return s.write(proto.HeartbeatMessage{
		Ver:        proto.Version,
		Type:       proto.TypeHeartbeat,
		ServerTime: now.UnixMilli(),
		ClientTime: clientSent,
		RTTMillis:  rtt.Milliseconds(),
	})
}

func (s *session) write(msg any) bool {
	data, err := proto.Encode(msg)
	if err != nil {
		s.logger.Printf("failed to marshal response for %s: %v", s.id, err)
		return true
	}
	return s.sub.WriteMessage(websocket.TextMessage, data) == nil
}
