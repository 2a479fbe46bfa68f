package lifecycle

import (
	"context"

	"yew-art/server/logging"
)

const (
	// EventSessionConnected is emitted when a viewer opens a websocket session.
	EventSessionConnected logging.EventType = "lifecycle.session_connected"
	// EventSessionDisconnected is emitted when a viewer session ends.
	EventSessionDisconnected logging.EventType = "lifecycle.session_disconnected"
)

// SessionConnectedPayload captures the viewer count after the connection.
type SessionConnectedPayload struct {
	Sessions int `json:"sessions"`
}

// SessionDisconnectedPayload captures the reason a session ended.
type SessionDisconnectedPayload struct {
	Reason   string `json:"reason"`
	Sessions int    `json:"sessions"`
}

// SessionConnected publishes a session join event.
func SessionConnected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload SessionConnectedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventSessionConnected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// SessionDisconnected publishes a session leave event.
func SessionDisconnected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload SessionDisconnectedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventSessionDisconnected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
