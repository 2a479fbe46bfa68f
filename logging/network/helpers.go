package network

import (
	"context"

	"yew-art/server/logging"
)

const (
	// EventCommandRateLimited is emitted when a session sends commands faster than allowed.
	EventCommandRateLimited logging.EventType = "network.command_rate_limited"
	// EventBroadcastFailed is emitted when a state frame could not be delivered.
	EventBroadcastFailed logging.EventType = "network.broadcast_failed"
)

// CommandPayload names the rejected command.
type CommandPayload struct {
	Command string `json:"command"`
}

// BroadcastPayload captures the failed write.
type BroadcastPayload struct {
	Bytes int    `json:"bytes"`
	Error string `json:"error"`
}

// CommandRateLimited publishes a debug event when a command is dropped by the limiter.
func CommandRateLimited(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload CommandPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventCommandRateLimited,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: "network",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// BroadcastFailed publishes a warning event when a subscriber write fails.
func BroadcastFailed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload BroadcastPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventBroadcastFailed,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: "network",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
