package proto

import (
	"encoding/json"
	"time"

	"yew-art/server/internal/render"
	"yew-art/server/internal/sim"
	"yew-art/server/internal/world"
)

const (
	// Version tracks the wire-protocol revision expected by clients.
	Version = 2

	// Outbound message types.
	TypeState     = "state"
	TypeExport    = "export"
	TypeHeartbeat = "heartbeat"
	TypeError     = "error"
)

// Client message type identifiers.
const (
	TypeAddCircle = "addCircle"
	TypeStep      = "step"
	TypeToggle    = "toggle"
	TypeSave      = "save"
)

// Error reasons carried by error frames.
const (
	ReasonRateLimited  = "rate_limited"
	ReasonUnknownType  = "unknown_type"
	ReasonExportFailed = "export_failed"
)

// ClientMessage is any control message sent by a viewer.
type ClientMessage struct {
	Ver    int    `json:"ver,omitempty"`
	Type   string `json:"type"`
	SentAt int64  `json:"sentAt,omitempty"`
}

// Circle is the wire shape of one drawn circle.
type Circle struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	R     float64 `json:"r"`
	Color string  `json:"color"`
	Hex   string  `json:"hex"`
}

// StateMessage carries the live circles plus the history a viewer lacks.
// With Reset set, History is the whole retained trail; otherwise the viewer
// appends it and trims its trail to HistoryCap. History precedes circles in
// draw order.
type StateMessage struct {
	Ver        int              `json:"ver"`
	Type       string           `json:"type"`
	Status     string           `json:"status"`
	Tick       uint64           `json:"tick"`
	ServerTime int64            `json:"serverTime"`
	View       world.ViewWindow `json:"view"`
	Reset      bool             `json:"reset"`
	HistoryEnd uint64           `json:"historyEnd"`
	HistoryCap int              `json:"historyCap"`
	History    []Circle         `json:"history"`
	Circles    []Circle         `json:"circles"`
}

// ExportMessage hands a rendered document to the viewer for download.
type ExportMessage struct {
	Ver         int    `json:"ver"`
	Type        string `json:"type"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	SVG         string `json:"svg"`
}

type HeartbeatMessage struct {
	Ver        int    `json:"ver"`
	Type       string `json:"type"`
	ServerTime int64  `json:"serverTime"`
	ClientTime int64  `json:"clientTime"`
	RTTMillis  int64  `json:"rtt"`
}

type ErrorMessage struct {
	Ver     int    `json:"ver"`
	Type    string `json:"type"`
	Reason  string `json:"reason"`
	Command string `json:"command,omitempty"`
}

// NewStateMessage projects a controller frame onto the wire.
func NewStateMessage(frame sim.Frame, now time.Time) StateMessage {
	return StateMessage{
		Ver:        Version,
		Type:       TypeState,
		Status:     frame.Status.String(),
		Tick:       frame.Tick,
		ServerTime: now.UnixMilli(),
		View:       frame.View,
		Reset:      frame.Reset,
		HistoryEnd: frame.HistoryEnd,
		HistoryCap: frame.HistoryCap,
		History:    circles(frame.History),
		Circles:    circles(frame.Circles),
	}
}

// Shapes counts the circles carried by the frame.
func (m StateMessage) Shapes() int {
	return len(m.History) + len(m.Circles)
}

// NewExportMessage wraps a rendered document.
func NewExportMessage(doc []byte) ExportMessage {
	return ExportMessage{
		Ver:         Version,
		Type:        TypeExport,
		Filename:    render.ExportFilename,
		ContentType: render.ExportContentType,
		SVG:         string(doc),
	}
}

func NewErrorMessage(reason, command string) ErrorMessage {
	return ErrorMessage{Ver: Version, Type: TypeError, Reason: reason, Command: command}
}

// Encode renders any outbound message.
func Encode(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeClientMessage parses a viewer control message.
func DecodeClientMessage(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ClientMessage{}, err
	}
	return msg, nil
}

func circles(in []world.Circle) []Circle {
	out := make([]Circle, len(in))
	for i, c := range in {
		out[i] = Circle{
			X:     c.Position.X,
			Y:     c.Position.Y,
			R:     c.Radius,
			Color: c.Color.String(),
			Hex:   render.Hex(c.Color),
		}
	}
	return out
}
