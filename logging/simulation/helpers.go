package simulation

import (
	"context"
	"strconv"

	"yew-art/server/logging"
)

const (
	// EventCircleAdded is emitted when a circle joins the live set.
	EventCircleAdded logging.EventType = "simulation.circle_added"
	// EventStatusChanged is emitted when play/pause flips.
	EventStatusChanged logging.EventType = "simulation.status_changed"
	// EventTickBudgetOverrun is emitted when a tick takes longer than the play interval.
	EventTickBudgetOverrun logging.EventType = "simulation.tick_budget_overrun"
	// EventExported is emitted after the current frame is serialized for download.
	EventExported logging.EventType = "simulation.exported"
	// EventExportFailed is emitted when the frame could not be serialized.
	EventExportFailed logging.EventType = "simulation.export_failed"
)

// CircleAddedPayload captures the live set size after the addition.
type CircleAddedPayload struct {
	Circles int `json:"circles"`
}

// StatusChangedPayload captures the new play state.
type StatusChangedPayload struct {
	Status string `json:"status"`
}

// TickBudgetOverrunPayload captures timing details for a tick budget breach.
type TickBudgetOverrunPayload struct {
	DurationMillis int64   `json:"durationMillis"`
	BudgetMillis   int64   `json:"budgetMillis"`
	Ratio          float64 `json:"ratio"`
	Circles        int     `json:"circles"`
}

// ExportPayload describes a serialized frame.
type ExportPayload struct {
	Bytes    int    `json:"bytes"`
	Shapes   int    `json:"shapes"`
	Filename string `json:"filename"`
	Error    string `json:"error,omitempty"`
}

var simulationActor = logging.EntityRef{Kind: logging.EntityKindSimulation}

// CircleRef names a live circle by its index in draw order.
func CircleRef(index int) logging.EntityRef {
	return logging.EntityRef{ID: strconv.Itoa(index), Kind: logging.EntityKindCircle}
}

// CircleAdded publishes an info event for a new circle.
func CircleAdded(ctx context.Context, pub logging.Publisher, tick uint64, circle logging.EntityRef, payload CircleAddedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventCircleAdded,
		Tick:     tick,
		Actor:    simulationActor,
		Targets:  []logging.EntityRef{circle},
		Severity: logging.SeverityInfo,
		Category: logging.CategorySimulation,
		Payload:  payload,
	})
}

// StatusChanged publishes an info event when the simulation starts or pauses.
func StatusChanged(ctx context.Context, pub logging.Publisher, tick uint64, payload StatusChangedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventStatusChanged,
		Tick:     tick,
		Actor:    simulationActor,
		Severity: logging.SeverityInfo,
		Category: logging.CategorySimulation,
		Payload:  payload,
	})
}

// TickBudgetOverrun publishes a warning when the simulation exceeds the play interval.
func TickBudgetOverrun(ctx context.Context, pub logging.Publisher, tick uint64, payload TickBudgetOverrunPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTickBudgetOverrun,
		Tick:     tick,
		Actor:    simulationActor,
		Severity: logging.SeverityWarn,
		Category: logging.CategorySimulation,
		Payload:  payload,
		Extra:    extra,
	})
}

// Exported publishes an info event for a completed export.
func Exported(ctx context.Context, pub logging.Publisher, tick uint64, traceID string, payload ExportPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventExported,
		Tick:     tick,
		Actor:    simulationActor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryExport,
		Payload:  payload,
		TraceID:  traceID,
	})
}

// ExportFailed publishes an error event; the simulation itself is unaffected.
func ExportFailed(ctx context.Context, pub logging.Publisher, tick uint64, traceID string, payload ExportPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventExportFailed,
		Tick:     tick,
		Actor:    simulationActor,
		Severity: logging.SeverityError,
		Category: logging.CategoryExport,
		Payload:  payload,
		TraceID:  traceID,
	})
}
