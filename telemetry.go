package server

import (
	"sync/atomic"
	"time"
)

type telemetryCounters struct {
	ticks              atomic.Uint64
	manualSteps        atomic.Uint64
	tickOverruns       atomic.Uint64
	tickDurationMicros atomic.Int64
	broadcasts         atomic.Uint64
	bytesSent          atomic.Uint64
	lastBroadcastBytes atomic.Uint64
	shapesSent         atomic.Uint64
	exports            atomic.Uint64
	exportFailures     atomic.Uint64
}

type telemetrySnapshot struct {
	Ticks              uint64 `json:"ticks"`
	ManualSteps        uint64 `json:"manualSteps"`
	TickOverruns       uint64 `json:"tickOverruns"`
	TickDurationMicros int64  `json:"tickDurationMicros"`
	Broadcasts         uint64 `json:"broadcasts"`
	BytesSent          uint64 `json:"bytesSent"`
	LastBroadcastBytes uint64 `json:"lastBroadcastBytes"`
	ShapesSent         uint64 `json:"shapesSent"`
	Exports            uint64 `json:"exports"`
	ExportFailures     uint64 `json:"exportFailures"`
}

func newTelemetryCounters() *telemetryCounters {
	return &telemetryCounters{}
}

func (t *telemetryCounters) RecordTick(duration time.Duration, manual, overran bool) {
	t.ticks.Add(1)
	if manual {
		t.manualSteps.Add(1)
	}
	if overran {
		t.tickOverruns.Add(1)
	}
	micros := duration.Microseconds()
	if micros < 0 {
		micros = 0
	}
	t.tickDurationMicros.Store(micros)
}

func (t *telemetryCounters) RecordBroadcast(bytes, shapes, recipients int) {
	if bytes < 0 {
		bytes = 0
	}
	if shapes < 0 {
		shapes = 0
	}
	if recipients <= 0 {
		return
	}
	t.broadcasts.Add(1)
	t.bytesSent.Add(uint64(bytes) * uint64(recipients))
	t.shapesSent.Add(uint64(shapes) * uint64(recipients))
	t.lastBroadcastBytes.Store(uint64(bytes))
}

func (t *telemetryCounters) RecordExport(ok bool) {
	if ok {
		t.exports.Add(1)
		return
	}
	t.exportFailures.Add(1)
}

func (t *telemetryCounters) Snapshot() telemetrySnapshot {
	return telemetrySnapshot{
		Ticks:              t.ticks.Load(),
		ManualSteps:        t.manualSteps.Load(),
		TickOverruns:       t.tickOverruns.Load(),
		TickDurationMicros: t.tickDurationMicros.Load(),
		Broadcasts:         t.broadcasts.Load(),
		BytesSent:          t.bytesSent.Load(),
		LastBroadcastBytes: t.lastBroadcastBytes.Load(),
		ShapesSent:         t.shapesSent.Load(),
		Exports:            t.exports.Load(),
		ExportFailures:     t.exportFailures.Load(),
	}
}
