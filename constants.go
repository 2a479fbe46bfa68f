package server

import "time"

const (
	writeWait         = 10 * time.Second
	heartbeatInterval = 2 * time.Second
	// Viewer clock readings further ahead than this are ignored for RTT.
	maxClockSkew = 5 * time.Second
	// Frames queued per viewer before it is considered too slow and dropped.
	outboundQueueSize = 32
)

// HeartbeatInterval is the cadence clients are expected to ping at.
func HeartbeatInterval() time.Duration {
	return heartbeatInterval
}
