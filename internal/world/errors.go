package world

import "errors"

var (
	// ErrInvalidRange reports a range or view axis whose minimum exceeds its maximum,
	// or whose bounds are not finite.
	ErrInvalidRange = errors.New("invalid range")
	// ErrInvalidDelta reports a negative per-tick step.
	ErrInvalidDelta = errors.New("invalid delta")
	// ErrInvalidCapacity reports a history that could never hold a snapshot.
	ErrInvalidCapacity = errors.New("invalid capacity")
)
