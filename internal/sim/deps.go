package sim

import (
	"yew-art/server/internal/telemetry"
	"yew-art/server/logging"
)

// Deps carries shared infrastructure dependencies required by the controller.
type Deps struct {
	Logger telemetry.Logger
	Clock  logging.Clock
}
