package adapter

import (
	"encoding/json"
	"fmt"

	"motionsafe/internal/models"
)

// Adapter shapes an emitted signal into the payload a downstream
// consumer expects. Adapters are pure: payload shaping only, no
// transport.
type Adapter interface {
	Name() string
	Adapt(signal *models.SafetySignal) ([]byte, error)
}

// New resolves an adapter by configured name. Empty means raw signal
// JSON passthrough.
func New(name string) (Adapter, error) {
	switch name {
	case "":
		return rawAdapter{}, nil
	case "vr":
		return VRAdapter{}, nil
	case "unreal":
		return UnrealAdapter{}, nil
	case "minimal":
		return MinimalAdapter{}, nil
	default:
		return nil, fmt.Errorf("unknown adapter %q", name)
	}
}

// CommandFor maps a frame severity to the engine-side command code.
func CommandFor(severity int) string {
	switch {
	case severity >= 3:
		return "STOP_IMMEDIATELY"
	case severity == 2:
		return "CORRECT_POSITION"
	case severity == 1:
		return "MONITOR_CLOSELY"
	default:
		return "CONTINUE"
	}
}

// hapticConfig is the controller feedback for one severity level.
type hapticConfig struct {
	Intensity  int    `json:"intensity"` // 0-255
	DurationMS int    `json:"duration_ms"`
	Pattern    string `json:"pattern"`
}

var hapticMap = map[int]hapticConfig{
	0: {Intensity: 0, DurationMS: 50, Pattern: "pulse"},
	1: {Intensity: 50, DurationMS: 100, Pattern: "pulse"},
	2: {Intensity: 150, DurationMS: 200, Pattern: "pulse"},
	3: {Intensity: 255, DurationMS: 500, Pattern: "continuous"},
}

func hapticFor(severity int) hapticConfig {
	if h, ok := hapticMap[severity]; ok {
		return h
	}
	return hapticMap[0]
}

// rawAdapter passes the signal through unchanged.
type rawAdapter struct{}

func (rawAdapter) Name() string { return "raw" }

func (rawAdapter) Adapt(signal *models.SafetySignal) ([]byte, error) {
	return json.Marshal(signal)
}
