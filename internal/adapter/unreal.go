package adapter

import (
	"encoding/json"

	"motionsafe/internal/models"
)

// UnrealAdapter shapes signals for Unreal Engine blueprints: a flat
// command-oriented payload with display hints and direct haptic values.
type UnrealAdapter struct{}

func (UnrealAdapter) Name() string { return "unreal" }

var unrealDisplayMap = map[models.SafetyFlag]struct {
	color, icon, text string
}{
	models.FlagSafe:    {"Green", "Checkmark", "Position is correct"},
	models.FlagWarning: {"Yellow", "Warning", "Position needs correction"},
	models.FlagDanger:  {"Red", "Error", "STOP - Dangerous!"},
}

type unrealPayload struct {
	Safety struct {
		Status         string `json:"status"`
		IsSafe         bool   `json:"is_safe"`
		ActionRequired bool   `json:"action_required"`
		Command        string `json:"command"`
	} `json:"safety"`
	Confidence struct {
		Value    float64 `json:"value"`
		Severity int     `json:"severity"`
	} `json:"confidence"`
	Phase struct {
		Name string `json:"name"`
	} `json:"phase"`
	Correction struct {
		Joint     *string  `json:"joint"`
		Direction *string  `json:"direction"`
		Target    *float64 `json:"target"`
		Text      *string  `json:"text"`
	} `json:"correction"`
	Display struct {
		Color string `json:"color"`
		Icon  string `json:"icon"`
		Text  string `json:"text"`
	} `json:"display"`
	Technical struct {
		Frame     int64   `json:"frame"`
		Timestamp float64 `json:"timestamp"`
		IsNew     bool    `json:"is_new"`
	} `json:"technical"`
	Haptic struct {
		Intensity  int `json:"intensity"`
		DurationMS int `json:"duration_ms"`
	} `json:"haptic"`
}

func (UnrealAdapter) Adapt(signal *models.SafetySignal) ([]byte, error) {
	var p unrealPayload
	p.Safety.Status = string(signal.SafetyFlag)
	p.Safety.IsSafe = signal.SafetyFlag == models.FlagSafe
	p.Safety.ActionRequired = signal.Severity >= 2
	p.Safety.Command = CommandFor(signal.Severity)
	p.Confidence.Value = signal.Confidence
	p.Confidence.Severity = signal.Severity
	p.Phase.Name = string(signal.Phase)

	if c := signal.Correction; c != nil {
		p.Correction.Joint = &c.Joint
		p.Correction.Direction = &c.Direction
		p.Correction.Target = &c.TargetAngle
		p.Correction.Text = &c.Instruction
	}

	display := unrealDisplayMap[signal.SafetyFlag]
	p.Display.Color = display.color
	p.Display.Icon = display.icon
	p.Display.Text = display.text

	p.Technical.Frame = signal.Frame
	p.Technical.Timestamp = signal.Timestamp
	p.Technical.IsNew = signal.IsNew

	h := hapticFor(signal.Severity)
	p.Haptic.Intensity = h.Intensity
	p.Haptic.DurationMS = h.DurationMS

	return json.Marshal(p)
}

// MinimalAdapter emits the smallest useful payload for constrained
// consumers (embedded displays, serial links): single-letter flag,
// severity, frame and novelty.
type MinimalAdapter struct{}

func (MinimalAdapter) Name() string { return "minimal" }

var minimalFlagMap = map[models.SafetyFlag]string{
	models.FlagSafe:    "S",
	models.FlagWarning: "W",
	models.FlagDanger:  "D",
}

type minimalPayload struct {
	F  string `json:"f"` // flag letter
	S  int    `json:"s"` // severity
	Fr int64  `json:"fr"`
	N  bool   `json:"n"` // is_new
}

func (MinimalAdapter) Adapt(signal *models.SafetySignal) ([]byte, error) {
	return json.Marshal(minimalPayload{
		F:  minimalFlagMap[signal.SafetyFlag],
		S:  signal.Severity,
		Fr: signal.Frame,
		N:  signal.IsNew,
	})
}
