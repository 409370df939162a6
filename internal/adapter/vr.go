package adapter

import (
	"encoding/json"

	"motionsafe/internal/models"
)

// VRAdapter shapes signals for generic VR runtimes: safety, phase and
// correction blocks plus haptic, audio and visual feedback configs.
type VRAdapter struct{}

func (VRAdapter) Name() string { return "vr" }

type vrAudioConfig struct {
	CueID    string  `json:"cue_id"`
	Volume   float64 `json:"volume"`
	Loop     bool    `json:"loop"`
	Priority int     `json:"priority"`
}

type vrVisualConfig struct {
	Color     string  `json:"color"`
	Opacity   float64 `json:"opacity"`
	Animation string  `json:"animation"`
	Position  string  `json:"position"`
}

var vrAudioMap = map[models.SafetyFlag]vrAudioConfig{
	models.FlagSafe:    {CueID: "safety_safe", Volume: 0.5, Priority: 50},
	models.FlagWarning: {CueID: "safety_warning", Volume: 0.7, Priority: 100},
	models.FlagDanger:  {CueID: "safety_stop", Volume: 1.0, Loop: true, Priority: 200},
}

var vrVisualMap = map[models.SafetyFlag]vrVisualConfig{
	models.FlagSafe:    {Color: "green", Opacity: 0.8, Animation: "pulse", Position: "hud"},
	models.FlagWarning: {Color: "yellow", Opacity: 0.9, Animation: "pulse", Position: "hud"},
	models.FlagDanger:  {Color: "red", Opacity: 1.0, Animation: "blink", Position: "screen"},
}

type vrPayload struct {
	Meta struct {
		Frame     int64   `json:"frame"`
		Timestamp float64 `json:"timestamp"`
	} `json:"meta"`
	Safety struct {
		Flag       string  `json:"flag"`
		Confidence float64 `json:"confidence"`
		Severity   int     `json:"severity"`
		IsNew      bool    `json:"is_new"`
	} `json:"safety"`
	Phase struct {
		Current string `json:"current"`
	} `json:"phase"`
	Correction struct {
		Enabled     bool     `json:"enabled"`
		Joint       *string  `json:"joint"`
		Direction   *string  `json:"direction"`
		TargetAngle *float64 `json:"target_angle"`
		Instruction *string  `json:"instruction"`
	} `json:"correction"`
	Feedback struct {
		Haptic hapticConfig   `json:"haptic"`
		Audio  vrAudioConfig  `json:"audio"`
		Visual vrVisualConfig `json:"visual"`
	} `json:"feedback"`
}

func (VRAdapter) Adapt(signal *models.SafetySignal) ([]byte, error) {
	var p vrPayload
	p.Meta.Frame = signal.Frame
	p.Meta.Timestamp = signal.Timestamp
	p.Safety.Flag = string(signal.SafetyFlag)
	p.Safety.Confidence = signal.Confidence
	p.Safety.Severity = signal.Severity
	p.Safety.IsNew = signal.IsNew
	p.Phase.Current = string(signal.Phase)

	if c := signal.Correction; c != nil {
		p.Correction.Enabled = true
		p.Correction.Joint = &c.Joint
		p.Correction.Direction = &c.Direction
		p.Correction.TargetAngle = &c.TargetAngle
		p.Correction.Instruction = &c.Instruction
	}

	p.Feedback.Haptic = hapticFor(signal.Severity)
	p.Feedback.Audio = vrAudioMap[signal.SafetyFlag]
	p.Feedback.Visual = vrVisualMap[signal.SafetyFlag]

	return json.Marshal(p)
}
