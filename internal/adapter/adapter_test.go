package adapter

import (
	"encoding/json"
	"testing"

	"motionsafe/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dangerSignal() *models.SafetySignal {
	return &models.SafetySignal{
		Frame:            312,
		Timestamp:        12.891,
		SafetyFlag:       models.FlagDanger,
		Severity:         3,
		Phase:            models.PhaseActive,
		Confidence:       0.98,
		ActiveViolations: 1,
		PrimaryViolation: "shoulder_left flexion",
		Correction: &models.Correction{
			Joint: "shoulder_left", Movement: "flexion",
			Direction: "lower", TargetAngle: 110,
			Instruction: "LEFT Reduce shoulder flexion angle. Current: 135.0°. Target: 110.0°.",
		},
		IsNew:      true,
		SignalCode: "danger_shoulder_left flexion_high_conf_active",
	}
}

func safeSignal() *models.SafetySignal {
	return &models.SafetySignal{
		Frame: 157, Timestamp: 5.234,
		SafetyFlag: models.FlagSafe, Severity: 0,
		Phase: models.PhaseRest, Confidence: 0.95,
		IsNew: true, SignalCode: "safe_clean_high_conf_rest",
	}
}

func TestNew(t *testing.T) {
	for name, want := range map[string]string{
		"": "raw", "vr": "vr", "unreal": "unreal", "minimal": "minimal",
	} {
		a, err := New(name)
		require.NoError(t, err)
		assert.Equal(t, want, a.Name())
	}

	_, err := New("quest")
	assert.Error(t, err)
}

func TestCommandFor(t *testing.T) {
	assert.Equal(t, "CONTINUE", CommandFor(0))
	assert.Equal(t, "MONITOR_CLOSELY", CommandFor(1))
	assert.Equal(t, "CORRECT_POSITION", CommandFor(2))
	assert.Equal(t, "STOP_IMMEDIATELY", CommandFor(3))
}

func TestVRAdapter_DangerPayload(t *testing.T) {
	data, err := VRAdapter{}.Adapt(dangerSignal())
	require.NoError(t, err)

	var p map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &p))

	var safety struct {
		Flag     string `json:"flag"`
		Severity int    `json:"severity"`
	}
	require.NoError(t, json.Unmarshal(p["safety"], &safety))
	assert.Equal(t, "danger", safety.Flag)
	assert.Equal(t, 3, safety.Severity)

	var feedback struct {
		Haptic hapticConfig `json:"haptic"`
		Visual struct {
			Color     string `json:"color"`
			Animation string `json:"animation"`
		} `json:"visual"`
	}
	require.NoError(t, json.Unmarshal(p["feedback"], &feedback))
	assert.Equal(t, 255, feedback.Haptic.Intensity)
	assert.Equal(t, "continuous", feedback.Haptic.Pattern)
	assert.Equal(t, "red", feedback.Visual.Color)
	assert.Equal(t, "blink", feedback.Visual.Animation)
}

func TestVRAdapter_SafePayloadHasNoCorrection(t *testing.T) {
	data, err := VRAdapter{}.Adapt(safeSignal())
	require.NoError(t, err)

	var p struct {
		Correction struct {
			Enabled bool    `json:"enabled"`
			Joint   *string `json:"joint"`
		} `json:"correction"`
		Feedback struct {
			Haptic hapticConfig `json:"haptic"`
		} `json:"feedback"`
	}
	require.NoError(t, json.Unmarshal(data, &p))
	assert.False(t, p.Correction.Enabled)
	assert.Nil(t, p.Correction.Joint)
	assert.Zero(t, p.Feedback.Haptic.Intensity)
}

func TestUnrealAdapter_DangerPayload(t *testing.T) {
	data, err := UnrealAdapter{}.Adapt(dangerSignal())
	require.NoError(t, err)

	var p unrealPayload
	require.NoError(t, json.Unmarshal(data, &p))

	assert.Equal(t, "danger", p.Safety.Status)
	assert.False(t, p.Safety.IsSafe)
	assert.True(t, p.Safety.ActionRequired)
	assert.Equal(t, "STOP_IMMEDIATELY", p.Safety.Command)
	assert.Equal(t, "Red", p.Display.Color)
	assert.Equal(t, "STOP - Dangerous!", p.Display.Text)
	assert.Equal(t, 255, p.Haptic.Intensity)
	assert.Equal(t, 500, p.Haptic.DurationMS)
	require.NotNil(t, p.Correction.Target)
	assert.Equal(t, 110.0, *p.Correction.Target)
}

func TestUnrealAdapter_SafePayload(t *testing.T) {
	data, err := UnrealAdapter{}.Adapt(safeSignal())
	require.NoError(t, err)

	var p unrealPayload
	require.NoError(t, json.Unmarshal(data, &p))
	assert.True(t, p.Safety.IsSafe)
	assert.False(t, p.Safety.ActionRequired)
	assert.Equal(t, "CONTINUE", p.Safety.Command)
	assert.Nil(t, p.Correction.Joint)
}

func TestMinimalAdapter(t *testing.T) {
	data, err := MinimalAdapter{}.Adapt(dangerSignal())
	require.NoError(t, err)
	assert.JSONEq(t, `{"f":"D","s":3,"fr":312,"n":true}`, string(data))

	data, err = MinimalAdapter{}.Adapt(safeSignal())
	require.NoError(t, err)
	assert.JSONEq(t, `{"f":"S","s":0,"fr":157,"n":true}`, string(data))
}

func TestRawAdapter_Passthrough(t *testing.T) {
	a, err := New("")
	require.NoError(t, err)

	data, err := a.Adapt(dangerSignal())
	require.NoError(t, err)

	var decoded models.SafetySignal
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, int64(312), decoded.Frame)
	assert.Equal(t, "danger_shoulder_left flexion_high_conf_active", decoded.SignalCode)
}
