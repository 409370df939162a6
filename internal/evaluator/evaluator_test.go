package evaluator

import (
	"math"
	"testing"

	"motionsafe/internal/constraints"
	"motionsafe/internal/models"

	"go.uber.org/zap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(joint, movement string, angle float64) models.JointSample {
	return models.JointSample{Joint: joint, Movement: movement, Angle: angle, Visibility: 0.9}
}

func TestFuseConfidence(t *testing.T) {
	c := models.ConfidenceComponents{
		PoseDetection: 0.9,
		PosePresence:  0.8,
		Visibility:    map[string]float64{"a": 1.0, "b": 0.6},
	}
	// 0.5*0.9 + 0.3*0.8 + 0.2*0.8
	assert.InDelta(t, 0.85, FuseConfidence(c), 1e-9)
}

func TestFuseConfidence_EmptyVisibility(t *testing.T) {
	c := models.ConfidenceComponents{PoseDetection: 1.0, PosePresence: 1.0}
	assert.InDelta(t, 0.8, FuseConfidence(c), 1e-9)
}

func TestFuseConfidence_NaNComponentsContributeZero(t *testing.T) {
	c := models.ConfidenceComponents{
		PoseDetection: math.NaN(),
		PosePresence:  1.0,
		Visibility:    map[string]float64{"a": math.NaN(), "b": 0.5},
	}
	// 0.5*0 + 0.3*1.0 + 0.2*0.5
	assert.InDelta(t, 0.4, FuseConfidence(c), 1e-9)
}

func TestFuseConfidence_Clamped(t *testing.T) {
	assert.Equal(t, 1.0, FuseConfidence(models.ConfidenceComponents{
		PoseDetection: 2.0, PosePresence: 2.0,
	}))
	assert.Equal(t, 0.0, FuseConfidence(models.ConfidenceComponents{
		PoseDetection: -1.0, PosePresence: -1.0,
	}))
}

// Angle 135° against {90, 110, 130} in the active phase is a STOP with
// a danger flag and a "lower to 110" correction.
func TestAssess_StopViolation(t *testing.T) {
	e := NewEvaluator(constraints.DefaultTable(), zap.NewNop())

	as := e.Assess([]models.JointSample{sample("shoulder_left", "flexion", 135)}, models.PhaseActive)
	require.Len(t, as, 1)
	assert.Equal(t, models.ZoneStop, as[0].Zone)
	assert.Equal(t, 3, as[0].Severity)
	assert.InDelta(t, 5.0, as[0].Margin, 1e-9)

	frame := Aggregate(as)
	assert.Equal(t, 3, frame.Severity)
	assert.Equal(t, 1, frame.ActiveViolations)
	assert.Equal(t, "shoulder_left flexion", frame.PrimaryViolation())
	assert.Equal(t, models.FlagDanger, models.FlagForSeverity(frame.Severity))

	c := BuildCorrection(frame)
	require.NotNil(t, c)
	assert.Equal(t, "lower", c.Direction)
	assert.Equal(t, 110.0, c.TargetAngle)
	assert.Contains(t, c.Instruction, "Reduce shoulder flexion angle")
	assert.Contains(t, c.Instruction, "Current: 135.0")
	assert.Contains(t, c.Instruction, "Target: 110.0")
	assert.Contains(t, c.Instruction, "LEFT")
}

func TestAssess_CautionMidpointSplit(t *testing.T) {
	e := NewEvaluator(constraints.DefaultTable(), zap.NewNop())

	// caution band for shoulder flexion active is [110, 130), midpoint 120
	below := e.Assess([]models.JointSample{sample("shoulder_left", "flexion", 118)}, models.PhaseActive)
	assert.Equal(t, 1, below[0].Severity)

	at := e.Assess([]models.JointSample{sample("shoulder_left", "flexion", 120)}, models.PhaseActive)
	assert.Equal(t, 1, at[0].Severity, "exactly at midpoint stays severity 1")

	above := e.Assess([]models.JointSample{sample("shoulder_left", "flexion", 121)}, models.PhaseActive)
	assert.Equal(t, 2, above[0].Severity)
}

func TestAssess_UnknownJointIsUnclassifiedSafe(t *testing.T) {
	e := NewEvaluator(constraints.DefaultTable(), zap.NewNop())

	as := e.Assess([]models.JointSample{sample("knee_left", "flexion", 170)}, models.PhaseActive)
	require.Len(t, as, 1)
	assert.False(t, as[0].Classified)
	assert.Equal(t, models.ZoneSafe, as[0].Zone)
	assert.Equal(t, 0, as[0].Severity)
}

func TestAggregate_PrimaryByMargin(t *testing.T) {
	e := NewEvaluator(constraints.DefaultTable(), zap.NewNop())

	// elbow flexion active {90, 120, 150}: 145 is 25 past caution.
	// shoulder flexion active {90, 110, 130}: 112 is 2 past caution.
	as := e.Assess([]models.JointSample{
		sample("shoulder_left", "flexion", 112),
		sample("elbow_right", "flexion", 145),
	}, models.PhaseActive)

	frame := Aggregate(as)
	assert.Equal(t, 2, frame.ActiveViolations)
	assert.Equal(t, "elbow_right flexion", frame.PrimaryViolation())
}

func TestAggregate_MarginTieBreaksOnJointOrder(t *testing.T) {
	th := constraints.Threshold{Safe: 90, Caution: 110, Stop: 130}
	as := []JointAssessment{
		{Sample: sample("wrist_left", "flexion", 115), Zone: models.ZoneCaution, Threshold: th, Classified: true, Severity: 1, Margin: 5},
		{Sample: sample("shoulder_right", "flexion", 115), Zone: models.ZoneCaution, Threshold: th, Classified: true, Severity: 1, Margin: 5},
		{Sample: sample("shoulder_left", "flexion", 115), Zone: models.ZoneCaution, Threshold: th, Classified: true, Severity: 1, Margin: 5},
	}

	frame := Aggregate(as)
	assert.Equal(t, "shoulder_left flexion", frame.PrimaryViolation())
}

func TestAggregate_CleanFrame(t *testing.T) {
	e := NewEvaluator(constraints.DefaultTable(), zap.NewNop())

	as := e.Assess([]models.JointSample{sample("shoulder_left", "flexion", 45)}, models.PhaseActive)
	frame := Aggregate(as)
	assert.Equal(t, 0, frame.Severity)
	assert.Equal(t, 0, frame.ActiveViolations)
	assert.Nil(t, frame.Primary)
	assert.Empty(t, frame.PrimaryViolation())
	assert.Nil(t, BuildCorrection(frame))
}

func TestAggregate_DeterministicAcrossInputOrder(t *testing.T) {
	th := constraints.Threshold{Safe: 90, Caution: 110, Stop: 130}
	a := JointAssessment{Sample: sample("elbow_left", "flexion", 115), Zone: models.ZoneCaution, Threshold: th, Classified: true, Severity: 1, Margin: 5}
	b := JointAssessment{Sample: sample("shoulder_left", "flexion", 115), Zone: models.ZoneCaution, Threshold: th, Classified: true, Severity: 1, Margin: 5}

	f1 := Aggregate([]JointAssessment{a, b})
	f2 := Aggregate([]JointAssessment{b, a})
	assert.Equal(t, f1.PrimaryViolation(), f2.PrimaryViolation())
}

func TestBuildCorrection_RaiseDirection(t *testing.T) {
	// a joint in CAUTION whose angle sits below the caution limit only
	// happens with calibration tables where zones invert meaning, but
	// the generator must still pick "raise" deterministically
	th := constraints.Threshold{Safe: 90, Caution: 110, Stop: 130}
	frame := FrameAssessment{
		Severity:         1,
		ActiveViolations: 1,
		Primary: &JointAssessment{
			Sample:     sample("elbow_right", "extension", 100),
			Zone:       models.ZoneCaution,
			Threshold:  th,
			Classified: true,
			Severity:   1,
			Margin:     -10,
		},
	}

	c := BuildCorrection(frame)
	require.NotNil(t, c)
	assert.Equal(t, "raise", c.Direction)
	assert.Contains(t, c.Instruction, "Straighten elbow")
	assert.Contains(t, c.Instruction, "RIGHT")
}

func TestSignalBuilder_BuildEvent(t *testing.T) {
	b := NewSignalBuilder("session-1")

	signal := &models.SafetySignal{
		Frame:            42,
		Timestamp:        1.4,
		SafetyFlag:       models.FlagDanger,
		Severity:         3,
		Phase:            models.PhaseActive,
		Confidence:       0.91,
		ActiveViolations: 1,
		PrimaryViolation: "shoulder_left flexion",
		Correction: &models.Correction{
			Joint: "shoulder_left", Movement: "flexion",
			Direction: "lower", TargetAngle: 110,
		},
		IsNew:      true,
		SignalCode: "danger_shoulder_left flexion_high_conf_active",
	}

	event, err := b.BuildEvent(signal)
	require.NoError(t, err)
	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "session-1", event.SessionID)
	assert.Equal(t, int64(42), event.Frame)
	assert.Equal(t, "danger", event.SafetyFlag)
	require.NotNil(t, event.PrimaryViolation)
	assert.Equal(t, "shoulder_left flexion", *event.PrimaryViolation)
	assert.Contains(t, string(event.Correction), `"target_angle":110`)
}

func TestSignalBuilder_CleanSignalHasNoCorrectionJSON(t *testing.T) {
	b := NewSignalBuilder("session-1")

	event, err := b.BuildEvent(&models.SafetySignal{
		Frame: 1, SafetyFlag: models.FlagSafe, Phase: models.PhaseRest,
		IsNew: true, SignalCode: "safe_clean_high_conf_rest",
	})
	require.NoError(t, err)
	assert.Nil(t, event.PrimaryViolation)
	assert.Nil(t, event.Correction)
}
