package evaluator

import (
	"motionsafe/internal/constraints"
	"motionsafe/internal/models"

	"go.uber.org/zap"
)

// JointAssessment is the classification of one joint sample for one frame.
type JointAssessment struct {
	Sample     models.JointSample
	Zone       models.Zone
	Threshold  constraints.Threshold
	Classified bool    // false when no threshold entry covers the joint
	Severity   int     // per-joint severity contribution, 0-3
	Margin     float64 // angle minus the boundary of the zone it landed in
}

// Evaluator classifies every joint in a frame against the active
// threshold table. It holds no per-frame state; the table it wraps may
// include calibration overrides applied at startup.
type Evaluator struct {
	table  *constraints.Table
	logger *zap.Logger
}

func NewEvaluator(table *constraints.Table, logger *zap.Logger) *Evaluator {
	return &Evaluator{table: table, logger: logger}
}

// Assess classifies each joint sample using the phase current at the
// start of the frame. Joints with no covering threshold entry are
// treated as SAFE and flagged unclassified so the caller can log them
// without failing the frame.
func (e *Evaluator) Assess(samples []models.JointSample, phase models.Phase) []JointAssessment {
	out := make([]JointAssessment, 0, len(samples))
	for _, s := range samples {
		th, ok := e.table.Lookup(s.Joint, s.Movement, phase)
		if !ok {
			e.logger.Debug("no threshold entry for joint, treating as safe",
				zap.String("joint", s.Joint),
				zap.String("movement", s.Movement),
				zap.String("phase", string(phase)),
			)
			out = append(out, JointAssessment{Sample: s, Zone: models.ZoneSafe})
			continue
		}

		zone := th.Zone(s.Angle)
		out = append(out, JointAssessment{
			Sample:     s,
			Zone:       zone,
			Threshold:  th,
			Classified: true,
			Severity:   jointSeverity(zone, s.Angle, th),
			Margin:     zoneMargin(zone, s.Angle, th),
		})
	}
	return out
}

// jointSeverity maps a zone to its severity contribution. CAUTION
// splits at the midpoint of [caution, stop): a joint strictly past the
// midpoint is severity 2, otherwise 1.
func jointSeverity(zone models.Zone, angle float64, th constraints.Threshold) int {
	switch zone {
	case models.ZoneStop:
		return 3
	case models.ZoneCaution:
		mid := (th.Caution + th.Stop) / 2
		if angle > mid {
			return 2
		}
		return 1
	default:
		return 0
	}
}

// zoneMargin is how far past its own zone boundary the angle sits.
// Used only to rank violations; SAFE joints keep margin 0.
func zoneMargin(zone models.Zone, angle float64, th constraints.Threshold) float64 {
	switch zone {
	case models.ZoneStop:
		return angle - th.Stop
	case models.ZoneCaution:
		return angle - th.Caution
	default:
		return 0
	}
}
