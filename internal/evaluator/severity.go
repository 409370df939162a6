package evaluator

import (
	"fmt"

	"motionsafe/internal/constraints"
)

// FrameAssessment is the aggregate of all per-joint classifications for
// one frame.
type FrameAssessment struct {
	Severity         int
	ActiveViolations int
	// Primary is the violation with the largest margin past its zone
	// boundary; nil when the frame is clean.
	Primary *JointAssessment
}

// PrimaryViolation renders the primary violation as "joint movement",
// or "" for a clean frame.
func (f FrameAssessment) PrimaryViolation() string {
	if f.Primary == nil {
		return ""
	}
	return fmt.Sprintf("%s %s", f.Primary.Sample.Joint, f.Primary.Sample.Movement)
}

// Aggregate reduces per-joint assessments to the frame severity, the
// violation count and the primary violation. Severity is the maximum
// per-joint contribution. The primary violation is the joint with the
// largest margin; margin ties break on a fixed joint ordering so the
// result is deterministic regardless of input order.
func Aggregate(assessments []JointAssessment) FrameAssessment {
	var out FrameAssessment
	for i := range assessments {
		a := &assessments[i]
		if a.Severity > out.Severity {
			out.Severity = a.Severity
		}
		if a.Severity == 0 {
			continue
		}
		out.ActiveViolations++
		if out.Primary == nil || moreUrgent(a, out.Primary) {
			out.Primary = a
		}
	}
	return out
}

// moreUrgent ranks candidate a against the current primary b.
func moreUrgent(a, b *JointAssessment) bool {
	if a.Margin != b.Margin {
		return a.Margin > b.Margin
	}
	return jointPriority(a.Sample.Joint) < jointPriority(b.Sample.Joint)
}

// jointPriority gives the fixed tiebreak order: proximal joints before
// distal (shoulder, elbow, wrist), left side before right. Unknown
// joints rank last.
func jointPriority(joint string) int {
	family := constraints.JointFamily(joint)

	rank := 3
	switch family {
	case "shoulder":
		rank = 0
	case "elbow":
		rank = 1
	case "wrist":
		rank = 2
	}

	side := 0
	if joint == family+"_right" {
		side = 1
	}
	return rank*2 + side
}
