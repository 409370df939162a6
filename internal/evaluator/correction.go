package evaluator

import (
	"fmt"
	"strings"

	"motionsafe/internal/constraints"
	"motionsafe/internal/models"
)

// Instruction phrases per (joint family, movement, direction). The
// direction field of the correction stays "lower"/"raise"; the phrase
// describes the anatomically natural way to get there.
var correctionPhrases = map[[3]string]string{
	{"shoulder", "flexion", "lower"}:   "Reduce shoulder flexion angle",
	{"shoulder", "flexion", "raise"}:   "Increase shoulder flexion angle",
	{"shoulder", "abduction", "lower"}: "Reduce shoulder abduction",
	{"shoulder", "abduction", "raise"}: "Increase shoulder abduction",
	{"shoulder", "extension", "lower"}: "Reduce shoulder extension",
	{"shoulder", "extension", "raise"}: "Increase shoulder extension",
	{"elbow", "flexion", "lower"}:      "Straighten elbow slightly",
	{"elbow", "flexion", "raise"}:      "Bend elbow more",
	{"elbow", "extension", "lower"}:    "Allow slight bend in elbow",
	{"elbow", "extension", "raise"}:    "Straighten elbow",
	{"wrist", "flexion", "lower"}:      "Reduce wrist flexion",
	{"wrist", "flexion", "raise"}:      "Increase wrist flexion",
	{"wrist", "extension", "lower"}:    "Reduce wrist extension",
	{"wrist", "extension", "raise"}:    "Increase wrist extension",
}

// BuildCorrection derives the guidance for the primary violation. The
// target angle is the caution limit for the current phase, the nearest
// boundary that returns the joint to an acceptable zone. Returns nil
// for a clean frame.
func BuildCorrection(frame FrameAssessment) *models.Correction {
	if frame.Primary == nil {
		return nil
	}

	v := frame.Primary
	target := v.Threshold.Caution

	direction := "raise"
	if v.Sample.Angle > target {
		direction = "lower"
	}

	family := constraints.JointFamily(v.Sample.Joint)
	phrase, ok := correctionPhrases[[3]string{family, v.Sample.Movement, direction}]
	if !ok {
		phrase = fmt.Sprintf("Adjust %s %s", family, v.Sample.Movement)
	}

	instruction := fmt.Sprintf("%s. Current: %.1f°. Target: %.1f°.", phrase, v.Sample.Angle, target)
	if side := jointSide(v.Sample.Joint); side != "" {
		instruction = strings.ToUpper(side) + " " + instruction
	}

	return &models.Correction{
		Joint:       v.Sample.Joint,
		Movement:    v.Sample.Movement,
		Direction:   direction,
		TargetAngle: target,
		Instruction: instruction,
	}
}

func jointSide(joint string) string {
	if strings.HasSuffix(joint, "_left") {
		return "left"
	}
	if strings.HasSuffix(joint, "_right") {
		return "right"
	}
	return ""
}
