package evaluator

import (
	"math"

	"motionsafe/internal/models"
)

// Fixed fusion weights for the three uncertainty sources reported by
// the pose provider. Detection score dominates because presence and
// visibility degrade first under partial occlusion.
const (
	weightDetection  = 0.5
	weightPresence   = 0.3
	weightVisibility = 0.2
)

// FuseConfidence folds the provider's raw uncertainty components into a
// single score in [0, 1]. The visibility term is the mean of all
// per-landmark scores; an empty map contributes 0. Missing or NaN
// components contribute 0 rather than poisoning the result.
func FuseConfidence(c models.ConfidenceComponents) float64 {
	visibility := 0.0
	if len(c.Visibility) > 0 {
		sum := 0.0
		n := 0
		for _, v := range c.Visibility {
			if math.IsNaN(v) {
				continue
			}
			sum += v
			n++
		}
		if n > 0 {
			visibility = sum / float64(n)
		}
	}

	score := weightDetection*sanitize(c.PoseDetection) +
		weightPresence*sanitize(c.PosePresence) +
		weightVisibility*visibility

	return clamp01(score)
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
