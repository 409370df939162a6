package constraints

import (
	"encoding/json"
	"fmt"
	"os"
)

// CalibrationProfile is a patient-specific set of threshold overrides
// produced by the clinician calibration workflow (external). Entries
// fully replace default table entries for the keys they cover.
type CalibrationProfile struct {
	ProfileID string `json:"profile_id"`
	PatientID string `json:"patient_id"`

	// Thresholds uses the same key shape as the default table:
	// "<joint>_<movement>" → phase → triple.
	Thresholds rawTable `json:"thresholds"`

	// ConfidenceThreshold optionally overrides the minimum tracking
	// confidence for the session. Zero means "not set".
	ConfidenceThreshold float64 `json:"confidence_threshold,omitempty"`

	CalibratedBy string `json:"calibrated_by,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// LoadProfile reads and validates a calibration profile. A profile with
// any misordered triple is rejected whole, never partially applied.
func LoadProfile(path string) (*CalibrationProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read calibration profile: %w", err)
	}

	var p CalibrationProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse calibration profile: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks every override triple and the confidence override.
func (p *CalibrationProfile) Validate() error {
	if p.ProfileID == "" {
		return fmt.Errorf("calibration profile missing profile_id")
	}
	for jointMovement, phases := range p.Thresholds {
		if _, _, err := splitKey(jointMovement); err != nil {
			return fmt.Errorf("calibration profile %s: %w", p.ProfileID, err)
		}
		for phaseName, th := range phases {
			if err := th.Validate(); err != nil {
				return fmt.Errorf("calibration profile %s: %s/%s: %w", p.ProfileID, jointMovement, phaseName, err)
			}
		}
	}
	if p.ConfidenceThreshold < 0 || p.ConfidenceThreshold > 1 {
		return fmt.Errorf("calibration profile %s: confidence_threshold %.2f outside [0,1]", p.ProfileID, p.ConfidenceThreshold)
	}
	return nil
}

// Apply replaces table entries covered by the profile. The profile must
// already be validated; Apply returns the validation error otherwise.
func (p *CalibrationProfile) Apply(t *Table) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return t.merge(p.Thresholds)
}
