package constraints

import (
	"os"
	"path/filepath"
	"testing"

	"motionsafe/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadProfile_AppliesOverrides(t *testing.T) {
	path := writeProfile(t, `{
		"profile_id": "prof-001",
		"patient_id": "patient-042",
		"confidence_threshold": 0.7,
		"thresholds": {
			"shoulder_flexion": {
				"active": {"safe": 60, "caution": 80, "stop": 100}
			}
		}
	}`)

	profile, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "prof-001", profile.ProfileID)
	assert.Equal(t, 0.7, profile.ConfidenceThreshold)

	table := DefaultTable()
	require.NoError(t, profile.Apply(table))

	// covered key fully replaced
	th, ok := table.Lookup("shoulder_left", "flexion", models.PhaseActive)
	require.True(t, ok)
	assert.Equal(t, Threshold{Safe: 60, Caution: 80, Stop: 100}, th)

	// uncovered keys keep their defaults
	th, ok = table.Lookup("elbow_left", "flexion", models.PhaseActive)
	require.True(t, ok)
	assert.Equal(t, Threshold{Safe: 90, Caution: 120, Stop: 150}, th)
}

func TestLoadProfile_RejectsMisorderedTriple(t *testing.T) {
	path := writeProfile(t, `{
		"profile_id": "prof-002",
		"thresholds": {
			"wrist_flexion": {
				"active": {"safe": 50, "caution": 90, "stop": 85}
			}
		}
	}`)

	_, err := LoadProfile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wrist_flexion")
}

func TestLoadProfile_RejectsBadConfidence(t *testing.T) {
	path := writeProfile(t, `{
		"profile_id": "prof-003",
		"confidence_threshold": 1.5,
		"thresholds": {}
	}`)

	_, err := LoadProfile(path)
	require.Error(t, err)
}

func TestProfile_RejectedWholeNotPartiallyApplied(t *testing.T) {
	profile := &CalibrationProfile{
		ProfileID: "prof-004",
		Thresholds: rawTable{
			"shoulder_flexion": {"active": {Safe: 50, Caution: 70, Stop: 90}},
			"elbow_flexion":    {"active": {Safe: 90, Caution: 80, Stop: 150}}, // misordered
		},
	}

	table := DefaultTable()
	require.Error(t, profile.Apply(table))

	// the valid entry must not have leaked into the table
	th, ok := table.Lookup("shoulder_left", "flexion", models.PhaseActive)
	require.True(t, ok)
	assert.Equal(t, Threshold{Safe: 90, Caution: 110, Stop: 130}, th)
}
