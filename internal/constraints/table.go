package constraints

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"motionsafe/internal/models"
)

// Threshold is the ordered triple for one (joint family, movement,
// phase) key. Invariant: 0 <= Safe <= Caution <= Stop.
type Threshold struct {
	Safe    float64 `json:"safe"`
	Caution float64 `json:"caution"`
	Stop    float64 `json:"stop"`
}

// Validate checks the ordering invariant.
func (t Threshold) Validate() error {
	if t.Safe < 0 || t.Caution < 0 || t.Stop < 0 {
		return fmt.Errorf("thresholds must be non-negative: safe=%.1f caution=%.1f stop=%.1f", t.Safe, t.Caution, t.Stop)
	}
	if t.Safe > t.Caution || t.Caution > t.Stop {
		return fmt.Errorf("threshold ordering violated (safe <= caution <= stop required): safe=%.1f caution=%.1f stop=%.1f", t.Safe, t.Caution, t.Stop)
	}
	return nil
}

// Zone classifies an angle against the triple. Boundaries are inclusive
// on the upper side: an angle exactly at Stop is STOP.
func (t Threshold) Zone(angle float64) models.Zone {
	switch {
	case angle >= t.Stop:
		return models.ZoneStop
	case angle >= t.Caution:
		return models.ZoneCaution
	default:
		return models.ZoneSafe
	}
}

// key indexes the table by joint family (side stripped), movement and phase.
type key struct {
	family   string
	movement string
	phase    models.Phase
}

// Table is the active constraint lookup structure. Calibration
// overrides fully replace default entries for the keys they cover.
type Table struct {
	entries map[key]Threshold
}

// rawTable is the on-disk JSON shape, matching the exported config
// format: {"shoulder_flexion": {"active": {"safe":90,"caution":110,"stop":130}, ...}, ...}
type rawTable map[string]map[string]Threshold

// NewTable builds an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[key]Threshold)}
}

// LoadTable reads a threshold table from a JSON file and validates
// every triple. A table with any invariant violation is rejected whole.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read threshold table: %w", err)
	}

	var raw rawTable
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse threshold table: %w", err)
	}

	t := NewTable()
	if err := t.merge(raw); err != nil {
		return nil, err
	}
	return t, nil
}

// merge validates and inserts a raw table. Used by both the default
// table and calibration overrides so both go through the same checks.
func (t *Table) merge(raw rawTable) error {
	for jointMovement, phases := range raw {
		family, movement, err := splitKey(jointMovement)
		if err != nil {
			return err
		}
		for phaseName, th := range phases {
			if err := th.Validate(); err != nil {
				return fmt.Errorf("invalid threshold for %s/%s: %w", jointMovement, phaseName, err)
			}
			t.entries[key{family: family, movement: movement, phase: models.Phase(phaseName)}] = th
		}
	}
	return nil
}

// Lookup resolves the threshold for a sample. Sided joints
// ("shoulder_left") resolve through their family ("shoulder"). A key
// missing the current phase falls back to the "active" entry; a fully
// absent key returns ok=false and the caller treats the joint as
// unclassified SAFE.
func (t *Table) Lookup(joint, movement string, phase models.Phase) (Threshold, bool) {
	family := JointFamily(joint)

	if th, ok := t.entries[key{family: family, movement: movement, phase: phase}]; ok {
		return th, true
	}
	if th, ok := t.entries[key{family: family, movement: movement, phase: models.PhaseActive}]; ok {
		return th, true
	}
	return Threshold{}, false
}

// Len reports the number of (family, movement, phase) entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// JointFamily strips a trailing side suffix: "shoulder_left" → "shoulder".
func JointFamily(joint string) string {
	if s, ok := strings.CutSuffix(joint, "_left"); ok {
		return s
	}
	if s, ok := strings.CutSuffix(joint, "_right"); ok {
		return s
	}
	return joint
}

// splitKey parses "shoulder_flexion" into family and movement. The
// movement is the last underscore segment.
func splitKey(jointMovement string) (string, string, error) {
	idx := strings.LastIndex(jointMovement, "_")
	if idx <= 0 || idx == len(jointMovement)-1 {
		return "", "", fmt.Errorf("invalid threshold key %q: expected <joint>_<movement>", jointMovement)
	}
	return jointMovement[:idx], jointMovement[idx+1:], nil
}
