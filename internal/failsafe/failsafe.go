package failsafe

import (
	"motionsafe/internal/models"

	"go.uber.org/zap"
)

// State is the alarm state owned by the fail-safe machine.
type State string

const (
	StateNormal   State = "NORMAL"
	StateAlerting State = "ALERTING"
)

// Machine enforces the fail-safe alarm contract: entry into ALERTING is
// unconditional and immediate on a severity-3 frame; exit requires the
// configured number of consecutive sub-STOP frames (hysteresis) so a
// single noisy safe frame cannot clear the alarm.
//
// Owned exclusively by one session; not safe for concurrent use.
type Machine struct {
	hysteresis int
	logger     *zap.Logger

	state      State
	safeStreak int
}

// NewMachine creates a machine in NORMAL. hysteresis must be positive;
// non-positive values fall back to 1 (clear on the first safe frame).
func NewMachine(hysteresis int, logger *zap.Logger) *Machine {
	if hysteresis < 1 {
		hysteresis = 1
	}
	return &Machine{
		hysteresis: hysteresis,
		logger:     logger,
		state:      StateNormal,
	}
}

// State returns the current alarm state.
func (m *Machine) State() State {
	return m.state
}

// Observe folds one frame's aggregate severity into the machine and
// returns the resulting state.
func (m *Machine) Observe(severity int) State {
	if severity >= 3 {
		if m.state == StateNormal {
			m.logger.Warn("fail-safe engaged", zap.Int("severity", severity))
		}
		m.state = StateAlerting
		m.safeStreak = 0
		return m.state
	}

	if m.state == StateAlerting {
		m.safeStreak++
		if m.safeStreak >= m.hysteresis {
			m.logger.Info("fail-safe cleared",
				zap.Int("consecutive_safe_frames", m.safeStreak),
			)
			m.state = StateNormal
			m.safeStreak = 0
		}
	}
	return m.state
}

// FloorFlag applies the alarm floor to a frame's safety flag: while
// ALERTING the reported flag can never be "safe", even if the frame
// itself computed severity 0.
func (m *Machine) FloorFlag(flag models.SafetyFlag) models.SafetyFlag {
	if m.state == StateAlerting && flag == models.FlagSafe {
		return models.FlagWarning
	}
	return flag
}
