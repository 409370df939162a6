package failsafe

import (
	"testing"

	"motionsafe/internal/models"

	"go.uber.org/zap"

	"github.com/stretchr/testify/assert"
)

func TestMachine_EntersAlertingImmediately(t *testing.T) {
	m := NewMachine(3, zap.NewNop())
	assert.Equal(t, StateNormal, m.State())

	assert.Equal(t, StateAlerting, m.Observe(3))
}

func TestMachine_SingleSafeFrameDoesNotClear(t *testing.T) {
	m := NewMachine(3, zap.NewNop())
	m.Observe(3)

	// one safe frame while hysteresis > 1 keeps state ALERTING
	assert.Equal(t, StateAlerting, m.Observe(0))
	assert.Equal(t, StateAlerting, m.Observe(1))

	// third consecutive sub-STOP frame clears
	assert.Equal(t, StateNormal, m.Observe(0))
}

func TestMachine_DangerResetsHysteresisStreak(t *testing.T) {
	m := NewMachine(3, zap.NewNop())
	m.Observe(3)
	m.Observe(0)
	m.Observe(0)

	// danger again: streak starts over
	assert.Equal(t, StateAlerting, m.Observe(3))
	m.Observe(0)
	m.Observe(0)
	assert.Equal(t, StateAlerting, m.State())
	assert.Equal(t, StateNormal, m.Observe(2))
}

func TestMachine_FloorFlag(t *testing.T) {
	m := NewMachine(2, zap.NewNop())

	// NORMAL: flags pass through
	assert.Equal(t, models.FlagSafe, m.FloorFlag(models.FlagSafe))

	m.Observe(3)
	assert.Equal(t, models.FlagWarning, m.FloorFlag(models.FlagSafe))
	assert.Equal(t, models.FlagWarning, m.FloorFlag(models.FlagWarning))
	assert.Equal(t, models.FlagDanger, m.FloorFlag(models.FlagDanger))
}

func TestMachine_HysteresisOfOne(t *testing.T) {
	m := NewMachine(1, zap.NewNop())
	m.Observe(3)
	assert.Equal(t, StateNormal, m.Observe(0))
}
