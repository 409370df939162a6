package phase

import (
	"math"

	"motionsafe/internal/models"

	"go.uber.org/zap"
)

// Config holds the phase-detection heuristics. All values come from
// configuration; the detector never hardcodes tuning.
type Config struct {
	Window          int     // rolling angle history per joint, frames
	DebounceFrames  int     // consecutive frames a candidate must hold
	StartVelocity   float64 // deg/frame; above this, movement has started
	SettleVelocity  float64 // deg/frame; below this, movement has settled
	ActiveAmplitude float64 // degrees; above this, movement is high-amplitude
	RestAmplitude   float64 // degrees; below this, the subject is near rest
}

// DefaultConfig returns the tuning used when configuration is silent.
func DefaultConfig() Config {
	return Config{
		Window:          5,
		DebounceFrames:  3,
		StartVelocity:   3.0,
		SettleVelocity:  1.0,
		ActiveAmplitude: 45.0,
		RestAmplitude:   20.0,
	}
}

// successor is the single legal next phase for each phase. The cycle is
// monotonic: rest never jumps to active and active never jumps to rest.
var successor = map[models.Phase]models.Phase{
	models.PhaseRest:       models.PhaseInitiation,
	models.PhaseInitiation: models.PhaseActive,
	models.PhaseActive:     models.PhaseTransition,
	models.PhaseTransition: models.PhaseCompletion,
	models.PhaseCompletion: models.PhaseRest,
}

// Detector tracks the exercise phase across frames. It is owned by a
// single session and is not safe for concurrent use.
type Detector struct {
	cfg    Config
	logger *zap.Logger

	current        models.Phase
	candidate      models.Phase
	candidateCount int
	phaseChanges   int64

	history map[string][]float64 // joint → recent angles, newest last
}

// NewDetector creates a detector in the rest phase.
func NewDetector(cfg Config, logger *zap.Logger) *Detector {
	if cfg.Window <= 0 {
		cfg.Window = DefaultConfig().Window
	}
	if cfg.DebounceFrames <= 0 {
		cfg.DebounceFrames = DefaultConfig().DebounceFrames
	}
	return &Detector{
		cfg:     cfg,
		logger:  logger,
		current: models.PhaseRest,
		history: make(map[string][]float64),
	}
}

// Current returns the committed phase.
func (d *Detector) Current() models.Phase {
	return d.current
}

// PhaseChanges returns the number of committed transitions so far.
func (d *Detector) PhaseChanges() int64 {
	return d.phaseChanges
}

// Observe folds one frame of joint samples into the phase state machine
// and returns the committed phase for this frame. A frame with no
// samples advances nothing and holds the current phase.
func (d *Detector) Observe(samples []models.JointSample) models.Phase {
	if len(samples) == 0 {
		return d.current
	}

	velocity, amplitude := d.update(samples)

	want := d.desiredNext(velocity, amplitude)
	if want == d.current {
		d.candidateCount = 0
		return d.current
	}

	// Debounce: the candidate must hold for DebounceFrames consecutive
	// frames before it commits.
	if want != d.candidate {
		d.candidate = want
		d.candidateCount = 1
		return d.current
	}
	d.candidateCount++
	if d.candidateCount < d.cfg.DebounceFrames {
		return d.current
	}

	d.transitionTo(want)
	d.candidateCount = 0
	return d.current
}

// Reset returns the detector to its initial state.
func (d *Detector) Reset() {
	d.current = models.PhaseRest
	d.candidate = ""
	d.candidateCount = 0
	d.phaseChanges = 0
	d.history = make(map[string][]float64)
}

// update appends the frame's angles to the per-joint history and
// returns the frame's peak angular velocity (deg/frame) and peak angle.
func (d *Detector) update(samples []models.JointSample) (velocity, amplitude float64) {
	for _, s := range samples {
		hist := d.history[s.Joint]
		if n := len(hist); n > 0 {
			v := math.Abs(s.Angle - hist[n-1])
			if v > velocity {
				velocity = v
			}
		}
		hist = append(hist, s.Angle)
		if len(hist) > d.cfg.Window {
			hist = hist[len(hist)-d.cfg.Window:]
		}
		d.history[s.Joint] = hist

		if s.Angle > amplitude {
			amplitude = s.Angle
		}
	}
	return velocity, amplitude
}

// desiredNext evaluates the transition heuristic for the current phase.
// It only ever proposes the current phase or its successor.
func (d *Detector) desiredNext(velocity, amplitude float64) models.Phase {
	switch d.current {
	case models.PhaseRest:
		if velocity >= d.cfg.StartVelocity {
			return models.PhaseInitiation
		}
	case models.PhaseInitiation:
		if amplitude >= d.cfg.ActiveAmplitude {
			return models.PhaseActive
		}
	case models.PhaseActive:
		// velocity near zero while the angle is still elevated
		if velocity <= d.cfg.SettleVelocity && amplitude >= d.cfg.RestAmplitude {
			return models.PhaseTransition
		}
	case models.PhaseTransition:
		if amplitude <= d.cfg.RestAmplitude {
			return models.PhaseCompletion
		}
	case models.PhaseCompletion:
		if velocity <= d.cfg.SettleVelocity {
			return models.PhaseRest
		}
	}
	return d.current
}

// transitionTo commits a transition. A request that is not the legal
// successor is a logic fault: it is logged and the phase is held rather
// than corrupting the cycle.
func (d *Detector) transitionTo(next models.Phase) {
	if successor[d.current] != next {
		d.logger.Error("illegal phase transition requested, holding phase",
			zap.String("from", string(d.current)),
			zap.String("to", string(next)),
		)
		return
	}
	d.logger.Debug("phase transition",
		zap.String("from", string(d.current)),
		zap.String("to", string(next)),
	)
	d.current = next
	d.phaseChanges++
}
