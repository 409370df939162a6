package session

import (
	"context"

	"motionsafe/internal/dedup"
	"motionsafe/internal/evaluator"
	"motionsafe/internal/failsafe"
	"motionsafe/internal/models"
	"motionsafe/internal/phase"

	"go.uber.org/zap"
)

// FrameSource hands frames to the session. Next blocks until a frame
// is available or the context is cancelled; ok=false means no more
// frames will arrive. Dropped reports frames discarded by the source's
// backpressure policy.
type FrameSource interface {
	Next(ctx context.Context) (models.FrameInput, bool)
	Dropped() uint64
}

// SignalSink receives every per-frame signal, suppressed ones included
// (those carry is_new=false).
type SignalSink func(signal *models.SafetySignal)

// Session is the per-session decision core: a single-threaded,
// synchronous per-frame transform. All mutable state (phase detector,
// cooldown table, fail-safe machine, counters) is owned exclusively by
// this struct and touched only from ProcessFrame. Identical frame
// sequences into a fresh session produce identical signal sequences.
type Session struct {
	id     string
	logger *zap.Logger

	evaluator *evaluator.Evaluator
	detector  *phase.Detector
	cooldown  *dedup.Cooldown
	failsafe  *failsafe.Machine
	builder   *evaluator.SignalBuilder

	minConfidence float64

	totalFrames int64
	safeCount   int64
	warnCount   int64
	dangerCount int64
	firstTS     float64
	lastTS      float64
	sawFrame    bool
}

func NewSession(
	id string,
	eval *evaluator.Evaluator,
	detector *phase.Detector,
	cooldown *dedup.Cooldown,
	machine *failsafe.Machine,
	minConfidence float64,
	logger *zap.Logger,
) *Session {
	return &Session{
		id:            id,
		logger:        logger,
		evaluator:     eval,
		detector:      detector,
		cooldown:      cooldown,
		failsafe:      machine,
		builder:       evaluator.NewSignalBuilder(id),
		minConfidence: minConfidence,
	}
}

func (s *Session) ID() string {
	return s.id
}

// ProcessFrame runs one frame through the full pipeline and returns the
// signal for it. Joints are classified against the phase current at the
// start of the frame; the emitted signal reports the phase after this
// frame's update. The fail-safe machine observes severity before the
// signal code is derived so the code reflects the floored flag.
func (s *Session) ProcessFrame(input models.FrameInput) *models.SafetySignal {
	s.totalFrames++
	if !s.sawFrame {
		s.firstTS = input.Timestamp
		s.sawFrame = true
	}
	s.lastTS = input.Timestamp

	confidence := evaluator.FuseConfidence(input.Confidence)
	if confidence < s.minConfidence {
		s.logger.Debug("frame confidence below configured minimum",
			zap.Int64("frame", input.Frame),
			zap.Float64("confidence", confidence),
		)
	}

	assessments := s.evaluator.Assess(input.Joints, s.detector.Current())
	frame := evaluator.Aggregate(assessments)

	s.failsafe.Observe(frame.Severity)
	flag := s.failsafe.FloorFlag(models.FlagForSeverity(frame.Severity))

	reportedPhase := s.detector.Observe(input.Joints)
	correction := evaluator.BuildCorrection(frame)

	code := dedup.SignalCode(flag, frame.PrimaryViolation(), confidence, reportedPhase)
	isNew := s.cooldown.Decide(code, frame.Severity, input.Timestamp)

	switch flag {
	case models.FlagDanger:
		s.dangerCount++
	case models.FlagWarning:
		s.warnCount++
	default:
		s.safeCount++
	}

	signal := s.builder.BuildSignal(input, flag, frame, reportedPhase, confidence, correction, isNew, code)

	if signal.Severity >= 3 {
		s.logger.Warn("danger signal",
			zap.Int64("frame", signal.Frame),
			zap.String("primary_violation", signal.PrimaryViolation),
			zap.String("signal_code", signal.SignalCode),
		)
	}
	return signal
}

// Run drains the source until cancellation or source exhaustion,
// feeding every signal to the sink. Cancellation is observed only
// between frames; an admitted frame is always fully processed and its
// signal delivered.
func (s *Session) Run(ctx context.Context, source FrameSource, emit SignalSink) {
	for {
		input, ok := source.Next(ctx)
		if !ok {
			s.logger.Info("session stopping",
				zap.String("session_id", s.id),
				zap.Int64("total_frames", s.totalFrames),
				zap.Uint64("dropped_frames", source.Dropped()),
			)
			return
		}
		emit(s.ProcessFrame(input))
	}
}

// Summary snapshots the session aggregate. Called once after Run
// returns; dropped is the source's final drop count.
func (s *Session) Summary(dropped uint64) models.SessionSummary {
	return models.SessionSummary{
		SessionID:       s.id,
		TotalFrames:     s.totalFrames,
		SafeSignals:     s.safeCount,
		WarningSignals:  s.warnCount,
		DangerSignals:   s.dangerCount,
		SuppressedCount: s.cooldown.Suppressed(),
		PhaseChanges:    s.detector.PhaseChanges(),
		DroppedFrames:   dropped,
		DurationSeconds: s.lastTS - s.firstTS,
	}
}

// Builder exposes the signal-to-event conversion for persistence sinks.
func (s *Session) Builder() *evaluator.SignalBuilder {
	return s.builder
}
