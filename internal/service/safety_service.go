package service

import (
	"context"
	"database/sql"
	"fmt"

	"motionsafe/internal/adapter"
	"motionsafe/internal/config"
	"motionsafe/internal/constraints"
	"motionsafe/internal/consumer"
	"motionsafe/internal/dedup"
	"motionsafe/internal/evaluator"
	"motionsafe/internal/failsafe"
	"motionsafe/internal/models"
	"motionsafe/internal/phase"
	"motionsafe/internal/publisher"
	"motionsafe/internal/repository"
	"motionsafe/internal/session"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// SafetyService wires the frame source, the decision core and the
// output sinks for one exercise session.
type SafetyService struct {
	config  *config.Config
	logger  *zap.Logger
	adapter adapter.Adapter

	db         *sql.DB
	signalRepo *repository.SignalEventsRepository
	publisher  *publisher.RedisPublisher

	intake  *consumer.Intake
	source  *consumer.MQTTSource
	session *session.Session
}

// NewSafetyService builds the full pipeline from configuration. Sinks
// are optional; the decision core always runs.
func NewSafetyService(cfg *config.Config, logger *zap.Logger) (*SafetyService, error) {
	table, minConfidence, err := loadTable(cfg, logger)
	if err != nil {
		return nil, err
	}

	sessionID := cfg.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	out, err := adapter.New(cfg.Signals.Adapter)
	if err != nil {
		return nil, err
	}

	s := &SafetyService{
		config:  cfg,
		logger:  logger,
		adapter: out,
	}

	if cfg.Signals.DatabaseEnabled {
		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.Ping(); err != nil {
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		s.db = db
		s.signalRepo = repository.NewSignalEventsRepository(db, logger)
	}

	if cfg.Signals.RedisEnabled {
		pub, err := publisher.NewRedisPublisher(&cfg.Redis, cfg.Signals.SignalStream, cfg.Signals.SummaryStream, logger)
		if err != nil {
			return nil, err
		}
		s.publisher = pub
	}

	s.intake = consumer.NewIntake(logger)
	source, err := consumer.NewMQTTSource(&cfg.MQTT, s.intake, logger)
	if err != nil {
		return nil, err
	}
	s.source = source

	phaseCfg := phase.Config{
		Window:          cfg.Safety.Phase.Window,
		DebounceFrames:  cfg.Safety.Phase.DebounceFrames,
		StartVelocity:   cfg.Safety.Phase.StartVelocity,
		SettleVelocity:  cfg.Safety.Phase.SettleVelocity,
		ActiveAmplitude: cfg.Safety.Phase.ActiveAmplitude,
		RestAmplitude:   cfg.Safety.Phase.RestAmplitude,
	}

	s.session = session.NewSession(
		sessionID,
		evaluator.NewEvaluator(table, logger),
		phase.NewDetector(phaseCfg, logger),
		dedup.NewCooldown(cfg.Safety.CooldownWindow, cfg.Safety.CooldownWindow*cfg.Safety.CooldownEvictMultiple, logger),
		failsafe.NewMachine(cfg.Safety.HysteresisFrames, logger),
		minConfidence,
		logger,
	)

	return s, nil
}

// loadTable resolves the active threshold table (built-in defaults or
// an external file, plus calibration overrides) and the effective
// minimum confidence, which a calibration profile may override.
func loadTable(cfg *config.Config, logger *zap.Logger) (*constraints.Table, float64, error) {
	minConfidence := cfg.Safety.MinConfidence

	var table *constraints.Table
	if cfg.Safety.ThresholdsPath != "" {
		t, err := constraints.LoadTable(cfg.Safety.ThresholdsPath)
		if err != nil {
			return nil, 0, err
		}
		logger.Info("loaded threshold table",
			zap.String("path", cfg.Safety.ThresholdsPath),
			zap.Int("entries", t.Len()),
		)
		table = t
	} else {
		table = constraints.DefaultTable()
	}

	if cfg.Safety.CalibrationPath != "" {
		profile, err := constraints.LoadProfile(cfg.Safety.CalibrationPath)
		if err != nil {
			return nil, 0, err
		}
		if err := profile.Apply(table); err != nil {
			return nil, 0, err
		}
		if profile.ConfidenceThreshold > 0 {
			minConfidence = profile.ConfidenceThreshold
		}
		logger.Info("applied calibration profile",
			zap.String("profile_id", profile.ProfileID),
			zap.String("patient_id", profile.PatientID),
		)
	}
	return table, minConfidence, nil
}

// Start subscribes to the frame topic and runs the session until the
// context is cancelled or the source closes, then flushes the summary.
func (s *SafetyService) Start(ctx context.Context) error {
	s.logger.Info("starting safety service",
		zap.String("session_id", s.session.ID()),
		zap.String("frame_topic", s.config.MQTT.FrameTopic),
		zap.String("adapter", s.adapter.Name()),
	)

	if err := s.source.Start(); err != nil {
		return err
	}

	s.session.Run(ctx, s.intake, func(signal *models.SafetySignal) {
		s.emit(ctx, signal)
	})

	return s.flushSummary()
}

// emit fans one signal out to the configured sinks. Sink failures are
// logged and never stall the pipeline.
func (s *SafetyService) emit(ctx context.Context, signal *models.SafetySignal) {
	if s.publisher != nil {
		if err := s.publisher.PublishSignal(ctx, s.session.ID(), signal); err != nil {
			s.logger.Error("failed to publish signal", zap.Error(err))
		}

		payload, err := s.adapter.Adapt(signal)
		if err != nil {
			s.logger.Error("failed to adapt signal", zap.Error(err))
		} else if err := s.publisher.PublishFeedback(ctx, s.config.Signals.FeedbackStream, s.session.ID(), payload); err != nil {
			s.logger.Error("failed to publish feedback payload", zap.Error(err))
		}
	}

	if s.signalRepo != nil {
		event, err := s.session.Builder().BuildEvent(signal)
		if err != nil {
			s.logger.Error("failed to build signal event", zap.Error(err))
			return
		}
		if err := s.signalRepo.CreateSignalEvent(ctx, event); err != nil {
			s.logger.Error("failed to persist signal event", zap.Error(err))
		}
	}
}

func (s *SafetyService) flushSummary() error {
	summary := s.session.Summary(s.intake.Dropped())
	s.logger.Info("session summary",
		zap.String("session_id", summary.SessionID),
		zap.Int64("total_frames", summary.TotalFrames),
		zap.Int64("safe", summary.SafeSignals),
		zap.Int64("warning", summary.WarningSignals),
		zap.Int64("danger", summary.DangerSignals),
		zap.Int64("suppressed", summary.SuppressedCount),
		zap.Int64("phase_changes", summary.PhaseChanges),
		zap.Uint64("dropped_frames", summary.DroppedFrames),
		zap.Float64("duration_seconds", summary.DurationSeconds),
	)

	if s.publisher != nil {
		// the summary must go out even though the run context is done
		if err := s.publisher.PublishSummary(context.Background(), summary); err != nil {
			return fmt.Errorf("failed to flush session summary: %w", err)
		}
	}
	return nil
}

// Stop releases all connections.
func (s *SafetyService) Stop() {
	if s.source != nil {
		s.source.Stop()
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			s.logger.Warn("failed to close redis publisher", zap.Error(err))
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Warn("failed to close database", zap.Error(err))
		}
	}
	s.logger.Info("safety service stopped")
}
