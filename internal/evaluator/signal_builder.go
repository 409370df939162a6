package evaluator

import (
	"encoding/json"
	"fmt"
	"time"

	"motionsafe/internal/models"

	"github.com/google/uuid"
)

// SignalBuilder assembles the per-frame output signal and its
// persisted event form.
type SignalBuilder struct {
	sessionID string
}

func NewSignalBuilder(sessionID string) *SignalBuilder {
	return &SignalBuilder{sessionID: sessionID}
}

// BuildSignal composes the per-frame signal. The flag passed in has
// already been floored by the fail-safe machine; the phase is the one
// current after this frame's update.
func (b *SignalBuilder) BuildSignal(
	input models.FrameInput,
	flag models.SafetyFlag,
	frame FrameAssessment,
	phase models.Phase,
	confidence float64,
	correction *models.Correction,
	isNew bool,
	signalCode string,
) *models.SafetySignal {
	return &models.SafetySignal{
		Frame:            input.Frame,
		Timestamp:        input.Timestamp,
		SafetyFlag:       flag,
		Severity:         frame.Severity,
		Phase:            phase,
		Confidence:       confidence,
		ActiveViolations: frame.ActiveViolations,
		PrimaryViolation: frame.PrimaryViolation(),
		Correction:       correction,
		IsNew:            isNew,
		SignalCode:       signalCode,
	}
}

// BuildEvent converts an emitted signal to its persisted form.
func (b *SignalBuilder) BuildEvent(signal *models.SafetySignal) (*models.SignalEvent, error) {
	var correctionJSON json.RawMessage
	if signal.Correction != nil {
		data, err := json.Marshal(signal.Correction)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal correction: %w", err)
		}
		correctionJSON = data
	}

	var primary *string
	if signal.PrimaryViolation != "" {
		p := signal.PrimaryViolation
		primary = &p
	}

	return &models.SignalEvent{
		EventID:          uuid.New().String(),
		SessionID:        b.sessionID,
		Frame:            signal.Frame,
		FrameTimestamp:   signal.Timestamp,
		SafetyFlag:       string(signal.SafetyFlag),
		Severity:         signal.Severity,
		Phase:            string(signal.Phase),
		Confidence:       signal.Confidence,
		SignalCode:       signal.SignalCode,
		IsNew:            signal.IsNew,
		PrimaryViolation: primary,
		Correction:       correctionJSON,
		CreatedAt:        time.Now(),
	}, nil
}
