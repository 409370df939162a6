package models

import (
	"encoding/json"
	"time"
)

// SignalEvent is the persisted form of an emitted SafetySignal
// (signal_events table). Persistence is a sink only: core state is
// never rehydrated from it.
type SignalEvent struct {
	EventID          string          `json:"event_id" db:"event_id"`
	SessionID        string          `json:"session_id" db:"session_id"`
	Frame            int64           `json:"frame" db:"frame"`
	FrameTimestamp   float64         `json:"frame_timestamp" db:"frame_timestamp"`
	SafetyFlag       string          `json:"safety_flag" db:"safety_flag"`
	Severity         int             `json:"severity" db:"severity"`
	Phase            string          `json:"phase" db:"phase"`
	Confidence       float64         `json:"confidence" db:"confidence"`
	SignalCode       string          `json:"signal_code" db:"signal_code"`
	IsNew            bool            `json:"is_new" db:"is_new"`
	PrimaryViolation *string         `json:"primary_violation,omitempty" db:"primary_violation"`
	Correction       json.RawMessage `json:"correction" db:"correction"` // JSONB
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}
