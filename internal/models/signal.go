package models

// Phase is the stage of an exercise repetition. Exactly one phase is
// current at any time; transitions cycle rest → initiation → active →
// transition → completion → rest and never skip a stage.
type Phase string

const (
	PhaseRest       Phase = "rest"
	PhaseInitiation Phase = "initiation"
	PhaseActive     Phase = "active"
	PhaseTransition Phase = "transition"
	PhaseCompletion Phase = "completion"
)

// Zone is the per-joint classification of an angle against its
// phase-dependent threshold triple.
type Zone int

const (
	ZoneSafe Zone = iota
	ZoneCaution
	ZoneStop
)

func (z Zone) String() string {
	switch z {
	case ZoneCaution:
		return "CAUTION"
	case ZoneStop:
		return "STOP"
	default:
		return "SAFE"
	}
}

// SafetyFlag is the frame-level safety status derived from severity.
type SafetyFlag string

const (
	FlagSafe    SafetyFlag = "safe"
	FlagWarning SafetyFlag = "warning"
	FlagDanger  SafetyFlag = "danger"
)

// FlagForSeverity maps an aggregate severity (0-3) to its safety flag.
func FlagForSeverity(severity int) SafetyFlag {
	switch {
	case severity >= 3:
		return FlagDanger
	case severity >= 1:
		return FlagWarning
	default:
		return FlagSafe
	}
}

// Correction is the guidance attached to a signal when at least one
// violation is active. TargetAngle is the caution limit of the primary
// violation for the current phase.
type Correction struct {
	Joint       string  `json:"joint"`
	Movement    string  `json:"movement"`
	Direction   string  `json:"direction"` // "lower" or "raise"
	TargetAngle float64 `json:"target_angle"`
	Instruction string  `json:"instruction"`
}

// SafetySignal is the per-frame output contract. Created fresh every
// frame and never mutated after emission.
type SafetySignal struct {
	Frame            int64       `json:"frame"`
	Timestamp        float64     `json:"timestamp"`
	SafetyFlag       SafetyFlag  `json:"safety_flag"`
	Severity         int         `json:"severity"` // 0-3
	Phase            Phase       `json:"phase"`
	Confidence       float64     `json:"confidence"`
	ActiveViolations int         `json:"active_violations"`
	PrimaryViolation string      `json:"primary_violation,omitempty"` // "joint movement"
	Correction       *Correction `json:"correction,omitempty"`
	IsNew            bool        `json:"is_new"`
	SignalCode       string      `json:"signal_code"`
}

// SessionSummary is the aggregate flushed once when a session stops.
type SessionSummary struct {
	SessionID       string  `json:"session_id"`
	TotalFrames     int64   `json:"total_frames"`
	SafeSignals     int64   `json:"safe"`
	WarningSignals  int64   `json:"warning"`
	DangerSignals   int64   `json:"danger"`
	SuppressedCount int64   `json:"suppressed"`
	PhaseChanges    int64   `json:"phase_changes"`
	DroppedFrames   uint64  `json:"dropped_frames"`
	DurationSeconds float64 `json:"duration_seconds"`
}
