package models

// JointSample is one joint angle measurement inside a frame.
// Produced by the external pose provider; immutable once created.
type JointSample struct {
	Joint      string  `json:"joint"`      // e.g. "shoulder_left"
	Movement   string  `json:"movement"`   // e.g. "flexion"
	Angle      float64 `json:"angle"`      // degrees
	Visibility float64 `json:"visibility"` // per-landmark visibility, 0..1
}

// ConfidenceComponents carries the raw uncertainty signals reported by
// the pose provider for one frame. Visibility holds per-landmark scores;
// an empty map means no landmarks were detected (visibility term 0).
type ConfidenceComponents struct {
	PoseDetection float64            `json:"pose_detection"`
	PosePresence  float64            `json:"pose_presence"`
	Visibility    map[string]float64 `json:"visibility,omitempty"`
}

// FrameInput is the per-frame input contract from the pose provider.
// Missing joints are simply absent from Joints, never nil entries.
type FrameInput struct {
	Frame      int64                `json:"frame"`
	Timestamp  float64              `json:"timestamp"` // seconds of session time
	Joints     []JointSample        `json:"joints"`
	Confidence ConfidenceComponents `json:"confidence"`
}
