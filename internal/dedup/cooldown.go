package dedup

import (
	"fmt"

	"motionsafe/internal/models"

	"go.uber.org/zap"
)

// SignalCode derives the deduplication key for a frame's signal.
// Semantically identical situations (same flag, same primary violation,
// same coarse confidence bucket, same phase) collapse to one code.
func SignalCode(flag models.SafetyFlag, primaryViolation string, confidence float64, phase models.Phase) string {
	subject := "clean"
	if primaryViolation != "" {
		subject = primaryViolation
	}
	return fmt.Sprintf("%s_%s_%s_%s", flag, subject, confidenceBucket(confidence), phase)
}

func confidenceBucket(confidence float64) string {
	switch {
	case confidence >= 0.8:
		return "high_conf"
	case confidence >= 0.6:
		return "med_conf"
	default:
		return "low_conf"
	}
}

type entry struct {
	lastEmitted float64 // session timestamp of last non-suppressed emission
	severity    int     // severity recorded at that emission
}

// Cooldown suppresses exact repeats of a signal code inside the
// configured window. Severity changes in either direction always pass:
// escalations must reach the operator immediately and de-escalations
// tell the operator the danger has passed. Severity-3 frames bypass the
// table entirely (fail-safe signals are never suppressed).
//
// The table is bounded: entries idle for evictAfter seconds are dropped
// during Decide. Eviction affects memory only, never correctness.
type Cooldown struct {
	window     float64 // seconds of session time
	evictAfter float64
	logger     *zap.Logger

	entries    map[string]*entry
	suppressed int64
}

// NewCooldown creates a cooldown table. window and evictAfter are in
// seconds of session time; evictAfter is clamped to at least the window.
func NewCooldown(window, evictAfter float64, logger *zap.Logger) *Cooldown {
	if evictAfter < window {
		evictAfter = window
	}
	return &Cooldown{
		window:     window,
		evictAfter: evictAfter,
		logger:     logger,
		entries:    make(map[string]*entry),
	}
}

// Decide reports whether this frame's signal is new (emitted) or a
// suppressed repeat, and refreshes the table on every emission.
func (c *Cooldown) Decide(code string, severity int, now float64) bool {
	c.evict(now)

	// fail-safe exemption: danger frames are never suppressed
	if severity >= 3 {
		c.record(code, severity, now)
		return true
	}

	e, ok := c.entries[code]
	if ok && now-e.lastEmitted < c.window && severity == e.severity {
		c.suppressed++
		return false
	}

	c.record(code, severity, now)
	return true
}

// Suppressed returns the number of suppressed signals so far.
func (c *Cooldown) Suppressed() int64 {
	return c.suppressed
}

func (c *Cooldown) record(code string, severity int, now float64) {
	if e, ok := c.entries[code]; ok {
		e.lastEmitted = now
		e.severity = severity
		return
	}
	c.entries[code] = &entry{lastEmitted: now, severity: severity}
}

func (c *Cooldown) evict(now float64) {
	for code, e := range c.entries {
		if now-e.lastEmitted > c.evictAfter {
			delete(c.entries, code)
		}
	}
}

// Len reports the current table size. Used by tests and diagnostics.
func (c *Cooldown) Len() int {
	return len(c.entries)
}
