package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"motionsafe/internal/models"

	"go.uber.org/zap"
)

// SignalEventsRepository persists emitted signals (signal_events
// table). This is a write-mostly sink; the decision core never reads
// its own state back from here.
type SignalEventsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSignalEventsRepository(db *sql.DB, logger *zap.Logger) *SignalEventsRepository {
	return &SignalEventsRepository{
		db:     db,
		logger: logger,
	}
}

// CreateSignalEvent inserts one emitted signal.
func (r *SignalEventsRepository) CreateSignalEvent(ctx context.Context, event *models.SignalEvent) error {
	if event == nil {
		return fmt.Errorf("event is required")
	}
	if event.SessionID == "" {
		return fmt.Errorf("session_id is required")
	}

	query := `
		INSERT INTO signal_events (
			event_id,
			session_id,
			frame,
			frame_timestamp,
			safety_flag,
			severity,
			phase,
			confidence,
			signal_code,
			is_new,
			primary_violation,
			correction,
			created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
	`

	_, err := r.db.ExecContext(ctx,
		query,
		event.EventID,
		event.SessionID,
		event.Frame,
		event.FrameTimestamp,
		event.SafetyFlag,
		event.Severity,
		event.Phase,
		event.Confidence,
		event.SignalCode,
		event.IsNew,
		event.PrimaryViolation,
		event.Correction,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create signal event: %w", err)
	}
	return nil
}

// GetRecentDangerEvent returns the latest severity-3 event for a
// session within the lookback window, or nil when none exists.
func (r *SignalEventsRepository) GetRecentDangerEvent(ctx context.Context, sessionID string, within time.Duration) (*models.SignalEvent, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}

	threshold := time.Now().Add(-within)

	query := `
		SELECT
			event_id,
			session_id,
			frame,
			frame_timestamp,
			safety_flag,
			severity,
			phase,
			confidence,
			signal_code,
			is_new,
			primary_violation,
			correction,
			created_at
		FROM signal_events
		WHERE session_id = $1
		  AND severity >= 3
		  AND created_at > $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	event, err := r.scanEvent(r.db.QueryRowContext(ctx, query, sessionID, threshold))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query recent danger event: %w", err)
	}
	return event, nil
}

// ListSessionEvents returns a session's events newest first, paginated.
func (r *SignalEventsRepository) ListSessionEvents(ctx context.Context, sessionID string, page, size int) ([]*models.SignalEvent, int, error) {
	if sessionID == "" {
		return []*models.SignalEvent{}, 0, nil
	}

	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM signal_events WHERE session_id = $1`,
		sessionID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count signal events: %w", err)
	}

	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 50
	}
	offset := (page - 1) * size

	query := `
		SELECT
			event_id,
			session_id,
			frame,
			frame_timestamp,
			safety_flag,
			severity,
			phase,
			confidence,
			signal_code,
			is_new,
			primary_violation,
			correction,
			created_at
		FROM signal_events
		WHERE session_id = $1
		ORDER BY frame DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID, size, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query signal events: %w", err)
	}
	defer rows.Close()

	events := []*models.SignalEvent{}
	for rows.Next() {
		event, err := r.scanEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan signal event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate signal events: %w", err)
	}

	return events, total, nil
}

// CountBySafetyFlag aggregates a session's event counts per flag.
func (r *SignalEventsRepository) CountBySafetyFlag(ctx context.Context, sessionID string) (map[string]int64, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}

	query := `
		SELECT safety_flag, COUNT(*)
		FROM signal_events
		WHERE session_id = $1
		GROUP BY safety_flag
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to count by safety flag: %w", err)
	}
	defer rows.Close()

	counts := map[string]int64{}
	for rows.Next() {
		var flag string
		var n int64
		if err := rows.Scan(&flag, &n); err != nil {
			return nil, fmt.Errorf("failed to scan flag count: %w", err)
		}
		counts[flag] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate flag counts: %w", err)
	}
	return counts, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func (r *SignalEventsRepository) scanEvent(row scanner) (*models.SignalEvent, error) {
	var event models.SignalEvent
	var primaryViolation sql.NullString
	var correction []byte

	err := row.Scan(
		&event.EventID,
		&event.SessionID,
		&event.Frame,
		&event.FrameTimestamp,
		&event.SafetyFlag,
		&event.Severity,
		&event.Phase,
		&event.Confidence,
		&event.SignalCode,
		&event.IsNew,
		&primaryViolation,
		&correction,
		&event.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if primaryViolation.Valid {
		event.PrimaryViolation = &primaryViolation.String
	}
	if len(correction) > 0 {
		event.Correction = correction
	}
	return &event, nil
}
