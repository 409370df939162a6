package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"motionsafe/internal/config"
	"motionsafe/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisPublisher pushes signals and session summaries onto Redis
// streams for downstream consumers (dashboards, VR bridges).
type RedisPublisher struct {
	client        *redis.Client
	signalStream  string
	summaryStream string
	logger        *zap.Logger
}

func NewRedisPublisher(cfg *config.RedisConfig, signalStream, summaryStream string, logger *zap.Logger) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisPublisher{
		client:        client,
		signalStream:  signalStream,
		summaryStream: summaryStream,
		logger:        logger,
	}, nil
}

// PublishSignal appends one signal to the signal stream. The full
// signal travels as a JSON document under "data"; flag, severity and
// session fields are duplicated as top-level entries so consumers can
// filter without parsing.
func (p *RedisPublisher) PublishSignal(ctx context.Context, sessionID string, signal *models.SafetySignal) error {
	data, err := json.Marshal(signal)
	if err != nil {
		return fmt.Errorf("failed to marshal signal: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.signalStream,
		Values: map[string]interface{}{
			"session_id":  sessionID,
			"frame":       signal.Frame,
			"safety_flag": string(signal.SafetyFlag),
			"severity":    signal.Severity,
			"is_new":      signal.IsNew,
			"data":        string(data),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish signal to stream %s: %w", p.signalStream, err)
	}
	return nil
}

// PublishFeedback appends an adapter-shaped payload to a feedback
// stream for engine consumers.
func (p *RedisPublisher) PublishFeedback(ctx context.Context, stream, sessionID string, payload []byte) error {
	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"session_id": sessionID,
			"payload":    string(payload),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish feedback to stream %s: %w", stream, err)
	}
	return nil
}

// PublishSummary appends the final session summary.
func (p *RedisPublisher) PublishSummary(ctx context.Context, summary models.SessionSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.summaryStream,
		Values: map[string]interface{}{
			"session_id": summary.SessionID,
			"data":       string(data),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish summary to stream %s: %w", p.summaryStream, err)
	}
	return nil
}

// Close releases the Redis connection.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
