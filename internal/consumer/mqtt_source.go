package consumer

import (
	"encoding/json"
	"fmt"

	"motionsafe/internal/config"
	"motionsafe/internal/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// MQTTSource subscribes to the frame topic and feeds decoded frames
// into the intake. The pose provider publishes one FrameInput JSON
// document per frame.
type MQTTSource struct {
	client mqtt.Client
	cfg    *config.MQTTConfig
	intake *Intake
	logger *zap.Logger
}

// NewMQTTSource connects to the broker. Subscription happens in Start
// so the caller can connect early and begin consuming later.
func NewMQTTSource(cfg *config.MQTTConfig, intake *Intake, logger *zap.Logger) (*MQTTSource, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &MQTTSource{
		client: client,
		cfg:    cfg,
		intake: intake,
		logger: logger,
	}, nil
}

// Start subscribes to the frame topic. Malformed payloads are logged
// and skipped; they never reach the core.
func (s *MQTTSource) Start() error {
	token := s.client.Subscribe(s.cfg.FrameTopic, s.cfg.QOS, func(_ mqtt.Client, msg mqtt.Message) {
		var frame models.FrameInput
		if err := json.Unmarshal(msg.Payload(), &frame); err != nil {
			s.logger.Warn("discarding malformed frame payload",
				zap.String("topic", msg.Topic()),
				zap.Error(err),
			)
			return
		}
		s.intake.Offer(frame)
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", s.cfg.FrameTopic, token.Error())
	}

	s.logger.Info("subscribed to frame topic", zap.String("topic", s.cfg.FrameTopic))
	return nil
}

// Stop unsubscribes, disconnects and closes the intake so the core's
// Next returns false.
func (s *MQTTSource) Stop() {
	if token := s.client.Unsubscribe(s.cfg.FrameTopic); token.Wait() && token.Error() != nil {
		s.logger.Warn("failed to unsubscribe", zap.Error(token.Error()))
	}
	s.client.Disconnect(250)
	s.intake.Close()
}
