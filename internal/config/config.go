package config

import (
	"fmt"
	"os"
	"strconv"
)

// DatabaseConfig is the Postgres connection configuration.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN renders the lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig is the Redis connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MQTTConfig is the broker connection and frame topic configuration.
type MQTTConfig struct {
	Broker     string
	ClientID   string
	Username   string
	Password   string
	FrameTopic string
	QOS        byte
}

// PhaseConfig tunes the phase detector heuristics.
type PhaseConfig struct {
	Window          int
	DebounceFrames  int
	StartVelocity   float64
	SettleVelocity  float64
	ActiveAmplitude float64
	RestAmplitude   float64
}

// SafetyConfig tunes the decision core.
type SafetyConfig struct {
	// ThresholdsPath points at an external threshold table; empty means
	// the built-in defaults.
	ThresholdsPath string
	// CalibrationPath points at a per-patient calibration profile;
	// empty means no overrides.
	CalibrationPath string

	MinConfidence float64
	// CooldownWindow is seconds of session time.
	CooldownWindow float64
	// CooldownEvictMultiple times the window is the idle age after
	// which cooldown entries are evicted.
	CooldownEvictMultiple float64
	HysteresisFrames      int

	Phase PhaseConfig
}

// SignalsConfig selects the output sinks and adapter style.
type SignalsConfig struct {
	RedisEnabled    bool
	SignalStream    string
	SummaryStream   string
	FeedbackStream  string
	DatabaseEnabled bool
	// Adapter selects the downstream payload shape: "vr", "unreal" or
	// "minimal". Empty disables adaptation (raw signal JSON).
	Adapter string
}

// Config is the full service configuration, loaded from environment
// variables with working local defaults.
type Config struct {
	SessionID string

	Database DatabaseConfig
	Redis    RedisConfig
	MQTT     MQTTConfig
	Safety   SafetyConfig
	Signals  SignalsConfig

	Log struct {
		Level  string
		Format string
	}
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.SessionID = getEnv("SESSION_ID", "")

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "motionsafe")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "motionsafe")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.FrameTopic = getEnv("MQTT_FRAME_TOPIC", "motionsafe/frames")
	cfg.MQTT.QOS = byte(getEnvInt("MQTT_QOS", 1))

	cfg.Safety.ThresholdsPath = getEnv("SAFETY_THRESHOLDS_PATH", "")
	cfg.Safety.CalibrationPath = getEnv("SAFETY_CALIBRATION_PATH", "")
	cfg.Safety.MinConfidence = getEnvFloat("SAFETY_MIN_CONFIDENCE", 0.6)
	cfg.Safety.CooldownWindow = getEnvFloat("SAFETY_COOLDOWN_WINDOW", 1.0)
	cfg.Safety.CooldownEvictMultiple = getEnvFloat("SAFETY_COOLDOWN_EVICT_MULTIPLE", 60.0)
	cfg.Safety.HysteresisFrames = getEnvInt("SAFETY_HYSTERESIS_FRAMES", 3)

	cfg.Safety.Phase.Window = getEnvInt("PHASE_WINDOW", 5)
	cfg.Safety.Phase.DebounceFrames = getEnvInt("PHASE_DEBOUNCE_FRAMES", 3)
	cfg.Safety.Phase.StartVelocity = getEnvFloat("PHASE_START_VELOCITY", 3.0)
	cfg.Safety.Phase.SettleVelocity = getEnvFloat("PHASE_SETTLE_VELOCITY", 1.0)
	cfg.Safety.Phase.ActiveAmplitude = getEnvFloat("PHASE_ACTIVE_AMPLITUDE", 45.0)
	cfg.Safety.Phase.RestAmplitude = getEnvFloat("PHASE_REST_AMPLITUDE", 20.0)

	cfg.Signals.RedisEnabled = getEnvBool("SIGNALS_REDIS_ENABLED", true)
	cfg.Signals.SignalStream = getEnv("SIGNALS_STREAM", "motionsafe:signals")
	cfg.Signals.SummaryStream = getEnv("SIGNALS_SUMMARY_STREAM", "motionsafe:summaries")
	cfg.Signals.FeedbackStream = getEnv("SIGNALS_FEEDBACK_STREAM", "motionsafe:feedback")
	cfg.Signals.DatabaseEnabled = getEnvBool("SIGNALS_DATABASE_ENABLED", false)
	cfg.Signals.Adapter = getEnv("SIGNALS_ADAPTER", "")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Safety.MinConfidence < 0 || c.Safety.MinConfidence > 1 {
		return fmt.Errorf("SAFETY_MIN_CONFIDENCE must be in [0,1], got %f", c.Safety.MinConfidence)
	}
	if c.Safety.CooldownWindow <= 0 {
		return fmt.Errorf("SAFETY_COOLDOWN_WINDOW must be positive, got %f", c.Safety.CooldownWindow)
	}
	if c.Safety.HysteresisFrames < 1 {
		return fmt.Errorf("SAFETY_HYSTERESIS_FRAMES must be at least 1, got %d", c.Safety.HysteresisFrames)
	}
	switch c.Signals.Adapter {
	case "", "vr", "unreal", "minimal":
	default:
		return fmt.Errorf("SIGNALS_ADAPTER must be one of vr, unreal, minimal or empty, got %q", c.Signals.Adapter)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
