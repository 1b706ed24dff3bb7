// Package config centralises configuration parsing for the activity signup service.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config captures runtime configuration values for the activity signup service.
type Config struct {
	HTTPAddress           string
	SeedFile              string // empty selects the embedded seed
	StaticDir             string // empty disables static file serving
	CORSAllowedOrigin     string
	LogLevel              string
	LogFormat             string
	LogFile               string
	KafkaBrokers          []string
	KafkaBatchTimeout     time.Duration
	KafkaWriteTimeout     time.Duration
	KafkaAutoCreateTopics bool
	EnrollmentTopic       string
	OutboxBufferSize      int
	OutboxBatchSize       int
	OutboxFlushInterval   time.Duration
	ShutdownTimeout       time.Duration
}

// KafkaEnabled reports whether enrollment events should be delivered to a broker.
func (c Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

// Load reads an optional .env file and the process environment into Config,
// applying defaults suited to local development.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDRESS", ":8080")
	v.SetDefault("ACTIVITIES_SEED_FILE", "")
	v.SetDefault("STATIC_DIR", "")
	v.SetDefault("CORS_ALLOWED_ORIGIN", "http://localhost:5173")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_BATCH_TIMEOUT", 10*time.Millisecond)
	v.SetDefault("KAFKA_WRITE_TIMEOUT", 10*time.Second)
	v.SetDefault("KAFKA_AUTO_CREATE_TOPICS", true)
	v.SetDefault("ENROLLMENT_TOPIC", "activity_enrollment_events")
	v.SetDefault("OUTBOX_BUFFER_SIZE", 256)
	v.SetDefault("OUTBOX_BATCH_SIZE", 25)
	v.SetDefault("OUTBOX_FLUSH_INTERVAL", 2*time.Second)
	v.SetDefault("SHUTDOWN_TIMEOUT", 15*time.Second)
	return v
}

// FromViper builds Config from v and validates it.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		HTTPAddress:           v.GetString("HTTP_ADDRESS"),
		SeedFile:              v.GetString("ACTIVITIES_SEED_FILE"),
		StaticDir:             v.GetString("STATIC_DIR"),
		CORSAllowedOrigin:     v.GetString("CORS_ALLOWED_ORIGIN"),
		LogLevel:              v.GetString("LOG_LEVEL"),
		LogFormat:             v.GetString("LOG_FORMAT"),
		LogFile:               v.GetString("LOG_FILE"),
		KafkaBrokers:          splitAndTrim(v.GetString("KAFKA_BROKERS")),
		KafkaBatchTimeout:     v.GetDuration("KAFKA_BATCH_TIMEOUT"),
		KafkaWriteTimeout:     v.GetDuration("KAFKA_WRITE_TIMEOUT"),
		KafkaAutoCreateTopics: v.GetBool("KAFKA_AUTO_CREATE_TOPICS"),
		EnrollmentTopic:       v.GetString("ENROLLMENT_TOPIC"),
		OutboxBufferSize:      v.GetInt("OUTBOX_BUFFER_SIZE"),
		OutboxBatchSize:       v.GetInt("OUTBOX_BATCH_SIZE"),
		OutboxFlushInterval:   v.GetDuration("OUTBOX_FLUSH_INTERVAL"),
		ShutdownTimeout:       v.GetDuration("SHUTDOWN_TIMEOUT"),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.HTTPAddress) == "" {
		return errors.New("config: HTTP_ADDRESS is required")
	}
	if c.KafkaEnabled() && strings.TrimSpace(c.EnrollmentTopic) == "" {
		return errors.New("config: ENROLLMENT_TOPIC is required when KAFKA_BROKERS is set")
	}
	if c.OutboxBufferSize <= 0 || c.OutboxBatchSize <= 0 {
		return errors.New("config: OUTBOX_BUFFER_SIZE and OUTBOX_BATCH_SIZE must be > 0")
	}
	if c.KafkaBatchTimeout < 0 || c.KafkaWriteTimeout < 0 {
		return errors.New("config: KAFKA_BATCH_TIMEOUT and KAFKA_WRITE_TIMEOUT must not be negative")
	}
	if c.OutboxFlushInterval <= 0 || c.ShutdownTimeout <= 0 {
		return errors.New("config: OUTBOX_FLUSH_INTERVAL and SHUTDOWN_TIMEOUT must be > 0")
	}
	return nil
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
