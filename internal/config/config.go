package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the ambient settings shared by both commands, populated from
// environment variables.
type Config struct {
	LogLevel  string
	LogFormat string

	// HTTPTimeout bounds each receiver request. Zero leaves the transport default.
	HTTPTimeout time.Duration
	ChunkSize   int

	// MetricsTextfile, when set, receives the run's metrics in Prometheus
	// text format at exit.
	MetricsTextfile string

	// Kafka file-event sink.
	KafkaBrokers  []string
	KafkaTopic    string
	EventsEnabled bool
}

const maxChunkSize = 16 << 20

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	timeout, err := time.ParseDuration(envOrDefault("HTTP_TIMEOUT", "0s"))
	if err != nil || timeout < 0 {
		return nil, errors.New("invalid HTTP_TIMEOUT")
	}

	chunkSize, err := strconv.Atoi(envOrDefault("DOWNLOAD_CHUNK_SIZE", "10240"))
	if err != nil || chunkSize <= 0 || chunkSize > maxChunkSize {
		return nil, fmt.Errorf("invalid DOWNLOAD_CHUNK_SIZE: must be between 1 and %d", maxChunkSize)
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	eventsEnabled := len(brokers) > 0
	if v := os.Getenv("EVENTS_ENABLED"); v != "" {
		eventsEnabled = v == "true"
	}

	cfg := &Config{
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "text"),
		HTTPTimeout:     timeout,
		ChunkSize:       chunkSize,
		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),
		KafkaBrokers:    brokers,
		KafkaTopic:      envOrDefault("KAFKA_TOPIC", "gnss-file-events"),
		EventsEnabled:   eventsEnabled,
	}

	if cfg.EventsEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("EVENTS_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.EventsEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
