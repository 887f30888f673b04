package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	MetricsPort string
	PostgresDSN string

	EventsChannel       string
	EventQueueSize      int
	EventEnqueueTimeout time.Duration
	DispatchConcurrency int
	ListenMaxAttempts   int
	ListenMaxBackoff    time.Duration

	LockSweepInterval  time.Duration
	LockStaleness      time.Duration
	LockAcquireTimeout time.Duration

	EnableEventDispatcher bool
	EnableLockSweeper     bool
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "quorum"
	}

	return Config{
		ServiceName: service,
		HTTPPort:    envString("HTTP_PORT", "8080"),
		MetricsPort: envString("METRICS_PORT", "9090"),
		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		EventsChannel:       envString("EVENTS_CHANNEL", "domain_events"),
		EventQueueSize:      envInt("EVENT_QUEUE_SIZE", 1000),
		EventEnqueueTimeout: envSeconds("EVENT_ENQUEUE_TIMEOUT_SECONDS", 5),
		DispatchConcurrency: envInt("EVENT_DISPATCH_CONCURRENCY", 10),
		ListenMaxAttempts:   envInt("LISTEN_MAX_ATTEMPTS", 20),
		ListenMaxBackoff:    envSeconds("LISTEN_MAX_BACKOFF_SECONDS", 60),

		LockSweepInterval:  envSeconds("LOCK_SWEEP_INTERVAL_SECONDS", 300),
		LockStaleness:      envSeconds("LOCK_STALENESS_SECONDS", 300),
		LockAcquireTimeout: envSeconds("LOCK_ACQUIRE_TIMEOUT_SECONDS", 30),

		EnableEventDispatcher: envBool("ENABLE_EVENT_DISPATCHER", true),
		EnableLockSweeper:     envBool("ENABLE_LOCK_SWEEPER", true),
	}, nil
}

func envString(name string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func envSeconds(name string, fallbackSeconds int) time.Duration {
	return time.Duration(envInt(name, fallbackSeconds)) * time.Second
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
