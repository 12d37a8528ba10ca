package analysis

import (
	"os"
	"strconv"
	"time"
)

// serviceConfig holds the tunables read from the environment at startup.
type serviceConfig struct {
	Capacity           int
	QueueBound         int
	ErrorWindow        int
	ErrorRateThreshold float64
	DegradedCooldown   time.Duration

	QueueWaitTimeout time.Duration
	DispatchTimeout  time.Duration
	StatusTTL        time.Duration

	CacheEntryBudget int
	RetryMaxAttempts int
	RetryBaseBackoff time.Duration

	GraphURI         string
	GraphUser        string
	SandboxURL       string
	TemporalHostPort string
}

func loadConfig() serviceConfig {
	return serviceConfig{
		Capacity:           getenvInt("ANALYSIS_CAPACITY", 8),
		QueueBound:         getenvInt("ANALYSIS_QUEUE_BOUND", 64),
		ErrorWindow:        getenvInt("ANALYSIS_ERROR_WINDOW", 32),
		ErrorRateThreshold: getenvFloat("ANALYSIS_ERROR_RATE_THRESHOLD", 0.5),
		DegradedCooldown:   getenvDuration("ANALYSIS_DEGRADED_COOLDOWN", 30*time.Second),

		QueueWaitTimeout: getenvDuration("ANALYSIS_QUEUE_WAIT_TIMEOUT", 30*time.Second),
		DispatchTimeout:  getenvDuration("ANALYSIS_DISPATCH_TIMEOUT", 2*time.Minute),
		StatusTTL:        getenvDuration("ANALYSIS_STATUS_TTL", 15*time.Minute),

		CacheEntryBudget: getenvInt("ANALYSIS_CACHE_ENTRY_BUDGET", 256),
		RetryMaxAttempts: getenvInt("ANALYSIS_RETRY_MAX_ATTEMPTS", 3),
		RetryBaseBackoff: getenvDuration("ANALYSIS_RETRY_BASE_BACKOFF", 100*time.Millisecond),

		GraphURI:         getenvStr("ANALYSIS_GRAPH_URI", "bolt://localhost:7687"),
		GraphUser:        getenvStr("ANALYSIS_GRAPH_USER", "neo4j"),
		SandboxURL:       getenvStr("ANALYSIS_SANDBOX_URL", "http://localhost:8194"),
		TemporalHostPort: os.Getenv("ANALYSIS_TEMPORAL_HOSTPORT"),
	}
}

func getenvStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func getenvFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return v
}
