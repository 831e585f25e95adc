package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr string

	Registry RegistryConfig
	Redis    RedisConfig

	// PostgresDSN selects the postgres store when set; empty falls back to
	// the in-memory store (local development).
	PostgresDSN string

	// KafkaBrokers enables the outcome-event publisher when non-empty.
	KafkaBrokers []string
	KafkaTopic   string

	// FreshnessZone anchors same-calendar-day checks.
	FreshnessZone string
}

// RegistryConfig holds the upstream data source knobs.
type RegistryConfig struct {
	BaseURL           string
	CompaniesResource string
	LicensesResource  string
	Timeout           time.Duration
	MaxRetries        uint64
	RowCacheTTL       time.Duration
}

// RedisConfig holds connection settings for the optional shared row cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays
// lean. Defaults suit local development against the live datasets.
func FromEnv() Server {
	return Server{
		Addr: envOr("PANKAS_ADDR", ":8080"),
		Registry: RegistryConfig{
			BaseURL:           envOr("REGISTRY_BASE_URL", "https://data.gov.il/api/3/action/datastore_search"),
			CompaniesResource: envOr("REGISTRY_COMPANIES_RESOURCE", "f004176c-b85f-4542-8901-7b3176f9a054"),
			LicensesResource:  envOr("REGISTRY_LICENSES_RESOURCE", "4eb61bd6-18cf-4e7c-9f9c-e166dfa0a2d8"),
			Timeout:           durationOr("REGISTRY_TIMEOUT", 10*time.Second),
			MaxRetries:        uint64(intOr("REGISTRY_MAX_RETRIES", 2)),
			RowCacheTTL:       durationOr("REGISTRY_ROW_CACHE_TTL", 15*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     intOr("REDIS_POOL_SIZE", 10),
			MinIdleConns: intOr("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  durationOr("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationOr("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationOr("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		KafkaBrokers:  splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:    envOr("KAFKA_TOPIC", "contractor-events"),
		FreshnessZone: envOr("FRESHNESS_ZONE", "Asia/Jerusalem"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
