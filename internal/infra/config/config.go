package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorageMemory   = "memory"
	StorageMongo    = "mongo"
	StoragePostgres = "postgres"

	NotifyStore = "store"
	NotifyKafka = "kafka"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env      string
	HTTPAddr string
	LogLevel string

	StorageDriver string
	MongoURI      string
	MongoDB       string
	PostgresDSN   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	LockTTL       time.Duration
	LockWait      time.Duration

	KafkaBrokers     []string
	KafkaTopicPrefix string
	KafkaGroupID     string

	NotifyMode           string
	NotifyWebhookURL     string
	NotifyWebhookTimeout time.Duration

	OutboxPollInterval time.Duration
	RetryBackoff       []time.Duration
	IdempotencyTTL     time.Duration
	SessionTTL         time.Duration
	Currency           string
	CodeAttempts       int
	SweepInterval      time.Duration
	SweepOnStart       bool
	SeedFile           string
}

// Load parses configuration from the current environment.
func Load() (Config, error) {
	cfg := Config{
		Env:              getEnv("APP_ENV", "dev"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", "info")),
		StorageDriver:    strings.ToLower(getEnv("STORAGE_DRIVER", StorageMemory)),
		MongoURI:         os.Getenv("MONGO_URI"),
		MongoDB:          getEnv("MONGO_DB", "vidaview"),
		PostgresDSN:      os.Getenv("POSTGRES_DSN"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		KafkaTopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", ""),
		KafkaGroupID:     getEnv("KAFKA_GROUP_ID", "vidaview-notifications"),
		NotifyMode:       strings.ToLower(getEnv("NOTIFY_MODE", NotifyStore)),
		NotifyWebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
		Currency:         strings.ToUpper(getEnv("CURRENCY", "IDR")),
		SeedFile:         os.Getenv("SEED_FILE"),
	}
	brokers := getEnv("KAFKA_BROKERS", "")
	if brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	var err error
	if cfg.RedisDB, err = parseIntEnv("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.CodeAttempts, err = parseIntEnv("CODE_ATTEMPTS", 5); err != nil {
		return Config{}, err
	}
	durations := []struct {
		key string
		def time.Duration
		dst *time.Duration
	}{
		{"LOCK_TTL", 30 * time.Second, &cfg.LockTTL},
		{"LOCK_WAIT", 5 * time.Second, &cfg.LockWait},
		{"NOTIFY_WEBHOOK_TIMEOUT", 5 * time.Second, &cfg.NotifyWebhookTimeout},
		{"OUTBOX_POLL_INTERVAL", 500 * time.Millisecond, &cfg.OutboxPollInterval},
		{"IDEMP_TTL", 168 * time.Hour, &cfg.IdempotencyTTL},
		{"SESSION_TTL", 24 * time.Hour, &cfg.SessionTTL},
		{"SWEEP_INTERVAL", time.Minute, &cfg.SweepInterval},
	}
	for _, d := range durations {
		if *d.dst, err = parseDurationEnv(d.key, d.def); err != nil {
			return Config{}, err
		}
	}

	if cfg.SweepOnStart, err = parseBoolEnv("SWEEP_ON_START", true); err != nil {
		return Config{}, err
	}

	retryStr := getEnv("RETRY_BACKOFF", "1s,5s,30s")
	for _, raw := range strings.Split(retryStr, ",") {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		d, err := time.ParseDuration(val)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RETRY_BACKOFF component %q: %w", raw, err)
		}
		cfg.RetryBackoff = append(cfg.RetryBackoff, d)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StorageDriver {
	case StorageMemory:
	case StorageMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for STORAGE_DRIVER=%s", c.StorageDriver)
		}
	case StoragePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for STORAGE_DRIVER=%s", c.StorageDriver)
		}
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for STORAGE_DRIVER=%s", c.StorageDriver)
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	switch c.NotifyMode {
	case NotifyStore:
	case NotifyKafka:
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS is required for NOTIFY_MODE=%s", c.NotifyMode)
		}
	default:
		return fmt.Errorf("unknown NOTIFY_MODE %q", c.NotifyMode)
	}
	if c.CodeAttempts < 1 {
		return fmt.Errorf("CODE_ATTEMPTS must be positive")
	}
	if len(c.Currency) != 3 {
		return fmt.Errorf("CURRENCY must be a 3-letter code, got %q", c.Currency)
	}
	return nil
}

// Durable reports whether ledgers survive a restart.
func (c Config) Durable() bool {
	return c.StorageDriver != StorageMemory
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseIntEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %w", key, err)
	}
	return n, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}
