package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/bibbank/fraudwatch/internal/domain/model"
	"github.com/bibbank/fraudwatch/internal/infrastructure/ml"
	pkgkafka "github.com/bibbank/fraudwatch/pkg/kafka"
	"github.com/bibbank/fraudwatch/pkg/observability"
)

// Scorer strategies selectable with SCORER_STRATEGY.
const (
	ScorerRules      = ml.StrategyRules
	ScorerClassifier = ml.StrategyClassifier
	ScorerFallback   = ml.StrategyFallback
)

// Config holds all configuration for the fraud service.
type Config struct {
	GRPCPort           string
	HTTPPort           string
	DatabaseURL        string
	MigrationsDir      string
	KafkaEventsTopic   string
	KafkaIngestTopic   string
	KafkaConsumerGroup string
	RedisAddr          string
	RedisPassword      string
	ScorerStrategy     string
	Environment        string
	LogLevel           string
	LogFormat          string
	OTLPEndpoint       string
	TLSCertFile        string
	TLSKeyFile         string
	KafkaBrokers       []string
	RedisDB            int
	KafkaAttempts      int
	DatabaseMaxConns   int
	UploadRateLimit    int
	StatsCacheTTL      time.Duration
	RunMigrations      bool
	GRPCReflection     bool
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		GRPCPort:           getEnv("GRPC_PORT", "8088"),
		HTTPPort:           getEnv("HTTP_PORT", "9088"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		RunMigrations:      getEnvBool("RUN_MIGRATIONS", true),
		DatabaseMaxConns:   getEnvInt("DB_MAX_CONNS", 0),
		MigrationsDir:      getEnv("MIGRATIONS_DIR", "file://migrations"),
		KafkaBrokers:       pkgkafka.ParseBrokers(getEnv("KAFKA_BROKERS", "")),
		KafkaEventsTopic:   getEnv("KAFKA_EVENTS_TOPIC", "fraud.events"),
		KafkaIngestTopic:   getEnv("KAFKA_INGEST_TOPIC", ""),
		KafkaConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "fraudwatch"),
		KafkaAttempts:      getEnvInt("KAFKA_HANDLER_ATTEMPTS", pkgkafka.DefaultHandlerAttempts),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		StatsCacheTTL:      getEnvDuration("STATS_CACHE_TTL", 30*time.Second),
		ScorerStrategy:     getEnv("SCORER_STRATEGY", ScorerRules),
		Environment:        getEnv("ENVIRONMENT", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		OTLPEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		TLSCertFile:        getEnv("GRPC_TLS_CERT_FILE", ""),
		TLSKeyFile:         getEnv("GRPC_TLS_KEY_FILE", ""),
		GRPCReflection:     getEnvBool("GRPC_REFLECTION", false),
		UploadRateLimit:    getEnvInt("UPLOAD_RATE_LIMIT", 0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the settings can be used together.
func (c *Config) Validate() error {
	switch c.ScorerStrategy {
	case ScorerRules, ScorerClassifier, ScorerFallback:
	default:
		return &model.ConfigurationError{
			Component: "scorer",
			Err:       fmt.Errorf("unknown SCORER_STRATEGY %q", c.ScorerStrategy),
		}
	}

	if err := observability.ValidateLogConfig(c.LogLevel, c.LogFormat); err != nil {
		return &model.ConfigurationError{Component: "logging", Err: err}
	}

	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return &model.ConfigurationError{
			Component: "grpc",
			Err:       fmt.Errorf("GRPC_TLS_CERT_FILE and GRPC_TLS_KEY_FILE must be set together"),
		}
	}

	if c.KafkaIngestTopic != "" && len(c.KafkaBrokers) == 0 {
		return &model.ConfigurationError{
			Component: "kafka",
			Err:       fmt.Errorf("KAFKA_INGEST_TOPIC requires KAFKA_BROKERS"),
		}
	}

	return nil
}

// GRPCAddress returns the full gRPC listen address.
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf(":%s", c.GRPCPort)
}

// HTTPAddress returns the full HTTP listen address.
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.HTTPPort)
}

// UsesPostgres reports whether a database is configured. Without one the
// service runs on the in-memory store.
func (c *Config) UsesPostgres() bool {
	return c.DatabaseURL != ""
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
