package app

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/vladislavdragonenkov/titan-coffee/internal/storage/supervisor"
)

const (
	StorageDriverMemory   = "memory"
	StorageDriverMongo    = "mongo"
	StorageDriverPostgres = "postgres"
)

// Config описывает настройки запуска приложения. Значения из окружения перекрывают DefaultConfig.
type Config struct {
	AppName     string `envconfig:"APPNAME"`
	Environment string `envconfig:"APP_ENV"`

	HTTPAddr    string `envconfig:"HTTP_ADDR"`
	GRPCAddr    string `envconfig:"GRPC_ADDR"`
	MetricsAddr string `envconfig:"METRICS_ADDR"`

	StorageDriver       string `envconfig:"STORAGE_DRIVER"`
	MongoURI            string `envconfig:"MONGODB_URI"`
	MongoDatabase       string `envconfig:"MONGODB_DATABASE"`
	PostgresDSN         string `envconfig:"POSTGRES_DSN"`
	PostgresAutoMigrate bool   `envconfig:"POSTGRES_AUTO_MIGRATE"`

	DBConnectTimeout time.Duration `envconfig:"DB_CONNECTION_TIMEOUT"`
	DBMaxRetries     int           `envconfig:"DB_MAX_RETRIES"`
	DBRetryDelay     time.Duration `envconfig:"DB_RETRY_DELAY"`
	DBPingInterval   time.Duration `envconfig:"DB_PING_INTERVAL"`
	DBReadyChecks    int           `envconfig:"DB_READY_CHECKS"`
	DBReadyInterval  time.Duration `envconfig:"DB_READY_INTERVAL"`

	KafkaBrokers     []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopicPrefix string   `envconfig:"KAFKA_TOPIC_PREFIX"`

	RedisAddr       string        `envconfig:"REDIS_ADDR"`
	RateLimitMax    int           `envconfig:"RATE_LIMIT_MAX"`
	RateLimitWindow time.Duration `envconfig:"RATE_LIMIT_WINDOW"`

	FrontendURL string `envconfig:"FRONTEND_URL"`

	LogLevel  string `envconfig:"LOG_LEVEL"`
	LogFormat string `envconfig:"LOG_FORMAT"`
}

// DefaultConfig возвращает настройки для локального запуска на in-memory хранилище.
func DefaultConfig() Config {
	retry := supervisor.DefaultConfig()
	return Config{
		AppName:             "Titan Coffee Shop API",
		Environment:         "development",
		HTTPAddr:            ":3000",
		GRPCAddr:            ":50051",
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverMemory,
		MongoDatabase:       "titan_coffee",
		PostgresAutoMigrate: true,
		DBConnectTimeout:    retry.ConnectTimeout,
		DBMaxRetries:        retry.MaxRetries,
		DBRetryDelay:        retry.RetryDelay,
		DBPingInterval:      retry.PingInterval,
		DBReadyChecks:       5,
		DBReadyInterval:     200 * time.Millisecond,
		KafkaTopicPrefix:    "titan",
		RateLimitMax:        100,
		RateLimitWindow:     15 * time.Minute,
		LogLevel:            "info",
		LogFormat:           "text",
	}
}

// LoadConfig читает окружение поверх DefaultConfig и проверяет результат.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	switch c.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required for %s storage driver", c.StorageDriver)
		}
		if c.MongoDatabase == "" {
			return fmt.Errorf("MONGODB_DATABASE is required for %s storage driver", c.StorageDriver)
		}
	case StorageDriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for %s storage driver", c.StorageDriver)
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", c.StorageDriver)
	}
	if c.RateLimitMax < 0 {
		return fmt.Errorf("RATE_LIMIT_MAX must be >= 0, got %d", c.RateLimitMax)
	}
	if c.RateLimitMax > 0 && c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive when rate limiting is enabled")
	}
	return nil
}

func (c Config) retryConfig() supervisor.Config {
	return supervisor.Config{
		MaxRetries:     c.DBMaxRetries,
		RetryDelay:     c.DBRetryDelay,
		ConnectTimeout: c.DBConnectTimeout,
		PingInterval:   c.DBPingInterval,
	}
}
