package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-chi/httprate"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/titan-coffee/internal/domain"
	"github.com/vladislavdragonenkov/titan-coffee/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/titan-coffee/internal/ratelimit"
	"github.com/vladislavdragonenkov/titan-coffee/internal/storage/memory"
	"github.com/vladislavdragonenkov/titan-coffee/internal/storage/mongo"
	"github.com/vladislavdragonenkov/titan-coffee/internal/storage/postgres"
	"github.com/vladislavdragonenkov/titan-coffee/internal/storage/supervisor"
)

// runtimeDependencies хранит внешние зависимости процесса, которые нужно закрыть при остановке.
type runtimeDependencies struct {
	storage     domain.Storage
	producer    *kafka.Producer
	rateCounter httprate.LimitCounter
	redis       *redis.Client
}

// initStorage выбирает стратегию хранения. Подключение выполняет Core.Initialize.
func initStorage(cfg Config, opts ...supervisor.Option) (domain.Storage, error) {
	switch cfg.StorageDriver {
	case StorageDriverMemory, "":
		return memory.NewStore(), nil
	case StorageDriverMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("mongo storage requires MONGODB_URI")
		}
		return mongo.NewStore(mongo.Config{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDatabase,
			Retry:    cfg.retryConfig(),
		}, opts...), nil
	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres storage requires POSTGRES_DSN")
		}
		return postgres.NewStore(postgres.Config{
			DSN:         cfg.PostgresDSN,
			AutoMigrate: cfg.PostgresAutoMigrate,
			Retry:       cfg.retryConfig(),
		}, opts...), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

// initKafkaProducer создаёт producer, если заданы брокеры. Ошибка не мешает запуску.
func initKafkaProducer(cfg Config, logger *log.Entry) *kafka.Producer {
	brokers := make([]string, 0, len(cfg.KafkaBrokers))
	for _, b := range cfg.KafkaBrokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return nil
	}

	producer, err := kafka.NewProducer(brokers, cfg.KafkaTopicPrefix)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without change events")
		return nil
	}
	logger.WithField("brokers", brokers).Info("kafka producer initialized")
	return producer
}

// initRateCounter выбирает хранилище счётчиков лимита: Redis, если задан адрес и он доступен.
// nil означает счётчик httprate в памяти процесса.
func initRateCounter(ctx context.Context, cfg Config, logger *log.Entry) (httprate.LimitCounter, *redis.Client) {
	if cfg.RateLimitMax <= 0 {
		logger.Info("rate limiting disabled")
		return nil, nil
	}
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	client, err := ratelimit.NewClient(ctx, cfg.RedisAddr)
	if err != nil {
		logger.WithError(err).Warn("redis unavailable, falling back to in-process rate limit counter")
		return nil, nil
	}
	logger.WithField("redis_addr", cfg.RedisAddr).Info("rate limit counters stored in redis")
	return ratelimit.NewRedisCounter(client, "titan:ratelimit", logger), client
}

// initRuntimeDependencies собирает хранилище, producer и лимитер.
func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry, opts ...supervisor.Option) (*runtimeDependencies, error) {
	storage, err := initStorage(cfg, opts...)
	if err != nil {
		return nil, err
	}

	deps := &runtimeDependencies{
		storage:  storage,
		producer: initKafkaProducer(cfg, logger),
	}
	deps.rateCounter, deps.redis = initRateCounter(ctx, cfg, logger)
	return deps, nil
}

// publisher возвращает nil-интерфейс, если producer не создан.
func (d *runtimeDependencies) publisher() domain.EventPublisher {
	if d.producer == nil {
		return nil
	}
	return d.producer
}

// close освобождает producer и redis. Хранилище закрывает Core.Shutdown.
func (d *runtimeDependencies) close(logger *log.Entry) {
	if d.producer != nil {
		if err := d.producer.Close(); err != nil {
			logger.WithError(err).Warn("failed to close kafka producer")
		} else {
			logger.Info("kafka producer closed")
		}
	}
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			logger.WithError(err).Warn("failed to close redis client")
		}
	}
}
