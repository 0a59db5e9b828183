package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/titan-coffee/internal/domain"
	"github.com/vladislavdragonenkov/titan-coffee/internal/metrics"
	"github.com/vladislavdragonenkov/titan-coffee/internal/service/catalog"
	"github.com/vladislavdragonenkov/titan-coffee/internal/service/ledger"
	"github.com/vladislavdragonenkov/titan-coffee/internal/storage/supervisor"
)

type coreOptions struct {
	logger        *log.Entry
	publisher     domain.EventPublisher
	metrics       *metrics.ShopMetrics
	readyChecks   int
	readyInterval time.Duration
}

// CoreOption настраивает Core.
type CoreOption func(*coreOptions)

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) CoreOption {
	return func(o *coreOptions) {
		o.logger = logger
	}
}

// WithPublisher включает публикацию событий каталога и журнала.
func WithPublisher(publisher domain.EventPublisher) CoreOption {
	return func(o *coreOptions) {
		o.publisher = publisher
	}
}

// WithMetrics задаёт метрики.
func WithMetrics(m *metrics.ShopMetrics) CoreOption {
	return func(o *coreOptions) {
		o.metrics = m
	}
}

// WithReadiness задаёт число проверок готовности хранилища и интервал между ними.
func WithReadiness(checks int, interval time.Duration) CoreOption {
	return func(o *coreOptions) {
		o.readyChecks = checks
		o.readyInterval = interval
	}
}

// Core владеет хранилищем и собранными поверх него каталогом и журналом заказов.
type Core struct {
	Catalog *catalog.Catalog
	Ledger  *ledger.Ledger

	storage       domain.Storage
	logger        *log.Entry
	readyChecks   int
	readyInterval time.Duration

	shutdownOnce sync.Once
	shutdownErr  error
}

// NewCore собирает Catalog и Ledger над storage. Подключения не выполняет.
func NewCore(storage domain.Storage, opts ...CoreOption) *Core {
	o := coreOptions{
		readyChecks:   5,
		readyInterval: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.WithField("component", "core")
	}

	catalogOpts := []catalog.Option{
		catalog.WithLogger(o.logger.WithField("service", "catalog")),
		catalog.WithMetrics(o.metrics),
	}
	ledgerOpts := []ledger.Option{
		ledger.WithLogger(o.logger.WithField("service", "ledger")),
		ledger.WithMetrics(o.metrics),
	}
	if o.publisher != nil {
		catalogOpts = append(catalogOpts, catalog.WithPublisher(o.publisher))
		ledgerOpts = append(ledgerOpts, ledger.WithPublisher(o.publisher))
	}

	cat := catalog.New(storage.Products(), catalogOpts...)
	return &Core{
		Catalog:       cat,
		Ledger:        ledger.New(storage.Orders(), cat, ledgerOpts...),
		storage:       storage,
		logger:        o.logger,
		readyChecks:   o.readyChecks,
		readyInterval: o.readyInterval,
	}
}

// Storage возвращает стратегию хранения.
func (c *Core) Storage() domain.Storage {
	return c.storage
}

// Initialize подключает хранилище, дожидается готовности и заполняет пустой каталог.
// Возвращает число добавленных товаров. Ошибка подключения оборачивает ErrStartupFailure.
func (c *Core) Initialize(ctx context.Context) (int, error) {
	if err := c.storage.Start(ctx); err != nil {
		return 0, err
	}

	if err := supervisor.WaitReady(ctx, c.storage, c.readyChecks, c.readyInterval); err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrStartupFailure, err)
	}

	seeded, err := c.Catalog.Initialize(ctx)
	if err != nil {
		return 0, fmt.Errorf("initialize catalog: %w", err)
	}
	return seeded, nil
}

// Shutdown останавливает фоновое переподключение и закрывает хранилище. Повторные вызовы безопасны.
func (c *Core) Shutdown(ctx context.Context) error {
	c.shutdownOnce.Do(func() {
		c.shutdownErr = c.storage.Close(ctx)
		if c.shutdownErr != nil {
			c.logger.WithError(c.shutdownErr).Warn("storage close failed")
			return
		}
		c.logger.Info("Core shut down")
	})
	return c.shutdownErr
}
