// Package catalog реализует справочник товаров кофейни.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/titan-coffee/internal/domain"
	"github.com/vladislavdragonenkov/titan-coffee/internal/metrics"
	"github.com/vladislavdragonenkov/titan-coffee/internal/validation"
)

// Catalog управляет товарами поверх ProductRepository.
type Catalog struct {
	repo      domain.ProductRepository
	logger    *log.Entry
	clock     func() time.Time
	publisher domain.EventPublisher
	metrics   *metrics.ShopMetrics
}

// New создаёт каталог.
func New(repo domain.ProductRepository, options ...Option) *Catalog {
	opts := Options{}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "catalog")
	}
	clock := opts.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}

	return &Catalog{
		repo:      repo,
		logger:    logger,
		clock:     clock,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
	}
}

// List возвращает все товары, упорядоченные по (category, name).
func (c *Catalog) List(ctx context.Context) ([]domain.Product, error) {
	return c.repo.List(ctx)
}

// FindByCode ищет товар по коду. Отсутствие товара не ошибка: found=false.
func (c *Catalog) FindByCode(ctx context.Context, code string) (domain.Product, bool, error) {
	product, err := c.repo.GetByCode(ctx, code)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Product{}, false, nil
	}
	if err != nil {
		return domain.Product{}, false, err
	}
	return product, true, nil
}

// Add валидирует и сохраняет новый товар. ErrDuplicateKey, если код занят.
func (c *Catalog) Add(ctx context.Context, in domain.ProductInput) (domain.Product, error) {
	if err := in.Validate(); err != nil {
		return domain.Product{}, err
	}

	_, found, err := c.FindByCode(ctx, in.ProductCode)
	if err != nil {
		return domain.Product{}, err
	}
	if found {
		return domain.Product{}, fmt.Errorf("product with productCode %s already exists: %w", in.ProductCode, domain.ErrDuplicateKey)
	}

	now := c.clock()
	created, err := c.repo.Create(ctx, domain.Product{
		ProductCode: in.ProductCode,
		Name:        in.Name,
		Price:       in.Price,
		Category:    in.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			return domain.Product{}, fmt.Errorf("product with productCode %s already exists: %w", in.ProductCode, err)
		}
		return domain.Product{}, err
	}

	c.metrics.RecordCatalogChange("create")
	c.publish(ctx, domain.EventProductCreated, created)
	return created, nil
}

// Update заменяет name/price/category. productCode не меняется.
func (c *Catalog) Update(ctx context.Context, id string, upd domain.ProductUpdate) (domain.Product, error) {
	if err := upd.Validate(); err != nil {
		return domain.Product{}, err
	}

	updated, err := c.repo.Update(ctx, id, upd, c.clock())
	if err != nil {
		return domain.Product{}, err
	}

	c.metrics.RecordCatalogChange("update")
	c.publish(ctx, domain.EventProductUpdated, updated)
	return updated, nil
}

// Remove удаляет товар и возвращает удалённую запись.
// Заказы хранят снимок, поэтому удаление товара их не затрагивает.
func (c *Catalog) Remove(ctx context.Context, id string) (domain.Product, error) {
	removed, err := c.repo.Delete(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	c.metrics.RecordCatalogChange("delete")
	c.publish(ctx, domain.EventProductDeleted, removed)
	return removed, nil
}

// Count возвращает количество товаров.
func (c *Catalog) Count(ctx context.Context) (int, error) {
	return c.repo.Count(ctx)
}

// Initialize заполняет пустой каталог стартовым набором и возвращает число добавленных товаров.
// Если товары уже есть, ничего не делает.
func (c *Catalog) Initialize(ctx context.Context) (int, error) {
	count, err := c.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		c.logger.WithField("products", count).Info("Catalog already populated, skipping seed")
		return 0, nil
	}

	seeded := 0
	for _, in := range domain.DefaultProducts() {
		if _, err := c.Add(ctx, in); err != nil {
			if errors.Is(err, domain.ErrDuplicateKey) {
				continue
			}
			return seeded, fmt.Errorf("seed product %s: %w", in.ProductCode, err)
		}
		seeded++
	}

	c.metrics.RecordCatalogChange("seed")
	c.logger.WithField("products", seeded).Info("Default products initialized")
	return seeded, nil
}

// AddBatch создаёт товары независимо друг от друга: ошибка одного не блокирует остальные.
func (c *Catalog) AddBatch(ctx context.Context, entries []json.RawMessage) domain.BatchResult[domain.Product] {
	result := domain.BatchResult[domain.Product]{
		Saved: make([]domain.Product, 0, len(entries)),
	}

	for i, raw := range entries {
		in, err := decodeProduct(raw)
		if err == nil {
			var created domain.Product
			created, err = c.Add(ctx, in)
			if err == nil {
				result.Saved = append(result.Saved, created)
				continue
			}
		}
		result.Rejected = append(result.Rejected, domain.Rejection{Index: i, Err: err})
	}

	if !result.OK() {
		c.logger.WithFields(log.Fields{
			"saved":    len(result.Saved),
			"rejected": len(result.Rejected),
		}).Warn("Product batch partially rejected")
	}
	return result
}

func decodeProduct(raw json.RawMessage) (domain.ProductInput, error) {
	fields, err := validation.Decode(raw)
	if err != nil {
		return domain.ProductInput{}, err
	}
	return validation.Product(fields)
}

func (c *Catalog) publish(ctx context.Context, eventType domain.EventType, product domain.Product) {
	if c.publisher == nil {
		return
	}
	event := domain.ChangeEvent{
		Type:          eventType,
		AggregateType: domain.AggregateProduct,
		AggregateID:   product.ID,
		Occurred:      c.clock(),
		Payload:       product,
	}
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.WithError(err).WithFields(log.Fields{
			"event":        eventType,
			"product_code": product.ProductCode,
		}).Warn("failed to publish catalog event")
	}
}
