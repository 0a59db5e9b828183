// Package ledger ведёт журнал заказов. Каждый заказ хранит снимок товара на момент оформления.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/titan-coffee/internal/domain"
	"github.com/vladislavdragonenkov/titan-coffee/internal/metrics"
	"github.com/vladislavdragonenkov/titan-coffee/internal/validation"
)

// ProductFinder разрешает productCode в товар каталога.
type ProductFinder interface {
	FindByCode(ctx context.Context, code string) (domain.Product, bool, error)
}

// Ledger управляет заказами поверх OrderRepository.
type Ledger struct {
	repo      domain.OrderRepository
	products  ProductFinder
	logger    *log.Entry
	clock     func() time.Time
	publisher domain.EventPublisher
	metrics   *metrics.ShopMetrics
}

// New создаёт журнал заказов.
func New(repo domain.OrderRepository, products ProductFinder, options ...Option) *Ledger {
	opts := Options{}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "ledger")
	}
	clock := opts.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}

	return &Ledger{
		repo:      repo,
		products:  products,
		logger:    logger,
		clock:     clock,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
	}
}

// List возвращает заказы по убыванию даты.
func (l *Ledger) List(ctx context.Context) ([]domain.Order, error) {
	return l.repo.List(ctx)
}

// Get возвращает заказ или ErrNotFound.
func (l *Ledger) Get(ctx context.Context, id string) (domain.Order, error) {
	return l.repo.Get(ctx, id)
}

// Add оформляет заказ: разрешает товар, фиксирует его снимок и сохраняет запись.
// Операция не повторяется автоматически, чтобы не создать дубликат заказа.
func (l *Ledger) Add(ctx context.Context, in domain.OrderInput) (domain.Order, error) {
	order, err := l.add(ctx, in)
	if err != nil {
		l.metrics.RecordOrderRejected(rejectReason(err))
		return domain.Order{}, err
	}
	l.metrics.RecordOrderCreated()
	l.publish(ctx, domain.EventOrderCreated, order)
	return order, nil
}

func (l *Ledger) add(ctx context.Context, in domain.OrderInput) (domain.Order, error) {
	if err := in.Validate(); err != nil {
		return domain.Order{}, err
	}

	product, found, err := l.products.FindByCode(ctx, in.ProductCode)
	if err != nil {
		return domain.Order{}, err
	}
	if !found {
		return domain.Order{}, &domain.UnknownProductError{Code: in.ProductCode}
	}

	now := l.clock()
	date := in.Date
	if date.IsZero() {
		date = now
	}

	return l.repo.Create(ctx, domain.Order{
		Date:      date,
		Product:   product.Snapshot(),
		Size:      in.Size,
		Quantity:  in.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// Update заменяет только size и quantity.
func (l *Ledger) Update(ctx context.Context, id string, upd domain.OrderUpdate) (domain.Order, error) {
	if err := upd.Validate(); err != nil {
		return domain.Order{}, err
	}

	updated, err := l.repo.Update(ctx, id, upd, l.clock())
	if err != nil {
		return domain.Order{}, err
	}

	l.publish(ctx, domain.EventOrderUpdated, updated)
	return updated, nil
}

// Remove удаляет заказ и возвращает удалённую запись.
func (l *Ledger) Remove(ctx context.Context, id string) (domain.Order, error) {
	removed, err := l.repo.Delete(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}

	l.publish(ctx, domain.EventOrderDeleted, removed)
	return removed, nil
}

// AddBatch оформляет заказы независимо друг от друга.
// Rejection.Index соответствует позиции элемента в исходном пакете.
func (l *Ledger) AddBatch(ctx context.Context, entries []json.RawMessage) domain.BatchResult[domain.Order] {
	result := domain.BatchResult[domain.Order]{
		Saved: make([]domain.Order, 0, len(entries)),
	}

	for i, raw := range entries {
		in, err := decodeOrder(raw)
		if err != nil {
			l.metrics.RecordOrderRejected(rejectReason(err))
		} else {
			var created domain.Order
			created, err = l.Add(ctx, in)
			if err == nil {
				result.Saved = append(result.Saved, created)
				continue
			}
		}
		result.Rejected = append(result.Rejected, domain.Rejection{Index: i, Err: err})
	}

	if !result.OK() {
		l.logger.WithFields(log.Fields{
			"saved":    len(result.Saved),
			"rejected": len(result.Rejected),
		}).Warn("Order batch partially rejected")
	}
	return result
}

func decodeOrder(raw json.RawMessage) (domain.OrderInput, error) {
	fields, err := validation.Decode(raw)
	if err != nil {
		return domain.OrderInput{}, err
	}
	return validation.Order(fields)
}

func rejectReason(err error) string {
	switch {
	case domain.IsValidation(err):
		return "validation"
	case errors.Is(err, domain.ErrUnknownProduct):
		return "unknown_product"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return "storage_unavailable"
	default:
		return "internal"
	}
}

func (l *Ledger) publish(ctx context.Context, eventType domain.EventType, order domain.Order) {
	if l.publisher == nil {
		return
	}
	event := domain.ChangeEvent{
		Type:          eventType,
		AggregateType: domain.AggregateOrder,
		AggregateID:   order.ID,
		Occurred:      l.clock(),
		Payload:       order,
	}
	if err := l.publisher.Publish(ctx, event); err != nil {
		l.logger.WithError(err).WithFields(log.Fields{
			"event":    eventType,
			"order_id": order.ID,
		}).Warn("failed to publish order event")
	}
}
