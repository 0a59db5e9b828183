package domain

import (
	"context"
	"errors"
	"time"
)

// EventType — тип события об изменении каталога или журнала.
type EventType string

const (
	EventProductCreated EventType = "product.created"
	EventProductUpdated EventType = "product.updated"
	EventProductDeleted EventType = "product.deleted"
	EventOrderCreated   EventType = "order.created"
	EventOrderUpdated   EventType = "order.updated"
	EventOrderDeleted   EventType = "order.deleted"
)

const (
	AggregateProduct = "product"
	AggregateOrder   = "order"
)

// ChangeEvent описывает изменение одной сущности.
type ChangeEvent struct {
	Type          EventType
	AggregateType string
	AggregateID   string
	Occurred      time.Time
	Payload       any
}

// EventPublisher публикует события наружу. Ошибка публикации не отменяет бизнес-операцию.
type EventPublisher interface {
	Publish(ctx context.Context, event ChangeEvent) error
}

// Rejection — отклонённый элемент пакетной операции.
type Rejection struct {
	Index int
	Err   error
}

// BatchResult разделяет пакет на сохранённые и отклонённые элементы.
type BatchResult[T any] struct {
	Saved    []T
	Rejected []Rejection
}

// OK сообщает, что пакет сохранён целиком.
func (r BatchResult[T]) OK() bool {
	return len(r.Rejected) == 0
}

// Unavailable сообщает, что все элементы отклонены из-за недоступности хранилища.
func (r BatchResult[T]) Unavailable() bool {
	if len(r.Saved) > 0 || len(r.Rejected) == 0 {
		return false
	}
	for _, rej := range r.Rejected {
		if !errors.Is(rej.Err, ErrStorageUnavailable) {
			return false
		}
	}
	return true
}
