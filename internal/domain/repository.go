package domain

import (
	"context"
	"time"
)

// ProductRepository описывает требования к хранилищу каталога.
type ProductRepository interface {
	// Create сохраняет товар и присваивает ему ID. ErrDuplicateKey, если код уже занят.
	Create(ctx context.Context, product Product) (Product, error)
	// List возвращает все товары, упорядоченные по (category, name).
	List(ctx context.Context) ([]Product, error)
	// GetByCode ищет товар по точному совпадению кода или возвращает ErrNotFound.
	GetByCode(ctx context.Context, code string) (Product, error)
	// Update заменяет изменяемые поля; ErrNotFound, если ID не найден.
	Update(ctx context.Context, id string, upd ProductUpdate, updatedAt time.Time) (Product, error)
	// Delete удаляет товар и возвращает удалённую запись.
	Delete(ctx context.Context, id string) (Product, error)
	// Count возвращает количество товаров.
	Count(ctx context.Context) (int, error)
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет заказ и присваивает ему ID.
	Create(ctx context.Context, order Order) (Order, error)
	// List возвращает заказы по убыванию даты.
	List(ctx context.Context) ([]Order, error)
	// Get возвращает заказ или ErrNotFound.
	Get(ctx context.Context, id string) (Order, error)
	// Update заменяет size/quantity.
	Update(ctx context.Context, id string, upd OrderUpdate, updatedAt time.Time) (Order, error)
	// Delete удаляет заказ и возвращает удалённую запись.
	Delete(ctx context.Context, id string) (Order, error)
}

// ConnectionState — состояние соединения с хранилищем.
type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
)

// Storage — взаимозаменяемая стратегия хранения для каталога и журнала заказов.
type Storage interface {
	Products() ProductRepository
	Orders() OrderRepository
	// Start устанавливает соединение; ошибка оборачивает ErrStartupFailure после исчерпания попыток.
	Start(ctx context.Context) error
	State() ConnectionState
	// Close останавливает фоновое переподключение и закрывает соединение.
	Close(ctx context.Context) error
}
