package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/titan-coffee/internal/domain"
)

// orderRepositoryInMemory — простая in-memory реализация OrderRepository.
type orderRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Order
}

func newOrderRepository() *orderRepositoryInMemory {
	return &orderRepositoryInMemory{
		items: make(map[string]domain.Order),
	}
}

// NewOrderRepository возвращает отдельный in-memory репозиторий заказов.
func NewOrderRepository() domain.OrderRepository {
	return newOrderRepository()
}

// Create присваивает заказу новый ID и сохраняет копию.
func (r *orderRepositoryInMemory) Create(_ context.Context, order domain.Order) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order.ID = uuid.NewString()
	r.items[order.ID] = order
	return order, nil
}

// List возвращает заказы по убыванию даты (при равенстве по ID).
func (r *orderRepositoryInMemory) List(context.Context) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0, len(r.items))
	for _, order := range r.items {
		result = append(result, order)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (r *orderRepositoryInMemory) Get(_ context.Context, id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrNotFound
	}
	return order, nil
}

// Update меняет только size/quantity; снимок товара и дата остаются прежними.
func (r *orderRepositoryInMemory) Update(_ context.Context, id string, upd domain.OrderUpdate, updatedAt time.Time) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrNotFound
	}
	current.Size = upd.Size
	current.Quantity = upd.Quantity
	current.UpdatedAt = updatedAt
	r.items[id] = current
	return current, nil
}

func (r *orderRepositoryInMemory) Delete(_ context.Context, id string) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrNotFound
	}
	delete(r.items, id)
	return current, nil
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
