package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/titan-coffee/internal/domain"
)

// productRepositoryInMemory хранит каталог в map с индексом по productCode.
type productRepositoryInMemory struct {
	mu     sync.RWMutex
	items  map[string]domain.Product
	byCode map[string]string
}

func newProductRepository() *productRepositoryInMemory {
	return &productRepositoryInMemory{
		items:  make(map[string]domain.Product),
		byCode: make(map[string]string),
	}
}

// NewProductRepository возвращает отдельный in-memory репозиторий каталога.
func NewProductRepository() domain.ProductRepository {
	return newProductRepository()
}

func (r *productRepositoryInMemory) Create(_ context.Context, product domain.Product) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byCode[product.ProductCode]; exists {
		return domain.Product{}, domain.ErrDuplicateKey
	}
	product.ID = uuid.NewString()
	r.items[product.ID] = product
	r.byCode[product.ProductCode] = product.ID
	return product, nil
}

func (r *productRepositoryInMemory) List(context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0, len(r.items))
	for _, p := range r.items {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Category != result[j].Category {
			return result[i].Category < result[j].Category
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (r *productRepositoryInMemory) GetByCode(_ context.Context, code string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byCode[code]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return r.items[id], nil
}

func (r *productRepositoryInMemory) Update(_ context.Context, id string, upd domain.ProductUpdate, updatedAt time.Time) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	current.Name = upd.Name
	current.Price = upd.Price
	current.Category = upd.Category
	current.UpdatedAt = updatedAt
	r.items[id] = current
	return current, nil
}

func (r *productRepositoryInMemory) Delete(_ context.Context, id string) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	delete(r.items, id)
	delete(r.byCode, current.ProductCode)
	return current, nil
}

func (r *productRepositoryInMemory) Count(context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items), nil
}

var _ domain.ProductRepository = (*productRepositoryInMemory)(nil)
