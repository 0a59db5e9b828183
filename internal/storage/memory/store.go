package memory

import (
	"context"

	"github.com/vladislavdragonenkov/titan-coffee/internal/domain"
)

// Store — энергозависимая стратегия хранения: данные живут в памяти процесса и теряются при рестарте.
type Store struct {
	products *productRepositoryInMemory
	orders   *orderRepositoryInMemory
}

// NewStore создаёт пустое in-memory хранилище для локальной разработки и тестов.
func NewStore() *Store {
	return &Store{
		products: newProductRepository(),
		orders:   newOrderRepository(),
	}
}

func (s *Store) Products() domain.ProductRepository { return s.products }

func (s *Store) Orders() domain.OrderRepository { return s.orders }

// Start ничего не делает: внешних зависимостей нет.
func (s *Store) Start(context.Context) error { return nil }

// State всегда возвращает StateConnected.
func (s *Store) State() domain.ConnectionState { return domain.StateConnected }

func (s *Store) Close(context.Context) error { return nil }

var _ domain.Storage = (*Store)(nil)
