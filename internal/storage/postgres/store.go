// Package postgres — долговременная стратегия хранения поверх PostgreSQL (снимок товара в JSONB).
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/titan-coffee/internal/domain"
	"github.com/vladislavdragonenkov/titan-coffee/internal/storage/supervisor"
)

const (
	defaultMaxOpenConns    = 10
	defaultMaxIdleConns    = 2
	defaultConnMaxLifetime = 30 * time.Minute
	defaultConnMaxIdleTime = 30 * time.Second
)

// Config описывает подключение к PostgreSQL.
type Config struct {
	DSN         string
	AutoMigrate bool
	Retry       supervisor.Config
}

// Store оборачивает SQL-подключение к PostgreSQL и реализует domain.Storage.
type Store struct {
	cfg    Config
	logger *log.Entry
	sup    *supervisor.Supervisor

	mu sync.RWMutex
	db *sql.DB

	products *productRepository
	orders   *orderRepository
}

// NewStore создаёт хранилище без подключения; подключение выполняет Start.
func NewStore(cfg Config, opts ...supervisor.Option) *Store {
	s := &Store{
		cfg:    cfg,
		logger: log.WithField("component", "postgres-store"),
	}
	s.sup = supervisor.New(s, cfg.Retry, opts...)
	s.products = &productRepository{store: s}
	s.orders = &orderRepository{store: s}
	return s
}

// Open подключается к PostgreSQL одной попыткой. Используется CLI миграций и тестами.
func Open(ctx context.Context, dsn string) (*Store, error) {
	retry := supervisor.DefaultConfig()
	retry.MaxRetries = 1
	retry.ConnectTimeout = 5 * time.Second

	store := NewStore(Config{DSN: dsn, Retry: retry})
	if err := store.Start(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) Products() domain.ProductRepository { return s.products }

func (s *Store) Orders() domain.OrderRepository { return s.orders }

// Start подключается с ограниченным числом попыток и, если включено, применяет миграции.
func (s *Store) Start(ctx context.Context) error {
	if err := s.sup.Start(ctx); err != nil {
		return err
	}
	if !s.cfg.AutoMigrate {
		return nil
	}
	if err := s.MigrateUp(ctx, 0); err != nil {
		_ = s.sup.Stop(ctx)
		return fmt.Errorf("%w: %w", domain.ErrStartupFailure, err)
	}
	return nil
}

func (s *Store) State() domain.ConnectionState { return s.sup.State() }

// Close останавливает переподключение и закрывает пул.
func (s *Store) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.sup.Stop(ctx)
}

// DB возвращает raw SQL DB, когда нужен низкоуровневый доступ.
func (s *Store) DB() *sql.DB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db
}

// Connect открывает новый пул. Вызывается супервизором.
func (s *Store) Connect(context.Context) error {
	db, err := sql.Open("pgx", s.cfg.DSN)
	if err != nil {
		return fmt.Errorf("open postgres connection: %w", err)
	}
	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)
	db.SetConnMaxIdleTime(defaultConnMaxIdleTime)

	s.mu.Lock()
	s.db = db
	s.mu.Unlock()
	return nil
}

// Ping проверяет доступность подключения.
func (s *Store) Ping(ctx context.Context) error {
	db := s.DB()
	if db == nil {
		return fmt.Errorf("postgres store is not initialized")
	}
	return db.PingContext(ctx)
}

// Disconnect закрывает текущий пул.
func (s *Store) Disconnect(context.Context) error {
	s.mu.Lock()
	db := s.db
	s.db = nil
	s.mu.Unlock()

	if db == nil {
		return nil
	}
	return db.Close()
}

// conn возвращает пул или ErrStorageUnavailable, если соединения нет.
func (s *Store) conn() (*sql.DB, error) {
	if err := s.sup.Available(); err != nil {
		return nil, err
	}
	db := s.DB()
	if db == nil {
		return nil, domain.ErrStorageUnavailable
	}
	return db, nil
}

var (
	_ domain.Storage    = (*Store)(nil)
	_ supervisor.Dialer = (*Store)(nil)
)
