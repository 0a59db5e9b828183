// Package mongo — долговременная стратегия хранения поверх MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/vladislavdragonenkov/titan-coffee/internal/domain"
	"github.com/vladislavdragonenkov/titan-coffee/internal/storage/supervisor"
)

const (
	productsCollection = "products"
	ordersCollection   = "orders"

	serverSelectionTimeout = 5 * time.Second
	socketTimeout          = 45 * time.Second
	minPoolSize            = 2
	maxPoolSize            = 10
	maxConnIdleTime        = 30 * time.Second
)

// Config описывает подключение к MongoDB.
type Config struct {
	URI      string
	Database string
	Retry    supervisor.Config
}

// Store реализует domain.Storage. Клиент пересоздаётся при каждом переподключении.
type Store struct {
	cfg    Config
	logger *log.Entry
	sup    *supervisor.Supervisor

	mu     sync.RWMutex
	client *mongo.Client
	db     *mongo.Database

	products *productRepository
	orders   *orderRepository
}

// NewStore создаёт хранилище без подключения; подключение выполняет Start.
func NewStore(cfg Config, opts ...supervisor.Option) *Store {
	s := &Store{
		cfg:    cfg,
		logger: log.WithField("component", "mongo-store"),
	}
	s.sup = supervisor.New(s, cfg.Retry, opts...)
	s.products = &productRepository{store: s}
	s.orders = &orderRepository{store: s}
	return s
}

func (s *Store) Products() domain.ProductRepository { return s.products }

func (s *Store) Orders() domain.OrderRepository { return s.orders }

// Start подключается с ограниченным числом попыток.
func (s *Store) Start(ctx context.Context) error {
	return s.sup.Start(ctx)
}

func (s *Store) State() domain.ConnectionState { return s.sup.State() }

// Close останавливает переподключение и закрывает клиента.
func (s *Store) Close(ctx context.Context) error {
	return s.sup.Stop(ctx)
}

// Connect создаёт клиента и индексы. Вызывается супервизором.
func (s *Store) Connect(ctx context.Context) error {
	clientOpts := options.Client().
		ApplyURI(s.cfg.URI).
		SetConnectTimeout(s.cfg.Retry.ConnectTimeout).
		SetServerSelectionTimeout(serverSelectionTimeout).
		SetSocketTimeout(socketTimeout).
		SetMinPoolSize(minPoolSize).
		SetMaxPoolSize(maxPoolSize).
		SetMaxConnIdleTime(maxConnIdleTime)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}

	db := client.Database(s.cfg.Database)
	if err := ensureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return err
	}

	s.mu.Lock()
	s.client = client
	s.db = db
	s.mu.Unlock()

	s.logger.WithField("database", s.cfg.Database).Debug("MongoDB client connected, indexes ensured")
	return nil
}

// Ping проверяет primary.
func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	client := s.client
	s.mu.RUnlock()
	if client == nil {
		return mongo.ErrClientDisconnected
	}
	return client.Ping(ctx, readpref.Primary())
}

// Disconnect закрывает текущего клиента, если он есть.
func (s *Store) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	client := s.client
	s.client = nil
	s.db = nil
	s.mu.Unlock()

	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(productsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "productCode", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("productCode_unique"),
	})
	if err != nil {
		return fmt.Errorf("create products index: %w", err)
	}

	_, err = db.Collection(ordersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "date", Value: -1}},
		Options: options.Index().SetName("date_desc"),
	})
	if err != nil {
		return fmt.Errorf("create orders index: %w", err)
	}
	return nil
}

// collection возвращает коллекцию или ErrStorageUnavailable, если соединения нет.
func (s *Store) collection(name string) (*mongo.Collection, error) {
	if err := s.sup.Available(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, domain.ErrStorageUnavailable
	}
	return s.db.Collection(name), nil
}

// translate переводит ошибки драйвера в доменные и сообщает супервизору об обрыве.
func (s *Store) translate(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return domain.ErrDuplicateKey
	case isConnectionError(err):
		s.sup.MarkDisconnected(err)
		return fmt.Errorf("%s: %w: %v", op, domain.ErrStorageUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func isConnectionError(err error) bool {
	return mongo.IsNetworkError(err) ||
		mongo.IsTimeout(err) ||
		errors.Is(err, mongo.ErrClientDisconnected) ||
		errors.Is(err, context.DeadlineExceeded)
}

// objectID разбирает hex-идентификатор; некорректный ID трактуется как отсутствующая запись.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrNotFound
	}
	return oid, nil
}

var (
	_ domain.Storage    = (*Store)(nil)
	_ supervisor.Dialer = (*Store)(nil)
)
