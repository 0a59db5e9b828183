package ledger_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/vladislavdragonenkov/titan-coffee/internal/domain"
	"github.com/vladislavdragonenkov/titan-coffee/internal/metrics"
	"github.com/vladislavdragonenkov/titan-coffee/internal/service/catalog"
	"github.com/vladislavdragonenkov/titan-coffee/internal/service/ledger"
	"github.com/vladislavdragonenkov/titan-coffee/internal/storage/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ChangeEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

type unavailableOrders struct {
	domain.OrderRepository
}

func (unavailableOrders) Create(context.Context, domain.Order) (domain.Order, error) {
	return domain.Order{}, domain.ErrStorageUnavailable
}

type LedgerSuite struct {
	suite.Suite

	ctx       context.Context
	now       time.Time
	catalog   *catalog.Catalog
	ledger    *ledger.Ledger
	publisher *recordingPublisher
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerSuite))
}

func (s *LedgerSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return s.now }

	store := memory.NewStore()
	m := metrics.NewShopMetricsWithRegisterer(prometheus.NewRegistry())
	s.publisher = &recordingPublisher{}
	s.catalog = catalog.New(store.Products(), catalog.WithClock(clock), catalog.WithMetrics(m))
	s.ledger = ledger.New(store.Orders(), s.catalog,
		ledger.WithClock(clock),
		ledger.WithMetrics(m),
		ledger.WithPublisher(s.publisher),
	)

	_, err := s.catalog.Initialize(s.ctx)
	s.Require().NoError(err)
}

func (s *LedgerSuite) TestAdd_EmbedsSnapshot() {
	order, err := s.ledger.Add(s.ctx, domain.OrderInput{ProductCode: "ESP01", Size: domain.SizeSmall, Quantity: 2})
	s.Require().NoError(err)

	s.NotEmpty(order.ID)
	s.Equal(domain.ProductSnapshot{
		ProductCode: "ESP01",
		Name:        "Espresso",
		Price:       4.99,
		Category:    domain.CategoryBeverage,
	}, order.Product)
	s.Equal(domain.SizeSmall, order.Size)
	s.Equal(2, order.Quantity)
	s.True(order.Date.Equal(s.now), "date defaults to now")
}

func (s *LedgerSuite) TestAdd_KeepsExplicitDate() {
	date := time.Date(2024, 12, 24, 18, 0, 0, 0, time.UTC)
	order, err := s.ledger.Add(s.ctx, domain.OrderInput{Date: date, ProductCode: "LAT01", Size: domain.SizeLarge, Quantity: 1})
	s.Require().NoError(err)
	s.True(order.Date.Equal(date))
	s.True(order.CreatedAt.Equal(s.now))
}

func (s *LedgerSuite) TestAdd_SnapshotSurvivesPriceChange() {
	order, err := s.ledger.Add(s.ctx, domain.OrderInput{ProductCode: "ESP01", Size: domain.SizeMedium, Quantity: 1})
	s.Require().NoError(err)

	product, ok, err := s.catalog.FindByCode(s.ctx, "ESP01")
	s.Require().NoError(err)
	s.Require().True(ok)
	_, err = s.catalog.Update(s.ctx, product.ID, domain.ProductUpdate{Name: "Espresso", Price: 9.99, Category: domain.CategoryBeverage})
	s.Require().NoError(err)

	stored, err := s.ledger.Get(s.ctx, order.ID)
	s.Require().NoError(err)
	s.Equal(4.99, stored.Product.Price)
}

func (s *LedgerSuite) TestAdd_SnapshotSurvivesProductRemoval() {
	order, err := s.ledger.Add(s.ctx, domain.OrderInput{ProductCode: "MUG01", Size: domain.SizeSmall, Quantity: 1})
	s.Require().NoError(err)

	product, _, err := s.catalog.FindByCode(s.ctx, "MUG01")
	s.Require().NoError(err)
	_, err = s.catalog.Remove(s.ctx, product.ID)
	s.Require().NoError(err)

	stored, err := s.ledger.Get(s.ctx, order.ID)
	s.Require().NoError(err)
	s.Equal("Titan Mug", stored.Product.Name)
}

func (s *LedgerSuite) TestAdd_UnknownProduct() {
	_, err := s.ledger.Add(s.ctx, domain.OrderInput{ProductCode: "NOPE", Size: domain.SizeSmall, Quantity: 1})
	s.Require().ErrorIs(err, domain.ErrUnknownProduct)
	s.Equal("Invalid productCode: NOPE not found", err.Error())

	orders, err := s.ledger.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(orders)
}

func (s *LedgerSuite) TestAdd_QuantityZeroIsRangeError() {
	_, err := s.ledger.Add(s.ctx, domain.OrderInput{ProductCode: "ESP01", Size: domain.SizeSmall, Quantity: 0})
	s.Require().ErrorIs(err, domain.ErrInvalidRange)
	s.NotErrorIs(err, domain.ErrMissingField)
}

func (s *LedgerSuite) TestAdd_InvalidSize() {
	_, err := s.ledger.Add(s.ctx, domain.OrderInput{ProductCode: "ESP01", Size: "venti", Quantity: 1})
	s.Require().ErrorIs(err, domain.ErrInvalidEnum)
}

func (s *LedgerSuite) TestList_DateDescending() {
	for _, day := range []int{1, 3, 2} {
		_, err := s.ledger.Add(s.ctx, domain.OrderInput{
			Date:        time.Date(2025, 1, day, 0, 0, 0, 0, time.UTC),
			ProductCode: "REG01",
			Size:        domain.SizeSmall,
			Quantity:    1,
		})
		s.Require().NoError(err)
	}

	orders, err := s.ledger.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(orders, 3)
	s.Equal(3, orders[0].Date.Day())
	s.Equal(2, orders[1].Date.Day())
	s.Equal(1, orders[2].Date.Day())
}

func (s *LedgerSuite) TestUpdate_OnlySizeAndQuantity() {
	order, err := s.ledger.Add(s.ctx, domain.OrderInput{ProductCode: "ESP01", Size: domain.SizeSmall, Quantity: 2})
	s.Require().NoError(err)

	updated, err := s.ledger.Update(s.ctx, order.ID, domain.OrderUpdate{Size: domain.SizeLarge, Quantity: 4})
	s.Require().NoError(err)
	s.Equal(domain.SizeLarge, updated.Size)
	s.Equal(4, updated.Quantity)
	s.Equal(order.Product, updated.Product)
	s.True(order.Date.Equal(updated.Date))

	_, err = s.ledger.Update(s.ctx, order.ID, domain.OrderUpdate{Size: domain.SizeLarge, Quantity: -1})
	s.Require().ErrorIs(err, domain.ErrInvalidRange)
}

func (s *LedgerSuite) TestRemove_MissingLeavesLedgerUnchanged() {
	_, err := s.ledger.Add(s.ctx, domain.OrderInput{ProductCode: "ESP01", Size: domain.SizeSmall, Quantity: 1})
	s.Require().NoError(err)
	before, err := s.ledger.List(s.ctx)
	s.Require().NoError(err)

	_, err = s.ledger.Remove(s.ctx, "does-not-exist")
	s.Require().ErrorIs(err, domain.ErrNotFound)

	after, err := s.ledger.List(s.ctx)
	s.Require().NoError(err)
	s.Equal(before, after)
}

func (s *LedgerSuite) TestAddBatch_ThreeValidTwoInvalid() {
	entries := []json.RawMessage{
		json.RawMessage(`{"productCode":"ESP01","size":"small","quantity":2}`),
		json.RawMessage(`{"productCode":"ESP01","size":"small","quantity":0}`),
		json.RawMessage(`{"productCode":"LAT01","size":"medium","quantity":1}`),
		json.RawMessage(`{"productCode":"NOPE","size":"large","quantity":1}`),
		json.RawMessage(`{"productCode":"CRO01","size":"large","quantity":3,"date":"2025-02-14T08:00:00Z"}`),
	}

	result := s.ledger.AddBatch(s.ctx, entries)
	s.False(result.OK())
	s.Require().Len(result.Saved, 3)
	s.Require().Len(result.Rejected, 2)

	s.Equal(1, result.Rejected[0].Index)
	s.ErrorIs(result.Rejected[0].Err, domain.ErrInvalidRange)
	s.Equal(3, result.Rejected[1].Index)
	s.ErrorIs(result.Rejected[1].Err, domain.ErrUnknownProduct)

	for _, saved := range result.Saved {
		s.NotEmpty(saved.ID)
	}

	orders, err := s.ledger.List(s.ctx)
	s.Require().NoError(err)
	s.Len(orders, 3)
}

func (s *LedgerSuite) TestEvents() {
	order, err := s.ledger.Add(s.ctx, domain.OrderInput{ProductCode: "ESP01", Size: domain.SizeSmall, Quantity: 1})
	s.Require().NoError(err)
	_, err = s.ledger.Update(s.ctx, order.ID, domain.OrderUpdate{Size: domain.SizeMedium, Quantity: 1})
	s.Require().NoError(err)
	_, err = s.ledger.Remove(s.ctx, order.ID)
	s.Require().NoError(err)

	s.publisher.mu.Lock()
	defer s.publisher.mu.Unlock()
	s.Require().Len(s.publisher.events, 3)
	s.Equal(domain.EventOrderCreated, s.publisher.events[0].Type)
	s.Equal(domain.EventOrderUpdated, s.publisher.events[1].Type)
	s.Equal(domain.EventOrderDeleted, s.publisher.events[2].Type)
	s.Equal(domain.AggregateOrder, s.publisher.events[0].AggregateType)
}

func TestAddBatch_AllUnavailable(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	cat := catalog.New(store.Products())
	_, err := cat.Initialize(ctx)
	require.NoError(t, err)

	l := ledger.New(unavailableOrders{OrderRepository: store.Orders()}, cat)
	result := l.AddBatch(ctx, []json.RawMessage{
		json.RawMessage(`{"productCode":"ESP01","size":"small","quantity":1}`),
		json.RawMessage(`{"productCode":"LAT01","size":"small","quantity":1}`),
	})

	require.Empty(t, result.Saved)
	require.Len(t, result.Rejected, 2)
	require.True(t, result.Unavailable())
}
