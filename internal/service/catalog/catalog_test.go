package catalog_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/titan-coffee/internal/domain"
	"github.com/vladislavdragonenkov/titan-coffee/internal/metrics"
	"github.com/vladislavdragonenkov/titan-coffee/internal/service/catalog"
	"github.com/vladislavdragonenkov/titan-coffee/internal/storage/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ChangeEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func fixedClock() func() time.Time {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func newCatalog(opts ...catalog.Option) *catalog.Catalog {
	opts = append([]catalog.Option{
		catalog.WithClock(fixedClock()),
		catalog.WithMetrics(metrics.NewShopMetricsWithRegisterer(prometheus.NewRegistry())),
	}, opts...)
	return catalog.New(memory.NewProductRepository(), opts...)
}

func espresso() domain.ProductInput {
	return domain.ProductInput{ProductCode: "ESP01", Name: "Espresso", Price: 4.99, Category: domain.CategoryBeverage}
}

func TestAdd_FindByCodeReturnsAddedProduct(t *testing.T) {
	ctx := context.Background()
	c := newCatalog()

	created, err := c.Add(ctx, espresso())
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	found, ok, err := c.FindByCode(ctx, "ESP01")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, created, found)
	require.Equal(t, "Espresso", found.Name)
	require.Equal(t, 4.99, found.Price)
	require.Equal(t, domain.CategoryBeverage, found.Category)
}

func TestFindByCode_MissingIsNotAnError(t *testing.T) {
	c := newCatalog()

	_, ok, err := c.FindByCode(context.Background(), "esp01")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAdd_DuplicateLeavesCatalogUnchanged(t *testing.T) {
	ctx := context.Background()
	c := newCatalog()

	_, err := c.Add(ctx, espresso())
	require.NoError(t, err)
	before, err := c.List(ctx)
	require.NoError(t, err)

	_, err = c.Add(ctx, domain.ProductInput{ProductCode: "ESP01", Name: "Other", Price: 1, Category: domain.CategoryMerch})
	require.ErrorIs(t, err, domain.ErrDuplicateKey)

	after, err := c.List(ctx)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestAdd_ValidationHappensBeforeStorage(t *testing.T) {
	ctx := context.Background()
	c := newCatalog()

	_, err := c.Add(ctx, domain.ProductInput{ProductCode: "X", Name: "X", Price: 0, Category: domain.CategoryBakery})
	require.ErrorIs(t, err, domain.ErrInvalidRange)

	_, err = c.Add(ctx, domain.ProductInput{ProductCode: "X", Name: "X", Price: 1, Category: "tea"})
	require.ErrorIs(t, err, domain.ErrInvalidEnum)

	count, err := c.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestUpdate_KeepsProductCode(t *testing.T) {
	ctx := context.Background()
	c := newCatalog()

	created, err := c.Add(ctx, espresso())
	require.NoError(t, err)

	updated, err := c.Update(ctx, created.ID, domain.ProductUpdate{Name: "Espresso Doppio", Price: 5.49, Category: domain.CategoryBeverage})
	require.NoError(t, err)
	require.Equal(t, "ESP01", updated.ProductCode)
	require.Equal(t, "Espresso Doppio", updated.Name)

	_, err = c.Update(ctx, "missing", domain.ProductUpdate{Name: "A", Price: 1, Category: domain.CategoryBeverage})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	c := newCatalog()

	created, err := c.Add(ctx, espresso())
	require.NoError(t, err)

	removed, err := c.Remove(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, removed.ID)

	_, err = c.Remove(ctx, created.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList_OrderedByCategoryThenName(t *testing.T) {
	ctx := context.Background()
	c := newCatalog()
	_, err := c.Initialize(ctx)
	require.NoError(t, err)

	products, err := c.List(ctx)
	require.NoError(t, err)
	for i := 1; i < len(products); i++ {
		prev, cur := products[i-1], products[i]
		if prev.Category == cur.Category {
			require.LessOrEqual(t, prev.Name, cur.Name)
		} else {
			require.Less(t, string(prev.Category), string(cur.Category))
		}
	}
}

func TestInitialize_SeedsOnceWhenEmpty(t *testing.T) {
	ctx := context.Background()
	c := newCatalog()

	seeded, err := c.Initialize(ctx)
	require.NoError(t, err)
	require.Equal(t, 12, seeded)

	count, err := c.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 12, count)

	seeded, err = c.Initialize(ctx)
	require.NoError(t, err)
	require.Zero(t, seeded)

	count, err = c.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 12, count)
}

func TestInitialize_SkipsNonEmptyCatalog(t *testing.T) {
	ctx := context.Background()
	c := newCatalog()
	_, err := c.Add(ctx, domain.ProductInput{ProductCode: "OWN01", Name: "House Blend", Price: 3, Category: domain.CategoryPantry})
	require.NoError(t, err)

	seeded, err := c.Initialize(ctx)
	require.NoError(t, err)
	require.Zero(t, seeded)

	count, err := c.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestAddBatch_PartialSuccess(t *testing.T) {
	ctx := context.Background()
	c := newCatalog()

	entries := []json.RawMessage{
		json.RawMessage(`{"productCode":"ESP01","name":"Espresso","price":4.99,"category":"beverage"}`),
		json.RawMessage(`{"productCode":"ESP01","name":"Espresso","price":4.99,"category":"beverage"}`),
		json.RawMessage(`{"productCode":"MUG01","name":"Titan Mug","price":"12.49","category":"merch"}`),
		json.RawMessage(`42`),
		json.RawMessage(`{"productCode":"CRO01","name":"Croissant","price":2.49,"category":"bakery"}`),
	}

	result := c.AddBatch(ctx, entries)
	require.False(t, result.OK())
	require.Len(t, result.Saved, 2)
	require.Len(t, result.Rejected, 3)

	require.Equal(t, 1, result.Rejected[0].Index)
	require.ErrorIs(t, result.Rejected[0].Err, domain.ErrDuplicateKey)
	require.Equal(t, 2, result.Rejected[1].Index)
	require.ErrorIs(t, result.Rejected[1].Err, domain.ErrInvalidType)
	require.Equal(t, 3, result.Rejected[2].Index)
	require.ErrorIs(t, result.Rejected[2].Err, domain.ErrInvalidType)
}

func TestEvents_PublishFailureDoesNotFailOperation(t *testing.T) {
	ctx := context.Background()
	publisher := &recordingPublisher{err: errors.New("broker down")}
	c := newCatalog(catalog.WithPublisher(publisher))

	created, err := c.Add(ctx, espresso())
	require.NoError(t, err)
	_, err = c.Update(ctx, created.ID, domain.ProductUpdate{Name: "Espresso", Price: 5, Category: domain.CategoryBeverage})
	require.NoError(t, err)
	_, err = c.Remove(ctx, created.ID)
	require.NoError(t, err)

	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	require.Len(t, publisher.events, 3)
	require.Equal(t, domain.EventProductCreated, publisher.events[0].Type)
	require.Equal(t, domain.EventProductUpdated, publisher.events[1].Type)
	require.Equal(t, domain.EventProductDeleted, publisher.events[2].Type)
	require.Equal(t, created.ID, publisher.events[0].AggregateID)
}
