package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/titan-coffee/internal/domain"
)

func sampleProduct(code string, price float64) domain.Product {
	now := time.Now().UTC().Round(time.Microsecond)
	return domain.Product{
		ProductCode: code,
		Name:        "Espresso",
		Price:       price,
		Category:    domain.CategoryBeverage,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func sampleOrder(date time.Time) domain.Order {
	return domain.Order{
		Date: date,
		Product: domain.ProductSnapshot{
			ProductCode: "ESP01",
			Name:        "Espresso",
			Price:       4.99,
			Category:    domain.CategoryBeverage,
		},
		Size:      domain.SizeSmall,
		Quantity:  2,
		CreatedAt: date,
		UpdatedAt: date,
	}
}

func TestProductRepository_PostgresCRUD(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := store.Products()
	ctx := context.Background()

	created, err := repo.Create(ctx, sampleProduct("ESP01", 4.99))
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected assigned id")
	}

	if _, err := repo.Create(ctx, sampleProduct("ESP01", 1)); !errors.Is(err, domain.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	byCode, err := repo.GetByCode(ctx, "ESP01")
	if err != nil {
		t.Fatalf("get by code: %v", err)
	}
	if byCode.ID != created.ID || byCode.Price != 4.99 {
		t.Fatalf("unexpected product: %+v", byCode)
	}

	updated, err := repo.Update(ctx, created.ID, domain.ProductUpdate{Name: "Double Espresso", Price: 5.99, Category: domain.CategoryBeverage}, time.Now().UTC())
	if err != nil {
		t.Fatalf("update product: %v", err)
	}
	if updated.ProductCode != "ESP01" || updated.Name != "Double Espresso" {
		t.Fatalf("unexpected updated product: %+v", updated)
	}

	count, err := repo.Count(ctx)
	if err != nil || count != 1 {
		t.Fatalf("expected count 1, got %d (%v)", count, err)
	}

	if _, err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}
	if _, err := repo.GetByCode(ctx, "ESP01"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	lower := sampleProduct("ESP02", 3.5)
	lower.Name = "espresso"
	upper := sampleProduct("LAT01", 4.5)
	upper.Name = "Latte"
	for _, p := range []domain.Product{lower, upper} {
		if _, err := repo.Create(ctx, p); err != nil {
			t.Fatalf("create %s: %v", p.ProductCode, err)
		}
	}
	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Latte" || list[1].Name != "espresso" {
		t.Fatalf("expected byte order Latte, espresso; got %+v", list)
	}
}

func TestOrderRepository_PostgresSnapshotRoundTrip(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := store.Orders()
	ctx := context.Background()

	now := time.Now().UTC().Round(time.Microsecond)
	older, err := repo.Create(ctx, sampleOrder(now.Add(-time.Hour)))
	if err != nil {
		t.Fatalf("create older order: %v", err)
	}
	newer, err := repo.Create(ctx, sampleOrder(now))
	if err != nil {
		t.Fatalf("create newer order: %v", err)
	}

	got, err := repo.Get(ctx, older.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got.Product != older.Product || !got.Date.Equal(older.Date) {
		t.Fatalf("snapshot did not survive round trip: %+v", got)
	}

	listed, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != newer.ID {
		t.Fatalf("expected newest order first: %+v", listed)
	}

	updated, err := repo.Update(ctx, older.ID, domain.OrderUpdate{Size: domain.SizeLarge, Quantity: 3}, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("update order: %v", err)
	}
	if updated.Size != domain.SizeLarge || updated.Quantity != 3 || updated.Product != older.Product {
		t.Fatalf("unexpected updated order: %+v", updated)
	}

	if _, err := repo.Delete(ctx, older.ID); err != nil {
		t.Fatalf("delete order: %v", err)
	}
	if _, err := repo.Delete(ctx, older.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
