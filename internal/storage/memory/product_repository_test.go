package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/titan-coffee/internal/domain"
	"github.com/vladislavdragonenkov/titan-coffee/internal/storage/memory"
)

func newProduct(code, name string, category domain.Category) domain.Product {
	now := time.Now().UTC()
	return domain.Product{
		ProductCode: code,
		Name:        name,
		Price:       2.5,
		Category:    category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestProductRepository_CreateDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProductRepository()

	if _, err := repo.Create(ctx, newProduct("ESP01", "Espresso", domain.CategoryBeverage)); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := repo.Create(ctx, newProduct("ESP01", "Other", domain.CategoryMerch)); !errors.Is(err, domain.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 product after rejected duplicate, got %d", count)
	}
}

func TestProductRepository_ListOrder(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProductRepository()
	seed := []domain.Product{
		newProduct("MUG01", "Titan Mug", domain.CategoryMerch),
		newProduct("LAT01", "Latte", domain.CategoryBeverage),
		newProduct("CRO01", "Croissant", domain.CategoryBakery),
		newProduct("ESP01", "Espresso", domain.CategoryBeverage),
	}
	for _, p := range seed {
		if _, err := repo.Create(ctx, p); err != nil {
			t.Fatalf("create %s failed: %v", p.ProductCode, err)
		}
	}

	products, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	want := []string{"CRO01", "ESP01", "LAT01", "MUG01"}
	for i, code := range want {
		if products[i].ProductCode != code {
			t.Fatalf("position %d: expected %s, got %s", i, code, products[i].ProductCode)
		}
	}
}

func TestProductRepository_DeleteFreesCode(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProductRepository()

	created, err := repo.Create(ctx, newProduct("TEE01", "Titan T-Shirt", domain.CategoryMerch))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	removed, err := repo.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if removed.ID != created.ID {
		t.Fatalf("expected removed id %s, got %s", created.ID, removed.ID)
	}
	if _, err := repo.GetByCode(ctx, "TEE01"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := repo.Create(ctx, newProduct("TEE01", "Titan T-Shirt", domain.CategoryMerch)); err != nil {
		t.Fatalf("code should be reusable after delete: %v", err)
	}
}

func TestProductRepository_UpdateKeepsCode(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProductRepository()

	created, err := repo.Create(ctx, newProduct("ESP01", "Espresso", domain.CategoryBeverage))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	updated, err := repo.Update(ctx, created.ID, domain.ProductUpdate{Name: "Double Espresso", Price: 5.49, Category: domain.CategoryBeverage}, time.Now().UTC())
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.ProductCode != "ESP01" || updated.Name != "Double Espresso" || updated.Price != 5.49 {
		t.Fatalf("unexpected updated product: %+v", updated)
	}

	byCode, err := repo.GetByCode(ctx, "ESP01")
	if err != nil {
		t.Fatalf("get by code failed: %v", err)
	}
	if byCode != updated {
		t.Fatalf("expected %+v, got %+v", updated, byCode)
	}
}

func TestStore_AlwaysConnected(t *testing.T) {
	store := memory.NewStore()
	if err := store.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if store.State() != domain.StateConnected {
		t.Fatalf("expected connected state, got %s", store.State())
	}
	if store.Products() == nil || store.Orders() == nil {
		t.Fatal("repositories must not be nil")
	}
}
