package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/titan-coffee/internal/domain"
	"github.com/vladislavdragonenkov/titan-coffee/internal/storage/memory"
)

func newOrder(date time.Time) domain.Order {
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

func TestOrderRepository_CreateGet(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()

	created, err := repo.Create(ctx, newOrder(time.Now().UTC()))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected repository to assign an id")
	}

	stored, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored != created {
		t.Fatalf("expected %+v, got %+v", created, stored)
	}
}

func TestOrderRepository_ListByDateDesc(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()
	base := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)

	for _, offset := range []time.Duration{time.Hour, 3 * time.Hour, 2 * time.Hour} {
		if _, err := repo.Create(ctx, newOrder(base.Add(offset))); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	orders, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(orders))
	}
	for i := 1; i < len(orders); i++ {
		if orders[i-1].Date.Before(orders[i].Date) {
			t.Fatalf("orders not sorted by date desc: %v before %v", orders[i-1].Date, orders[i].Date)
		}
	}
}

func TestOrderRepository_UpdateKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()
	created, err := repo.Create(ctx, newOrder(time.Now().UTC()))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	later := created.UpdatedAt.Add(time.Minute)
	updated, err := repo.Update(ctx, created.ID, domain.OrderUpdate{Size: domain.SizeLarge, Quantity: 5}, later)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Size != domain.SizeLarge || updated.Quantity != 5 {
		t.Fatalf("unexpected mutable fields: %+v", updated)
	}
	if updated.Product != created.Product || !updated.Date.Equal(created.Date) {
		t.Fatalf("snapshot or date changed: %+v", updated)
	}
	if !updated.UpdatedAt.Equal(later) {
		t.Fatalf("expected updatedAt %v, got %v", later, updated.UpdatedAt)
	}
}

func TestOrderRepository_MissingID(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()

	if _, err := repo.Get(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on get, got %v", err)
	}
	if _, err := repo.Update(ctx, "nope", domain.OrderUpdate{Size: domain.SizeSmall, Quantity: 1}, time.Now()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
	if _, err := repo.Delete(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on delete, got %v", err)
	}
}
