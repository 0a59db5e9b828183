package domain_test

import (
	"errors"
	"math"
	"testing"

	"github.com/vladislavdragonenkov/titan-coffee/internal/domain"
)

func TestOrderInputValidate(t *testing.T) {
	cases := []struct {
		name string
		in   domain.OrderInput
		kind error
	}{
		{name: "ok", in: domain.OrderInput{ProductCode: "ESP01", Size: domain.SizeSmall, Quantity: 2}},
		{name: "blank code", in: domain.OrderInput{ProductCode: "  ", Size: domain.SizeSmall, Quantity: 1}, kind: domain.ErrInvalidRange},
		{name: "bad size", in: domain.OrderInput{ProductCode: "ESP01", Size: "venti", Quantity: 1}, kind: domain.ErrInvalidEnum},
		{name: "zero quantity", in: domain.OrderInput{ProductCode: "ESP01", Size: domain.SizeLarge, Quantity: 0}, kind: domain.ErrInvalidRange},
		{name: "negative quantity", in: domain.OrderInput{ProductCode: "ESP01", Size: domain.SizeLarge, Quantity: -3}, kind: domain.ErrInvalidRange},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.in.Validate()
			if tc.kind == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.kind) {
				t.Fatalf("expected %v, got %v", tc.kind, err)
			}
			if errors.Is(err, domain.ErrMissingField) {
				t.Fatalf("must not be reported as missing field: %v", err)
			}
		})
	}
}

func TestProductInputValidate(t *testing.T) {
	valid := domain.ProductInput{ProductCode: "ESP01", Name: "Espresso", Price: 4.99, Category: domain.CategoryBeverage}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid product, got %v", err)
	}

	cases := []struct {
		name string
		mut  func(p *domain.ProductInput)
		kind error
	}{
		{name: "empty code", mut: func(p *domain.ProductInput) { p.ProductCode = "" }, kind: domain.ErrInvalidRange},
		{name: "empty name", mut: func(p *domain.ProductInput) { p.Name = "\t" }, kind: domain.ErrInvalidRange},
		{name: "zero price", mut: func(p *domain.ProductInput) { p.Price = 0 }, kind: domain.ErrInvalidRange},
		{name: "infinite price", mut: func(p *domain.ProductInput) { p.Price = math.Inf(1) }, kind: domain.ErrInvalidRange},
		{name: "nan price", mut: func(p *domain.ProductInput) { p.Price = math.NaN() }, kind: domain.ErrInvalidRange},
		{name: "unknown category", mut: func(p *domain.ProductInput) { p.Category = "tools" }, kind: domain.ErrInvalidEnum},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mut(&in)
			if err := in.Validate(); !errors.Is(err, tc.kind) {
				t.Fatalf("expected %v, got %v", tc.kind, err)
			}
		})
	}
}

func TestProductSnapshot(t *testing.T) {
	p := domain.Product{ID: "p-1", ProductCode: "ESP01", Name: "Espresso", Price: 4.99, Category: domain.CategoryBeverage}
	want := domain.ProductSnapshot{ProductCode: "ESP01", Name: "Espresso", Price: 4.99, Category: domain.CategoryBeverage}
	if got := p.Snapshot(); got != want {
		t.Fatalf("Snapshot() = %+v, want %+v", got, want)
	}
}

func TestDefaultProducts(t *testing.T) {
	products := domain.DefaultProducts()
	if len(products) != 12 {
		t.Fatalf("expected 12 starter products, got %d", len(products))
	}
	seen := make(map[string]struct{}, len(products))
	for _, p := range products {
		if err := p.Validate(); err != nil {
			t.Fatalf("starter product %s is invalid: %v", p.ProductCode, err)
		}
		if _, dup := seen[p.ProductCode]; dup {
			t.Fatalf("duplicate starter code %s", p.ProductCode)
		}
		seen[p.ProductCode] = struct{}{}
	}
}

func TestCategoriesAndSizes(t *testing.T) {
	if len(domain.Categories()) != 5 {
		t.Fatalf("expected 5 categories, got %d", len(domain.Categories()))
	}
	if domain.Category("tools").Valid() {
		t.Fatal("tools must not be a valid category")
	}
	for _, s := range []domain.Size{domain.SizeSmall, domain.SizeMedium, domain.SizeLarge} {
		if !s.Valid() {
			t.Fatalf("size %s must be valid", s)
		}
	}
	if domain.Size("SMALL").Valid() {
		t.Fatal("sizes are case sensitive")
	}
}
