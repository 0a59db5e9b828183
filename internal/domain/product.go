package domain

import (
	"math"
	"strings"
	"time"
)

// Category группирует товары каталога.
type Category string

const (
	CategoryBeverage Category = "beverage"
	CategoryPantry   Category = "pantry"
	CategoryBakery   Category = "bakery"
	CategorySnacks   Category = "snacks"
	CategoryMerch    Category = "merch"
)

var categories = []Category{
	CategoryBeverage,
	CategoryPantry,
	CategoryBakery,
	CategorySnacks,
	CategoryMerch,
}

// Categories возвращает допустимые категории каталога.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Valid проверяет, что категория входит в фиксированный список.
func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// Product описывает позицию каталога. ProductCode уникален и не меняется после создания.
type Product struct {
	ID          string
	ProductCode string
	Name        string
	Price       float64
	Category    Category
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Snapshot возвращает копию полей товара для встраивания в заказ.
func (p Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		ProductCode: p.ProductCode,
		Name:        p.Name,
		Price:       p.Price,
		Category:    p.Category,
	}
}

// ProductInput — данные для создания товара.
type ProductInput struct {
	ProductCode string
	Name        string
	Price       float64
	Category    Category
}

// Validate проверяет поля нового товара и возвращает первую найденную ошибку.
func (in ProductInput) Validate() error {
	if err := CheckNonEmpty("productCode", in.ProductCode); err != nil {
		return err
	}
	return ProductUpdate{Name: in.Name, Price: in.Price, Category: in.Category}.Validate()
}

// ProductUpdate содержит изменяемые поля товара.
type ProductUpdate struct {
	Name     string
	Price    float64
	Category Category
}

// Validate проверяет изменяемые поля товара.
func (u ProductUpdate) Validate() error {
	switch {
	case strings.TrimSpace(u.Name) == "":
		return InvalidString("name", u.Name, ErrInvalidRange)
	case !validPrice(u.Price):
		return InvalidPrice(u.Price, ErrInvalidRange)
	case !u.Category.Valid():
		return InvalidCategory(u.Category, ErrInvalidEnum)
	}
	return nil
}

// CheckNonEmpty проверяет, что строка не пуста после обрезки пробелов.
func CheckNonEmpty(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return InvalidString(field, value, ErrInvalidRange)
	}
	return nil
}

func validPrice(p float64) bool {
	return p > 0 && !math.IsInf(p, 0) && !math.IsNaN(p)
}

// DefaultProducts — стартовый каталог для пустого хранилища.
func DefaultProducts() []ProductInput {
	return []ProductInput{
		{ProductCode: "ESP01", Name: "Espresso", Price: 4.99, Category: CategoryBeverage},
		{ProductCode: "LAT01", Name: "Latte", Price: 5.29, Category: CategoryBeverage},
		{ProductCode: "REG01", Name: "Regular Coffee", Price: 2.99, Category: CategoryBeverage},
		{ProductCode: "DBT01", Name: "Dillberry Tea", Price: 2.99, Category: CategoryBeverage},
		{ProductCode: "TDC01", Name: "Titan Dark Coffee Beans", Price: 7.99, Category: CategoryPantry},
		{ProductCode: "TVC01", Name: "Titan Vanilla Creamer", Price: 2.49, Category: CategoryPantry},
		{ProductCode: "CRO01", Name: "Croissant", Price: 2.49, Category: CategoryBakery},
		{ProductCode: "BBM01", Name: "Blueberry Muffin", Price: 3.29, Category: CategoryBakery},
		{ProductCode: "TRM01", Name: "Trail Mix", Price: 2.19, Category: CategorySnacks},
		{ProductCode: "PTB01", Name: "Protein Bar", Price: 1.99, Category: CategorySnacks},
		{ProductCode: "MUG01", Name: "Titan Mug", Price: 12.49, Category: CategoryMerch},
		{ProductCode: "TEE01", Name: "Titan T-Shirt", Price: 19.99, Category: CategoryMerch},
	}
}
