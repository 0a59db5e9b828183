package domain

import "time"

// Size описывает размер порции в заказе.
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// Valid проверяет, что размер один из small/medium/large.
func (s Size) Valid() bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge:
		return true
	default:
		return false
	}
}

// ProductSnapshot — копия полей товара на момент оформления заказа.
// После создания заказа снимок не пересчитывается из каталога.
type ProductSnapshot struct {
	ProductCode string
	Name        string
	Price       float64
	Category    Category
}

// Order — запись в журнале заказов.
type Order struct {
	ID        string
	Date      time.Time
	Product   ProductSnapshot
	Size      Size
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderInput — данные для оформления заказа. Нулевая Date означает "сейчас".
type OrderInput struct {
	Date        time.Time
	ProductCode string
	Size        Size
	Quantity    int
}

// Validate проверяет поля заказа до обращения к каталогу и хранилищу.
func (in OrderInput) Validate() error {
	if err := CheckNonEmpty("productCode", in.ProductCode); err != nil {
		return err
	}
	return OrderUpdate{Size: in.Size, Quantity: in.Quantity}.Validate()
}

// OrderUpdate содержит изменяемые поля заказа: снимок товара и дата неизменны.
type OrderUpdate struct {
	Size     Size
	Quantity int
}

// Validate проверяет размер и количество.
func (u OrderUpdate) Validate() error {
	if !u.Size.Valid() {
		return InvalidSize(u.Size, ErrInvalidEnum)
	}
	// Ноль считается ошибкой диапазона, а не отсутствующим полем.
	if u.Quantity <= 0 {
		return InvalidQuantity(u.Quantity, ErrInvalidRange)
	}
	return nil
}
