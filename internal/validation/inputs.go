package validation

import "github.com/vladislavdragonenkov/titan-coffee/internal/domain"

// Order проверяет поля нового заказа: date (опционально), productCode, size, quantity.
func Order(f Fields) (domain.OrderInput, error) {
	if err := f.requireAll("productCode", "size", "quantity"); err != nil {
		return domain.OrderInput{}, err
	}

	code, err := f.nonEmptyString("productCode")
	if err != nil {
		return domain.OrderInput{}, err
	}
	size, err := f.size()
	if err != nil {
		return domain.OrderInput{}, err
	}
	qty, err := f.quantity()
	if err != nil {
		return domain.OrderInput{}, err
	}
	date, err := f.date()
	if err != nil {
		return domain.OrderInput{}, err
	}

	return domain.OrderInput{Date: date, ProductCode: code, Size: size, Quantity: qty}, nil
}

// OrderUpdate проверяет тело изменения заказа: size и quantity.
func OrderUpdate(f Fields) (domain.OrderUpdate, error) {
	if err := f.requireAll("size", "quantity"); err != nil {
		return domain.OrderUpdate{}, err
	}
	size, err := f.size()
	if err != nil {
		return domain.OrderUpdate{}, err
	}
	qty, err := f.quantity()
	if err != nil {
		return domain.OrderUpdate{}, err
	}
	return domain.OrderUpdate{Size: size, Quantity: qty}, nil
}

// Product проверяет поля нового товара.
func Product(f Fields) (domain.ProductInput, error) {
	if err := f.requireAll("productCode", "name", "price", "category"); err != nil {
		return domain.ProductInput{}, err
	}
	code, err := f.nonEmptyString("productCode")
	if err != nil {
		return domain.ProductInput{}, err
	}
	upd, err := productFields(f)
	if err != nil {
		return domain.ProductInput{}, err
	}
	return domain.ProductInput{ProductCode: code, Name: upd.Name, Price: upd.Price, Category: upd.Category}, nil
}

// ProductUpdate проверяет изменяемые поля товара: name, price, category.
func ProductUpdate(f Fields) (domain.ProductUpdate, error) {
	if err := f.requireAll("name", "price", "category"); err != nil {
		return domain.ProductUpdate{}, err
	}
	return productFields(f)
}

func productFields(f Fields) (domain.ProductUpdate, error) {
	name, err := f.nonEmptyString("name")
	if err != nil {
		return domain.ProductUpdate{}, err
	}
	price, err := f.price()
	if err != nil {
		return domain.ProductUpdate{}, err
	}
	category, err := f.category()
	if err != nil {
		return domain.ProductUpdate{}, err
	}
	return domain.ProductUpdate{Name: name, Price: price, Category: category}, nil
}
