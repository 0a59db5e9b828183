package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrNotFound возвращается, если по идентификатору или коду нет записи.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateKey сигнализирует о нарушении уникальности при создании.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrUnknownProduct — заказ ссылается на несуществующий productCode.
	ErrUnknownProduct = errors.New("unknown product")
	// ErrStorageUnavailable — хранилище недоступно (нет соединения или идёт переподключение).
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrStartupFailure — исчерпан лимит попыток подключения при старте.
	ErrStartupFailure = errors.New("startup failure")

	// ErrMissingField — обязательное поле отсутствует в запросе.
	ErrMissingField = errors.New("missing field")
	// ErrInvalidType — поле присутствует, но имеет неверный тип.
	ErrInvalidType = errors.New("invalid type")
	// ErrInvalidEnum — значение не входит в допустимый набор.
	ErrInvalidEnum = errors.New("invalid enum value")
	// ErrInvalidRange — значение вне допустимого диапазона.
	ErrInvalidRange = errors.New("invalid range")
)

// ValidationError описывает ошибку валидации конкретного поля.
// Error() возвращает сообщение, пригодное для показа клиенту.
type ValidationError struct {
	Field  string
	Value  any
	Kind   error
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Kind)
}

// Unwrap позволяет сравнивать ошибку с ErrInvalidEnum/ErrInvalidRange и т.д. через errors.Is.
func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// IsValidation проверяет, является ли ошибка ошибкой валидации входных данных.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// MissingFields формирует ошибку отсутствия обязательных полей.
func MissingFields(fields ...string) *ValidationError {
	return &ValidationError{
		Field:  strings.Join(fields, ","),
		Kind:   ErrMissingField,
		Reason: "Missing required fields: " + strings.Join(fields, ", "),
	}
}

// InvalidString: строковое поле пустое или не строка.
func InvalidString(field string, value any, kind error) *ValidationError {
	return &ValidationError{
		Field:  field,
		Value:  value,
		Kind:   kind,
		Reason: field + " must be a non-empty string",
	}
}

// InvalidPrice: цена не является конечным положительным числом.
func InvalidPrice(value any, kind error) *ValidationError {
	return &ValidationError{
		Field:  "price",
		Value:  value,
		Kind:   kind,
		Reason: "price must be a positive number",
	}
}

// InvalidCategory: категория вне фиксированного списка.
func InvalidCategory(value any, kind error) *ValidationError {
	return &ValidationError{
		Field:  "category",
		Value:  value,
		Kind:   kind,
		Reason: "category must be one of: " + joinCategories(),
	}
}

// InvalidSize: размер не small/medium/large.
func InvalidSize(value any, kind error) *ValidationError {
	return &ValidationError{
		Field:  "size",
		Value:  value,
		Kind:   kind,
		Reason: fmt.Sprintf("Invalid size: %s must be small, medium, or large", renderValue(value)),
	}
}

// InvalidQuantity: количество не целое положительное число.
func InvalidQuantity(value any, kind error) *ValidationError {
	return &ValidationError{
		Field:  "quantity",
		Value:  value,
		Kind:   kind,
		Reason: fmt.Sprintf("Invalid quantity: %s must be a positive integer greater than 0", renderValue(value)),
	}
}

// InvalidDate: дата заказа не распознана.
func InvalidDate(value any) *ValidationError {
	return &ValidationError{
		Field:  "date",
		Value:  value,
		Kind:   ErrInvalidType,
		Reason: fmt.Sprintf("Invalid date: %s must be an ISO-8601 timestamp or epoch milliseconds", renderValue(value)),
	}
}

// renderValue печатает значение из запроса так, как оно выглядело в JSON:
// строки в кавычках, отсутствующее значение как null.
func renderValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case json.Number:
		return val.String()
	}
	if reflect.ValueOf(v).Kind() == reflect.String {
		return fmt.Sprintf("%q", v)
	}
	return fmt.Sprintf("%v", v)
}

func joinCategories() string {
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

// UnknownProductError — заказ ссылается на код, которого нет в каталоге.
type UnknownProductError struct {
	Code string
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("Invalid productCode: %s not found", e.Code)
}

func (e *UnknownProductError) Unwrap() error {
	return ErrUnknownProduct
}
