// Package validation разбирает сырые JSON-поля запросов в типизированные входные данные домена.
//
// Отсутствие поля и нулевое значение различаются: {"quantity": 0} считается ошибкой диапазона,
// а не "отсутствующее поле".
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/titan-coffee/internal/domain"
)

// Fields содержит поля одного элемента запроса. Числа хранятся как json.Number.
type Fields map[string]any

// ErrMalformedBody: тело запроса не является JSON-объектом или массивом.
var ErrMalformedBody = errors.New("request body must be a JSON object or an array of objects")

// SplitBatch разбивает тело на элементы: одиночный объект превращается в пакет из одного элемента.
func SplitBatch(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, ErrMalformedBody
	}
	switch trimmed[0] {
	case '[':
		var entries []json.RawMessage
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, ErrMalformedBody
		}
		return entries, nil
	case '{':
		if !json.Valid(trimmed) {
			return nil, ErrMalformedBody
		}
		return []json.RawMessage{json.RawMessage(trimmed)}, nil
	default:
		return nil, ErrMalformedBody
	}
}

// Decode разбирает один JSON-объект, сохраняя числа как json.Number.
func Decode(raw []byte) (Fields, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var fields Fields
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return nil, &domain.ValidationError{
			Field:  "body",
			Value:  string(raw),
			Kind:   domain.ErrInvalidType,
			Reason: "entry must be a JSON object",
		}
	}
	return fields, nil
}

func (f Fields) missing(names ...string) []string {
	var out []string
	for _, name := range names {
		if _, ok := f[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}

func (f Fields) requireAll(names ...string) error {
	if missing := f.missing(names...); len(missing) > 0 {
		// Как и раньше, сообщаем полный список обязательных полей.
		return domain.MissingFields(names...)
	}
	return nil
}

func (f Fields) nonEmptyString(field string) (string, error) {
	v := f[field]
	s, ok := v.(string)
	if !ok {
		return "", domain.InvalidString(field, v, domain.ErrInvalidType)
	}
	if err := domain.CheckNonEmpty(field, s); err != nil {
		return "", err
	}
	return s, nil
}

func (f Fields) size() (domain.Size, error) {
	v := f["size"]
	s, _ := v.(string)
	size := domain.Size(s)
	if !size.Valid() {
		return "", domain.InvalidSize(v, domain.ErrInvalidEnum)
	}
	return size, nil
}

func (f Fields) quantity() (int, error) {
	v := f["quantity"]
	n, ok := number(v)
	if !ok {
		return 0, domain.InvalidQuantity(v, domain.ErrInvalidType)
	}
	if n != math.Trunc(n) || n <= 0 || n > math.MaxInt32 {
		return 0, domain.InvalidQuantity(v, domain.ErrInvalidRange)
	}
	return int(n), nil
}

func (f Fields) price() (float64, error) {
	v := f["price"]
	n, ok := number(v)
	if !ok {
		return 0, domain.InvalidPrice(v, domain.ErrInvalidType)
	}
	if n <= 0 || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, domain.InvalidPrice(v, domain.ErrInvalidRange)
	}
	return n, nil
}

func (f Fields) category() (domain.Category, error) {
	v := f["category"]
	s, ok := v.(string)
	if !ok {
		return "", domain.InvalidCategory(v, domain.ErrInvalidType)
	}
	c := domain.Category(s)
	if !c.Valid() {
		return "", domain.InvalidCategory(v, domain.ErrInvalidEnum)
	}
	return c, nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// date возвращает нулевое время, если дата не передана.
func (f Fields) date() (time.Time, error) {
	v, ok := f["date"]
	if !ok || v == nil {
		return time.Time{}, nil
	}
	switch d := v.(type) {
	case string:
		if strings.TrimSpace(d) == "" {
			return time.Time{}, nil
		}
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, d); err == nil {
				return ts.UTC(), nil
			}
		}
	case json.Number:
		if ms, err := d.Int64(); err == nil {
			return time.UnixMilli(ms).UTC(), nil
		}
	}
	return time.Time{}, domain.InvalidDate(v)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
