package kafka

import (
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/titan-coffee/internal/domain"
)

// DefaultTopicPrefix — префикс топиков по умолчанию.
const DefaultTopicPrefix = "titan"

// Topics — имена топиков для событий каталога и журнала заказов.
type Topics struct {
	Catalog string
	Orders  string
}

// NewTopics строит имена топиков из префикса: <prefix>.catalog.events, <prefix>.order.events.
func NewTopics(prefix string) Topics {
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{
		Catalog: prefix + ".catalog.events",
		Orders:  prefix + ".order.events",
	}
}

// For выбирает топик по типу агрегата.
func (t Topics) For(aggregateType string) (string, error) {
	switch aggregateType {
	case domain.AggregateProduct:
		return t.Catalog, nil
	case domain.AggregateOrder:
		return t.Orders, nil
	default:
		return "", fmt.Errorf("unknown aggregate type %q", aggregateType)
	}
}

// Event — JSON-представление ChangeEvent в Kafka.
type Event struct {
	EventType     domain.EventType `json:"event_type"`
	AggregateType string           `json:"aggregate_type"`
	AggregateID   string           `json:"aggregate_id"`
	Timestamp     time.Time        `json:"timestamp"`
	Data          any              `json:"data,omitempty"`
}

// ProductData — товар в теле события.
type ProductData struct {
	ID          string    `json:"id"`
	ProductCode string    `json:"productCode"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SnapshotData — снимок товара внутри заказа.
type SnapshotData struct {
	ProductCode string  `json:"productCode"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}

// OrderData — заказ в теле события.
type OrderData struct {
	ID              string       `json:"id"`
	Date            time.Time    `json:"date"`
	ProductSnapshot SnapshotData `json:"productSnapshot"`
	Size            string       `json:"size"`
	Quantity        int          `json:"quantity"`
}

// NewEvent преобразует доменное событие в сообщение для Kafka.
func NewEvent(e domain.ChangeEvent) Event {
	event := Event{
		EventType:     e.Type,
		AggregateType: e.AggregateType,
		AggregateID:   e.AggregateID,
		Timestamp:     e.Occurred.UTC(),
	}

	switch p := e.Payload.(type) {
	case domain.Product:
		event.Data = ProductData{
			ID:          p.ID,
			ProductCode: p.ProductCode,
			Name:        p.Name,
			Price:       p.Price,
			Category:    string(p.Category),
			UpdatedAt:   p.UpdatedAt.UTC(),
		}
	case domain.Order:
		event.Data = OrderData{
			ID:   p.ID,
			Date: p.Date.UTC(),
			ProductSnapshot: SnapshotData{
				ProductCode: p.Product.ProductCode,
				Name:        p.Product.Name,
				Price:       p.Product.Price,
				Category:    string(p.Product.Category),
			},
			Size:     string(p.Size),
			Quantity: p.Quantity,
		}
	default:
		event.Data = e.Payload
	}
	return event
}
