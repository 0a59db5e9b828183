package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vladislavdragonenkov/titan-coffee/internal/domain"
)

type productDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ProductCode string             `bson:"productCode"`
	Name        string             `bson:"name"`
	Price       float64            `bson:"price"`
	Category    string             `bson:"category"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

type snapshotDocument struct {
	ProductCode string  `bson:"productCode"`
	Name        string  `bson:"name"`
	Price       float64 `bson:"price"`
	Category    string  `bson:"category"`
}

type orderDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Date      time.Time          `bson:"date"`
	Product   snapshotDocument   `bson:"productSnapshot"`
	Size      string             `bson:"size"`
	Quantity  int                `bson:"quantity"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func toProductDocument(p domain.Product) productDocument {
	return productDocument{
		ProductCode: p.ProductCode,
		Name:        p.Name,
		Price:       p.Price,
		Category:    string(p.Category),
		CreatedAt:   p.CreatedAt.UTC(),
		UpdatedAt:   p.UpdatedAt.UTC(),
	}
}

func (d productDocument) toDomain() domain.Product {
	return domain.Product{
		ID:          d.ID.Hex(),
		ProductCode: d.ProductCode,
		Name:        d.Name,
		Price:       d.Price,
		Category:    domain.Category(d.Category),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

func toOrderDocument(o domain.Order) orderDocument {
	return orderDocument{
		Date: o.Date.UTC(),
		Product: snapshotDocument{
			ProductCode: o.Product.ProductCode,
			Name:        o.Product.Name,
			Price:       o.Product.Price,
			Category:    string(o.Product.Category),
		},
		Size:      string(o.Size),
		Quantity:  o.Quantity,
		CreatedAt: o.CreatedAt.UTC(),
		UpdatedAt: o.UpdatedAt.UTC(),
	}
}

func (d orderDocument) toDomain() domain.Order {
	return domain.Order{
		ID:   d.ID.Hex(),
		Date: d.Date.UTC(),
		Product: domain.ProductSnapshot{
			ProductCode: d.Product.ProductCode,
			Name:        d.Product.Name,
			Price:       d.Product.Price,
			Category:    domain.Category(d.Product.Category),
		},
		Size:      domain.Size(d.Size),
		Quantity:  d.Quantity,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}
