package httpsvc

import (
	"time"

	"github.com/vladislavdragonenkov/titan-coffee/internal/domain"
)

type productResponse struct {
	ID          string    `json:"id"`
	ProductCode string    `json:"productCode"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type snapshotResponse struct {
	ProductCode string  `json:"productCode"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}

type orderResponse struct {
	ID              string           `json:"id"`
	Date            time.Time        `json:"date"`
	ProductSnapshot snapshotResponse `json:"productSnapshot"`
	Size            string           `json:"size"`
	Quantity        int              `json:"quantity"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type batchError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

type orderBatchResponse struct {
	Message     string          `json:"message"`
	SavedOrders []orderResponse `json:"savedOrders"`
	Errors      []batchError    `json:"errors,omitempty"`
}

type productBatchResponse struct {
	Message       string            `json:"message"`
	SavedProducts []productResponse `json:"savedProducts"`
	Errors        []batchError      `json:"errors,omitempty"`
}

type productMutationResponse struct {
	Message string          `json:"message"`
	Product productResponse `json:"product"`
}

type orderMutationResponse struct {
	Message string        `json:"message"`
	Order   orderResponse `json:"order"`
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		ProductCode: p.ProductCode,
		Name:        p.Name,
		Price:       p.Price,
		Category:    string(p.Category),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProductResponses(products []domain.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}

func toOrderResponse(o domain.Order) orderResponse {
	return orderResponse{
		ID:   o.ID,
		Date: o.Date,
		ProductSnapshot: snapshotResponse{
			ProductCode: o.Product.ProductCode,
			Name:        o.Product.Name,
			Price:       o.Product.Price,
			Category:    string(o.Product.Category),
		},
		Size:      string(o.Size),
		Quantity:  o.Quantity,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func toOrderResponses(orders []domain.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}

func toBatchErrors(rejected []domain.Rejection) []batchError {
	out := make([]batchError, 0, len(rejected))
	for _, r := range rejected {
		out = append(out, batchError{Index: r.Index, Error: publicMessage(r.Err)})
	}
	return out
}
