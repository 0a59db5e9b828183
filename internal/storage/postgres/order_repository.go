package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/titan-coffee/internal/domain"
)

const orderColumns = `id, order_date, product_snapshot, size, quantity, created_at, updated_at`

// snapshotJSON — представление снимка товара в колонке product_snapshot.
type snapshotJSON struct {
	ProductCode string  `json:"productCode"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}

type orderRepository struct {
	store *Store
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		o        domain.Order
		snapshot []byte
		size     string
	)
	if err := row.Scan(&o.ID, &o.Date, &snapshot, &size, &o.Quantity, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return domain.Order{}, err
	}

	var snap snapshotJSON
	if err := json.Unmarshal(snapshot, &snap); err != nil {
		return domain.Order{}, fmt.Errorf("decode product snapshot: %w", err)
	}
	o.Product = domain.ProductSnapshot{
		ProductCode: snap.ProductCode,
		Name:        snap.Name,
		Price:       snap.Price,
		Category:    domain.Category(snap.Category),
	}
	o.Size = domain.Size(size)
	o.Date = o.Date.UTC()
	o.CreatedAt = o.CreatedAt.UTC()
	o.UpdatedAt = o.UpdatedAt.UTC()
	return o, nil
}

func (r *orderRepository) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	db, err := r.store.conn()
	if err != nil {
		return domain.Order{}, err
	}

	snapshot, err := json.Marshal(snapshotJSON{
		ProductCode: order.Product.ProductCode,
		Name:        order.Product.Name,
		Price:       order.Product.Price,
		Category:    string(order.Product.Category),
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("encode product snapshot: %w", err)
	}

	created, err := scanOrder(db.QueryRowContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING `+orderColumns,
		uuid.NewString(), order.Date.UTC(), string(snapshot), string(order.Size),
		order.Quantity, order.CreatedAt.UTC(), order.UpdatedAt.UTC(),
	))
	if err != nil {
		return domain.Order{}, r.store.translate("insert order", err)
	}
	return created, nil
}

func (r *orderRepository) List(ctx context.Context) ([]domain.Order, error) {
	db, err := r.store.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		ORDER BY order_date DESC, id DESC
	`)
	if err != nil {
		return nil, r.store.translate("query orders", err)
	}
	defer rows.Close()

	result := make([]domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, r.store.translate("scan order", err)
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, r.store.translate("iterate orders", err)
	}
	return result, nil
}

func (r *orderRepository) Get(ctx context.Context, id string) (domain.Order, error) {
	oid, err := parseID(id)
	if err != nil {
		return domain.Order{}, err
	}
	db, err := r.store.conn()
	if err != nil {
		return domain.Order{}, err
	}

	o, err := scanOrder(db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, oid))
	if err != nil {
		return domain.Order{}, r.store.translate("select order", err)
	}
	return o, nil
}

func (r *orderRepository) Update(ctx context.Context, id string, upd domain.OrderUpdate, updatedAt time.Time) (domain.Order, error) {
	oid, err := parseID(id)
	if err != nil {
		return domain.Order{}, err
	}
	db, err := r.store.conn()
	if err != nil {
		return domain.Order{}, err
	}

	o, err := scanOrder(db.QueryRowContext(ctx, `
		UPDATE orders
		SET size = $2, quantity = $3, updated_at = $4
		WHERE id = $1
		RETURNING `+orderColumns,
		oid, string(upd.Size), upd.Quantity, updatedAt.UTC(),
	))
	if err != nil {
		return domain.Order{}, r.store.translate("update order", err)
	}
	return o, nil
}

func (r *orderRepository) Delete(ctx context.Context, id string) (domain.Order, error) {
	oid, err := parseID(id)
	if err != nil {
		return domain.Order{}, err
	}
	db, err := r.store.conn()
	if err != nil {
		return domain.Order{}, err
	}

	o, err := scanOrder(db.QueryRowContext(ctx, `
		DELETE FROM orders
		WHERE id = $1
		RETURNING `+orderColumns, oid))
	if err != nil {
		return domain.Order{}, r.store.translate("delete order", err)
	}
	return o, nil
}

var _ domain.OrderRepository = (*orderRepository)(nil)
