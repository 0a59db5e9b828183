package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/titan-coffee/internal/domain"
)

const productColumns = `id, product_code, name, price, category, created_at, updated_at`

type productRepository struct {
	store *Store
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var (
		p        domain.Product
		category string
	)
	if err := row.Scan(&p.ID, &p.ProductCode, &p.Name, &p.Price, &category, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return domain.Product{}, err
	}
	p.Category = domain.Category(category)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func (r *productRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	db, err := r.store.conn()
	if err != nil {
		return domain.Product{}, err
	}

	product.ID = uuid.NewString()
	row := db.QueryRowContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING `+productColumns,
		product.ID, product.ProductCode, product.Name, product.Price,
		string(product.Category), product.CreatedAt.UTC(), product.UpdatedAt.UTC(),
	)
	created, err := scanProduct(row)
	if err != nil {
		return domain.Product{}, r.store.translate("insert product", err)
	}
	return created, nil
}

func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	db, err := r.store.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY category COLLATE "C" ASC, name COLLATE "C" ASC
	`)
	if err != nil {
		return nil, r.store.translate("query products", err)
	}
	defer rows.Close()

	result := make([]domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, r.store.translate("scan product", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, r.store.translate("iterate products", err)
	}
	return result, nil
}

func (r *productRepository) GetByCode(ctx context.Context, code string) (domain.Product, error) {
	db, err := r.store.conn()
	if err != nil {
		return domain.Product{}, err
	}

	p, err := scanProduct(db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE product_code = $1
	`, code))
	if err != nil {
		return domain.Product{}, r.store.translate("select product", err)
	}
	return p, nil
}

func (r *productRepository) Update(ctx context.Context, id string, upd domain.ProductUpdate, updatedAt time.Time) (domain.Product, error) {
	pid, err := parseID(id)
	if err != nil {
		return domain.Product{}, err
	}
	db, err := r.store.conn()
	if err != nil {
		return domain.Product{}, err
	}

	p, err := scanProduct(db.QueryRowContext(ctx, `
		UPDATE products
		SET name = $2, price = $3, category = $4, updated_at = $5
		WHERE id = $1
		RETURNING `+productColumns,
		pid, upd.Name, upd.Price, string(upd.Category), updatedAt.UTC(),
	))
	if err != nil {
		return domain.Product{}, r.store.translate("update product", err)
	}
	return p, nil
}

func (r *productRepository) Delete(ctx context.Context, id string) (domain.Product, error) {
	pid, err := parseID(id)
	if err != nil {
		return domain.Product{}, err
	}
	db, err := r.store.conn()
	if err != nil {
		return domain.Product{}, err
	}

	p, err := scanProduct(db.QueryRowContext(ctx, `
		DELETE FROM products
		WHERE id = $1
		RETURNING `+productColumns, pid))
	if err != nil {
		return domain.Product{}, r.store.translate("delete product", err)
	}
	return p, nil
}

func (r *productRepository) Count(ctx context.Context) (int, error) {
	db, err := r.store.conn()
	if err != nil {
		return 0, err
	}

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, r.store.translate("count products", err)
	}
	return n, nil
}

var _ domain.ProductRepository = (*productRepository)(nil)
