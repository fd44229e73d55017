package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/farmavida/pos-api/internal/domain"
	"github.com/farmavida/pos-api/internal/domain/entity"
	"github.com/farmavida/pos-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación de ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador del catálogo. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, code, name, unit_of_measure, unit_price, stock_quantity, created_at, updated_at`

// Create da de alta un producto.
func (r *ProductRepo) Create(product *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		product.ID, product.Code, product.Name, product.UnitOfMeasure,
		product.UnitPrice, product.StockQuantity, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: producto %s", domain.ErrDuplicate, product.Code)
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// Update actualiza un producto del catálogo.
func (r *ProductRepo) Update(product *entity.Product) error {
	query := `
		UPDATE products SET code = $2, name = $3, unit_of_measure = $4,
		       unit_price = $5, stock_quantity = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		product.ID, product.Code, product.Name, product.UnitOfMeasure,
		product.UnitPrice, product.StockQuantity, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, product.ID)
	}
	return nil
}

// GetByID devuelve nil, nil si el producto no existe.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	return r.getBy("id", id)
}

// GetByCode devuelve nil, nil si no hay producto con ese código.
func (r *ProductRepo) GetByCode(code string) (*entity.Product, error) {
	return r.getBy("code", code)
}

func (r *ProductRepo) getBy(column, value string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE ` + column + ` = $1`
	var p entity.Product
	err := r.q.QueryRow(context.Background(), query, value).Scan(
		&p.ID, &p.Code, &p.Name, &p.UnitOfMeasure,
		&p.UnitPrice, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// Search busca por nombre o código, insensible a mayúsculas y acentos.
// Requiere la extensión unaccent (ver migrations/001_schema.sql); query ya
// viene normalizada por el caso de uso.
func (r *ProductRepo) Search(query string, limit int) ([]*entity.Product, error) {
	sql := `
		SELECT ` + productColumns + ` FROM products
		WHERE unaccent(lower(name)) LIKE '%' || $1 || '%'
		   OR unaccent(lower(code)) LIKE '%' || $1 || '%'
		ORDER BY name LIMIT $2`
	rows, err := r.q.Query(context.Background(), sql, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	var out []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.UnitOfMeasure,
			&p.UnitPrice, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// StockByIDs devuelve el stock autoritativo actual por producto.
func (r *ProductRepo) StockByIDs(ids []string) (map[string]int64, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT id, stock_quantity FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("stock by ids: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int64, len(ids))
	for rows.Next() {
		var id string
		var qty int64
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		out[id] = qty
	}
	return out, rows.Err()
}
