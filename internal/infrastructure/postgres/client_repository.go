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

var _ repository.ClientRepository = (*ClientRepo)(nil)

// ClientRepo implementación de ClientRepository sobre PostgreSQL (usable con pool o tx).
type ClientRepo struct {
	q Querier
}

// NewClientRepository construye el adaptador de clientes. Pasar pool o tx (Querier).
func NewClientRepository(q Querier) *ClientRepo {
	return &ClientRepo{q: q}
}

// Create persiste un cliente nuevo.
func (r *ClientRepo) Create(client *entity.Client) error {
	query := `
		INSERT INTO clients (nit, name, document_type, phone, email, last_purchase_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		client.NIT, client.Name, client.DocumentType, client.Phone, client.Email,
		client.LastPurchaseAt, client.CreatedAt, client.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: cliente %s", domain.ErrDuplicate, client.NIT)
		}
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

// Update actualiza los datos de un cliente existente.
func (r *ClientRepo) Update(client *entity.Client) error {
	query := `
		UPDATE clients SET name = $2, document_type = $3, phone = $4, email = $5,
		       last_purchase_at = $6, updated_at = $7
		WHERE nit = $1`
	tag, err := r.q.Exec(context.Background(), query,
		client.NIT, client.Name, client.DocumentType, client.Phone, client.Email,
		client.LastPurchaseAt, client.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: cliente %s", domain.ErrNotFound, client.NIT)
	}
	return nil
}

// GetByNIT devuelve nil, nil si el cliente no existe.
func (r *ClientRepo) GetByNIT(nit string) (*entity.Client, error) {
	query := `
		SELECT nit, name, document_type, phone, email, last_purchase_at, created_at, updated_at
		FROM clients WHERE nit = $1`
	var c entity.Client
	err := r.q.QueryRow(context.Background(), query, nit).Scan(
		&c.NIT, &c.Name, &c.DocumentType, &c.Phone, &c.Email,
		&c.LastPurchaseAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return &c, nil
}

// List devuelve clientes paginados por nombre.
func (r *ClientRepo) List(limit, offset int) ([]*entity.Client, error) {
	query := `
		SELECT nit, name, document_type, phone, email, last_purchase_at, created_at, updated_at
		FROM clients ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var out []*entity.Client
	for rows.Next() {
		var c entity.Client
		if err := rows.Scan(&c.NIT, &c.Name, &c.DocumentType, &c.Phone, &c.Email,
			&c.LastPurchaseAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
