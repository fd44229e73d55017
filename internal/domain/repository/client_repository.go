package repository

import "github.com/farmavida/pos-api/internal/domain/entity"

// ClientRepository define el puerto de persistencia de clientes, con clave NIT/CI.
type ClientRepository interface {
	Create(client *entity.Client) error
	Update(client *entity.Client) error
	// GetByNIT devuelve nil, nil si el cliente no existe.
	GetByNIT(nit string) (*entity.Client, error)
	List(limit, offset int) ([]*entity.Client, error)
}
