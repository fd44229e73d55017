package repository

import "github.com/farmavida/pos-api/internal/domain/entity"

// ProductRepository define el puerto de lectura/escritura del catálogo.
// Para el motor de ventas es de solo lectura; el stock se modifica únicamente
// a través del reconciliador.
type ProductRepository interface {
	Create(product *entity.Product) error
	Update(product *entity.Product) error
	// GetByID devuelve nil, nil si el producto no existe.
	GetByID(id string) (*entity.Product, error)
	GetByCode(code string) (*entity.Product, error)
	// Search busca por nombre o código (insensible a mayúsculas y acentos).
	Search(query string, limit int) ([]*entity.Product, error)
	// StockByIDs devuelve el stock autoritativo actual por producto.
	// Los IDs inexistentes simplemente no aparecen en el mapa.
	StockByIDs(ids []string) (map[string]int64, error)
}
