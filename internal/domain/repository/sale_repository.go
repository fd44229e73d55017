package repository

import (
	"time"

	"github.com/farmavida/pos-api/internal/domain/entity"
)

// SaleFilter filtros para la consulta de ventas. Todos opcionales; se combinan con AND.
type SaleFilter struct {
	DateFrom      *time.Time
	DateTo        *time.Time
	Status        string
	InvoiceNumber string // coincidencia por substring contra el número de factura
	NIT           string
	Limit         int
	Offset        int
}

// SaleRepository define el puerto de persistencia del agregado Sale.
// Las implementaciones devuelven copias (o filas frescas): el caller nunca
// comparte punteros con el almacén.
type SaleRepository interface {
	Create(sale *entity.Sale) error
	Update(sale *entity.Sale) error
	GetByID(id string) (*entity.Sale, error)
	// List devuelve las ventas que cumplen el filtro, ordenadas por fecha de creación.
	List(filter SaleFilter) ([]*entity.Sale, error)
}
