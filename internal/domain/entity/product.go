package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo de la farmacia. Desde el motor
// de ventas es un agregado externo: se referencia, no se posee; solo el stock
// se modifica (vía el reconciliador) al facturar o anular.
type Product struct {
	ID            string
	Code          string // código de barras / SKU
	Name          string
	UnitOfMeasure string
	UnitPrice     decimal.Decimal
	StockQuantity int64 // invariante: ≥ 0
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
