package dto

import "github.com/shopspring/decimal"

// ProductResponse producto del catálogo en respuestas de búsqueda.
type ProductResponse struct {
	ID            string          `json:"id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	UnitOfMeasure string          `json:"unit_of_measure,omitempty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	StockQuantity int64           `json:"stock_quantity"`
}

// StockResponse stock autoritativo de un producto.
type StockResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}
