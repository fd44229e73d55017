package dto

import "github.com/shopspring/decimal"

// SaleItemRequest línea del carrito en PUT /api/sales/:id.
// Si unit_price va en cero se toma el precio de catálogo.
type SaleItemRequest struct {
	ProductID    string          `json:"product_id"`
	Quantity     int64           `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineDiscount decimal.Decimal `json:"line_discount"`
}

// UpdateSaleRequest body para PUT /api/sales/:id: reemplaza items, cliente,
// descuento adicional y pago; la respuesta trae los totales recalculados.
type UpdateSaleRequest struct {
	ClientNIT          string            `json:"client_nit"`
	ClientName         string            `json:"client_name,omitempty"`
	Items              []SaleItemRequest `json:"items"`
	AdditionalDiscount decimal.Decimal   `json:"additional_discount"`
	Paid               decimal.Decimal   `json:"paid"`
}

// CancelSaleRequest body para POST /api/sales/:id/cancel.
type CancelSaleRequest struct {
	Reason string `json:"reason"`
}

// TotalsResponse snapshot de totales en respuestas.
type TotalsResponse struct {
	Subtotal           decimal.Decimal `json:"subtotal"`
	AdditionalDiscount decimal.Decimal `json:"additional_discount"`
	Total              decimal.Decimal `json:"total"`
	Paid               decimal.Decimal `json:"paid"`
	Change             decimal.Decimal `json:"change"`
}

// SaleItemResponse línea de venta en respuestas.
type SaleItemResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	UnitOfMeasure string          `json:"unit_of_measure,omitempty"`
	Quantity      int64           `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	LineDiscount  decimal.Decimal `json:"line_discount"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

// FiscalReceiptResponse comprobante fiscal embebido en la venta facturada.
type FiscalReceiptResponse struct {
	InvoiceNumber     int64  `json:"invoice_number"`
	AuthorizationCode string `json:"authorization_code"`
	CUF               string `json:"cuf"`
	DocumentHash      string `json:"document_hash,omitempty"`
	ReceptionCode     string `json:"reception_code,omitempty"`
	QRVerificationURL string `json:"qr_verification_url,omitempty"`
	IssuedAt          string `json:"issued_at"`
}

// CancellationResponse datos de la anulación.
type CancellationResponse struct {
	Reason           string `json:"reason"`
	CancellationCode string `json:"cancellation_code"`
	CancelledAt      string `json:"cancelled_at"`
}

// SaleResponse venta completa en respuestas.
type SaleResponse struct {
	ID           string                 `json:"id"`
	Status       string                 `json:"status"`
	ClientNIT    string                 `json:"client_nit"`
	ClientName   string                 `json:"client_name"`
	Items        []SaleItemResponse     `json:"items"`
	Totals       TotalsResponse         `json:"totals"`
	Receipt      *FiscalReceiptResponse `json:"receipt,omitempty"`
	Cancellation *CancellationResponse  `json:"cancellation,omitempty"`
	CreatedAt    string                 `json:"created_at"`
	InvoicedAt   string                 `json:"invoiced_at,omitempty"`
}
