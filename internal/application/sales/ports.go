package sales

import (
	"context"

	"github.com/farmavida/pos-api/internal/domain/entity"
)

// FiscalGateway es el puerto hacia la autoridad fiscal (SIAT).
// Submit es idempotente por clave: reenviar la misma venta con la misma clave
// devuelve el comprobante ya emitido sin consumir un nuevo número de factura.
type FiscalGateway interface {
	Submit(ctx context.Context, sale *entity.Sale, idempotencyKey string) (*entity.FiscalReceipt, error)
	// Cancel anula una factura ya autorizada. Una segunda anulación del mismo
	// número devuelve domain.ErrGatewayRejected.
	Cancel(ctx context.Context, invoiceNumber int64, reason string) (*entity.Cancellation, error)
}

// StockReconciler aplica movimientos de stock de forma atómica: o todas las
// líneas se aplican o ninguna.
type StockReconciler interface {
	// Reserve descuenta stock por cada línea. Devuelve domain.ErrInsufficientStock
	// si alguna línea no alcanza, sin aplicar ninguna.
	Reserve(ctx context.Context, items []entity.SaleItem) error
	// Release devuelve al stock las cantidades de una venta anulada.
	Release(ctx context.Context, items []entity.SaleItem) error
}
