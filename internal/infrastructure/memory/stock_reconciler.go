package memory

import (
	"context"
	"fmt"

	"github.com/farmavida/pos-api/internal/domain"
	"github.com/farmavida/pos-api/internal/domain/entity"
)

// StockReconciler aplica movimientos de stock sobre el catálogo en memoria.
// Todo o nada: se verifica cada línea bajo el mismo candado antes de aplicar
// la primera, así el stock nunca queda negativo ni a medio descontar.
type StockReconciler struct {
	products *ProductRepository
}

func NewStockReconciler(products *ProductRepository) *StockReconciler {
	return &StockReconciler{products: products}
}

// Reserve descuenta el stock de cada línea de la venta.
func (r *StockReconciler) Reserve(ctx context.Context, items []entity.SaleItem) error {
	return r.products.applyStockDeltas(negate(deltasOf(items)))
}

// Release restituye el stock de una venta anulada.
func (r *StockReconciler) Release(ctx context.Context, items []entity.SaleItem) error {
	return r.products.applyStockDeltas(deltasOf(items))
}

// deltasOf acumula cantidades por producto; una venta puede repetir el mismo
// producto en varias líneas.
func deltasOf(items []entity.SaleItem) map[string]int64 {
	out := make(map[string]int64, len(items))
	for i := range items {
		out[items[i].ProductID] += items[i].Quantity
	}
	return out
}

func negate(deltas map[string]int64) map[string]int64 {
	for id := range deltas {
		deltas[id] = -deltas[id]
	}
	return deltas
}

// applyStockDeltas aplica los deltas de forma atómica bajo el candado del
// catálogo. Si algún producto no existe o quedaría en negativo, no se aplica
// ninguno. La reserva corre después de la validación con stock autoritativo,
// así que un faltante aquí es un conflicto con otra venta concurrente.
func (r *ProductRepository) applyStockDeltas(deltas map[string]int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, delta := range deltas {
		p, ok := r.products[id]
		if !ok {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
		}
		if p.StockQuantity+delta < 0 {
			return fmt.Errorf("%w: producto %s (disponible %d, solicitado %d)",
				domain.ErrStockConflict, id, p.StockQuantity, -delta)
		}
	}
	for id, delta := range deltas {
		r.products[id].StockQuantity += delta
	}
	return nil
}
