package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/farmavida/pos-api/internal/domain"
	"github.com/farmavida/pos-api/internal/domain/entity"
)

// StockReconciler aplica movimientos de stock sobre el catálogo en una sola
// transacción con SELECT ... FOR UPDATE: la verificación y el descuento de
// todas las líneas son atómicos frente a ventas concurrentes.
type StockReconciler struct {
	runner *TxRunner
}

func NewStockReconciler(runner *TxRunner) *StockReconciler {
	return &StockReconciler{runner: runner}
}

// Reserve descuenta el stock de cada línea; todo o nada.
func (r *StockReconciler) Reserve(ctx context.Context, items []entity.SaleItem) error {
	return r.apply(ctx, items, -1)
}

// Release restituye el stock de una venta anulada.
func (r *StockReconciler) Release(ctx context.Context, items []entity.SaleItem) error {
	return r.apply(ctx, items, +1)
}

func (r *StockReconciler) apply(ctx context.Context, items []entity.SaleItem, sign int64) error {
	deltas := make(map[string]int64, len(items))
	for i := range items {
		deltas[items[i].ProductID] += sign * items[i].Quantity
	}

	// Orden estable de bloqueo para evitar deadlocks entre ventas concurrentes.
	ids := make([]string, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return r.runner.Run(ctx, func(tx pgx.Tx) error {
		for _, id := range ids {
			var current int64
			err := tx.QueryRow(ctx,
				`SELECT stock_quantity FROM products WHERE id = $1 FOR UPDATE`, id,
			).Scan(&current)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
				}
				return fmt.Errorf("lock stock: %w", err)
			}
			// La validación ya pasó con stock autoritativo: un faltante aquí
			// significa que otra venta ganó la carrera por el mismo stock.
			next := current + deltas[id]
			if next < 0 {
				return fmt.Errorf("%w: producto %s (disponible %d, solicitado %d)",
					domain.ErrStockConflict, id, current, -deltas[id])
			}
			if _, err := tx.Exec(ctx,
				`UPDATE products SET stock_quantity = $2, updated_at = now() WHERE id = $1`,
				id, next,
			); err != nil {
				return fmt.Errorf("update stock: %w", err)
			}
		}
		return nil
	})
}
