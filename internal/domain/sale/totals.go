package sale

import (
	"github.com/shopspring/decimal"

	"github.com/farmavida/pos-api/internal/domain/entity"
)

// CalculateTotals calcula los totales de una venta a partir de sus líneas,
// el descuento adicional y el monto pagado. Es una función pura e idempotente:
// el mismo input produce siempre el mismo output, lo que permite revalidar los
// totales justo antes del envío fiscal (guardia contra deriva UI/motor).
//
// Reglas:
//   - subtotal = Σ subtotal de línea (cantidad × precio − descuento de línea)
//   - descuento adicional acotado a [0, subtotal]
//   - total = subtotal − descuento (nunca negativo)
//   - change = max(0, paid − total)
func CalculateTotals(items []entity.SaleItem, additionalDiscount, paid decimal.Decimal) entity.Totals {
	subtotal := decimal.Zero
	for i := range items {
		subtotal = subtotal.Add(items[i].ComputeSubtotal())
	}

	discount := additionalDiscount
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	total := subtotal.Sub(discount)

	change := paid.Sub(total)
	if change.IsNegative() {
		change = decimal.Zero
	}

	return entity.Totals{
		Subtotal:           subtotal,
		AdditionalDiscount: discount,
		Total:              total,
		Paid:               paid,
		Change:             change,
	}
}
