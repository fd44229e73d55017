package entity

import "github.com/shopspring/decimal"

// SaleItem representa una línea de la venta. Pertenece en exclusiva a una Sale
// y es mutable hasta que la venta se factura.
type SaleItem struct {
	ID            string
	SaleID        string
	ProductID     string
	Code          string
	Name          string
	UnitOfMeasure string
	Quantity      int64 // entero ≥ 1
	UnitPrice     decimal.Decimal
	LineDiscount  decimal.Decimal
	Subtotal      decimal.Decimal // cantidad × precio unitario − descuento de línea
}

// ComputeSubtotal recalcula el subtotal de la línea. El descuento de línea se
// acota al bruto para que el subtotal nunca sea negativo.
func (i *SaleItem) ComputeSubtotal() decimal.Decimal {
	gross := decimal.NewFromInt(i.Quantity).Mul(i.UnitPrice)
	sub := gross.Sub(i.LineDiscount)
	if sub.IsNegative() {
		return decimal.Zero
	}
	return sub
}
