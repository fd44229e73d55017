package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/farmavida/pos-api/internal/domain"
)

// Estados del ciclo de vida de una venta.
// Draft es el inicial; Cancelled es terminal; Invoiced solo admite la
// transición única a Cancelled.
const (
	StatusDraft     = "DRAFT"     // carrito mutable, aún no persistida como venta guardada
	StatusSaved     = "SAVED"     // persistida y editable, recargable en el terminal
	StatusInvoiced  = "INVOICED"  // facturada ante el SIN; items y totales congelados
	StatusCancelled = "CANCELLED" // anulada; el stock fue restituido
)

// legalTransitions transiciones permitidas del estado de una venta.
var legalTransitions = map[string][]string{
	StatusDraft:    {StatusSaved, StatusInvoiced},
	StatusSaved:    {StatusSaved, StatusInvoiced},
	StatusInvoiced: {StatusCancelled},
}

// Totals es el snapshot de totales de una venta.
// Invariantes: total = max(0, subtotal − descuento), change = max(0, paid − total).
type Totals struct {
	Subtotal           decimal.Decimal
	AdditionalDiscount decimal.Decimal
	Total              decimal.Decimal
	Paid               decimal.Decimal
	Change             decimal.Decimal
}

// Cancellation registra la anulación única de una venta facturada.
type Cancellation struct {
	Reason           string
	CancellationCode string
	CancelledAt      time.Time
}

// Sale es el agregado raíz del motor de ventas. Posee sus items en exclusiva;
// una vez facturada, items y totales quedan congelados (copia profunda) y
// cualquier edición requiere una venta nueva.
type Sale struct {
	ID           string
	Client       ClientSnapshot
	Items        []SaleItem
	Status       string
	Totals       Totals
	Receipt      *FiscalReceipt // nil hasta facturar
	Cancellation *Cancellation  // nil hasta anular
	CreatedAt    time.Time
	UpdatedAt    time.Time
	InvoicedAt   *time.Time
}

// ClientSnapshot es la copia de los datos del cliente embebida en la venta.
// Se congela junto con los items al facturar.
type ClientSnapshot struct {
	NIT          string
	Name         string
	DocumentType string
	Email        string
	Phone        string
}

// CanTransition indica si el cambio de estado from→to es legal.
func CanTransition(from, to string) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionTo cambia el estado de la venta validando la máquina de estados.
// Retorna ErrIllegalTransition sin efectos secundarios si el cambio no es legal.
func (s *Sale) TransitionTo(status string) error {
	if !CanTransition(s.Status, status) {
		return domain.ErrIllegalTransition
	}
	s.Status = status
	return nil
}

// IsEditable indica si los items/cliente/descuento de la venta aún pueden cambiar.
func (s *Sale) IsEditable() bool {
	return s.Status == StatusDraft || s.Status == StatusSaved
}

// Clone devuelve una copia profunda de la venta (items, receipt y cancellation incluidos).
// Se usa para congelar el snapshot al facturar y para que los repositorios en
// memoria nunca compartan punteros con el caller.
func (s *Sale) Clone() *Sale {
	out := *s
	out.Items = make([]SaleItem, len(s.Items))
	copy(out.Items, s.Items)
	if s.Receipt != nil {
		r := *s.Receipt
		out.Receipt = &r
	}
	if s.Cancellation != nil {
		c := *s.Cancellation
		out.Cancellation = &c
	}
	if s.InvoicedAt != nil {
		t := *s.InvoicedAt
		out.InvoicedAt = &t
	}
	return &out
}
