package sale

import (
	"github.com/shopspring/decimal"

	"github.com/farmavida/pos-api/internal/domain/entity"
	"github.com/farmavida/pos-api/pkg/siat"
)

// ViolationCode identifica la regla de negocio incumplida. El resultado agrupa
// todas las violaciones, no solo la primera, para que el terminal las reporte
// de una vez.
type ViolationCode string

const (
	ViolationEmptyCart          ViolationCode = "EMPTY_CART"
	ViolationInsufficientStock  ViolationCode = "INSUFFICIENT_STOCK"
	ViolationFiscalIDRequired   ViolationCode = "FISCAL_ID_REQUIRED"
	ViolationClientNameRequired ViolationCode = "CLIENT_NAME_REQUIRED"
)

// Result es el resultado estructurado de la validación. No se lanza error:
// el caller decide cómo reportar.
type Result struct {
	Valid      bool
	Violations []ViolationCode
}

func (r Result) has(code ViolationCode) Result {
	r.Valid = false
	r.Violations = append(r.Violations, code)
	return r
}

// ValidateLight valida lo mínimo para guardar una venta: al menos una línea.
// No muta estado.
func ValidateLight(s *entity.Sale) Result {
	res := Result{Valid: true}
	if len(s.Items) == 0 {
		res = res.has(ViolationEmptyCart)
	}
	return res
}

// ValidateFull valida lo necesario para facturar: los chequeos light, stock
// autoritativo suficiente por línea (currentStock viene del catálogo, no de la
// caché del terminal), y las reglas de identificación fiscal: sobre el umbral
// el NIT no puede ser el código anónimo, y el nombre del cliente es obligatorio.
// No muta estado.
func ValidateFull(s *entity.Sale, currentStock map[string]int64, fiscalIDThreshold decimal.Decimal) Result {
	res := ValidateLight(s)

	// Las cantidades se agregan por producto: dos líneas del mismo producto
	// compiten por el mismo stock.
	needed := make(map[string]int64, len(s.Items))
	for i := range s.Items {
		needed[s.Items[i].ProductID] += s.Items[i].Quantity
	}
	for productID, qty := range needed {
		if qty > currentStock[productID] {
			res = res.has(ViolationInsufficientStock)
			break
		}
	}

	if s.Totals.Total.GreaterThanOrEqual(fiscalIDThreshold) && s.Client.NIT == siat.NITAnonimo {
		res = res.has(ViolationFiscalIDRequired)
	}

	if s.Client.Name == "" {
		res = res.has(ViolationClientNameRequired)
	}

	return res
}
