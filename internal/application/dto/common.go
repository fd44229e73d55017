package dto

// ErrorResponse cuerpo estándar de error de la API.
// Violations se llena solo en errores de validación de venta.
// ManualReview es true únicamente en fallas de conciliación fiscal: el terminal
// debe mostrar una alerta no descartable que dirija a seguimiento manual.
type ErrorResponse struct {
	Code         string   `json:"code"`
	Message      string   `json:"message"`
	Violations   []string `json:"violations,omitempty"`
	ManualReview bool     `json:"manual_review,omitempty"`
}
