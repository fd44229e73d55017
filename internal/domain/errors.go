package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
//
// Taxonomía del motor de ventas:
//   - ErrValidation: regla de negocio incumplida antes de tocar la pasarela; sin reintento.
//   - ErrGatewayTransient: fallo de red/timeout contra el SIN; reintentable con backoff acotado.
//   - ErrGatewayRejected: el SIN rechazó el documento; sin reintento, sin cambio de estado.
//   - ErrStockConflict: otra venta consumió el stock entre la validación y la reserva.
//     Envuelve ErrInsufficientStock: todo conflicto es un caso de stock insuficiente.
//   - ErrIllegalTransition: transición de estado no permitida (ej. anular dos veces).
//   - ErrReconciliationFault: el SIN ya emitió la factura pero la reserva local falló;
//     requiere conciliación manual, nunca reenvío automático.
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrValidation          = errors.New("validación de venta fallida")
	ErrGatewayTransient    = errors.New("fallo transitorio de la pasarela fiscal")
	ErrGatewayRejected     = errors.New("documento rechazado por la autoridad fiscal")
	ErrIllegalTransition   = errors.New("transición de estado no permitida")
	ErrReconciliationFault = errors.New("factura emitida sin reserva de stock: requiere conciliación manual")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrStockConflict       = fmt.Errorf("%w: conflicto concurrente tras la validación", ErrInsufficientStock)
)
