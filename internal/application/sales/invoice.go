package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/farmavida/pos-api/internal/domain"
	"github.com/farmavida/pos-api/internal/domain/entity"
	"github.com/farmavida/pos-api/internal/domain/sale"
)

// Invoice factura una venta ante el SIN y descuenta stock. Orden estricto:
// validación completa (stock autoritativo del catálogo), guardia de deriva de
// totales, envío fiscal y por último la reserva de stock.
//
// El envío usa el ID de la venta como clave de idempotencia: un reintento tras
// un fallo transitorio nunca puede producir dos facturas. Si el SIN emite el
// comprobante pero la reserva local falla, se retorna ErrReconciliationFault y
// la venta queda en su estado previo: ese caso exige revisión manual y jamás
// se reenvía en automático.
func (u *UseCase) Invoice(ctx context.Context, id string) (*entity.Sale, error) {
	unlock := u.locks.acquire(id)
	defer unlock()

	s, err := u.sales.GetByID(id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}

	// Reintento sobre una venta ya facturada: devolver el comprobante emitido.
	if s.Status == entity.StatusInvoiced {
		return s, nil
	}
	if !entity.CanTransition(s.Status, entity.StatusInvoiced) {
		return nil, fmt.Errorf("%w: la venta %s está %s", domain.ErrIllegalTransition, s.ID, s.Status)
	}

	ids := make([]string, len(s.Items))
	for i := range s.Items {
		ids[i] = s.Items[i].ProductID
	}
	stock, err := u.products.StockByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("consultar stock: %w", err)
	}

	// Guardia de deriva: los totales que viajan al SIN se recalculan aquí,
	// nunca se confía en los que dejó la última edición.
	recomputed := sale.CalculateTotals(s.Items, s.Totals.AdditionalDiscount, s.Totals.Paid)
	if !recomputed.Total.Equal(s.Totals.Total) {
		u.log.Warn().
			Str("sale_id", s.ID).
			Str("stored_total", s.Totals.Total.String()).
			Str("recomputed_total", recomputed.Total.String()).
			Msg("deriva de totales detectada antes del envío fiscal")
	}
	s.Totals = recomputed

	if res := sale.ValidateFull(s, stock, u.cfg.FiscalIDThreshold); !res.Valid {
		return nil, &ValidationError{Violations: res.Violations}
	}

	var receipt *entity.FiscalReceipt
	err = u.withGatewayRetry(ctx, func() error {
		var submitErr error
		receipt, submitErr = u.gateway.Submit(ctx, s, s.ID)
		return submitErr
	})
	if err != nil {
		u.log.Error().Err(err).Str("sale_id", s.ID).Msg("envío fiscal fallido")
		return nil, err
	}

	if err := u.reconciler.Reserve(ctx, s.Items); err != nil {
		u.log.Error().
			Err(err).
			Str("sale_id", s.ID).
			Int64("invoice_number", receipt.InvoiceNumber).
			Str("cuf", receipt.CUF).
			Msg("factura emitida pero la reserva de stock falló: conciliación manual requerida")
		return nil, fmt.Errorf("%w: factura %d emitida para la venta %s (%v)",
			domain.ErrReconciliationFault, receipt.InvoiceNumber, s.ID, err)
	}

	if err := u.directory.RecordPurchase(s.Client, receipt.IssuedAt); err != nil {
		// El directorio es secundario: no bloquea la facturación.
		u.log.Warn().Err(err).Str("nit", s.Client.NIT).Msg("no se pudo actualizar el directorio de clientes")
	}

	s.Receipt = receipt
	issuedAt := receipt.IssuedAt
	s.InvoicedAt = &issuedAt
	s.UpdatedAt = time.Now()
	if err := s.TransitionTo(entity.StatusInvoiced); err != nil {
		return nil, err
	}

	frozen := s.Clone()
	if err := u.sales.Update(frozen); err != nil {
		return nil, fmt.Errorf("persistir venta facturada: %w", err)
	}

	u.log.Info().
		Str("sale_id", s.ID).
		Int64("invoice_number", receipt.InvoiceNumber).
		Str("total", s.Totals.Total.String()).
		Msg("venta facturada")
	return frozen, nil
}

// Cancel anula una venta facturada: anulación ante el SIN, restitución del
// stock y transición terminal a CANCELLED. Solo INVOICED admite anulación, y
// solo una vez; la pasarela rechaza un segundo intento sobre el mismo número.
func (u *UseCase) Cancel(ctx context.Context, id, reason string) (*entity.Sale, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: la anulación requiere un motivo", domain.ErrInvalidInput)
	}

	unlock := u.locks.acquire(id)
	defer unlock()

	s, err := u.sales.GetByID(id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	if !entity.CanTransition(s.Status, entity.StatusCancelled) {
		return nil, fmt.Errorf("%w: la venta %s está %s", domain.ErrIllegalTransition, s.ID, s.Status)
	}

	var cancellation *entity.Cancellation
	err = u.withGatewayRetry(ctx, func() error {
		var cancelErr error
		cancellation, cancelErr = u.gateway.Cancel(ctx, s.Receipt.InvoiceNumber, reason)
		return cancelErr
	})
	if err != nil {
		u.log.Error().Err(err).Str("sale_id", s.ID).Int64("invoice_number", s.Receipt.InvoiceNumber).
			Msg("anulación fiscal fallida")
		return nil, err
	}

	if err := u.reconciler.Release(ctx, s.Items); err != nil {
		u.log.Error().
			Err(err).
			Str("sale_id", s.ID).
			Int64("invoice_number", s.Receipt.InvoiceNumber).
			Msg("factura anulada pero la restitución de stock falló: conciliación manual requerida")
		return nil, fmt.Errorf("%w: anulación de la factura %d registrada para la venta %s (%v)",
			domain.ErrReconciliationFault, s.Receipt.InvoiceNumber, s.ID, err)
	}

	s.Cancellation = cancellation
	s.UpdatedAt = time.Now()
	if err := s.TransitionTo(entity.StatusCancelled); err != nil {
		return nil, err
	}

	if err := u.sales.Update(s); err != nil {
		return nil, fmt.Errorf("persistir venta anulada: %w", err)
	}

	u.log.Info().
		Str("sale_id", s.ID).
		Int64("invoice_number", s.Receipt.InvoiceNumber).
		Str("reason", reason).
		Msg("venta anulada")
	return s.Clone(), nil
}

// withGatewayRetry reintenta op con backoff exponencial acotado, y solo ante
// fallos transitorios. Rechazos de la autoridad fiscal nunca se reintentan.
func (u *UseCase) withGatewayRetry(ctx context.Context, op func() error) error {
	delay := u.cfg.RetryBase
	var err error
	for attempt := 0; ; attempt++ {
		err = op()
		if err == nil || !errors.Is(err, domain.ErrGatewayTransient) || attempt >= u.cfg.MaxRetries {
			return err
		}
		u.log.Warn().Err(err).Int("attempt", attempt+1).Dur("backoff", delay).
			Msg("fallo transitorio de la pasarela fiscal, reintentando")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}
