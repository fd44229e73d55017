package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/farmavida/pos-api/internal/application/dto"
	"github.com/farmavida/pos-api/internal/application/sales"
	"github.com/farmavida/pos-api/internal/domain"
	"github.com/farmavida/pos-api/internal/domain/entity"
)

// writeError traduce la taxonomía de errores de dominio a HTTP:
//
//	ErrValidation          -> 422 con la lista de violaciones
//	ErrNotFound            -> 404
//	ErrInvalidInput        -> 400
//	ErrDuplicate           -> 409
//	ErrIllegalTransition   -> 409
//	ErrInsufficientStock   -> 409 (stock conflict)
//	ErrStockConflict       -> 409
//	ErrGatewayRejected     -> 422
//	ErrGatewayTransient    -> 503 (el terminal puede reintentar)
//	ErrReconciliationFault -> 500 con manual_review: alerta no descartable
func writeError(c *fiber.Ctx, err error) error {
	var vErr *sales.ValidationError
	if errors.As(err, &vErr) {
		violations := make([]string, len(vErr.Violations))
		for i, v := range vErr.Violations {
			violations[i] = string(v)
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: "la venta no cumple las reglas de negocio", Violations: violations,
		})
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrIllegalTransition):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ILLEGAL_TRANSITION", Message: err.Error()})
	case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrStockConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrGatewayRejected):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "GATEWAY_REJECTED", Message: err.Error()})
	case errors.Is(err, domain.ErrGatewayTransient):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "GATEWAY_UNAVAILABLE", Message: err.Error()})
	case errors.Is(err, domain.ErrReconciliationFault):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code: "RECONCILIATION_FAULT", Message: err.Error(), ManualReview: true,
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

func toSaleResponse(s *entity.Sale) dto.SaleResponse {
	items := make([]dto.SaleItemResponse, len(s.Items))
	for i := range s.Items {
		it := &s.Items[i]
		items[i] = dto.SaleItemResponse{
			ID:            it.ID,
			ProductID:     it.ProductID,
			Code:          it.Code,
			Name:          it.Name,
			UnitOfMeasure: it.UnitOfMeasure,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			LineDiscount:  it.LineDiscount,
			Subtotal:      it.Subtotal,
		}
	}

	out := dto.SaleResponse{
		ID:         s.ID,
		Status:     s.Status,
		ClientNIT:  s.Client.NIT,
		ClientName: s.Client.Name,
		Items:      items,
		Totals: dto.TotalsResponse{
			Subtotal:           s.Totals.Subtotal,
			AdditionalDiscount: s.Totals.AdditionalDiscount,
			Total:              s.Totals.Total,
			Paid:               s.Totals.Paid,
			Change:             s.Totals.Change,
		},
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
	}
	if s.InvoicedAt != nil {
		out.InvoicedAt = s.InvoicedAt.Format(time.RFC3339)
	}
	if s.Receipt != nil {
		out.Receipt = &dto.FiscalReceiptResponse{
			InvoiceNumber:     s.Receipt.InvoiceNumber,
			AuthorizationCode: s.Receipt.AuthorizationCode,
			CUF:               s.Receipt.CUF,
			DocumentHash:      s.Receipt.DocumentHash,
			ReceptionCode:     s.Receipt.ReceptionCode,
			QRVerificationURL: s.Receipt.QRVerificationURL,
			IssuedAt:          s.Receipt.IssuedAt.Format(time.RFC3339),
		}
	}
	if s.Cancellation != nil {
		out.Cancellation = &dto.CancellationResponse{
			Reason:           s.Cancellation.Reason,
			CancellationCode: s.Cancellation.CancellationCode,
			CancelledAt:      s.Cancellation.CancelledAt.Format(time.RFC3339),
		}
	}
	return out
}

func toClientResponse(c *entity.Client) dto.ClientResponse {
	out := dto.ClientResponse{
		NIT:          c.NIT,
		Name:         c.Name,
		DocumentType: c.DocumentType,
		Phone:        c.Phone,
		Email:        c.Email,
	}
	if c.LastPurchaseAt != nil {
		out.LastPurchaseAt = c.LastPurchaseAt.Format(time.RFC3339)
	}
	return out
}

func toProductResponse(p *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:            p.ID,
		Code:          p.Code,
		Name:          p.Name,
		UnitOfMeasure: p.UnitOfMeasure,
		UnitPrice:     p.UnitPrice,
		StockQuantity: p.StockQuantity,
	}
}
