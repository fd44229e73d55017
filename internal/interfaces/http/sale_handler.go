package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/farmavida/pos-api/internal/application/dto"
	"github.com/farmavida/pos-api/internal/application/sales"
	"github.com/farmavida/pos-api/internal/domain/repository"
)

// SaleHandler maneja las peticiones HTTP del ciclo de venta (protegido).
type SaleHandler struct {
	uc *sales.UseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *sales.UseCase) *SaleHandler {
	return &SaleHandler{uc: uc}
}

// Create abre una venta en borrador.
// POST /api/sales
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	s, err := h.uc.Create()
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toSaleResponse(s))
}

// Update reemplaza carrito, cliente, descuento y pago de una venta editable.
// PUT /api/sales/:id
func (h *SaleHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	s, err := h.uc.Update(c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSaleResponse(s))
}

// Save guarda la venta para recargarla después en el terminal.
// POST /api/sales/:id/save
func (h *SaleHandler) Save(c *fiber.Ctx) error {
	s, err := h.uc.Save(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSaleResponse(s))
}

// Invoice factura la venta ante el SIN y descuenta stock.
// POST /api/sales/:id/invoice
func (h *SaleHandler) Invoice(c *fiber.Ctx) error {
	s, err := h.uc.Invoice(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSaleResponse(s))
}

// Cancel anula una venta facturada y restituye el stock.
// POST /api/sales/:id/cancel
func (h *SaleHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	s, err := h.uc.Cancel(c.Context(), c.Params("id"), in.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSaleResponse(s))
}

// GetByID devuelve una venta con líneas, totales y comprobante.
// GET /api/sales/:id
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	s, err := h.uc.Get(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSaleResponse(s))
}

// List consulta el historial de ventas.
// GET /api/sales?status=&nit=&invoice_number=&date_from=&date_to=&limit=&offset=
func (h *SaleHandler) List(c *fiber.Ctx) error {
	filter := repository.SaleFilter{
		Status:        c.Query("status"),
		NIT:           c.Query("nit"),
		InvoiceNumber: c.Query("invoice_number"),
		Limit:         c.QueryInt("limit", 50),
		Offset:        c.QueryInt("offset", 0),
	}
	if from := c.Query("date_from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: "date_from debe ser YYYY-MM-DD"})
		}
		filter.DateFrom = &t
	}
	if to := c.Query("date_to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: "date_to debe ser YYYY-MM-DD"})
		}
		// Inclusivo: hasta el final del día consultado.
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.DateTo = &end
	}

	list, err := h.uc.List(filter)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.SaleResponse, len(list))
	for i, s := range list {
		out[i] = toSaleResponse(s)
	}
	return c.JSON(out)
}
