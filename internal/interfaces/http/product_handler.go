package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/farmavida/pos-api/internal/application/catalog"
	"github.com/farmavida/pos-api/internal/application/dto"
	"github.com/farmavida/pos-api/internal/domain/entity"
)

// ProductHandler maneja las peticiones HTTP del catálogo (protegido).
type ProductHandler struct {
	uc *catalog.UseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *catalog.UseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

type createProductRequest struct {
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	UnitOfMeasure string          `json:"unit_of_measure"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	StockQuantity int64           `json:"stock_quantity"`
}

// Create da de alta un producto.
// POST /api/products
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in createProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	p, err := h.uc.Create(&entity.Product{
		Code:          in.Code,
		Name:          in.Name,
		UnitOfMeasure: in.UnitOfMeasure,
		UnitPrice:     in.UnitPrice,
		StockQuantity: in.StockQuantity,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toProductResponse(p))
}

// Search busca productos por nombre o código.
// GET /api/products?q=&limit=
func (h *ProductHandler) Search(c *fiber.Ctx) error {
	list, err := h.uc.Search(c.Query("q"), c.QueryInt("limit", 20))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.ProductResponse, len(list))
	for i, p := range list {
		out[i] = toProductResponse(p)
	}
	return c.JSON(out)
}

// GetStock devuelve el stock autoritativo de un producto.
// GET /api/products/:id/stock
func (h *ProductHandler) GetStock(c *fiber.Ctx) error {
	id := c.Params("id")
	qty, err := h.uc.GetStock(id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.StockResponse{ProductID: id, Quantity: qty})
}
