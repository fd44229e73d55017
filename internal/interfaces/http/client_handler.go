package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/farmavida/pos-api/internal/application/clients"
	"github.com/farmavida/pos-api/internal/application/dto"
)

// ClientHandler maneja las peticiones HTTP del directorio de clientes (protegido).
type ClientHandler struct {
	directory *clients.Directory
}

// NewClientHandler construye el handler.
func NewClientHandler(directory *clients.Directory) *ClientHandler {
	return &ClientHandler{directory: directory}
}

// GetByNIT busca un cliente por NIT/CI para autocompletar en el terminal.
// GET /api/clients/:nit
func (h *ClientHandler) GetByNIT(c *fiber.Ctx) error {
	client, err := h.directory.Get(c.Params("nit"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toClientResponse(client))
}

// List devuelve clientes paginados.
// GET /api/clients?limit=&offset=
func (h *ClientHandler) List(c *fiber.Ctx) error {
	list, err := h.directory.List(c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.ClientResponse, len(list))
	for i, cl := range list {
		out[i] = toClientResponse(cl)
	}
	return c.JSON(out)
}
