package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/farmavida/pos-api/internal/application/catalog"
	"github.com/farmavida/pos-api/internal/application/clients"
	"github.com/farmavida/pos-api/internal/application/sales"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	SalesUC   *sales.UseCase
	CatalogUC *catalog.UseCase
	Directory *clients.Directory
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Health (público, para el monitoreo de la cadena)
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Rutas protegidas (requieren Bearer Token del servicio central)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Ventas (protegido)
	salesGroup := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.SalesUC)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Put("/:id", saleHandler.Update)
	salesGroup.Post("/:id/save", saleHandler.Save)
	salesGroup.Post("/:id/invoice", saleHandler.Invoice)
	salesGroup.Post("/:id/cancel", saleHandler.Cancel)

	// Catálogo (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.CatalogUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.Search)
	products.Get("/:id/stock", productHandler.GetStock)

	// Directorio de clientes (protegido)
	clientsGroup := protected.Group("/clients")
	clientHandler := NewClientHandler(deps.Directory)
	clientsGroup.Get("/", clientHandler.List)
	clientsGroup.Get("/:nit", clientHandler.GetByNIT)
}
