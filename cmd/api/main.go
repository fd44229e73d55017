package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"

	"github.com/farmavida/pos-api/internal/application/catalog"
	"github.com/farmavida/pos-api/internal/application/clients"
	"github.com/farmavida/pos-api/internal/application/sales"
	"github.com/farmavida/pos-api/internal/domain/repository"
	"github.com/farmavida/pos-api/internal/infrastructure/memory"
	"github.com/farmavida/pos-api/internal/infrastructure/postgres"
	infrasiat "github.com/farmavida/pos-api/internal/infrastructure/siat"
	httpRouter "github.com/farmavida/pos-api/internal/interfaces/http"
	"github.com/farmavida/pos-api/pkg/config"
	"github.com/farmavida/pos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Str("siat_env", cfg.SIAT.Env).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Persistencia: memoria para desarrollo/terminales sin DB, Postgres en producción.
	var (
		saleRepo    repository.SaleRepository
		clientRepo  repository.ClientRepository
		productRepo repository.ProductRepository
		reconciler  sales.StockReconciler
	)
	switch cfg.Store.Driver {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		saleRepo = postgres.NewSaleRepository(pool)
		clientRepo = postgres.NewClientRepository(pool)
		productRepo = postgres.NewProductRepository(pool)
		reconciler = postgres.NewStockReconciler(postgres.NewTxRunner(pool))
	case "memory":
		memProducts := memory.NewProductRepository()
		saleRepo = memory.NewSaleRepository()
		clientRepo = memory.NewClientRepository()
		productRepo = memProducts
		reconciler = memory.NewStockReconciler(memProducts)
	default:
		log.Fatal().Str("driver", cfg.Store.Driver).Msg("STORE_DRIVER desconocido (usar 'memory' o 'postgres')")
	}

	// Pasarela fiscal: simulador en dev, WS SIAT en test/prod.
	var gateway sales.FiscalGateway
	if cfg.SIAT.Env == infrasiat.AppEnvDev || cfg.SIAT.Env == "" {
		gateway = infrasiat.NewMemoryGateway(
			cfg.SIAT.CompanyNIT, cfg.SIAT.BranchCode, cfg.SIAT.SystemCode, 0, log)
	} else {
		gateway, err = infrasiat.NewHTTPGateway(infrasiat.Config{
			Env:        cfg.SIAT.Env,
			BaseURL:    cfg.SIAT.BaseURL,
			Timeout:    cfg.SIAT.Timeout,
			CompanyNIT: cfg.SIAT.CompanyNIT,
			BranchCode: cfg.SIAT.BranchCode,
			SystemCode: cfg.SIAT.SystemCode,
		}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("configuración SIAT")
		}
	}

	directory := clients.NewDirectory(clientRepo, log)
	catalogUC := catalog.NewUseCase(productRepo, log)
	salesUC := sales.NewUseCase(saleRepo, productRepo, directory, gateway, reconciler,
		sales.Config{
			FiscalIDThreshold: decimal.NewFromFloat(cfg.Sales.FiscalIDThreshold),
			MaxRetries:        cfg.SIAT.MaxRetries,
		}, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "FarmaVida POS API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		SalesUC:   salesUC,
		CatalogUC: catalogUC,
		Directory: directory,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
