// Comando de siembra del catálogo: carga productos de demostración en la base
// para levantar un terminal de pruebas. Uso:
//
//	go run ./cmd/seed --env .env
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/farmavida/pos-api/internal/domain/entity"
	"github.com/farmavida/pos-api/internal/infrastructure/postgres"
	"github.com/farmavida/pos-api/pkg/config"
	"github.com/farmavida/pos-api/pkg/logger"
)

type demoProduct struct {
	code  string
	name  string
	unit  string
	price string
	stock int64
}

var demoProducts = []demoProduct{
	{"7770001000011", "Paracetamol 500mg x10", "BLISTER", "5.50", 120},
	{"7770001000028", "Ibuprofeno 400mg x10", "BLISTER", "8.00", 80},
	{"7770001000035", "Amoxicilina 500mg x12", "BLISTER", "18.50", 45},
	{"7770001000042", "Suero oral 1L", "UNIDAD", "12.00", 60},
	{"7770001000059", "Alcohol en gel 250ml", "FRASCO", "15.00", 90},
	{"7770001000066", "Vitamina C 1g x10", "TUBO", "22.00", 35},
	{"7770001000073", "Loratadina 10mg x10", "BLISTER", "7.50", 70},
	{"7770001000080", "Omeprazol 20mg x14", "BLISTER", "16.00", 50},
}

func main() {
	var envFile string

	root := &cobra.Command{
		Use:   "seed",
		Short: "Carga el catálogo de demostración de la farmacia",
		RunE: func(cmd *cobra.Command, args []string) error {
			if envFile != "" {
				if err := godotenv.Load(envFile); err != nil {
					return fmt.Errorf("cargar %s: %w", envFile, err)
				}
			}
			return run()
		},
	}
	root.Flags().StringVar(&envFile, "env", "", "archivo .env a cargar antes de conectar")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	defer pool.Close()

	repo := postgres.NewProductRepository(pool)
	created := 0
	for _, d := range demoProducts {
		existing, err := repo.GetByCode(d.code)
		if err != nil {
			return err
		}
		if existing != nil {
			log.Debug().Str("code", d.code).Msg("producto ya existe, omitido")
			continue
		}
		price, err := decimal.NewFromString(d.price)
		if err != nil {
			return fmt.Errorf("precio inválido para %s: %w", d.code, err)
		}
		now := time.Now()
		if err := repo.Create(&entity.Product{
			ID:            uuid.NewString(),
			Code:          d.code,
			Name:          d.name,
			UnitOfMeasure: d.unit,
			UnitPrice:     price,
			StockQuantity: d.stock,
			CreatedAt:     now,
			UpdatedAt:     now,
		}); err != nil {
			return fmt.Errorf("crear producto %s: %w", d.code, err)
		}
		created++
	}

	log.Info().Int("created", created).Int("total", len(demoProducts)).Msg("siembra del catálogo completada")
	return nil
}
