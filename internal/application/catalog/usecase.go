package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/farmavida/pos-api/internal/domain"
	"github.com/farmavida/pos-api/internal/domain/entity"
	"github.com/farmavida/pos-api/internal/domain/repository"
	"github.com/farmavida/pos-api/pkg/logger"
	"github.com/farmavida/pos-api/pkg/textnorm"
)

// UseCase expone el catálogo de productos al terminal: búsqueda rápida por
// nombre o código y consulta de stock autoritativo.
type UseCase struct {
	products repository.ProductRepository
	log      *logger.Logger
}

func NewUseCase(products repository.ProductRepository, log *logger.Logger) *UseCase {
	return &UseCase{products: products, log: log}
}

// Search busca productos por nombre o código, insensible a mayúsculas y acentos.
func (u *UseCase) Search(query string, limit int) ([]*entity.Product, error) {
	query = textnorm.Normalize(query)
	if query == "" {
		return nil, fmt.Errorf("%w: la búsqueda requiere un término", domain.ErrInvalidInput)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return u.products.Search(query, limit)
}

// GetStock devuelve el stock autoritativo de un producto.
func (u *UseCase) GetStock(productID string) (int64, error) {
	p, err := u.products.GetByID(productID)
	if err != nil {
		return 0, err
	}
	if p == nil {
		return 0, domain.ErrNotFound
	}
	return p.StockQuantity, nil
}

// Create da de alta un producto en el catálogo.
func (u *UseCase) Create(p *entity.Product) (*entity.Product, error) {
	if p.Code == "" || p.Name == "" {
		return nil, fmt.Errorf("%w: código y nombre son obligatorios", domain.ErrInvalidInput)
	}
	if p.UnitPrice.IsNegative() || p.StockQuantity < 0 {
		return nil, fmt.Errorf("%w: precio y stock no pueden ser negativos", domain.ErrInvalidInput)
	}
	if existing, err := u.products.GetByCode(p.Code); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("%w: ya existe un producto con código %s", domain.ErrDuplicate, p.Code)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := u.products.Create(p); err != nil {
		return nil, err
	}
	u.log.Info().Str("product_id", p.ID).Str("code", p.Code).Msg("producto creado")
	return p, nil
}
