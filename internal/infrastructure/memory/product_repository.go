package memory

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/farmavida/pos-api/internal/domain"
	"github.com/farmavida/pos-api/internal/domain/entity"
	"github.com/farmavida/pos-api/pkg/textnorm"
)

// ProductRepository almacén del catálogo en memoria.
type ProductRepository struct {
	mu       sync.RWMutex
	products map[string]*entity.Product
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{products: make(map[string]*entity.Product)}
}

func (r *ProductRepository) Create(product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[product.ID]; ok {
		return fmt.Errorf("%w: producto %s", domain.ErrDuplicate, product.ID)
	}
	p := *product
	r.products[p.ID] = &p
	return nil
}

func (r *ProductRepository) Update(product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[product.ID]; !ok {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, product.ID)
	}
	p := *product
	r.products[p.ID] = &p
	return nil
}

func (r *ProductRepository) GetByID(id string) (*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	out := *p
	return &out, nil
}

func (r *ProductRepository) GetByCode(code string) (*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.products {
		if p.Code == code {
			out := *p
			return &out, nil
		}
	}
	return nil, nil
}

// Search busca por nombre o código; query ya viene normalizada (minúsculas,
// sin acentos), aquí se normaliza el lado del catálogo.
func (r *ProductRepository) Search(query string, limit int) ([]*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Product, 0)
	for _, p := range r.products {
		if strings.Contains(textnorm.Normalize(p.Name), query) ||
			strings.Contains(textnorm.Normalize(p.Code), query) {
			copied := *p
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *ProductRepository) StockByIDs(ids []string) (map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]int64, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out[id] = p.StockQuantity
		}
	}
	return out, nil
}
