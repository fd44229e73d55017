// Package memory implementa los repositorios y el reconciliador de stock en
// memoria, para desarrollo y tests (STORE_DRIVER=memory). Mismo contrato que
// las implementaciones de Postgres: copias siempre, punteros compartidos nunca.
package memory

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/farmavida/pos-api/internal/domain"
	"github.com/farmavida/pos-api/internal/domain/entity"
	"github.com/farmavida/pos-api/internal/domain/repository"
)

// SaleRepository almacén de ventas en memoria.
type SaleRepository struct {
	mu    sync.RWMutex
	sales map[string]*entity.Sale
}

func NewSaleRepository() *SaleRepository {
	return &SaleRepository{sales: make(map[string]*entity.Sale)}
}

func (r *SaleRepository) Create(sale *entity.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sales[sale.ID]; ok {
		return fmt.Errorf("%w: venta %s", domain.ErrDuplicate, sale.ID)
	}
	r.sales[sale.ID] = sale.Clone()
	return nil
}

func (r *SaleRepository) Update(sale *entity.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sales[sale.ID]; !ok {
		return fmt.Errorf("%w: venta %s", domain.ErrNotFound, sale.ID)
	}
	r.sales[sale.ID] = sale.Clone()
	return nil
}

func (r *SaleRepository) GetByID(id string) (*entity.Sale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sales[id]
	if !ok {
		return nil, nil
	}
	return s.Clone(), nil
}

func (r *SaleRepository) List(filter repository.SaleFilter) ([]*entity.Sale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Sale, 0)
	for _, s := range r.sales {
		if !matches(s, filter) {
			continue
		}
		out = append(out, s.Clone())
	}

	// Más recientes primero, como en el historial del terminal.
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	offset := filter.Offset
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func matches(s *entity.Sale, f repository.SaleFilter) bool {
	if f.Status != "" && s.Status != f.Status {
		return false
	}
	if f.NIT != "" && s.Client.NIT != f.NIT {
		return false
	}
	if f.DateFrom != nil && s.CreatedAt.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && s.CreatedAt.After(*f.DateTo) {
		return false
	}
	if f.InvoiceNumber != "" {
		if s.Receipt == nil {
			return false
		}
		number := strconv.FormatInt(s.Receipt.InvoiceNumber, 10)
		if !strings.Contains(number, f.InvoiceNumber) {
			return false
		}
	}
	return true
}
