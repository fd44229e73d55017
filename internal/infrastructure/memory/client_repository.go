package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/farmavida/pos-api/internal/domain"
	"github.com/farmavida/pos-api/internal/domain/entity"
)

// ClientRepository almacén de clientes en memoria, con clave NIT/CI.
type ClientRepository struct {
	mu      sync.RWMutex
	clients map[string]*entity.Client
}

func NewClientRepository() *ClientRepository {
	return &ClientRepository{clients: make(map[string]*entity.Client)}
}

func (r *ClientRepository) Create(client *entity.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[client.NIT]; ok {
		return fmt.Errorf("%w: cliente %s", domain.ErrDuplicate, client.NIT)
	}
	r.clients[client.NIT] = cloneClient(client)
	return nil
}

func (r *ClientRepository) Update(client *entity.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[client.NIT]; !ok {
		return fmt.Errorf("%w: cliente %s", domain.ErrNotFound, client.NIT)
	}
	r.clients[client.NIT] = cloneClient(client)
	return nil
}

func (r *ClientRepository) GetByNIT(nit string) (*entity.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[nit]
	if !ok {
		return nil, nil
	}
	return cloneClient(c), nil
}

func (r *ClientRepository) List(limit, offset int) ([]*entity.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, cloneClient(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func cloneClient(c *entity.Client) *entity.Client {
	out := *c
	if c.LastPurchaseAt != nil {
		t := *c.LastPurchaseAt
		out.LastPurchaseAt = &t
	}
	return &out
}
