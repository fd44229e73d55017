package clients

import (
	"fmt"
	"time"

	"github.com/farmavida/pos-api/internal/domain"
	"github.com/farmavida/pos-api/internal/domain/entity"
	"github.com/farmavida/pos-api/internal/domain/repository"
	"github.com/farmavida/pos-api/pkg/logger"
	"github.com/farmavida/pos-api/pkg/siat"
)

// Directory administra el directorio de clientes de la farmacia, con clave
// NIT/CI. Los códigos reservados del SIN (4444, 99001..99003) se normalizan
// siempre a su nombre canónico.
type Directory struct {
	clients repository.ClientRepository
	log     *logger.Logger
}

func NewDirectory(clients repository.ClientRepository, log *logger.Logger) *Directory {
	return &Directory{clients: clients, log: log}
}

// Resolve devuelve el snapshot del cliente para embeber en una venta. Si el
// NIT no existe en el directorio, lo crea con el tipo de documento inferido.
func (d *Directory) Resolve(nit, name string) (entity.ClientSnapshot, error) {
	if nit == "" {
		nit = siat.NITAnonimo
	}
	if siat.IsReserved(nit) {
		name = siat.ReservedName(nit)
	}

	c, err := d.clients.GetByNIT(nit)
	if err != nil {
		return entity.ClientSnapshot{}, fmt.Errorf("buscar cliente %s: %w", nit, err)
	}
	if c == nil {
		c = &entity.Client{
			NIT:          nit,
			Name:         name,
			DocumentType: siat.InferDocumentType(nit),
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		if err := d.clients.Create(c); err != nil {
			return entity.ClientSnapshot{}, fmt.Errorf("crear cliente %s: %w", nit, err)
		}
		d.log.Debug().Str("nit", nit).Str("document_type", c.DocumentType).
			Msg("cliente nuevo registrado en el directorio")
	} else if name != "" && name != c.Name && !siat.IsReserved(nit) {
		// El terminal trae un nombre más reciente: gana el último no vacío.
		c.Name = name
		c.UpdatedAt = time.Now()
		if err := d.clients.Update(c); err != nil {
			return entity.ClientSnapshot{}, fmt.Errorf("actualizar cliente %s: %w", nit, err)
		}
	}

	return entity.ClientSnapshot{
		NIT:          c.NIT,
		Name:         c.Name,
		DocumentType: c.DocumentType,
		Email:        c.Email,
		Phone:        c.Phone,
	}, nil
}

// RecordPurchase hace upsert del cliente tras una facturación exitosa y marca
// la fecha de su última compra.
func (d *Directory) RecordPurchase(snapshot entity.ClientSnapshot, at time.Time) error {
	c, err := d.clients.GetByNIT(snapshot.NIT)
	if err != nil {
		return fmt.Errorf("buscar cliente %s: %w", snapshot.NIT, err)
	}
	if c == nil {
		c = &entity.Client{
			NIT:          snapshot.NIT,
			Name:         snapshot.Name,
			DocumentType: snapshot.DocumentType,
			Email:        snapshot.Email,
			Phone:        snapshot.Phone,
			CreatedAt:    at,
		}
		c.LastPurchaseAt = &at
		c.UpdatedAt = at
		return d.clients.Create(c)
	}

	c.Merge(&entity.Client{
		Name:         snapshot.Name,
		DocumentType: snapshot.DocumentType,
		Email:        snapshot.Email,
		Phone:        snapshot.Phone,
	})
	if siat.IsReserved(c.NIT) {
		c.Name = siat.ReservedName(c.NIT)
	}
	c.LastPurchaseAt = &at
	c.UpdatedAt = at
	return d.clients.Update(c)
}

// Get devuelve un cliente por NIT/CI.
func (d *Directory) Get(nit string) (*entity.Client, error) {
	c, err := d.clients.GetByNIT(nit)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

// List devuelve clientes paginados.
func (d *Directory) List(limit, offset int) ([]*entity.Client, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return d.clients.List(limit, offset)
}
