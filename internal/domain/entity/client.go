package entity

import "time"

// Client representa un cliente de la farmacia, identificado por su NIT o CI.
// Se hace upsert en cada facturación exitosa; nunca se elimina.
type Client struct {
	NIT            string
	Name           string
	DocumentType   string // CI | NIT | CEX (ver pkg/siat)
	Phone          string
	Email          string
	LastPurchaseAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Merge incorpora los campos no vacíos de other conservando los existentes.
// Política: gana el valor más reciente no vacío.
func (c *Client) Merge(other *Client) {
	if other.Name != "" {
		c.Name = other.Name
	}
	if other.DocumentType != "" {
		c.DocumentType = other.DocumentType
	}
	if other.Phone != "" {
		c.Phone = other.Phone
	}
	if other.Email != "" {
		c.Email = other.Email
	}
}
