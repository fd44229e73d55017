package dto

// ClientResponse cliente en respuestas (GET /api/clients/:nit).
type ClientResponse struct {
	NIT            string `json:"nit"`
	Name           string `json:"name"`
	DocumentType   string `json:"document_type"`
	Phone          string `json:"phone,omitempty"`
	Email          string `json:"email,omitempty"`
	LastPurchaseAt string `json:"last_purchase_at,omitempty"`
}
