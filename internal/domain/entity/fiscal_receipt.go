package entity

import "time"

// FiscalReceipt es el comprobante emitido por el SIN al facturar una venta.
// InvoiceNumber es estrictamente creciente y único por organización; el motor
// nunca lo asigna, solo acepta el que devuelve la pasarela.
type FiscalReceipt struct {
	InvoiceNumber     int64
	AuthorizationCode string
	CUF               string // código único de facturación (hash SHA-384)
	DocumentHash      string // hash del XML canónico enviado al SIN
	ReceptionCode     string
	QRVerificationURL string
	IssuedAt          time.Time
}
