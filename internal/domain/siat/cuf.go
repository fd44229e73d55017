// Package siat: cálculo del CUF (Código Único de Facturación) del SIN.
// Algoritmo: SHA-384 sobre la cadena de campos en orden estricto.

package siat

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Ambientes SIAT para la cadena CUF.
const (
	AmbProduccion = "1"
	AmbPruebas    = "2"
)

// CufParams contiene los datos para calcular el CUF en el orden exigido por el SIN.
type CufParams struct {
	CompanyNIT    string          // NIT del emisor (solo dígitos)
	IssueDate     string          // fecha de emisión YYYYMMDDHHMMSS
	BranchCode    string          // código de sucursal
	InvoiceNumber int64           // número de factura asignado por la autorización
	SystemCode    string          // código de sistema autorizado
	ClientDoc     string          // documento del comprador (solo dígitos)
	Total         decimal.Decimal // total de la venta
	Env           string          // '1' = producción, '2' = pruebas
}

// CufCalculator calcula el CUF de una factura.
type CufCalculator struct{}

// NewCufCalculator crea el calculador.
func NewCufCalculator() *CufCalculator {
	return &CufCalculator{}
}

// Calculate genera el CUF (hash hexadecimal SHA-384) a partir de los parámetros.
// Fórmula (sin separadores): NitEmisor + FechaEmision + Sucursal + NumFactura +
// CodSistema + DocComprador + Total + Ambiente.
// Montos sin separador de miles, con punto decimal y 2 decimales (ej: 1500.00).
func (c *CufCalculator) Calculate(p *CufParams) (string, error) {
	if p == nil {
		return "", fmt.Errorf("siat: CufParams es obligatorio")
	}

	nit := onlyDigits(p.CompanyNIT)
	if nit == "" {
		return "", fmt.Errorf("siat: CompanyNIT es obligatorio para el CUF")
	}
	if p.IssueDate == "" {
		return "", fmt.Errorf("siat: IssueDate es obligatoria (YYYYMMDDHHMMSS)")
	}
	if p.InvoiceNumber <= 0 {
		return "", fmt.Errorf("siat: InvoiceNumber debe ser positivo")
	}
	if p.SystemCode == "" {
		return "", fmt.Errorf("siat: SystemCode es obligatorio para el CUF")
	}
	docAdq := onlyDigits(p.ClientDoc)
	if docAdq == "" {
		return "", fmt.Errorf("siat: ClientDoc es obligatorio para el CUF")
	}
	branch := p.BranchCode
	if branch == "" {
		branch = "0"
	}
	env := p.Env
	if env == "" {
		env = AmbProduccion
	}

	// Orden estricto SIAT (sin separadores)
	cadena := nit +
		p.IssueDate +
		branch +
		strconv.FormatInt(p.InvoiceNumber, 10) +
		p.SystemCode +
		docAdq +
		formatAmount(p.Total) +
		env

	hash := sha512.Sum384([]byte(cadena))
	return hex.EncodeToString(hash[:]), nil
}

// formatAmount formatea montos para la cadena CUF: punto decimal, 2 decimales.
func formatAmount(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}

// onlyDigits deja solo dígitos 0-9 (para NIT y documento).
func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
