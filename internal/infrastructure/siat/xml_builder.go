package siat

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"

	"github.com/farmavida/pos-api/internal/domain/entity"
)

// XMLBuilder construye el documento facturaElectronicaCompraVenta que viaja
// al SIN y calcula su hash canónico.
type XMLBuilder struct {
	companyNIT string
	branchCode string
	systemCode string
}

func NewXMLBuilder(companyNIT, branchCode, systemCode string) *XMLBuilder {
	return &XMLBuilder{companyNIT: companyNIT, branchCode: branchCode, systemCode: systemCode}
}

// Build genera el XML de la factura para una venta validada.
// El CUF ya debe venir calculado; aquí solo se serializa.
func (b *XMLBuilder) Build(sale *entity.Sale, invoiceNumber int64, cuf string, issuedAt time.Time) ([]byte, error) {
	if sale == nil {
		return nil, fmt.Errorf("siat: la venta es obligatoria")
	}
	if len(sale.Items) == 0 {
		return nil, fmt.Errorf("siat: la factura requiere al menos un detalle")
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("facturaElectronicaCompraVenta")

	cab := root.CreateElement("cabecera")
	cab.CreateElement("nitEmisor").SetText(b.companyNIT)
	cab.CreateElement("codigoSucursal").SetText(b.branchCode)
	cab.CreateElement("codigoSistema").SetText(b.systemCode)
	cab.CreateElement("numeroFactura").SetText(strconv.FormatInt(invoiceNumber, 10))
	cab.CreateElement("cuf").SetText(cuf)
	cab.CreateElement("fechaEmision").SetText(issuedAt.Format("2006-01-02T15:04:05"))
	cab.CreateElement("nombreRazonSocial").SetText(sale.Client.Name)
	cab.CreateElement("numeroDocumento").SetText(sale.Client.NIT)
	cab.CreateElement("codigoTipoDocumentoIdentidad").SetText(sale.Client.DocumentType)
	cab.CreateElement("montoTotal").SetText(sale.Totals.Total.StringFixed(2))
	cab.CreateElement("montoTotalSujetoIva").SetText(sale.Totals.Total.StringFixed(2))
	cab.CreateElement("descuentoAdicional").SetText(sale.Totals.AdditionalDiscount.StringFixed(2))

	for i := range sale.Items {
		it := &sale.Items[i]
		det := root.CreateElement("detalle")
		det.CreateElement("codigoProducto").SetText(it.Code)
		det.CreateElement("descripcion").SetText(it.Name)
		det.CreateElement("cantidad").SetText(strconv.FormatInt(it.Quantity, 10))
		det.CreateElement("unidadMedida").SetText(it.UnitOfMeasure)
		det.CreateElement("precioUnitario").SetText(it.UnitPrice.StringFixed(2))
		det.CreateElement("montoDescuento").SetText(it.LineDiscount.StringFixed(2))
		det.CreateElement("subTotal").SetText(it.Subtotal.StringFixed(2))
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}

// Hash devuelve el SHA-256 hexadecimal del XML canónico (C14N). El hash se
// adjunta al comprobante y permite verificar después que el documento enviado
// no fue alterado.
func Hash(xmlBytes []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(xmlBytes))
	dec.Entity = map[string]string{}
	canonical, err := c14n.Canonicalize(dec)
	if err != nil {
		return "", fmt.Errorf("siat: canonicalizar XML: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
