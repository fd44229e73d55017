package siat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/farmavida/pos-api/internal/domain"
	"github.com/farmavida/pos-api/internal/domain/entity"
	domsiat "github.com/farmavida/pos-api/internal/domain/siat"
	"github.com/farmavida/pos-api/pkg/logger"
)

// MemoryGateway es la pasarela fiscal simulada en proceso (SIAT_ENV=dev).
// Reproduce el contrato real del SIN: números de factura estrictamente
// crecientes, idempotencia por clave de envío y rechazo de la doble anulación.
type MemoryGateway struct {
	mu        sync.Mutex
	seq       *sequence
	calc      *domsiat.CufCalculator
	builder   *XMLBuilder
	env       string
	byKey     map[string]*entity.FiscalReceipt
	issued    map[int64]bool
	cancelled map[int64]bool
	log       *logger.Logger
}

// NewMemoryGateway crea el simulador. startNumber es el último número emitido
// (0 para una serie nueva).
func NewMemoryGateway(companyNIT, branchCode, systemCode string, startNumber int64, log *logger.Logger) *MemoryGateway {
	return &MemoryGateway{
		seq:       newSequence(startNumber),
		calc:      domsiat.NewCufCalculator(),
		builder:   NewXMLBuilder(companyNIT, branchCode, systemCode),
		env:       domsiat.AmbPruebas,
		byKey:     make(map[string]*entity.FiscalReceipt),
		issued:    make(map[int64]bool),
		cancelled: make(map[int64]bool),
		log:       log,
	}
}

// Submit emite la factura de la venta. Una clave de idempotencia ya vista
// devuelve el comprobante original sin consumir un número nuevo.
func (g *MemoryGateway) Submit(ctx context.Context, sale *entity.Sale, idempotencyKey string) (*entity.FiscalReceipt, error) {
	if idempotencyKey == "" {
		return nil, fmt.Errorf("%w: clave de idempotencia vacía", domain.ErrGatewayRejected)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if r, ok := g.byKey[idempotencyKey]; ok {
		g.log.Debug().Str("key", idempotencyKey).Int64("invoice_number", r.InvoiceNumber).
			Msg("envío duplicado, devolviendo comprobante ya emitido")
		copied := *r
		return &copied, nil
	}

	// El número se consume recién cuando el documento ya no puede fallar:
	// un envío rechazado no deja huecos en la serie. g.mu serializa Submit,
	// así que el número observado con peek es el que entrega next.
	issuedAt := time.Now()
	number := g.seq.peek()

	cuf, err := g.calc.Calculate(&domsiat.CufParams{
		CompanyNIT:    g.builder.companyNIT,
		IssueDate:     issuedAt.Format("20060102150405"),
		BranchCode:    g.builder.branchCode,
		InvoiceNumber: number,
		SystemCode:    g.builder.systemCode,
		ClientDoc:     sale.Client.NIT,
		Total:         sale.Totals.Total,
		Env:           g.env,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayRejected, err)
	}

	xmlBytes, err := g.builder.Build(sale, number, cuf, issuedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayRejected, err)
	}
	hash, err := Hash(xmlBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayRejected, err)
	}

	receipt := &entity.FiscalReceipt{
		InvoiceNumber:     number,
		AuthorizationCode: strings.ToUpper(uuid.NewString()),
		CUF:               cuf,
		DocumentHash:      hash,
		ReceptionCode:     uuid.NewString(),
		QRVerificationURL: fmt.Sprintf("https://siat.impuestos.gob.bo/consulta/QR?nit=%s&cuf=%s&numero=%d",
			g.builder.companyNIT, cuf, number),
		IssuedAt: issuedAt,
	}

	g.seq.next()
	g.byKey[idempotencyKey] = receipt
	g.issued[number] = true

	copied := *receipt
	return &copied, nil
}

// Cancel anula una factura emitida. Solo se admite una anulación por número.
func (g *MemoryGateway) Cancel(ctx context.Context, invoiceNumber int64, reason string) (*entity.Cancellation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.issued[invoiceNumber] {
		return nil, fmt.Errorf("%w: la factura %d no existe", domain.ErrGatewayRejected, invoiceNumber)
	}
	if g.cancelled[invoiceNumber] {
		return nil, fmt.Errorf("%w: la factura %d ya fue anulada", domain.ErrGatewayRejected, invoiceNumber)
	}
	g.cancelled[invoiceNumber] = true

	return &entity.Cancellation{
		Reason:           reason,
		CancellationCode: strings.ToUpper(uuid.NewString()),
		CancelledAt:      time.Now(),
	}, nil
}
