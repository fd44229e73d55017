package sales_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmavida/pos-api/internal/application/clients"
	"github.com/farmavida/pos-api/internal/application/dto"
	"github.com/farmavida/pos-api/internal/application/sales"
	"github.com/farmavida/pos-api/internal/domain"
	"github.com/farmavida/pos-api/internal/domain/entity"
	"github.com/farmavida/pos-api/internal/infrastructure/memory"
	infrasiat "github.com/farmavida/pos-api/internal/infrastructure/siat"
	"github.com/farmavida/pos-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests de la orquestación de facturación: orden estricto validación → envío
// fiscal → reserva de stock, idempotencia de reintentos y la falla de
// conciliación (factura emitida, reserva fallida).
// ──────────────────────────────────────────────────────────────────────────────

// flakyGateway envuelve la pasarela real y falla de forma transitoria las
// primeras N llamadas a Submit.
type flakyGateway struct {
	inner       sales.FiscalGateway
	failures    int
	submitCalls int
}

func (g *flakyGateway) Submit(ctx context.Context, s *entity.Sale, key string) (*entity.FiscalReceipt, error) {
	g.submitCalls++
	if g.failures > 0 {
		g.failures--
		return nil, fmt.Errorf("%w: conexión reiniciada", domain.ErrGatewayTransient)
	}
	return g.inner.Submit(ctx, s, key)
}

func (g *flakyGateway) Cancel(ctx context.Context, invoiceNumber int64, reason string) (*entity.Cancellation, error) {
	return g.inner.Cancel(ctx, invoiceNumber, reason)
}

// failingReconciler siempre falla la reserva; simula el catálogo caído justo
// después de que el SIN emitió la factura.
type failingReconciler struct{}

func (failingReconciler) Reserve(ctx context.Context, items []entity.SaleItem) error {
	return fmt.Errorf("catálogo no disponible")
}

func (failingReconciler) Release(ctx context.Context, items []entity.SaleItem) error {
	return fmt.Errorf("catálogo no disponible")
}

type fixture struct {
	uc       *sales.UseCase
	products *memory.ProductRepository
	gateway  *flakyGateway
}

func newFixture(t *testing.T, gatewayFailures int, reconciler sales.StockReconciler) *fixture {
	t.Helper()

	products := memory.NewProductRepository()
	saleRepo := memory.NewSaleRepository()
	clientRepo := memory.NewClientRepository()
	directory := clients.NewDirectory(clientRepo, logger.Nop())

	gateway := &flakyGateway{
		inner:    infrasiat.NewMemoryGateway("1023456789", "2", "7B2DE310C29FA6A", 0, logger.Nop()),
		failures: gatewayFailures,
	}
	if reconciler == nil {
		reconciler = memory.NewStockReconciler(products)
	}

	uc := sales.NewUseCase(saleRepo, products, directory, gateway, reconciler,
		sales.Config{
			FiscalIDThreshold: decimal.NewFromInt(1000),
			MaxRetries:        2,
			RetryBase:         time.Millisecond,
		}, logger.Nop())
	return &fixture{uc: uc, products: products, gateway: gateway}
}

func (f *fixture) addProduct(t *testing.T, price string, stock int64) *entity.Product {
	t.Helper()
	p := &entity.Product{
		ID:            uuid.NewString(),
		Code:          uuid.NewString()[:8],
		Name:          "Paracetamol 500mg",
		UnitOfMeasure: "BLISTER",
		UnitPrice:     decimal.RequireFromString(price),
		StockQuantity: stock,
	}
	require.NoError(t, f.products.Create(p))
	return p
}

func (f *fixture) newSale(t *testing.T, p *entity.Product, qty int64, paid string) *entity.Sale {
	t.Helper()
	s, err := f.uc.Create()
	require.NoError(t, err)
	s, err = f.uc.Update(s.ID, dto.UpdateSaleRequest{
		ClientNIT:  "5632897",
		ClientName: "Maria Quispe",
		Items:      []dto.SaleItemRequest{{ProductID: p.ID, Quantity: qty}},
		Paid:       decimal.RequireFromString(paid),
	})
	require.NoError(t, err)
	return s
}

func stockOf(t *testing.T, f *fixture, id string) int64 {
	t.Helper()
	got, err := f.products.StockByIDs([]string{id})
	require.NoError(t, err)
	return got[id]
}

func TestInvoice_FacturaYDescuentaStock(t *testing.T) {
	f := newFixture(t, 0, nil)
	p := f.addProduct(t, "5.50", 20)
	s := f.newSale(t, p, 3, "20.00")

	out, err := f.uc.Invoice(context.Background(), s.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusInvoiced, out.Status)
	require.NotNil(t, out.Receipt, "la venta facturada debe llevar comprobante")
	assert.Equal(t, int64(1), out.Receipt.InvoiceNumber)
	assert.Len(t, out.Receipt.CUF, 96, "el CUF es un SHA-384 hexadecimal")
	assert.NotEmpty(t, out.Receipt.DocumentHash)
	require.NotNil(t, out.InvoicedAt)

	assert.Equal(t, int64(17), stockOf(t, f, p.ID), "el stock debe descontarse al facturar")
}

func TestInvoice_ReintentoDevuelveMismoComprobante(t *testing.T) {
	f := newFixture(t, 0, nil)
	p := f.addProduct(t, "5.50", 20)
	s := f.newSale(t, p, 2, "20.00")

	first, err := f.uc.Invoice(context.Background(), s.ID)
	require.NoError(t, err)
	second, err := f.uc.Invoice(context.Background(), s.ID)
	require.NoError(t, err)

	assert.Equal(t, first.Receipt.InvoiceNumber, second.Receipt.InvoiceNumber,
		"reintentar sobre una venta facturada no debe emitir otra factura")
	assert.Equal(t, int64(18), stockOf(t, f, p.ID), "el stock solo se descuenta una vez")
}

func TestInvoice_FalloTransitorioSeReintentaSinDuplicar(t *testing.T) {
	f := newFixture(t, 1, nil) // la primera llamada al WS falla
	p := f.addProduct(t, "8.00", 10)
	s := f.newSale(t, p, 2, "16.00")

	out, err := f.uc.Invoice(context.Background(), s.ID)
	require.NoError(t, err, "un fallo transitorio único debe superarse con el reintento")

	assert.Equal(t, int64(1), out.Receipt.InvoiceNumber, "solo debe consumirse un número de factura")
	assert.Equal(t, 2, f.gateway.submitCalls)
	assert.Equal(t, int64(8), stockOf(t, f, p.ID))
}

func TestInvoice_FalloTransitorioAgotadoNoCambiaEstado(t *testing.T) {
	f := newFixture(t, 10, nil) // más fallos que reintentos
	p := f.addProduct(t, "8.00", 10)
	s := f.newSale(t, p, 2, "16.00")

	_, err := f.uc.Invoice(context.Background(), s.ID)
	require.ErrorIs(t, err, domain.ErrGatewayTransient)

	reloaded, err := f.uc.Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDraft, reloaded.Status, "la venta no debe cambiar de estado")
	assert.Nil(t, reloaded.Receipt)
	assert.Equal(t, int64(10), stockOf(t, f, p.ID), "el stock no debe tocarse")
}

func TestInvoice_StockInsuficienteNoLlamaPasarela(t *testing.T) {
	f := newFixture(t, 0, nil)
	p := f.addProduct(t, "5.50", 2)
	s := f.newSale(t, p, 5, "30.00")

	_, err := f.uc.Invoice(context.Background(), s.ID)
	require.Error(t, err)

	var vErr *sales.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, violationCodes(vErr), "INSUFFICIENT_STOCK")
	assert.Zero(t, f.gateway.submitCalls, "la validación debe cortar antes del envío fiscal")
	assert.Equal(t, int64(2), stockOf(t, f, p.ID))
}

func TestInvoice_UmbralFiscalExigeNITReal(t *testing.T) {
	f := newFixture(t, 0, nil)
	p := f.addProduct(t, "600.00", 10)

	s, err := f.uc.Create()
	require.NoError(t, err)
	// Cliente anónimo "4444" con total sobre el umbral de 1000.
	s, err = f.uc.Update(s.ID, dto.UpdateSaleRequest{
		ClientNIT: "4444",
		Items:     []dto.SaleItemRequest{{ProductID: p.ID, Quantity: 2}},
		Paid:      decimal.NewFromInt(1200),
	})
	require.NoError(t, err)

	_, err = f.uc.Invoice(context.Background(), s.ID)
	var vErr *sales.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, violationCodes(vErr), "FISCAL_ID_REQUIRED")
	assert.Zero(t, f.gateway.submitCalls)
}

func TestInvoice_FallaDeConciliacionRequiereRevisionManual(t *testing.T) {
	f := newFixture(t, 0, failingReconciler{})
	p := f.addProduct(t, "5.50", 20)
	s := f.newSale(t, p, 3, "20.00")

	_, err := f.uc.Invoice(context.Background(), s.ID)
	require.ErrorIs(t, err, domain.ErrReconciliationFault,
		"factura emitida sin reserva de stock debe reportarse como falla de conciliación")

	reloaded, err := f.uc.Get(s.ID)
	require.NoError(t, err)
	assert.NotEqual(t, entity.StatusInvoiced, reloaded.Status,
		"la venta queda en su estado previo hasta la revisión manual")
	assert.Nil(t, reloaded.Receipt)
}

func TestCancel_RestituyeStockYEsTerminal(t *testing.T) {
	f := newFixture(t, 0, nil)
	p := f.addProduct(t, "5.50", 20)
	s := f.newSale(t, p, 3, "20.00")

	_, err := f.uc.Invoice(context.Background(), s.ID)
	require.NoError(t, err)
	require.Equal(t, int64(17), stockOf(t, f, p.ID))

	out, err := f.uc.Cancel(context.Background(), s.ID, "error de digitación")
	require.NoError(t, err)

	assert.Equal(t, entity.StatusCancelled, out.Status)
	require.NotNil(t, out.Cancellation)
	assert.Equal(t, "error de digitación", out.Cancellation.Reason)
	assert.NotEmpty(t, out.Cancellation.CancellationCode)
	assert.Equal(t, int64(20), stockOf(t, f, p.ID), "la anulación restituye el stock completo")
}

func TestCancel_SegundaAnulacionRechazada(t *testing.T) {
	f := newFixture(t, 0, nil)
	p := f.addProduct(t, "5.50", 20)
	s := f.newSale(t, p, 1, "10.00")

	_, err := f.uc.Invoice(context.Background(), s.ID)
	require.NoError(t, err)
	_, err = f.uc.Cancel(context.Background(), s.ID, "motivo")
	require.NoError(t, err)

	_, err = f.uc.Cancel(context.Background(), s.ID, "segundo intento")
	require.ErrorIs(t, err, domain.ErrIllegalTransition)
	assert.Equal(t, int64(20), stockOf(t, f, p.ID), "el stock no debe restituirse dos veces")
}

func TestCancel_SinMotivoRechazada(t *testing.T) {
	f := newFixture(t, 0, nil)
	p := f.addProduct(t, "5.50", 20)
	s := f.newSale(t, p, 1, "10.00")

	_, err := f.uc.Invoice(context.Background(), s.ID)
	require.NoError(t, err)

	_, err = f.uc.Cancel(context.Background(), s.ID, "")
	require.ErrorIs(t, err, domain.ErrInvalidInput, "la anulación exige un motivo auditado")
}

func TestCancel_VentaNoFacturadaRechazada(t *testing.T) {
	f := newFixture(t, 0, nil)
	p := f.addProduct(t, "5.50", 20)
	s := f.newSale(t, p, 1, "10.00")

	_, err := f.uc.Cancel(context.Background(), s.ID, "motivo")
	require.ErrorIs(t, err, domain.ErrIllegalTransition)
}

func TestUpdate_VentaFacturadaEsInmutable(t *testing.T) {
	f := newFixture(t, 0, nil)
	p := f.addProduct(t, "5.50", 20)
	s := f.newSale(t, p, 2, "15.00")

	_, err := f.uc.Invoice(context.Background(), s.ID)
	require.NoError(t, err)

	_, err = f.uc.Update(s.ID, dto.UpdateSaleRequest{
		ClientNIT: "5632897",
		Items:     []dto.SaleItemRequest{{ProductID: p.ID, Quantity: 1}},
	})
	require.ErrorIs(t, err, domain.ErrIllegalTransition,
		"toda edición tras facturar exige una venta nueva")
}

// Un descuento de línea negativo sumaría al subtotal en vez de restar: la
// edición debe rechazarlo antes de que toque los totales.
func TestUpdate_DescuentoDeLineaNegativoRechazado(t *testing.T) {
	f := newFixture(t, 0, nil)
	p := f.addProduct(t, "10.00", 20)

	s, err := f.uc.Create()
	require.NoError(t, err)

	_, err = f.uc.Update(s.ID, dto.UpdateSaleRequest{
		ClientNIT:  "5632897",
		ClientName: "Maria Quispe",
		Items: []dto.SaleItemRequest{
			{ProductID: p.ID, Quantity: 1, LineDiscount: decimal.NewFromInt(-5)},
		},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	reloaded, err := f.uc.Get(s.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Items, "la edición rechazada no debe dejar líneas")
	assert.True(t, reloaded.Totals.Subtotal.IsZero(),
		"un descuento negativo jamás debe inflar el subtotal")
}

func TestUpdate_PrecioUnitarioNegativoRechazado(t *testing.T) {
	f := newFixture(t, 0, nil)
	p := f.addProduct(t, "10.00", 20)

	s, err := f.uc.Create()
	require.NoError(t, err)

	_, err = f.uc.Update(s.ID, dto.UpdateSaleRequest{
		ClientNIT:  "5632897",
		ClientName: "Maria Quispe",
		Items: []dto.SaleItemRequest{
			{ProductID: p.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(-10)},
		},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSave_CarritoVacioRechazado(t *testing.T) {
	f := newFixture(t, 0, nil)

	s, err := f.uc.Create()
	require.NoError(t, err)

	_, err = f.uc.Save(s.ID)
	var vErr *sales.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, violationCodes(vErr), "EMPTY_CART")
}

func TestSave_VentaGuardadaSePuedeRecargarYFacturar(t *testing.T) {
	f := newFixture(t, 0, nil)
	p := f.addProduct(t, "12.00", 10)
	s := f.newSale(t, p, 2, "25.00")

	saved, err := f.uc.Save(s.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusSaved, saved.Status)

	out, err := f.uc.Invoice(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusInvoiced, out.Status)
}

func violationCodes(err *sales.ValidationError) []string {
	out := make([]string, len(err.Violations))
	for i, v := range err.Violations {
		out[i] = string(v)
	}
	return out
}
