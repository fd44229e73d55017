package sales

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/farmavida/pos-api/internal/application/dto"
	"github.com/farmavida/pos-api/internal/domain"
	"github.com/farmavida/pos-api/internal/domain/entity"
	"github.com/farmavida/pos-api/internal/domain/repository"
	"github.com/farmavida/pos-api/internal/domain/sale"
	"github.com/farmavida/pos-api/pkg/logger"
	"github.com/farmavida/pos-api/pkg/siat"
)

// ClientDirectory resuelve y actualiza clientes durante el flujo de venta.
// Lo implementa application/clients.Directory.
type ClientDirectory interface {
	// Resolve devuelve el snapshot del cliente para embeber en la venta,
	// creándolo en el directorio si no existe.
	Resolve(nit, name string) (entity.ClientSnapshot, error)
	// RecordPurchase hace upsert del cliente tras una facturación exitosa.
	RecordPurchase(snapshot entity.ClientSnapshot, at time.Time) error
}

// ValidationError agrupa las violaciones de reglas de negocio de una venta.
// Envuelve domain.ErrValidation para el mapeo HTTP.
type ValidationError struct {
	Violations []sale.ViolationCode
}

func (e *ValidationError) Error() string {
	codes := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		codes[i] = string(v)
	}
	return "validación de venta fallida: " + strings.Join(codes, ", ")
}

func (e *ValidationError) Unwrap() error { return domain.ErrValidation }

// Config parámetros del motor de ventas.
type Config struct {
	// FiscalIDThreshold monto desde el cual la venta exige NIT/CI real.
	FiscalIDThreshold decimal.Decimal
	// MaxRetries reintentos ante fallos transitorios de la pasarela fiscal.
	MaxRetries int
	// RetryBase espera inicial del backoff exponencial.
	RetryBase time.Duration
}

// UseCase orquesta el ciclo de vida de la venta: carrito, guardado,
// facturación y anulación. Toda mutación de una venta se serializa con un
// candado por ID.
type UseCase struct {
	sales      repository.SaleRepository
	products   repository.ProductRepository
	directory  ClientDirectory
	gateway    FiscalGateway
	reconciler StockReconciler
	locks      *saleLocks
	cfg        Config
	log        *logger.Logger
}

func NewUseCase(
	sales repository.SaleRepository,
	products repository.ProductRepository,
	directory ClientDirectory,
	gateway FiscalGateway,
	reconciler StockReconciler,
	cfg Config,
	log *logger.Logger,
) *UseCase {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 200 * time.Millisecond
	}
	return &UseCase{
		sales:      sales,
		products:   products,
		directory:  directory,
		gateway:    gateway,
		reconciler: reconciler,
		locks:      newSaleLocks(),
		cfg:        cfg,
		log:        log,
	}
}

// Create abre una venta nueva en estado borrador con el cliente anónimo.
func (u *UseCase) Create() (*entity.Sale, error) {
	now := time.Now()
	s := &entity.Sale{
		ID: uuid.NewString(),
		Client: entity.ClientSnapshot{
			NIT:          siat.NITAnonimo,
			Name:         siat.ReservedName(siat.NITAnonimo),
			DocumentType: siat.DocTypeCI,
		},
		Items:     []entity.SaleItem{},
		Status:    entity.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.sales.Create(s); err != nil {
		return nil, fmt.Errorf("crear venta: %w", err)
	}
	return s.Clone(), nil
}

// Update reemplaza carrito, cliente, descuento y pago de una venta editable.
// Las líneas se rehidratan desde el catálogo: código, nombre y unidad vienen
// del producto, y el precio de catálogo aplica cuando el request no trae uno.
// Los totales se recalculan siempre en el servidor.
func (u *UseCase) Update(id string, req dto.UpdateSaleRequest) (*entity.Sale, error) {
	unlock := u.locks.acquire(id)
	defer unlock()

	s, err := u.sales.GetByID(id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	if !s.IsEditable() {
		return nil, fmt.Errorf("%w: la venta %s está %s", domain.ErrIllegalTransition, s.ID, s.Status)
	}

	snapshot, err := u.directory.Resolve(req.ClientNIT, req.ClientName)
	if err != nil {
		return nil, err
	}
	s.Client = snapshot

	items := make([]entity.SaleItem, 0, len(req.Items))
	for _, line := range req.Items {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("%w: la cantidad debe ser un entero positivo", domain.ErrInvalidInput)
		}
		if line.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: el precio unitario no puede ser negativo", domain.ErrInvalidInput)
		}
		if line.LineDiscount.IsNegative() {
			return nil, fmt.Errorf("%w: el descuento de línea no puede ser negativo", domain.ErrInvalidInput)
		}
		p, err := u.products.GetByID(line.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, line.ProductID)
		}
		price := line.UnitPrice
		if price.IsZero() {
			price = p.UnitPrice
		}
		item := entity.SaleItem{
			ID:            uuid.NewString(),
			SaleID:        s.ID,
			ProductID:     p.ID,
			Code:          p.Code,
			Name:          p.Name,
			UnitOfMeasure: p.UnitOfMeasure,
			Quantity:      line.Quantity,
			UnitPrice:     price,
			LineDiscount:  line.LineDiscount,
		}
		item.Subtotal = item.ComputeSubtotal()
		items = append(items, item)
	}
	s.Items = items

	s.Totals = sale.CalculateTotals(s.Items, req.AdditionalDiscount, req.Paid)
	s.UpdatedAt = time.Now()

	if err := u.sales.Update(s); err != nil {
		return nil, fmt.Errorf("actualizar venta: %w", err)
	}
	return s.Clone(), nil
}

// Save persiste la venta como guardada, recargable en el terminal.
// Solo exige la validación ligera (al menos una línea).
func (u *UseCase) Save(id string) (*entity.Sale, error) {
	unlock := u.locks.acquire(id)
	defer unlock()

	s, err := u.sales.GetByID(id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}

	if res := sale.ValidateLight(s); !res.Valid {
		return nil, &ValidationError{Violations: res.Violations}
	}

	if err := s.TransitionTo(entity.StatusSaved); err != nil {
		return nil, fmt.Errorf("%w: la venta %s está %s", err, s.ID, s.Status)
	}
	s.UpdatedAt = time.Now()

	if err := u.sales.Update(s); err != nil {
		return nil, fmt.Errorf("guardar venta: %w", err)
	}
	return s.Clone(), nil
}

// Get devuelve una venta por ID.
func (u *UseCase) Get(id string) (*entity.Sale, error) {
	s, err := u.sales.GetByID(id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

// List consulta ventas por rango de fechas, estado, número de factura o NIT.
func (u *UseCase) List(filter repository.SaleFilter) ([]*entity.Sale, error) {
	return u.sales.List(filter)
}
