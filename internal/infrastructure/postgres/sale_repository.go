package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/farmavida/pos-api/internal/domain"
	"github.com/farmavida/pos-api/internal/domain/entity"
	"github.com/farmavida/pos-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository sobre PostgreSQL (usable con pool o tx).
// La venta vive en dos tablas: sales (cabecera, totales, comprobante y
// anulación embebidos) y sale_items (líneas).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de ventas. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `
	id, status, client_nit, client_name, client_document_type, client_email, client_phone,
	subtotal, additional_discount, total, paid, change,
	invoice_number, authorization_code, cuf, document_hash, reception_code, qr_verification_url, issued_at,
	cancel_reason, cancellation_code, cancelled_at,
	created_at, updated_at, invoiced_at`

// Create persiste la venta y sus líneas.
func (r *SaleRepo) Create(sale *entity.Sale) error {
	ctx := context.Background()
	query := `
		INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		        $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`
	args := saleArgs(sale)
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: venta %s", domain.ErrDuplicate, sale.ID)
		}
		return fmt.Errorf("create sale: %w", err)
	}
	return r.insertItems(ctx, sale)
}

// Update reemplaza cabecera y líneas de la venta.
func (r *SaleRepo) Update(sale *entity.Sale) error {
	ctx := context.Background()
	query := `
		UPDATE sales SET
			status = $2, client_nit = $3, client_name = $4, client_document_type = $5,
			client_email = $6, client_phone = $7,
			subtotal = $8, additional_discount = $9, total = $10, paid = $11, change = $12,
			invoice_number = $13, authorization_code = $14, cuf = $15, document_hash = $16,
			reception_code = $17, qr_verification_url = $18, issued_at = $19,
			cancel_reason = $20, cancellation_code = $21, cancelled_at = $22,
			created_at = $23, updated_at = $24, invoiced_at = $25
		WHERE id = $1`
	args := saleArgs(sale)
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: venta %s", domain.ErrNotFound, sale.ID)
	}

	if _, err := r.q.Exec(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, sale.ID); err != nil {
		return fmt.Errorf("delete sale items: %w", err)
	}
	return r.insertItems(ctx, sale)
}

// GetByID devuelve la venta con sus líneas, o nil, nil si no existe.
func (r *SaleRepo) GetByID(id string) (*entity.Sale, error) {
	ctx := context.Background()
	row := r.q.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
	s, err := scanSale(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if err := r.loadItems(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// List devuelve las ventas que cumplen el filtro, más recientes primero.
func (r *SaleRepo) List(filter repository.SaleFilter) ([]*entity.Sale, error) {
	ctx := context.Background()

	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Status != "" {
		where = append(where, "status = "+arg(filter.Status))
	}
	if filter.NIT != "" {
		where = append(where, "client_nit = "+arg(filter.NIT))
	}
	if filter.DateFrom != nil {
		where = append(where, "created_at >= "+arg(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		where = append(where, "created_at <= "+arg(*filter.DateTo))
	}
	if filter.InvoiceNumber != "" {
		where = append(where, "invoice_number::text LIKE "+arg("%"+filter.InvoiceNumber+"%"))
	}

	query := `SELECT ` + saleColumns + ` FROM sales`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var out []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	for _, s := range out {
		if err := r.loadItems(ctx, s); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *SaleRepo) insertItems(ctx context.Context, sale *entity.Sale) error {
	query := `
		INSERT INTO sale_items (id, sale_id, product_id, code, name, unit_of_measure,
		                        quantity, unit_price, line_discount, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for i := range sale.Items {
		it := &sale.Items[i]
		_, err := r.q.Exec(ctx, query,
			it.ID, sale.ID, it.ProductID, it.Code, it.Name, it.UnitOfMeasure,
			it.Quantity, it.UnitPrice, it.LineDiscount, it.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("insert sale item: %w", err)
		}
	}
	return nil
}

func (r *SaleRepo) loadItems(ctx context.Context, sale *entity.Sale) error {
	query := `
		SELECT id, sale_id, product_id, code, name, unit_of_measure,
		       quantity, unit_price, line_discount, subtotal
		FROM sale_items WHERE sale_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, sale.ID)
	if err != nil {
		return fmt.Errorf("load sale items: %w", err)
	}
	defer rows.Close()

	sale.Items = sale.Items[:0]
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.Code, &it.Name,
			&it.UnitOfMeasure, &it.Quantity, &it.UnitPrice, &it.LineDiscount, &it.Subtotal); err != nil {
			return fmt.Errorf("scan sale item: %w", err)
		}
		sale.Items = append(sale.Items, it)
	}
	return rows.Err()
}

// saleArgs aplana la venta al orden de saleColumns. Comprobante y anulación
// van como columnas NULLables de la misma fila.
func saleArgs(s *entity.Sale) []any {
	var invoiceNumber *int64
	var authCode, cuf, docHash, recCode, qrURL *string
	var issuedAt any
	if s.Receipt != nil {
		invoiceNumber = &s.Receipt.InvoiceNumber
		authCode = &s.Receipt.AuthorizationCode
		cuf = &s.Receipt.CUF
		docHash = &s.Receipt.DocumentHash
		recCode = &s.Receipt.ReceptionCode
		qrURL = &s.Receipt.QRVerificationURL
		issuedAt = s.Receipt.IssuedAt
	}
	var cancelReason, cancellationCode *string
	var cancelledAt any
	if s.Cancellation != nil {
		cancelReason = &s.Cancellation.Reason
		cancellationCode = &s.Cancellation.CancellationCode
		cancelledAt = s.Cancellation.CancelledAt
	}
	return []any{
		s.ID, s.Status, s.Client.NIT, s.Client.Name, s.Client.DocumentType,
		s.Client.Email, s.Client.Phone,
		s.Totals.Subtotal, s.Totals.AdditionalDiscount, s.Totals.Total,
		s.Totals.Paid, s.Totals.Change,
		invoiceNumber, authCode, cuf, docHash, recCode, qrURL, issuedAt,
		cancelReason, cancellationCode, cancelledAt,
		s.CreatedAt, s.UpdatedAt, s.InvoicedAt,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSale(row rowScanner) (*entity.Sale, error) {
	var s entity.Sale
	var receipt entity.FiscalReceipt
	var cancellation entity.Cancellation
	var invoiceNumber *int64
	var authCode, cuf, docHash, recCode, qrURL *string
	var issuedAt, cancelledAt, invoicedAt *time.Time
	var cancelReason, cancellationCode *string

	err := row.Scan(
		&s.ID, &s.Status, &s.Client.NIT, &s.Client.Name, &s.Client.DocumentType,
		&s.Client.Email, &s.Client.Phone,
		&s.Totals.Subtotal, &s.Totals.AdditionalDiscount, &s.Totals.Total,
		&s.Totals.Paid, &s.Totals.Change,
		&invoiceNumber, &authCode, &cuf, &docHash, &recCode, &qrURL, &issuedAt,
		&cancelReason, &cancellationCode, &cancelledAt,
		&s.CreatedAt, &s.UpdatedAt, &invoicedAt,
	)
	if err != nil {
		return nil, err
	}

	if invoiceNumber != nil {
		receipt.InvoiceNumber = *invoiceNumber
		receipt.AuthorizationCode = deref(authCode)
		receipt.CUF = deref(cuf)
		receipt.DocumentHash = deref(docHash)
		receipt.ReceptionCode = deref(recCode)
		receipt.QRVerificationURL = deref(qrURL)
		if issuedAt != nil {
			receipt.IssuedAt = *issuedAt
		}
		s.Receipt = &receipt
	}
	if cancelReason != nil {
		cancellation.Reason = *cancelReason
		cancellation.CancellationCode = deref(cancellationCode)
		if cancelledAt != nil {
			cancellation.CancelledAt = *cancelledAt
		}
		s.Cancellation = &cancellation
	}
	s.InvoicedAt = invoicedAt
	return &s, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
