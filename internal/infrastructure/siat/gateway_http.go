package siat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/farmavida/pos-api/internal/domain"
	"github.com/farmavida/pos-api/internal/domain/entity"
	"github.com/farmavida/pos-api/pkg/logger"
)

// ── Constantes de entorno ──────────────────────────────────────────────────────

const (
	// AppEnvDev es el identificador local: usa la pasarela simulada en proceso.
	AppEnvDev = "dev"
	// AppEnvTest es el ambiente de pruebas/piloto del SIN.
	AppEnvTest = "test"
	// AppEnvProd es el ambiente de producción del SIN.
	AppEnvProd = "prod"

	baseURLTest = "https://pilotosiat.impuestos.gob.bo/v2/facturacionCompraVenta"
	baseURLProd = "https://siat.impuestos.gob.bo/v2/facturacionCompraVenta"
)

// HTTPGateway implementa la pasarela fiscal contra el WS SIAT del SIN.
type HTTPGateway struct {
	httpClient *http.Client
	baseURL    string
	builder    *XMLBuilder
	log        *logger.Logger
}

// Config parámetros del cliente SIAT.
type Config struct {
	Env        string        // "test" o "prod"
	BaseURL    string        // si está vacío se usa la URL oficial del ambiente
	Timeout    time.Duration // deadline por request; el WS del SIN puede tardar varios segundos
	CompanyNIT string
	BranchCode string
	SystemCode string
}

// NewHTTPGateway construye el cliente para los ambientes test y prod.
func NewHTTPGateway(cfg Config, log *logger.Logger) (*HTTPGateway, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		switch cfg.Env {
		case AppEnvTest:
			baseURL = baseURLTest
		case AppEnvProd:
			baseURL = baseURLProd
		default:
			return nil, fmt.Errorf("siat: entorno desconocido %q (usar 'test' o 'prod')", cfg.Env)
		}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPGateway{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		builder:    NewXMLBuilder(cfg.CompanyNIT, cfg.BranchCode, cfg.SystemCode),
		log:        log,
	}, nil
}

// ── Estructuras de respuesta del WS ───────────────────────────────────────────

type submitResponse struct {
	NumeroFactura      int64  `json:"numeroFactura"`
	CodigoAutorizacion string `json:"codigoAutorizacion"`
	CUF                string `json:"cuf"`
	CodigoRecepcion    string `json:"codigoRecepcion"`
	URLVerificacion    string `json:"urlVerificacion"`
	FechaEmision       string `json:"fechaEmision"`
	Mensaje            string `json:"mensaje"`
}

type cancelResponse struct {
	CodigoAnulacion string `json:"codigoAnulacion"`
	FechaAnulacion  string `json:"fechaAnulacion"`
	Mensaje         string `json:"mensaje"`
}

// Submit envía la venta al WS de recepción. El número de factura y el CUF los
// asigna el SIN; el XML viaja sin número (cero) y el comprobante devuelto es
// la única fuente de verdad.
func (g *HTTPGateway) Submit(ctx context.Context, sale *entity.Sale, idempotencyKey string) (*entity.FiscalReceipt, error) {
	xmlBytes, err := g.builder.Build(sale, 0, "", time.Now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayRejected, err)
	}
	hash, err := Hash(xmlBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayRejected, err)
	}

	body, status, err := g.post(ctx, g.baseURL+"/recepcionFactura", idempotencyKey, xmlBytes)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, classifyStatus(status, body)
	}

	var resp submitResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: respuesta ilegible del WS: %v", domain.ErrGatewayTransient, err)
	}
	issuedAt, err := time.Parse(time.RFC3339, resp.FechaEmision)
	if err != nil {
		issuedAt = time.Now()
	}

	g.log.Info().
		Int64("invoice_number", resp.NumeroFactura).
		Str("reception_code", resp.CodigoRecepcion).
		Msg("factura recibida por el WS SIAT")

	return &entity.FiscalReceipt{
		InvoiceNumber:     resp.NumeroFactura,
		AuthorizationCode: resp.CodigoAutorizacion,
		CUF:               resp.CUF,
		DocumentHash:      hash,
		ReceptionCode:     resp.CodigoRecepcion,
		QRVerificationURL: resp.URLVerificacion,
		IssuedAt:          issuedAt,
	}, nil
}

// Cancel solicita la anulación de una factura autorizada.
func (g *HTTPGateway) Cancel(ctx context.Context, invoiceNumber int64, reason string) (*entity.Cancellation, error) {
	payload, err := json.Marshal(map[string]any{
		"numeroFactura": invoiceNumber,
		"motivo":        reason,
	})
	if err != nil {
		return nil, err
	}

	body, status, err := g.post(ctx, g.baseURL+"/anulacionFactura", "", payload)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, classifyStatus(status, body)
	}

	var resp cancelResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: respuesta ilegible del WS: %v", domain.ErrGatewayTransient, err)
	}
	cancelledAt, err := time.Parse(time.RFC3339, resp.FechaAnulacion)
	if err != nil {
		cancelledAt = time.Now()
	}

	return &entity.Cancellation{
		Reason:           reason,
		CancellationCode: resp.CodigoAnulacion,
		CancelledAt:      cancelledAt,
	}, nil
}

func (g *HTTPGateway) post(ctx context.Context, url, idempotencyKey string, payload []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("siat: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "application/xml; charset=utf-8")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		// Timeout, DNS, conexión rechazada: el documento pudo o no haber
		// llegado; la clave de idempotencia hace seguro el reintento.
		if ctx.Err() != nil {
			return nil, 0, fmt.Errorf("%w: %v", domain.ErrGatewayTransient, ctx.Err())
		}
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrGatewayTransient, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // max 1 MB
	if err != nil {
		return nil, 0, fmt.Errorf("%w: leer respuesta: %v", domain.ErrGatewayTransient, err)
	}
	return body, resp.StatusCode, nil
}

// classifyStatus separa fallos transitorios (reintentables) de rechazos del SIN.
func classifyStatus(status int, body []byte) error {
	if status >= 500 || status == http.StatusTooManyRequests {
		return fmt.Errorf("%w: WS SIAT respondió %d: %s", domain.ErrGatewayTransient, status, string(body))
	}
	return fmt.Errorf("%w: WS SIAT respondió %d: %s", domain.ErrGatewayRejected, status, string(body))
}
