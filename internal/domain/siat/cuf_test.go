package siat_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmavida/pos-api/internal/domain/siat"
)

// ──────────────────────────────────────────────────────────────────────────────
// TestCalculateCuf valida que el cálculo SHA-384 del CUF produce el hash exacto
// esperado para parámetros conocidos.
//
// Este test es el "canario en la mina" de la integración SIAT: si alguien
// modifica inadvertidamente la cadena de concatenación, el algoritmo o el
// formato de los montos, el test falla de inmediato.
//
// Vector de prueba calculado manualmente con SHA-384:
//
//	Cadena = NitEmisor + FechaEmision + Sucursal + NumFactura + CodSistema +
//	         DocComprador + Total + Ambiente
//	       = "1023456789" + "20251115143000" + "2" + "1542" +
//	         "7B2DE310C29FA6A" + "5632897" + "1180.50" + "2"
// ──────────────────────────────────────────────────────────────────────────────

const (
	testCufExpected = "c95413d444074e18d24606da6c46bd3970d4afa6e43357938c3c05df8aed912b84bcc03957158f05af0ccd9699e10fec"

	testCompanyNIT = "1023456789"
	testIssueDate  = "20251115143000"
	testBranchCode = "2"
	testSystemCode = "7B2DE310C29FA6A"
	testClientDoc  = "5632897"
)

func buildTestParams() *siat.CufParams {
	return &siat.CufParams{
		CompanyNIT:    testCompanyNIT,
		IssueDate:     testIssueDate,
		BranchCode:    testBranchCode,
		InvoiceNumber: 1542,
		SystemCode:    testSystemCode,
		ClientDoc:     testClientDoc,
		Total:         decimal.NewFromFloat(1180.50),
		Env:           siat.AmbPruebas,
	}
}

func TestCalculateCuf_VectorExacto(t *testing.T) {
	calc := siat.NewCufCalculator()

	cuf, err := calc.Calculate(buildTestParams())
	require.NoError(t, err, "Calculate no debe retornar error con parámetros válidos")
	assert.Equal(t, testCufExpected, cuf,
		"El CUF debe coincidir exactamente con el vector SHA-384 de referencia")
}

// TestCalculateCuf_Determinista verifica que llamar Calculate dos veces con los
// mismos parámetros produce siempre el mismo hash.
func TestCalculateCuf_Determinista(t *testing.T) {
	calc := siat.NewCufCalculator()

	cuf1, err1 := calc.Calculate(buildTestParams())
	cuf2, err2 := calc.Calculate(buildTestParams())

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, cuf1, cuf2, "El mismo input siempre debe producir el mismo CUF")
}

// TestCalculateCuf_DiferenteNumero verifica que cambiar el número de factura
// produce un hash distinto.
func TestCalculateCuf_DiferenteNumero(t *testing.T) {
	calc := siat.NewCufCalculator()

	p1 := buildTestParams()
	p2 := buildTestParams()
	p2.InvoiceNumber = 1543 // solo cambia el número

	cuf1, _ := calc.Calculate(p1)
	cuf2, _ := calc.Calculate(p2)

	assert.NotEqual(t, cuf1, cuf2,
		"Facturas con números distintos deben tener CUFs distintos")
}

// TestCalculateCuf_AmbienteAfectaHash verifica que producción (Env=1) y
// pruebas (Env=2) producen hashes diferentes.
func TestCalculateCuf_AmbienteAfectaHash(t *testing.T) {
	calc := siat.NewCufCalculator()

	pPruebas := buildTestParams()
	pPruebas.Env = siat.AmbPruebas

	pProduccion := buildTestParams()
	pProduccion.Env = siat.AmbProduccion

	cufPruebas, _ := calc.Calculate(pPruebas)
	cufProduccion, _ := calc.Calculate(pProduccion)

	assert.NotEqual(t, cufPruebas, cufProduccion,
		"Los CUFs de ambiente pruebas y producción deben ser distintos")
}

// ── Errores de validación ─────────────────────────────────────────────────────

func TestCalculateCuf_ErrorSiNilParams(t *testing.T) {
	calc := siat.NewCufCalculator()
	_, err := calc.Calculate(nil)
	assert.Error(t, err, "Calculate con nil debe retornar error")
}

func TestCalculateCuf_ErrorSiNITVacio(t *testing.T) {
	calc := siat.NewCufCalculator()
	p := buildTestParams()
	p.CompanyNIT = ""
	_, err := calc.Calculate(p)
	assert.Error(t, err, "Calculate sin CompanyNIT debe retornar error")
}

func TestCalculateCuf_ErrorSiNumeroInvalido(t *testing.T) {
	calc := siat.NewCufCalculator()
	p := buildTestParams()
	p.InvoiceNumber = 0
	_, err := calc.Calculate(p)
	assert.Error(t, err, "Calculate con número de factura 0 debe retornar error")
}

func TestCalculateCuf_ErrorSiSystemCodeVacio(t *testing.T) {
	calc := siat.NewCufCalculator()
	p := buildTestParams()
	p.SystemCode = ""
	_, err := calc.Calculate(p)
	assert.Error(t, err, "Calculate sin SystemCode debe retornar error")
}

// TestCalculateCuf_LongitudHash valida que el hash SHA-384 tenga exactamente
// 96 caracteres hexadecimales.
func TestCalculateCuf_LongitudHash(t *testing.T) {
	calc := siat.NewCufCalculator()
	cuf, err := calc.Calculate(buildTestParams())
	require.NoError(t, err)
	assert.Len(t, cuf, 96, "El CUF debe tener 96 caracteres hexadecimales (SHA-384)")
}
