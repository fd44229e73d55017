package clients_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmavida/pos-api/internal/application/clients"
	"github.com/farmavida/pos-api/internal/domain/entity"
	"github.com/farmavida/pos-api/internal/infrastructure/memory"
	"github.com/farmavida/pos-api/pkg/logger"
)

func newDirectory() *clients.Directory {
	return clients.NewDirectory(memory.NewClientRepository(), logger.Nop())
}

func TestResolve_CreaClienteNuevoConTipoInferido(t *testing.T) {
	d := newDirectory()

	snap, err := d.Resolve("5632897", "Maria Quispe")
	require.NoError(t, err)
	assert.Equal(t, "Maria Quispe", snap.Name)
	assert.Equal(t, "CI", snap.DocumentType, "hasta 8 dígitos es cédula de identidad")

	snap, err = d.Resolve("1023456789", "Farmacia Central SRL")
	require.NoError(t, err)
	assert.Equal(t, "NIT", snap.DocumentType, "más de 8 dígitos es NIT")

	snap, err = d.Resolve("E1234567", "John Smith")
	require.NoError(t, err)
	assert.Equal(t, "CEX", snap.DocumentType, "con letras es carnet de extranjería")
}

func TestResolve_CodigoReservadoUsaNombreCanonico(t *testing.T) {
	d := newDirectory()

	snap, err := d.Resolve("4444", "cualquier nombre que mande el terminal")
	require.NoError(t, err)
	assert.Equal(t, "SIN NOMBRE", snap.Name, "los códigos reservados nunca se renombran")

	snap, err = d.Resolve("99002", "")
	require.NoError(t, err)
	assert.Equal(t, "EXTRANJERO SIN NIT", snap.Name)
}

func TestResolve_NITVacioEsConsumidorFinal(t *testing.T) {
	d := newDirectory()

	snap, err := d.Resolve("", "")
	require.NoError(t, err)
	assert.Equal(t, "4444", snap.NIT)
	assert.Equal(t, "SIN NOMBRE", snap.Name)
}

func TestResolve_NombreMasRecienteGana(t *testing.T) {
	d := newDirectory()

	_, err := d.Resolve("5632897", "Maria Quispe")
	require.NoError(t, err)

	snap, err := d.Resolve("5632897", "Maria Quispe de Mamani")
	require.NoError(t, err)
	assert.Equal(t, "Maria Quispe de Mamani", snap.Name)

	// Un nombre vacío no borra el registrado.
	snap, err = d.Resolve("5632897", "")
	require.NoError(t, err)
	assert.Equal(t, "Maria Quispe de Mamani", snap.Name)
}

func TestRecordPurchase_ActualizaUltimaCompra(t *testing.T) {
	d := newDirectory()

	snap, err := d.Resolve("5632897", "Maria Quispe")
	require.NoError(t, err)

	at := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	require.NoError(t, d.RecordPurchase(snap, at))

	c, err := d.Get("5632897")
	require.NoError(t, err)
	require.NotNil(t, c.LastPurchaseAt)
	assert.True(t, c.LastPurchaseAt.Equal(at))
}

func TestRecordPurchase_CreaClienteSiNoExiste(t *testing.T) {
	d := newDirectory()

	at := time.Now()
	err := d.RecordPurchase(entity.ClientSnapshot{
		NIT: "7778889", Name: "Carlos Mamani", DocumentType: "CI",
	}, at)
	require.NoError(t, err)

	c, err := d.Get("7778889")
	require.NoError(t, err)
	assert.Equal(t, "Carlos Mamani", c.Name)
	require.NotNil(t, c.LastPurchaseAt)
}
