package memory_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmavida/pos-api/internal/domain"
	"github.com/farmavida/pos-api/internal/domain/entity"
	"github.com/farmavida/pos-api/internal/infrastructure/memory"
)

func seedProduct(t *testing.T, repo *memory.ProductRepository, stock int64) *entity.Product {
	t.Helper()
	p := &entity.Product{ID: uuid.NewString(), Code: uuid.NewString()[:8], Name: "Producto", StockQuantity: stock}
	require.NoError(t, repo.Create(p))
	return p
}

func currentStock(t *testing.T, repo *memory.ProductRepository, id string) int64 {
	t.Helper()
	got, err := repo.StockByIDs([]string{id})
	require.NoError(t, err)
	return got[id]
}

// TestReserve_TodoONada verifica que si una línea no alcanza, ninguna se aplica.
func TestReserve_TodoONada(t *testing.T) {
	repo := memory.NewProductRepository()
	r := memory.NewStockReconciler(repo)

	pOK := seedProduct(t, repo, 10)
	pShort := seedProduct(t, repo, 1)

	err := r.Reserve(context.Background(), []entity.SaleItem{
		{ProductID: pOK.ID, Quantity: 5},
		{ProductID: pShort.ID, Quantity: 3},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, int64(10), currentStock(t, repo, pOK.ID), "la línea válida no debe aplicarse")
	assert.Equal(t, int64(1), currentStock(t, repo, pShort.ID))
}

func TestReserve_AcumulaLineasDelMismoProducto(t *testing.T) {
	repo := memory.NewProductRepository()
	r := memory.NewStockReconciler(repo)
	p := seedProduct(t, repo, 5)

	// Dos líneas del mismo producto suman 6 > 5: debe fallar completo.
	err := r.Reserve(context.Background(), []entity.SaleItem{
		{ProductID: p.ID, Quantity: 3},
		{ProductID: p.ID, Quantity: 3},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(5), currentStock(t, repo, p.ID))
}

func TestReserveYRelease_RoundTrip(t *testing.T) {
	repo := memory.NewProductRepository()
	r := memory.NewStockReconciler(repo)
	p := seedProduct(t, repo, 10)

	items := []entity.SaleItem{{ProductID: p.ID, Quantity: 4}}
	require.NoError(t, r.Reserve(context.Background(), items))
	assert.Equal(t, int64(6), currentStock(t, repo, p.ID))

	require.NoError(t, r.Release(context.Background(), items))
	assert.Equal(t, int64(10), currentStock(t, repo, p.ID), "anular devuelve el stock exacto")
}

// La reserva corre después de la validación: un faltante a esta altura es un
// conflicto con otra venta concurrente y se reporta como tal (sin dejar de ser
// un caso de stock insuficiente).
func TestReserve_FaltanteEsConflictoConcurrente(t *testing.T) {
	repo := memory.NewProductRepository()
	r := memory.NewStockReconciler(repo)
	p := seedProduct(t, repo, 5)

	// Otra venta consumió el stock entre la validación y esta reserva.
	require.NoError(t, r.Reserve(context.Background(), []entity.SaleItem{{ProductID: p.ID, Quantity: 4}}))

	err := r.Reserve(context.Background(), []entity.SaleItem{{ProductID: p.ID, Quantity: 2}})
	require.ErrorIs(t, err, domain.ErrStockConflict)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(1), currentStock(t, repo, p.ID))
}

func TestReserve_ProductoInexistente(t *testing.T) {
	repo := memory.NewProductRepository()
	r := memory.NewStockReconciler(repo)

	err := r.Reserve(context.Background(), []entity.SaleItem{{ProductID: "no-existe", Quantity: 1}})
	require.ErrorIs(t, err, domain.ErrNotFound)
}
