package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serviteca/taller-api/internal/application/inventory"
	"github.com/serviteca/taller-api/internal/domain"
	"github.com/serviteca/taller-api/internal/domain/entity"
	"github.com/serviteca/taller-api/internal/testutil"
)

func newStockUC(store *testutil.Store) *inventory.StockUseCase {
	return inventory.NewStockUseCase(store.Runner(), store.Ledgers)
}

func TestAddStock_CreaLedgerYTransaccion(t *testing.T) {
	store := testutil.NewStore()
	uc := newStockUC(store)

	ledger, err := uc.AddStock(context.Background(), inventory.MutationInput{
		ResourceID: 42, Quantity: 10, Reason: "carga inicial", Actor: "bodeguero-1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), ledger.QuantityInStock)

	// La mutación debe dejar exactamente una transacción de auditoría emparejada.
	require.Equal(t, 1, store.TxLog.Count())
	tx := store.TxLog.Last()
	assert.Equal(t, entity.TransactionTypeImport, tx.Type)
	assert.Equal(t, int64(0), tx.QuantityBefore)
	assert.Equal(t, int64(10), tx.QuantityAfter)
	assert.Equal(t, int64(10), tx.QuantityChange)
	assert.Equal(t, "bodeguero-1", tx.CreatedBy)
	assert.Contains(t, tx.TransactionNumber, "TXN-")
}

func TestRemoveStock_DescuentaYRegistra(t *testing.T) {
	store := testutil.NewStore()
	uc := newStockUC(store)
	ctx := context.Background()

	_, err := uc.AddStock(ctx, inventory.MutationInput{ResourceID: 7, Quantity: 20, Actor: "a"})
	require.NoError(t, err)

	ok, ledger, err := uc.RemoveStock(ctx, inventory.MutationInput{ResourceID: 7, Quantity: 8, Actor: "a"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(12), ledger.QuantityInStock)

	tx := store.TxLog.Last()
	assert.Equal(t, entity.TransactionTypeExport, tx.Type)
	assert.Equal(t, int64(-8), tx.QuantityChange)
}

// Stock insuficiente es una falla de regla de negocio, no un error técnico:
// ok=false, el ledger no cambia y no se escribe ninguna transacción.
func TestRemoveStock_InsuficienteNoEscribeNada(t *testing.T) {
	store := testutil.NewStore()
	uc := newStockUC(store)
	ctx := context.Background()

	_, err := uc.AddStock(ctx, inventory.MutationInput{ResourceID: 7, Quantity: 5, Actor: "a"})
	require.NoError(t, err)
	before := store.TxLog.Count()

	ok, ledger, err := uc.RemoveStock(ctx, inventory.MutationInput{ResourceID: 7, Quantity: 6, Actor: "a"})
	require.NoError(t, err, "insuficiencia no debe reportarse como error")
	assert.False(t, ok)
	assert.Equal(t, int64(5), ledger.QuantityInStock, "el ledger no debe cambiar")
	assert.Equal(t, before, store.TxLog.Count(), "no debe escribirse transacción")
}

func TestAdjustStock_FijaCantidadAbsoluta(t *testing.T) {
	store := testutil.NewStore()
	uc := newStockUC(store)
	ctx := context.Background()

	_, err := uc.AddStock(ctx, inventory.MutationInput{ResourceID: 3, Quantity: 10, Actor: "a"})
	require.NoError(t, err)

	ledger, err := uc.AdjustStock(ctx, 3, 4, "conteo físico", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), ledger.QuantityInStock)

	tx := store.TxLog.Last()
	assert.Equal(t, entity.TransactionTypeAdjustment, tx.Type)
	assert.Equal(t, int64(-6), tx.QuantityChange)
	assert.Equal(t, entity.ReferenceTypeAdjustment, tx.ReferenceType)
}

// Dos escritores compiten por crear la fila del ledger: el perdedor recibe el
// duplicado del constraint único, relee la fila del ganador y continúa sobre ella.
func TestAddStock_AbsorbeCarreraDeCreacion(t *testing.T) {
	store := testutil.NewStore()
	uc := newStockUC(store)

	// Simula al ganador: justo antes de nuestro insert, otro escritor crea la
	// fila con cantidad 5.
	store.Ledgers.OnInsert = func() {
		store.Ledgers.OnInsert = nil
		store.Ledgers.Seed(entity.StockLedger{ResourceID: 9, QuantityInStock: 5, LastUpdatedBy: "otro"})
	}

	ledger, err := uc.AddStock(context.Background(), inventory.MutationInput{
		ResourceID: 9, Quantity: 3, Actor: "a",
	})
	require.NoError(t, err, "la carrera de creación debe absorberse sin propagar el duplicado")
	assert.Equal(t, int64(8), ledger.QuantityInStock, "debe sumar sobre la fila del ganador")
}

func TestStockUseCase_ValidaEntradas(t *testing.T) {
	store := testutil.NewStore()
	uc := newStockUC(store)
	ctx := context.Background()

	_, err := uc.AddStock(ctx, inventory.MutationInput{ResourceID: 0, Quantity: 1, Actor: "a"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.AddStock(ctx, inventory.MutationInput{ResourceID: 1, Quantity: -2, Actor: "a"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, err = uc.RemoveStock(ctx, inventory.MutationInput{ResourceID: 1, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "actor vacío debe rechazarse")

	_, err = uc.AdjustStock(ctx, 1, -1, "", "a")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el ajuste no admite cantidades negativas")
}

func TestGetByResource_NoExiste(t *testing.T) {
	store := testutil.NewStore()
	uc := newStockUC(store)

	_, err := uc.GetByResource(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateThresholds_ParcialYCreaFila(t *testing.T) {
	store := testutil.NewStore()
	uc := newStockUC(store)
	ctx := context.Background()

	min := int64(5)
	ledger, err := uc.UpdateThresholds(ctx, inventory.ThresholdInput{
		ResourceID: 11, Minimum: &min, Actor: "admin-1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), ledger.MinimumStockLevel)
	assert.Equal(t, int64(0), ledger.MaximumStockLevel, "los campos nil no se tocan")

	reorder := int64(3)
	ledger, err = uc.UpdateThresholds(ctx, inventory.ThresholdInput{
		ResourceID: 11, ReorderPoint: &reorder, Actor: "admin-1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), ledger.MinimumStockLevel, "el mínimo previo debe conservarse")
	require.NotNil(t, ledger.ReorderPoint)
	assert.Equal(t, int64(3), *ledger.ReorderPoint)
}

// Reproducir todas las transacciones de un recurso desde cero debe devolver la
// cantidad actual del ledger, sin importar la mezcla de operaciones.
func TestVerifyLedger_ReplayConsistente(t *testing.T) {
	store := testutil.NewStore()
	uc := newStockUC(store)
	queries := inventory.NewTransactionQueryUseCase(store.TxLog)
	ctx := context.Background()

	_, err := uc.AddStock(ctx, inventory.MutationInput{ResourceID: 5, Quantity: 30, Actor: "a"})
	require.NoError(t, err)
	_, _, err = uc.RemoveStock(ctx, inventory.MutationInput{ResourceID: 5, Quantity: 12, Actor: "a"})
	require.NoError(t, err)
	_, err = uc.AdjustStock(ctx, 5, 25, "conteo", "a")
	require.NoError(t, err)
	// Un intento insuficiente no debe aportar entradas al log.
	ok, _, err := uc.RemoveStock(ctx, inventory.MutationInput{ResourceID: 5, Quantity: 999, Actor: "a"})
	require.NoError(t, err)
	require.False(t, ok)

	report, err := queries.VerifyLedger(ctx, store.Ledgers, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, report.EntryCount)
	assert.Equal(t, int64(25), report.ReplayedQuantity)
	assert.Equal(t, int64(25), report.LedgerQuantity)
	assert.True(t, report.Consistent)
}

func TestTransactionStats_AgregaPorTipo(t *testing.T) {
	store := testutil.NewStore()
	uc := newStockUC(store)
	queries := inventory.NewTransactionQueryUseCase(store.TxLog)
	ctx := context.Background()

	_, err := uc.AddStock(ctx, inventory.MutationInput{ResourceID: 1, Quantity: 10, Actor: "a"})
	require.NoError(t, err)
	_, err = uc.AddStock(ctx, inventory.MutationInput{ResourceID: 2, Quantity: 7, Actor: "a"})
	require.NoError(t, err)
	_, _, err = uc.RemoveStock(ctx, inventory.MutationInput{ResourceID: 1, Quantity: 4, Actor: "a"})
	require.NoError(t, err)

	s, err := queries.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), s.TotalCount)
	assert.Equal(t, int64(2), s.ImportCount)
	assert.Equal(t, int64(1), s.ExportCount)
	assert.Equal(t, int64(17), s.TotalImported)
	assert.Equal(t, int64(4), s.TotalExported)
}
