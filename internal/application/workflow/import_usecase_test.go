package workflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serviteca/taller-api/internal/application/workflow"
	"github.com/serviteca/taller-api/internal/domain"
	"github.com/serviteca/taller-api/internal/domain/entity"
	"github.com/serviteca/taller-api/internal/testutil"
)

func newImportUC(store *testutil.Store) *workflow.ImportUseCase {
	return workflow.NewImportUseCase(store.Runner(), store.Imports)
}

func createPendingImport(t *testing.T, uc *workflow.ImportUseCase, resourceID, qty int64) *entity.ImportRequest {
	t.Helper()
	req, err := uc.Create(context.Background(), workflow.CreateImportInput{
		ResourceID: resourceID,
		Quantity:   qty,
		UnitPrice:  decimal.NewFromFloat(12.50),
		Reason:     "reposición",
		Requester:  "bodeguero-1",
	})
	require.NoError(t, err)
	require.Equal(t, entity.ImportStatusPending, req.Status)
	return req
}

func TestImportCreate_CalculaTotalYGeneraNumero(t *testing.T) {
	store := testutil.NewStore()
	uc := newImportUC(store)

	req := createPendingImport(t, uc, 42, 4)

	assert.Contains(t, req.RequestNumber, "IMP-")
	assert.True(t, req.TotalAmount.Equal(decimal.NewFromFloat(50.0)),
		"total = precio unitario x cantidad, got %s", req.TotalAmount)
}

// La aprobación suma el stock en la misma transacción que el cambio de estado.
// Completar después solo registra la entrega: volver a sumar ahí duplicaría la entrada.
func TestImportApprove_SumaStockUnaSolaVez(t *testing.T) {
	store := testutil.NewStore()
	uc := newImportUC(store)
	ctx := context.Background()

	req := createPendingImport(t, uc, 42, 10)

	approved, err := uc.Approve(ctx, req.ID, "proveedor confirmado", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ImportStatusApproved, approved.Status)
	assert.Equal(t, "admin-1", approved.ReviewedBy)

	ledger, err := store.Ledgers.GetByResource(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, ledger)
	assert.Equal(t, int64(10), ledger.QuantityInStock, "el stock entra al aprobar")

	require.Equal(t, 1, store.TxLog.Count())
	tx := store.TxLog.Last()
	assert.Equal(t, entity.TransactionTypeImport, tx.Type)
	assert.Equal(t, entity.ReferenceTypeImportRequest, tx.ReferenceType)
	require.NotNil(t, tx.ReferenceID)
	assert.Equal(t, req.ID, *tx.ReferenceID)

	// Completar registra la entrega sin tocar el stock.
	completed, err := uc.Complete(ctx, workflow.CompleteImportInput{
		ID:            req.ID,
		DeliveryDate:  time.Now(),
		InvoiceNumber: "FAC-001",
		Actor:         "bodeguero-1",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ImportStatusCompleted, completed.Status)

	ledger, err = store.Ledgers.GetByResource(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(10), ledger.QuantityInStock, "completar no debe volver a sumar")
	assert.Equal(t, 1, store.TxLog.Count(), "completar no debe escribir transacciones")
}

func TestImportApprove_DobleAprobacionFalla(t *testing.T) {
	store := testutil.NewStore()
	uc := newImportUC(store)
	ctx := context.Background()

	req := createPendingImport(t, uc, 7, 5)
	_, err := uc.Approve(ctx, req.ID, "", "admin-1")
	require.NoError(t, err)

	_, err = uc.Approve(ctx, req.ID, "", "admin-2")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	ledger, err := store.Ledgers.GetByResource(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(5), ledger.QuantityInStock, "la segunda aprobación no debe sumar")
}

func TestImportReject_RequiereRazon(t *testing.T) {
	store := testutil.NewStore()
	uc := newImportUC(store)
	ctx := context.Background()

	req := createPendingImport(t, uc, 7, 5)

	_, err := uc.Reject(ctx, req.ID, "", "admin-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "rechazar sin razón debe fallar")

	rejected, err := uc.Reject(ctx, req.ID, "proveedor sin certificación", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ImportStatusRejected, rejected.Status)

	// El rechazo no toca el stock.
	ledger, err := store.Ledgers.GetByResource(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, ledger)
}

func TestImportCancel_TerminalFalla(t *testing.T) {
	store := testutil.NewStore()
	uc := newImportUC(store)
	ctx := context.Background()

	req := createPendingImport(t, uc, 7, 5)
	_, err := uc.Reject(ctx, req.ID, "no aplica", "admin-1")
	require.NoError(t, err)

	_, err = uc.Cancel(ctx, req.ID, "", "admin-1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "un estado terminal no admite cancelación")
}

func TestImportComplete_DesdePendingFalla(t *testing.T) {
	store := testutil.NewStore()
	uc := newImportUC(store)

	req := createPendingImport(t, uc, 7, 5)
	_, err := uc.Complete(context.Background(), workflow.CompleteImportInput{
		ID: req.ID, DeliveryDate: time.Now(), Actor: "bodeguero-1",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestImportGet_NoExiste(t *testing.T) {
	store := testutil.NewStore()
	uc := newImportUC(store)

	_, err := uc.Get(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestImportStats_CuentaPorEstado(t *testing.T) {
	store := testutil.NewStore()
	uc := newImportUC(store)
	ctx := context.Background()

	a := createPendingImport(t, uc, 1, 1)
	b := createPendingImport(t, uc, 2, 1)
	createPendingImport(t, uc, 3, 1)

	_, err := uc.Approve(ctx, a.ID, "", "admin-1")
	require.NoError(t, err)
	_, err = uc.Reject(ctx, b.ID, "razón", "admin-1")
	require.NoError(t, err)

	s, err := uc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), s.Total)
	assert.Equal(t, int64(1), s.Pending)
	assert.Equal(t, int64(1), s.Approved)
	assert.Equal(t, int64(1), s.Rejected)
}
