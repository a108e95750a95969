package workflow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serviteca/taller-api/internal/application/workflow"
	"github.com/serviteca/taller-api/internal/domain"
	"github.com/serviteca/taller-api/internal/domain/entity"
	"github.com/serviteca/taller-api/internal/testutil"
	"github.com/serviteca/taller-api/pkg/logger"
)

// fakeParts registra las réplicas enviadas al servicio de repuestos.
type fakeParts struct {
	calls []partsCall
	err   error
}

type partsCall struct {
	resourceID    int64
	quantity      int64
	requestNumber string
}

func (f *fakeParts) MirrorDeduction(ctx context.Context, resourceID, quantity int64, requestNumber string) error {
	f.calls = append(f.calls, partsCall{resourceID, quantity, requestNumber})
	return f.err
}

func newExportUC(store *testutil.Store, parts *fakeParts) *workflow.ExportUseCase {
	if parts == nil {
		return workflow.NewExportUseCase(store.Runner(), store.Exports, nil, logger.Nop())
	}
	return workflow.NewExportUseCase(store.Runner(), store.Exports, parts, logger.Nop())
}

func seedStock(store *testutil.Store, resourceID, qty int64) {
	store.Ledgers.Seed(entity.StockLedger{ResourceID: resourceID, QuantityInStock: qty, LastUpdatedBy: "seed"})
}

func createPendingExport(t *testing.T, uc *workflow.ExportUseCase, resourceID, qty int64) *entity.ExportRequest {
	t.Helper()
	req, err := uc.Create(context.Background(), workflow.CreateExportInput{
		ResourceID: resourceID,
		Quantity:   qty,
		Reason:     "salida a obra",
		Requester:  "bodeguero-1",
	})
	require.NoError(t, err)
	require.Equal(t, entity.ExportStatusPending, req.Status)
	require.Contains(t, req.RequestNumber, "EXP-")
	return req
}

func TestExportApprove_SinStockSuficienteFalla(t *testing.T) {
	store := testutil.NewStore()
	uc := newExportUC(store, nil)
	ctx := context.Background()

	seedStock(store, 42, 3)
	req := createPendingExport(t, uc, 42, 10)

	_, err := uc.Approve(ctx, req.ID, "", "admin-1")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// La solicitud sigue PENDING: la tx se revirtió completa.
	got, err := uc.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ExportStatusPending, got.Status)
}

func TestExportIssue_DescuentaYReplica(t *testing.T) {
	store := testutil.NewStore()
	parts := &fakeParts{}
	uc := newExportUC(store, parts)
	ctx := context.Background()

	seedStock(store, 42, 60)
	req := createPendingExport(t, uc, 42, 25)
	_, err := uc.Approve(ctx, req.ID, "", "admin-1")
	require.NoError(t, err)

	issued, err := uc.Issue(ctx, req.ID, 0, "bodeguero-2")
	require.NoError(t, err)
	assert.Equal(t, entity.ExportStatusIssued, issued.Status)
	require.NotNil(t, issued.IssuedQuantity)
	assert.Equal(t, int64(25), *issued.IssuedQuantity, "cantidad cero emite el total solicitado")
	assert.Equal(t, "bodeguero-2", issued.IssuedBy)

	ledger, err := store.Ledgers.GetByResource(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(35), ledger.QuantityInStock)

	tx := store.TxLog.Last()
	require.NotNil(t, tx)
	assert.Equal(t, entity.TransactionTypeExport, tx.Type)
	assert.Equal(t, entity.ReferenceTypeExportRequest, tx.ReferenceType)

	// Réplica best-effort en el servicio de repuestos, después del commit.
	require.Len(t, parts.calls, 1)
	assert.Equal(t, int64(42), parts.calls[0].resourceID)
	assert.Equal(t, int64(25), parts.calls[0].quantity)
	assert.Equal(t, req.RequestNumber, parts.calls[0].requestNumber)
}

// El stock puede caer entre la aprobación y la emisión. La emisión re-verifica
// bajo bloqueo: si ya no alcanza, nada cambia y la solicitud sigue APPROVED.
func TestExportIssue_StockCayoDesdeLaAprobacion(t *testing.T) {
	store := testutil.NewStore()
	uc := newExportUC(store, nil)
	ctx := context.Background()

	seedStock(store, 42, 60)
	req := createPendingExport(t, uc, 42, 25)
	_, err := uc.Approve(ctx, req.ID, "", "admin-1")
	require.NoError(t, err)

	// Otras salidas consumen casi todo el stock.
	store.Ledgers.Seed(entity.StockLedger{ResourceID: 42, QuantityInStock: 3, LastUpdatedBy: "otro"})
	logBefore := store.TxLog.Count()

	_, err = uc.Issue(ctx, req.ID, 0, "bodeguero-2")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	got, err := uc.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ExportStatusApproved, got.Status, "la solicitud debe permanecer APPROVED")
	assert.Nil(t, got.IssuedQuantity)

	ledger, err := store.Ledgers.GetByResource(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(3), ledger.QuantityInStock, "el ledger no debe cambiar")
	assert.Equal(t, logBefore, store.TxLog.Count(), "no debe escribirse transacción")
}

func TestExportIssue_Parcial(t *testing.T) {
	store := testutil.NewStore()
	uc := newExportUC(store, nil)
	ctx := context.Background()

	seedStock(store, 7, 50)
	req := createPendingExport(t, uc, 7, 20)
	_, err := uc.Approve(ctx, req.ID, "", "admin-1")
	require.NoError(t, err)

	issued, err := uc.Issue(ctx, req.ID, 12, "bodeguero-1")
	require.NoError(t, err)
	require.NotNil(t, issued.IssuedQuantity)
	assert.Equal(t, int64(12), *issued.IssuedQuantity)

	ledger, err := store.Ledgers.GetByResource(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(38), ledger.QuantityInStock)
}

func TestExportIssue_MasDeLoSolicitadoFalla(t *testing.T) {
	store := testutil.NewStore()
	uc := newExportUC(store, nil)
	ctx := context.Background()

	seedStock(store, 7, 100)
	req := createPendingExport(t, uc, 7, 20)
	_, err := uc.Approve(ctx, req.ID, "", "admin-1")
	require.NoError(t, err)

	_, err = uc.Issue(ctx, req.ID, 21, "bodeguero-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Un fallo en la réplica externa no revierte la emisión ya confirmada localmente.
func TestExportIssue_FalloDeReplicaNoRevierte(t *testing.T) {
	store := testutil.NewStore()
	parts := &fakeParts{err: errors.New("servicio de repuestos caído")}
	uc := newExportUC(store, parts)
	ctx := context.Background()

	seedStock(store, 42, 30)
	req := createPendingExport(t, uc, 42, 10)
	_, err := uc.Approve(ctx, req.ID, "", "admin-1")
	require.NoError(t, err)

	issued, err := uc.Issue(ctx, req.ID, 0, "bodeguero-1")
	require.NoError(t, err, "la falla externa es best-effort")
	assert.Equal(t, entity.ExportStatusIssued, issued.Status)

	ledger, err := store.Ledgers.GetByResource(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(20), ledger.QuantityInStock)
	require.Len(t, parts.calls, 1)
}

func TestExportIssue_DesdePendingFalla(t *testing.T) {
	store := testutil.NewStore()
	uc := newExportUC(store, nil)

	seedStock(store, 7, 100)
	req := createPendingExport(t, uc, 7, 5)

	_, err := uc.Issue(context.Background(), req.ID, 0, "bodeguero-1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "solo una solicitud APPROVED puede emitirse")
}

func TestExportCancel_AprobadaSePuedeCancelar(t *testing.T) {
	store := testutil.NewStore()
	uc := newExportUC(store, nil)
	ctx := context.Background()

	seedStock(store, 7, 100)
	req := createPendingExport(t, uc, 7, 5)
	_, err := uc.Approve(ctx, req.ID, "", "admin-1")
	require.NoError(t, err)

	cancelled, err := uc.Cancel(ctx, req.ID, "ya no se necesita", "bodeguero-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ExportStatusCancelled, cancelled.Status)

	ledger, err := store.Ledgers.GetByResource(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(100), ledger.QuantityInStock, "cancelar no toca el stock")
}
