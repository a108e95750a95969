package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/serviteca/taller-api/internal/application/inventory"
	"github.com/serviteca/taller-api/internal/application/taskflow"
	"github.com/serviteca/taller-api/internal/application/workflow"
	"github.com/serviteca/taller-api/internal/domain/repository"
)

// Ensure TxRunner implementa los runners de cada caso de uso.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ workflow.ImportTxRunner = (*TxRunner)(nil)
var _ workflow.ExportTxRunner = (*TxRunner)(nil)
var _ taskflow.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// inTx inicia una transacción, ejecuta fn y hace Commit o Rollback.
func (r *TxRunner) inTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Run transacción para mutaciones directas de stock (ledger + log).
func (r *TxRunner) Run(ctx context.Context, fn func(
	ledgers repository.StockLedgerRepository,
	txlog repository.StockTransactionRepository,
) error) error {
	return r.inTx(ctx, func(q Querier) error {
		return fn(NewStockLedgerRepository(q), NewStockTransactionRepository(q))
	})
}

// RunImport transacción para transiciones de solicitudes de importación con sus
// efectos sobre el ledger.
func (r *TxRunner) RunImport(ctx context.Context, fn func(
	requests repository.ImportRequestRepository,
	ledgers repository.StockLedgerRepository,
	txlog repository.StockTransactionRepository,
) error) error {
	return r.inTx(ctx, func(q Querier) error {
		return fn(NewImportRequestRepository(q), NewStockLedgerRepository(q), NewStockTransactionRepository(q))
	})
}

// RunExport transacción para transiciones de solicitudes de exportación con sus
// efectos sobre el ledger.
func (r *TxRunner) RunExport(ctx context.Context, fn func(
	requests repository.ExportRequestRepository,
	ledgers repository.StockLedgerRepository,
	txlog repository.StockTransactionRepository,
) error) error {
	return r.inTx(ctx, func(q Querier) error {
		return fn(NewExportRequestRepository(q), NewStockLedgerRepository(q), NewStockTransactionRepository(q))
	})
}

// RunTask transacción para transiciones de tareas con su entrada de historial.
func (r *TxRunner) RunTask(ctx context.Context, fn func(
	tasks repository.TaskRepository,
	history repository.TaskHistoryRepository,
) error) error {
	return r.inTx(ctx, func(q Querier) error {
		return fn(NewTaskRepository(q), NewTaskHistoryRepository(q))
	})
}
