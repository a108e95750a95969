package workflow

import (
	"context"

	"github.com/serviteca/taller-api/internal/domain/repository"
)

// ImportTxRunner ejecuta una transición de solicitud de importación junto con sus
// efectos sobre el ledger en una sola transacción de BD.
type ImportTxRunner interface {
	RunImport(ctx context.Context, fn func(
		requests repository.ImportRequestRepository,
		ledgers repository.StockLedgerRepository,
		txlog repository.StockTransactionRepository,
	) error) error
}

// ExportTxRunner ejecuta una transición de solicitud de exportación junto con sus
// efectos sobre el ledger en una sola transacción de BD.
type ExportTxRunner interface {
	RunExport(ctx context.Context, fn func(
		requests repository.ExportRequestRepository,
		ledgers repository.StockLedgerRepository,
		txlog repository.StockTransactionRepository,
	) error) error
}
