package inventory

import (
	"context"

	"github.com/serviteca/taller-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Garantiza que ledger y log de auditoría se escriben juntos o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		ledgers repository.StockLedgerRepository,
		txlog repository.StockTransactionRepository,
	) error) error
}
