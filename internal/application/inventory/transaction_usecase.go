package inventory

import (
	"context"

	"github.com/serviteca/taller-api/internal/domain"
	"github.com/serviteca/taller-api/internal/domain/entity"
	"github.com/serviteca/taller-api/internal/domain/repository"
)

// TransactionQueryUseCase consultas de solo lectura sobre el log de auditoría.
type TransactionQueryUseCase struct {
	txlog repository.StockTransactionRepository
}

// NewTransactionQueryUseCase construye el caso de uso.
func NewTransactionQueryUseCase(txlog repository.StockTransactionRepository) *TransactionQueryUseCase {
	return &TransactionQueryUseCase{txlog: txlog}
}

// Get devuelve una transacción por ID o domain.ErrNotFound.
func (uc *TransactionQueryUseCase) Get(ctx context.Context, id int64) (*entity.StockTransaction, error) {
	tx, err := uc.txlog.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, domain.ErrNotFound
	}
	return tx, nil
}

// List consulta el log con filtros y paginación; devuelve también el total.
func (uc *TransactionQueryUseCase) List(ctx context.Context, filter repository.TransactionFilter, page repository.Page) ([]*entity.StockTransaction, int64, error) {
	page.Normalize()
	return uc.txlog.List(ctx, filter, page)
}

// Stats devuelve los agregados del log (conteos por tipo, total entrado/salido),
// calculados por agregación SQL sobre las transacciones, no por contadores aparte.
func (uc *TransactionQueryUseCase) Stats(ctx context.Context) (*entity.TransactionStats, error) {
	return uc.txlog.Stats(ctx)
}

// ConsistencyReport resultado de reconstruir la cantidad de un recurso por replay.
type ConsistencyReport struct {
	ResourceID       int64
	EntryCount       int
	ReplayedQuantity int64
	LedgerQuantity   int64
	Consistent       bool
}

// VerifyLedger reproduce todas las transacciones del recurso en orden de creación,
// sumando QuantityChange desde 0, y compara contra la cantidad actual del ledger.
// Herramienta de auditoría: una divergencia indica una escritura fuera del motor.
func (uc *TransactionQueryUseCase) VerifyLedger(ctx context.Context, ledgers repository.StockLedgerRepository, resourceID int64) (*ConsistencyReport, error) {
	ledger, err := ledgers.GetByResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if ledger == nil {
		return nil, domain.ErrNotFound
	}
	entries, err := uc.txlog.ListByResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	var replayed int64
	for _, e := range entries {
		replayed += e.QuantityChange
	}
	return &ConsistencyReport{
		ResourceID:       resourceID,
		EntryCount:       len(entries),
		ReplayedQuantity: replayed,
		LedgerQuantity:   ledger.QuantityInStock,
		Consistent:       replayed == ledger.QuantityInStock,
	}, nil
}
