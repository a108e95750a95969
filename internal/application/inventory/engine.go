package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/serviteca/taller-api/internal/domain"
	"github.com/serviteca/taller-api/internal/domain/entity"
	"github.com/serviteca/taller-api/internal/domain/repository"
)

// MutationInput entrada para una mutación de stock (entrada o salida).
type MutationInput struct {
	ResourceID    int64
	Quantity      int64
	Reason        string
	Actor         string
	ReferenceType string
	ReferenceID   *int64
}

// getOrCreateLocked obtiene la fila del ledger bloqueada para update; si no existe,
// la crea con valores por defecto. Dos llamadores concurrentes pueden competir por el
// insert: el perdedor recibe domain.ErrDuplicate y relee la fila ya creada dentro de
// la misma tx. El contrato de Insert exige que el duplicado no aborte la transacción
// (en Postgres, ON CONFLICT DO NOTHING, no un 23505 plano).
// Nunca se propaga el duplicado al llamador.
func getOrCreateLocked(ctx context.Context, ledgers repository.StockLedgerRepository, resourceID int64, actor string) (*entity.StockLedger, error) {
	ledger, err := ledgers.GetForUpdate(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if ledger != nil {
		return ledger, nil
	}
	ledger = &entity.StockLedger{
		ResourceID:    resourceID,
		LastUpdatedBy: actor,
		UpdatedAt:     time.Now(),
	}
	if err := ledgers.Insert(ctx, ledger); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			// Carrera de creación: otro escritor ganó el insert; releer su fila.
			return ledgers.GetForUpdate(ctx, resourceID)
		}
		return nil, err
	}
	return ledger, nil
}

// writeMutation actualiza el ledger y agrega la transacción de auditoría.
// Ambas escrituras viajan en la tx abierta por el llamador.
func writeMutation(
	ctx context.Context,
	ledgers repository.StockLedgerRepository,
	txlog repository.StockTransactionRepository,
	ledger *entity.StockLedger,
	txType string,
	before, after int64,
	in MutationInput,
) error {
	now := time.Now()
	ledger.QuantityInStock = after
	ledger.LastUpdatedBy = in.Actor
	ledger.UpdatedAt = now
	if err := ledgers.Update(ctx, ledger); err != nil {
		return err
	}
	refType := in.ReferenceType
	if refType == "" {
		refType = entity.ReferenceTypeAdjustment
	}
	return txlog.Create(ctx, &entity.StockTransaction{
		TransactionNumber: entity.NewTransactionNumber(now),
		Type:              txType,
		ResourceID:        in.ResourceID,
		QuantityBefore:    before,
		QuantityAfter:     after,
		QuantityChange:    after - before,
		ReferenceType:     refType,
		ReferenceID:       in.ReferenceID,
		Reason:            in.Reason,
		CreatedBy:         in.Actor,
		CreatedAt:         now,
	})
}

// ApplyAdd suma stock dentro de la tx del llamador: bloquea (o crea) la fila del
// ledger, incrementa la cantidad y escribe una transacción IMPORT.
// Exportada para que los workflows apliquen la misma mutación en su propia tx.
func ApplyAdd(ctx context.Context, ledgers repository.StockLedgerRepository, txlog repository.StockTransactionRepository, in MutationInput) (*entity.StockLedger, error) {
	ledger, err := getOrCreateLocked(ctx, ledgers, in.ResourceID, in.Actor)
	if err != nil {
		return nil, err
	}
	before := ledger.QuantityInStock
	if err := writeMutation(ctx, ledgers, txlog, ledger, entity.TransactionTypeImport, before, before+in.Quantity, in); err != nil {
		return nil, err
	}
	return ledger, nil
}

// ApplyRemove descuenta stock dentro de la tx del llamador. La verificación de
// disponibilidad y la escritura ocurren bajo el mismo bloqueo de fila, de modo que
// dos salidas concurrentes no pueden pasar ambas el chequeo contra una lectura vieja.
// Si no alcanza devuelve (false, ledger sin cambios) y no escribe transacción.
func ApplyRemove(ctx context.Context, ledgers repository.StockLedgerRepository, txlog repository.StockTransactionRepository, in MutationInput) (bool, *entity.StockLedger, error) {
	ledger, err := getOrCreateLocked(ctx, ledgers, in.ResourceID, in.Actor)
	if err != nil {
		return false, nil, err
	}
	before := ledger.QuantityInStock
	if before < in.Quantity {
		return false, ledger, nil
	}
	if err := writeMutation(ctx, ledgers, txlog, ledger, entity.TransactionTypeExport, before, before-in.Quantity, in); err != nil {
		return false, nil, err
	}
	return true, ledger, nil
}

// ApplyAdjust fija la cantidad en un valor absoluto (corrección de inventario).
// No verifica disponibilidad: el cambio puede ser negativo y siempre procede.
func ApplyAdjust(ctx context.Context, ledgers repository.StockLedgerRepository, txlog repository.StockTransactionRepository, resourceID, newQuantity int64, reason, actor string) (*entity.StockLedger, error) {
	ledger, err := getOrCreateLocked(ctx, ledgers, resourceID, actor)
	if err != nil {
		return nil, err
	}
	before := ledger.QuantityInStock
	in := MutationInput{
		ResourceID:    resourceID,
		Reason:        reason,
		Actor:         actor,
		ReferenceType: entity.ReferenceTypeAdjustment,
	}
	if err := writeMutation(ctx, ledgers, txlog, ledger, entity.TransactionTypeAdjustment, before, newQuantity, in); err != nil {
		return nil, err
	}
	return ledger, nil
}
