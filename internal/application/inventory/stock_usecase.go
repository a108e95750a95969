package inventory

import (
	"context"
	"time"

	"github.com/serviteca/taller-api/internal/domain"
	"github.com/serviteca/taller-api/internal/domain/entity"
	"github.com/serviteca/taller-api/internal/domain/repository"
)

// Longitud máxima admitida para razones y notas.
const maxReasonLen = 500

// StockUseCase motor de mutaciones de stock: cada operación empareja la actualización
// del ledger con exactamente una transacción de auditoría, dentro de una sola tx de BD.
type StockUseCase struct {
	txRunner TxRunner
	ledgers  repository.StockLedgerRepository // atado al pool, solo lecturas
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(txRunner TxRunner, ledgers repository.StockLedgerRepository) *StockUseCase {
	return &StockUseCase{txRunner: txRunner, ledgers: ledgers}
}

func validateMutation(in MutationInput) error {
	if in.ResourceID <= 0 || in.Quantity <= 0 || in.Actor == "" {
		return domain.ErrInvalidInput
	}
	if len(in.Reason) > maxReasonLen {
		return domain.ErrInvalidInput
	}
	return nil
}

// GetOrCreate devuelve el ledger del recurso, creándolo con valores por defecto si
// no existe. La carrera de creación se absorbe internamente (insert + releer en 23505).
func (uc *StockUseCase) GetOrCreate(ctx context.Context, resourceID int64, actor string) (*entity.StockLedger, error) {
	if resourceID <= 0 {
		return nil, domain.ErrInvalidInput
	}
	var result *entity.StockLedger
	err := uc.txRunner.Run(ctx, func(ledgers repository.StockLedgerRepository, _ repository.StockTransactionRepository) error {
		ledger, err := getOrCreateLocked(ctx, ledgers, resourceID, actor)
		if err != nil {
			return err
		}
		result = ledger
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AddStock suma cantidad al recurso y registra una transacción IMPORT, atómicamente.
func (uc *StockUseCase) AddStock(ctx context.Context, in MutationInput) (*entity.StockLedger, error) {
	if err := validateMutation(in); err != nil {
		return nil, err
	}
	var result *entity.StockLedger
	err := uc.txRunner.Run(ctx, func(ledgers repository.StockLedgerRepository, txlog repository.StockTransactionRepository) error {
		ledger, err := ApplyAdd(ctx, ledgers, txlog, in)
		if err != nil {
			return err
		}
		result = ledger
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveStock descuenta cantidad del recurso y registra una transacción EXPORT.
// Si la cantidad disponible no alcanza devuelve (false, ledger sin cambios, nil):
// falla de regla de negocio, no error técnico, y no se escribe transacción.
func (uc *StockUseCase) RemoveStock(ctx context.Context, in MutationInput) (bool, *entity.StockLedger, error) {
	if err := validateMutation(in); err != nil {
		return false, nil, err
	}
	var (
		ok     bool
		result *entity.StockLedger
	)
	err := uc.txRunner.Run(ctx, func(ledgers repository.StockLedgerRepository, txlog repository.StockTransactionRepository) error {
		var err error
		ok, result, err = ApplyRemove(ctx, ledgers, txlog, in)
		return err
	})
	if err != nil {
		return false, nil, err
	}
	return ok, result, nil
}

// AdjustStock fija la cantidad del recurso en un valor absoluto (corrección).
func (uc *StockUseCase) AdjustStock(ctx context.Context, resourceID, newQuantity int64, reason, actor string) (*entity.StockLedger, error) {
	if resourceID <= 0 || newQuantity < 0 || actor == "" || len(reason) > maxReasonLen {
		return nil, domain.ErrInvalidInput
	}
	var result *entity.StockLedger
	err := uc.txRunner.Run(ctx, func(ledgers repository.StockLedgerRepository, txlog repository.StockTransactionRepository) error {
		ledger, err := ApplyAdjust(ctx, ledgers, txlog, resourceID, newQuantity, reason, actor)
		if err != nil {
			return err
		}
		result = ledger
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ThresholdInput actualización parcial de umbrales; los campos nil no se tocan.
type ThresholdInput struct {
	ResourceID   int64
	Minimum      *int64
	Maximum      *int64
	ReorderPoint *int64
	Actor        string
}

// UpdateThresholds actualiza los umbrales del ledger; crea la fila si no existe.
func (uc *StockUseCase) UpdateThresholds(ctx context.Context, in ThresholdInput) (*entity.StockLedger, error) {
	if in.ResourceID <= 0 || in.Actor == "" {
		return nil, domain.ErrInvalidInput
	}
	if (in.Minimum != nil && *in.Minimum < 0) || (in.Maximum != nil && *in.Maximum < 0) ||
		(in.ReorderPoint != nil && *in.ReorderPoint < 0) {
		return nil, domain.ErrInvalidInput
	}
	var result *entity.StockLedger
	err := uc.txRunner.Run(ctx, func(ledgers repository.StockLedgerRepository, _ repository.StockTransactionRepository) error {
		ledger, err := getOrCreateLocked(ctx, ledgers, in.ResourceID, in.Actor)
		if err != nil {
			return err
		}
		if in.Minimum != nil {
			ledger.MinimumStockLevel = *in.Minimum
		}
		if in.Maximum != nil {
			ledger.MaximumStockLevel = *in.Maximum
		}
		if in.ReorderPoint != nil {
			ledger.ReorderPoint = in.ReorderPoint
		}
		ledger.LastUpdatedBy = in.Actor
		ledger.UpdatedAt = time.Now()
		if err := ledgers.Update(ctx, ledger); err != nil {
			return err
		}
		result = ledger
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetByResource devuelve el ledger o domain.ErrNotFound si nunca se creó.
func (uc *StockUseCase) GetByResource(ctx context.Context, resourceID int64) (*entity.StockLedger, error) {
	ledger, err := uc.ledgers.GetByResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if ledger == nil {
		return nil, domain.ErrNotFound
	}
	return ledger, nil
}

// Search busca ledgers por palabra clave y filtros de stock bajo/agotado, paginado.
func (uc *StockUseCase) Search(ctx context.Context, filter repository.StockLedgerSearch, page repository.Page) ([]*entity.StockLedger, int64, error) {
	page.Normalize()
	return uc.ledgers.Search(ctx, filter, page)
}
