package repository

import (
	"context"

	"github.com/serviteca/taller-api/internal/domain/entity"
)

// StockLedgerSearch filtros para buscar registros de existencias.
type StockLedgerSearch struct {
	Keyword    string // busca sobre resource_id y last_updated_by
	LowStock   bool
	OutOfStock bool
}

// StockLedgerRepository persistencia del ledger de existencias.
// Get* devuelven (nil, nil) cuando la fila no existe.
type StockLedgerRepository interface {
	GetByResource(ctx context.Context, resourceID int64) (*entity.StockLedger, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE); usar solo dentro de una tx.
	GetForUpdate(ctx context.Context, resourceID int64) (*entity.StockLedger, error)
	// Insert crea la fila y asigna ID. Devuelve domain.ErrDuplicate si el
	// resource_id ya existe (carrera de creación: el llamador debe releer).
	Insert(ctx context.Context, ledger *entity.StockLedger) error
	Update(ctx context.Context, ledger *entity.StockLedger) error
	Search(ctx context.Context, filter StockLedgerSearch, page Page) ([]*entity.StockLedger, int64, error)
}
