package repository

import (
	"context"
	"time"

	"github.com/serviteca/taller-api/internal/domain/entity"
)

// TransactionFilter filtros para consultar el log de transacciones.
// Los campos en cero se ignoran.
type TransactionFilter struct {
	ResourceID    *int64
	Type          string
	ReferenceType string
	ReferenceID   *int64
	From          *time.Time
	To            *time.Time
	Keyword       string // busca sobre transaction_number y reason
}

// StockTransactionRepository persistencia del log de auditoría.
// Solo inserta; las transacciones nunca se actualizan ni se borran.
type StockTransactionRepository interface {
	// Create persiste la transacción y asigna ID. La unicidad de
	// TransactionNumber la respalda un constraint en la base.
	Create(ctx context.Context, tx *entity.StockTransaction) error
	GetByID(ctx context.Context, id int64) (*entity.StockTransaction, error)
	List(ctx context.Context, filter TransactionFilter, page Page) ([]*entity.StockTransaction, int64, error)
	// ListByResource devuelve todas las transacciones de un recurso en orden de
	// creación (para reconstruir la cantidad por replay).
	ListByResource(ctx context.Context, resourceID int64) ([]*entity.StockTransaction, error)
	// Stats agrega conteos y sumas por tipo directamente en SQL.
	Stats(ctx context.Context) (*entity.TransactionStats, error)
}
