package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/serviteca/taller-api/internal/domain"
	"github.com/serviteca/taller-api/internal/domain/entity"
	"github.com/serviteca/taller-api/internal/domain/repository"
)

var _ repository.StockTransactionRepository = (*StockTransactionRepo)(nil)

const transactionColumns = `id, transaction_number, type, resource_id, quantity_before, quantity_after, quantity_change, reference_type, reference_id, reason, created_by, created_at`

// Columnas admitidas para ordenar consultas del log.
var transactionSortColumns = map[string]string{
	"created_at":  "created_at",
	"resource_id": "resource_id",
	"type":        "type",
}

// StockTransactionRepo implementación sobre PostgreSQL (usable con pool o tx).
// El log es append-only: no existen métodos de update ni delete.
type StockTransactionRepo struct {
	q Querier
}

// NewStockTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockTransactionRepository(q Querier) *StockTransactionRepo {
	return &StockTransactionRepo{q: q}
}

func scanTransaction(row pgx.Row) (*entity.StockTransaction, error) {
	var t entity.StockTransaction
	err := row.Scan(
		&t.ID, &t.TransactionNumber, &t.Type, &t.ResourceID, &t.QuantityBefore,
		&t.QuantityAfter, &t.QuantityChange, &t.ReferenceType, &t.ReferenceID,
		&t.Reason, &t.CreatedBy, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create persiste la transacción y asigna el ID generado.
func (r *StockTransactionRepo) Create(ctx context.Context, tx *entity.StockTransaction) error {
	query := `
		INSERT INTO stock_transactions (transaction_number, type, resource_id, quantity_before, quantity_after, quantity_change, reference_type, reference_id, reason, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		tx.TransactionNumber, tx.Type, tx.ResourceID, tx.QuantityBefore, tx.QuantityAfter,
		tx.QuantityChange, tx.ReferenceType, tx.ReferenceID, tx.Reason, tx.CreatedBy, tx.CreatedAt,
	).Scan(&tx.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock transaction: %w", err)
	}
	return nil
}

// GetByID obtiene una transacción por ID; (nil, nil) si no existe.
func (r *StockTransactionRepo) GetByID(ctx context.Context, id int64) (*entity.StockTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM stock_transactions WHERE id = $1`
	t, err := scanTransaction(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// List consulta el log con filtros combinables y paginación, devolviendo el total.
func (r *StockTransactionRepo) List(ctx context.Context, filter repository.TransactionFilter, page repository.Page) ([]*entity.StockTransaction, int64, error) {
	where := " WHERE 1=1"
	args := []any{}
	pos := 1
	if filter.ResourceID != nil {
		where += fmt.Sprintf(" AND resource_id = $%d", pos)
		args = append(args, *filter.ResourceID)
		pos++
	}
	if filter.Type != "" {
		where += fmt.Sprintf(" AND type = $%d", pos)
		args = append(args, filter.Type)
		pos++
	}
	if filter.ReferenceType != "" {
		where += fmt.Sprintf(" AND reference_type = $%d", pos)
		args = append(args, filter.ReferenceType)
		pos++
	}
	if filter.ReferenceID != nil {
		where += fmt.Sprintf(" AND reference_id = $%d", pos)
		args = append(args, *filter.ReferenceID)
		pos++
	}
	if filter.From != nil {
		where += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		where += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *filter.To)
		pos++
	}
	if filter.Keyword != "" {
		where += fmt.Sprintf(" AND (transaction_number ILIKE $%d OR reason ILIKE $%d)", pos, pos)
		args = append(args, "%"+filter.Keyword+"%")
		pos++
	}

	var total int64
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM stock_transactions`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	query := `SELECT ` + transactionColumns + ` FROM stock_transactions` + where +
		orderClause(page, transactionSortColumns, "created_at") +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, page.Size, page.Offset())

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockTransaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, t)
	}
	return list, total, rows.Err()
}

// ListByResource devuelve todas las transacciones de un recurso en orden de creación.
func (r *StockTransactionRepo) ListByResource(ctx context.Context, resourceID int64) ([]*entity.StockTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM stock_transactions WHERE resource_id = $1 ORDER BY id ASC`
	rows, err := r.q.Query(ctx, query, resourceID)
	if err != nil {
		return nil, fmt.Errorf("list by resource: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockTransaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// Stats agrega conteos y sumas por tipo en una sola consulta. Se calcula siempre
// sobre el log para evitar la deriva de contadores mantenidos aparte.
func (r *StockTransactionRepo) Stats(ctx context.Context) (*entity.TransactionStats, error) {
	query := `
		SELECT
			count(*),
			count(*) FILTER (WHERE type = 'IMPORT'),
			count(*) FILTER (WHERE type = 'EXPORT'),
			count(*) FILTER (WHERE type = 'ADJUSTMENT'),
			COALESCE(sum(quantity_change) FILTER (WHERE type = 'IMPORT'), 0),
			COALESCE(-sum(quantity_change) FILTER (WHERE type = 'EXPORT'), 0)
		FROM stock_transactions`
	var s entity.TransactionStats
	err := r.q.QueryRow(ctx, query).Scan(
		&s.TotalCount, &s.ImportCount, &s.ExportCount, &s.AdjustmentCount,
		&s.TotalImported, &s.TotalExported,
	)
	if err != nil {
		return nil, fmt.Errorf("transaction stats: %w", err)
	}
	return &s, nil
}
