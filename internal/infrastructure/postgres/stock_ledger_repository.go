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

var _ repository.StockLedgerRepository = (*StockLedgerRepo)(nil)

const ledgerColumns = `id, resource_id, quantity_in_stock, minimum_stock_level, maximum_stock_level, reorder_point, unit_cost, last_updated_by, updated_at`

// Columnas admitidas para ordenar búsquedas de ledger.
var ledgerSortColumns = map[string]string{
	"resource_id": "resource_id",
	"quantity":    "quantity_in_stock",
	"updated_at":  "updated_at",
}

// StockLedgerRepo implementación sobre PostgreSQL (usable con pool o tx).
type StockLedgerRepo struct {
	q Querier
}

// NewStockLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockLedgerRepository(q Querier) *StockLedgerRepo {
	return &StockLedgerRepo{q: q}
}

func scanLedger(row pgx.Row) (*entity.StockLedger, error) {
	var l entity.StockLedger
	err := row.Scan(
		&l.ID, &l.ResourceID, &l.QuantityInStock, &l.MinimumStockLevel,
		&l.MaximumStockLevel, &l.ReorderPoint, &l.UnitCost, &l.LastUpdatedBy, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetByResource obtiene el ledger de un recurso; (nil, nil) si no existe.
func (r *StockLedgerRepo) GetByResource(ctx context.Context, resourceID int64) (*entity.StockLedger, error) {
	query := `SELECT ` + ledgerColumns + ` FROM stock_ledger WHERE resource_id = $1`
	l, err := scanLedger(r.q.QueryRow(ctx, query, resourceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ledger: %w", err)
	}
	return l, nil
}

// GetForUpdate obtiene el ledger y bloquea la fila (SELECT FOR UPDATE); (nil, nil) si no existe.
func (r *StockLedgerRepo) GetForUpdate(ctx context.Context, resourceID int64) (*entity.StockLedger, error) {
	query := `SELECT ` + ledgerColumns + ` FROM stock_ledger WHERE resource_id = $1 FOR UPDATE`
	l, err := scanLedger(r.q.QueryRow(ctx, query, resourceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ledger for update: %w", err)
	}
	return l, nil
}

// Insert crea la fila del ledger y asigna el ID generado. Ante una carrera de
// creación el ON CONFLICT no escribe nada y devuelve domain.ErrDuplicate sin
// abortar la transacción en curso, de modo que el llamador puede releer la fila
// ganadora dentro de la misma tx. Un INSERT plano dejaría la tx en estado
// abortado (25P02) y la relectura fallaría.
func (r *StockLedgerRepo) Insert(ctx context.Context, ledger *entity.StockLedger) error {
	query := `
		INSERT INTO stock_ledger (resource_id, quantity_in_stock, minimum_stock_level, maximum_stock_level, reorder_point, unit_cost, last_updated_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (resource_id) DO NOTHING
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		ledger.ResourceID, ledger.QuantityInStock, ledger.MinimumStockLevel,
		ledger.MaximumStockLevel, ledger.ReorderPoint, ledger.UnitCost,
		ledger.LastUpdatedBy, ledger.UpdatedAt,
	).Scan(&ledger.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert ledger: %w", err)
	}
	return nil
}

// Update persiste los campos mutables del ledger.
func (r *StockLedgerRepo) Update(ctx context.Context, ledger *entity.StockLedger) error {
	query := `
		UPDATE stock_ledger
		SET quantity_in_stock = $2, minimum_stock_level = $3, maximum_stock_level = $4,
		    reorder_point = $5, unit_cost = $6, last_updated_by = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		ledger.ID, ledger.QuantityInStock, ledger.MinimumStockLevel, ledger.MaximumStockLevel,
		ledger.ReorderPoint, ledger.UnitCost, ledger.LastUpdatedBy, ledger.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update ledger: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Search lista ledgers por palabra clave y filtros de stock bajo/agotado, con total.
func (r *StockLedgerRepo) Search(ctx context.Context, filter repository.StockLedgerSearch, page repository.Page) ([]*entity.StockLedger, int64, error) {
	where := " WHERE 1=1"
	args := []any{}
	pos := 1
	if filter.Keyword != "" {
		where += fmt.Sprintf(" AND (resource_id::text ILIKE $%d OR last_updated_by ILIKE $%d)", pos, pos)
		args = append(args, "%"+filter.Keyword+"%")
		pos++
	}
	if filter.LowStock {
		where += " AND minimum_stock_level > 0 AND quantity_in_stock <= minimum_stock_level"
	}
	if filter.OutOfStock {
		where += " AND quantity_in_stock = 0"
	}

	var total int64
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM stock_ledger`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ledgers: %w", err)
	}

	query := `SELECT ` + ledgerColumns + ` FROM stock_ledger` + where +
		orderClause(page, ledgerSortColumns, "updated_at") +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, page.Size, page.Offset())

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search ledgers: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockLedger
	for rows.Next() {
		l, err := scanLedger(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan ledger: %w", err)
		}
		list = append(list, l)
	}
	return list, total, rows.Err()
}
