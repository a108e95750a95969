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

var _ repository.ImportRequestRepository = (*ImportRequestRepo)(nil)

const importColumns = `id, request_number, resource_id, requested_quantity, unit_price, total_amount, status, reason, notes, requested_by, requested_at, reviewed_by, reviewed_at, review_notes, delivery_date, invoice_number, completed_at`

// Columnas admitidas para ordenar listados de importaciones.
var importSortColumns = map[string]string{
	"requested_at": "requested_at",
	"status":       "status",
	"resource_id":  "resource_id",
}

// ImportRequestRepo implementación sobre PostgreSQL (usable con pool o tx).
type ImportRequestRepo struct {
	q Querier
}

// NewImportRequestRepository construye el adaptador. Pasar pool o tx (Querier).
func NewImportRequestRepository(q Querier) *ImportRequestRepo {
	return &ImportRequestRepo{q: q}
}

func scanImport(row pgx.Row) (*entity.ImportRequest, error) {
	var m entity.ImportRequest
	var reviewedBy, reviewNotes, invoiceNumber, notes *string
	err := row.Scan(
		&m.ID, &m.RequestNumber, &m.ResourceID, &m.RequestedQuantity, &m.UnitPrice,
		&m.TotalAmount, &m.Status, &m.Reason, &notes, &m.RequestedBy, &m.RequestedAt,
		&reviewedBy, &m.ReviewedAt, &reviewNotes, &m.DeliveryDate, &invoiceNumber, &m.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	if notes != nil {
		m.Notes = *notes
	}
	if reviewedBy != nil {
		m.ReviewedBy = *reviewedBy
	}
	if reviewNotes != nil {
		m.ReviewNotes = *reviewNotes
	}
	if invoiceNumber != nil {
		m.InvoiceNumber = *invoiceNumber
	}
	return &m, nil
}

// Create persiste la solicitud y asigna el ID generado.
func (r *ImportRequestRepo) Create(ctx context.Context, req *entity.ImportRequest) error {
	query := `
		INSERT INTO import_requests (request_number, resource_id, requested_quantity, unit_price, total_amount, status, reason, notes, requested_by, requested_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		req.RequestNumber, req.ResourceID, req.RequestedQuantity, req.UnitPrice,
		req.TotalAmount, req.Status, req.Reason, req.Notes, req.RequestedBy, req.RequestedAt,
	).Scan(&req.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert import request: %w", err)
	}
	return nil
}

// GetByID obtiene una solicitud por ID; (nil, nil) si no existe.
func (r *ImportRequestRepo) GetByID(ctx context.Context, id int64) (*entity.ImportRequest, error) {
	query := `SELECT ` + importColumns + ` FROM import_requests WHERE id = $1`
	m, err := scanImport(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get import request: %w", err)
	}
	return m, nil
}

// GetForUpdate obtiene la solicitud y bloquea la fila; (nil, nil) si no existe.
func (r *ImportRequestRepo) GetForUpdate(ctx context.Context, id int64) (*entity.ImportRequest, error) {
	query := `SELECT ` + importColumns + ` FROM import_requests WHERE id = $1 FOR UPDATE`
	m, err := scanImport(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get import request for update: %w", err)
	}
	return m, nil
}

// Update persiste los campos mutables de la solicitud.
func (r *ImportRequestRepo) Update(ctx context.Context, req *entity.ImportRequest) error {
	query := `
		UPDATE import_requests
		SET status = $2, notes = $3, reviewed_by = $4, reviewed_at = $5, review_notes = $6,
		    delivery_date = $7, invoice_number = $8, completed_at = $9
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		req.ID, req.Status, req.Notes, nullIfEmpty(req.ReviewedBy), req.ReviewedAt,
		nullIfEmpty(req.ReviewNotes), req.DeliveryDate, nullIfEmpty(req.InvoiceNumber), req.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update import request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List busca solicitudes con filtros y paginación, devolviendo el total.
func (r *ImportRequestRepo) List(ctx context.Context, filter repository.RequestFilter, page repository.Page) ([]*entity.ImportRequest, int64, error) {
	where, args, pos := requestWhere(filter)

	var total int64
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM import_requests`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count import requests: %w", err)
	}

	query := `SELECT ` + importColumns + ` FROM import_requests` + where +
		orderClause(page, importSortColumns, "requested_at") +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, page.Size, page.Offset())

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list import requests: %w", err)
	}
	defer rows.Close()

	var list []*entity.ImportRequest
	for rows.Next() {
		m, err := scanImport(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan import request: %w", err)
		}
		list = append(list, m)
	}
	return list, total, rows.Err()
}

// Stats conteos por estado en una sola consulta.
func (r *ImportRequestRepo) Stats(ctx context.Context) (*entity.RequestStats, error) {
	return requestStats(ctx, r.q, "import_requests", entity.ImportStatusCompleted)
}

// requestWhere arma el WHERE común de solicitudes de importación/exportación.
func requestWhere(filter repository.RequestFilter) (string, []any, int) {
	where := " WHERE 1=1"
	args := []any{}
	pos := 1
	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, filter.Status)
		pos++
	}
	if filter.ResourceID != nil {
		where += fmt.Sprintf(" AND resource_id = $%d", pos)
		args = append(args, *filter.ResourceID)
		pos++
	}
	if filter.Keyword != "" {
		where += fmt.Sprintf(" AND (request_number ILIKE $%d OR reason ILIKE $%d OR notes ILIKE $%d)", pos, pos, pos)
		args = append(args, "%"+filter.Keyword+"%")
		pos++
	}
	return where, args, pos
}

// requestStats agrega conteos por estado sobre la tabla indicada. doneStatus es el
// estado terminal de éxito de esa tabla (COMPLETED o ISSUED).
func requestStats(ctx context.Context, q Querier, table, doneStatus string) (*entity.RequestStats, error) {
	query := fmt.Sprintf(`
		SELECT
			count(*),
			count(*) FILTER (WHERE status = 'PENDING'),
			count(*) FILTER (WHERE status = 'APPROVED'),
			count(*) FILTER (WHERE status = 'REJECTED'),
			count(*) FILTER (WHERE status = $1),
			count(*) FILTER (WHERE status = 'CANCELLED')
		FROM %s`, table)
	var s entity.RequestStats
	err := q.QueryRow(ctx, query, doneStatus).Scan(
		&s.Total, &s.Pending, &s.Approved, &s.Rejected, &s.Completed, &s.Cancelled,
	)
	if err != nil {
		return nil, fmt.Errorf("%s stats: %w", table, err)
	}
	return &s, nil
}

// nullIfEmpty convierte cadena vacía a NULL.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
