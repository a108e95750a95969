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

var _ repository.ExportRequestRepository = (*ExportRequestRepo)(nil)

const exportColumns = `id, request_number, resource_id, requested_quantity, issued_quantity, status, reason, notes, requested_by, requested_at, reviewed_by, reviewed_at, review_notes, issued_by, issued_at`

// Columnas admitidas para ordenar listados de exportaciones.
var exportSortColumns = map[string]string{
	"requested_at": "requested_at",
	"status":       "status",
	"resource_id":  "resource_id",
}

// ExportRequestRepo implementación sobre PostgreSQL (usable con pool o tx).
type ExportRequestRepo struct {
	q Querier
}

// NewExportRequestRepository construye el adaptador. Pasar pool o tx (Querier).
func NewExportRequestRepository(q Querier) *ExportRequestRepo {
	return &ExportRequestRepo{q: q}
}

func scanExport(row pgx.Row) (*entity.ExportRequest, error) {
	var m entity.ExportRequest
	var reviewedBy, reviewNotes, issuedBy, notes *string
	err := row.Scan(
		&m.ID, &m.RequestNumber, &m.ResourceID, &m.RequestedQuantity, &m.IssuedQuantity,
		&m.Status, &m.Reason, &notes, &m.RequestedBy, &m.RequestedAt,
		&reviewedBy, &m.ReviewedAt, &reviewNotes, &issuedBy, &m.IssuedAt,
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
	if issuedBy != nil {
		m.IssuedBy = *issuedBy
	}
	return &m, nil
}

// Create persiste la solicitud y asigna el ID generado.
func (r *ExportRequestRepo) Create(ctx context.Context, req *entity.ExportRequest) error {
	query := `
		INSERT INTO export_requests (request_number, resource_id, requested_quantity, status, reason, notes, requested_by, requested_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		req.RequestNumber, req.ResourceID, req.RequestedQuantity, req.Status,
		req.Reason, req.Notes, req.RequestedBy, req.RequestedAt,
	).Scan(&req.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert export request: %w", err)
	}
	return nil
}

// GetByID obtiene una solicitud por ID; (nil, nil) si no existe.
func (r *ExportRequestRepo) GetByID(ctx context.Context, id int64) (*entity.ExportRequest, error) {
	query := `SELECT ` + exportColumns + ` FROM export_requests WHERE id = $1`
	m, err := scanExport(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get export request: %w", err)
	}
	return m, nil
}

// GetForUpdate obtiene la solicitud y bloquea la fila; (nil, nil) si no existe.
func (r *ExportRequestRepo) GetForUpdate(ctx context.Context, id int64) (*entity.ExportRequest, error) {
	query := `SELECT ` + exportColumns + ` FROM export_requests WHERE id = $1 FOR UPDATE`
	m, err := scanExport(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get export request for update: %w", err)
	}
	return m, nil
}

// Update persiste los campos mutables de la solicitud.
func (r *ExportRequestRepo) Update(ctx context.Context, req *entity.ExportRequest) error {
	query := `
		UPDATE export_requests
		SET status = $2, notes = $3, issued_quantity = $4, reviewed_by = $5, reviewed_at = $6,
		    review_notes = $7, issued_by = $8, issued_at = $9
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		req.ID, req.Status, req.Notes, req.IssuedQuantity, nullIfEmpty(req.ReviewedBy),
		req.ReviewedAt, nullIfEmpty(req.ReviewNotes), nullIfEmpty(req.IssuedBy), req.IssuedAt,
	)
	if err != nil {
		return fmt.Errorf("update export request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List busca solicitudes con filtros y paginación, devolviendo el total.
func (r *ExportRequestRepo) List(ctx context.Context, filter repository.RequestFilter, page repository.Page) ([]*entity.ExportRequest, int64, error) {
	where, args, pos := requestWhere(filter)

	var total int64
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM export_requests`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count export requests: %w", err)
	}

	query := `SELECT ` + exportColumns + ` FROM export_requests` + where +
		orderClause(page, exportSortColumns, "requested_at") +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, page.Size, page.Offset())

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list export requests: %w", err)
	}
	defer rows.Close()

	var list []*entity.ExportRequest
	for rows.Next() {
		m, err := scanExport(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan export request: %w", err)
		}
		list = append(list, m)
	}
	return list, total, rows.Err()
}

// Stats conteos por estado en una sola consulta.
func (r *ExportRequestRepo) Stats(ctx context.Context) (*entity.RequestStats, error) {
	return requestStats(ctx, r.q, "export_requests", entity.ExportStatusIssued)
}
