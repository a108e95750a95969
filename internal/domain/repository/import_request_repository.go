package repository

import (
	"context"

	"github.com/serviteca/taller-api/internal/domain/entity"
)

// RequestFilter filtros comunes para solicitudes de importación/exportación.
type RequestFilter struct {
	Status     string
	ResourceID *int64
	Keyword    string // busca sobre request_number, reason y notes
}

// ImportRequestRepository persistencia de solicitudes de importación.
type ImportRequestRepository interface {
	Create(ctx context.Context, req *entity.ImportRequest) error
	GetByID(ctx context.Context, id int64) (*entity.ImportRequest, error)
	// GetForUpdate bloquea la fila para una transición; usar solo dentro de una tx.
	GetForUpdate(ctx context.Context, id int64) (*entity.ImportRequest, error)
	Update(ctx context.Context, req *entity.ImportRequest) error
	List(ctx context.Context, filter RequestFilter, page Page) ([]*entity.ImportRequest, int64, error)
	Stats(ctx context.Context) (*entity.RequestStats, error)
}
