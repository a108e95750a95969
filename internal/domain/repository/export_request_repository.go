package repository

import (
	"context"

	"github.com/serviteca/taller-api/internal/domain/entity"
)

// ExportRequestRepository persistencia de solicitudes de exportación.
type ExportRequestRepository interface {
	Create(ctx context.Context, req *entity.ExportRequest) error
	GetByID(ctx context.Context, id int64) (*entity.ExportRequest, error)
	// GetForUpdate bloquea la fila para una transición; usar solo dentro de una tx.
	GetForUpdate(ctx context.Context, id int64) (*entity.ExportRequest, error)
	Update(ctx context.Context, req *entity.ExportRequest) error
	List(ctx context.Context, filter RequestFilter, page Page) ([]*entity.ExportRequest, int64, error)
	Stats(ctx context.Context) (*entity.RequestStats, error)
}
