package workflow

import (
	"context"
	"time"

	"github.com/serviteca/taller-api/internal/application/inventory"
	"github.com/serviteca/taller-api/internal/application/ports"
	"github.com/serviteca/taller-api/internal/domain"
	"github.com/serviteca/taller-api/internal/domain/entity"
	"github.com/serviteca/taller-api/internal/domain/repository"
	"github.com/serviteca/taller-api/pkg/logger"
)

// ExportUseCase ciclo de vida de solicitudes de exportación de stock.
// La emisión (Issue) es el único punto que descuenta stock, y re-verifica la
// disponibilidad bajo bloqueo de fila aunque la aprobación ya la haya revisado:
// entre ambas pudo haber otras salidas.
type ExportUseCase struct {
	txRunner ExportTxRunner
	requests repository.ExportRequestRepository // atado al pool, solo lecturas
	parts    ports.PartsService                 // puede ser nil: sin réplica externa
	log      *logger.Logger
}

// NewExportUseCase construye el caso de uso. parts puede ser nil si no hay
// servicio de repuestos configurado.
func NewExportUseCase(txRunner ExportTxRunner, requests repository.ExportRequestRepository, parts ports.PartsService, log *logger.Logger) *ExportUseCase {
	return &ExportUseCase{txRunner: txRunner, requests: requests, parts: parts, log: log}
}

// CreateExportInput datos para crear una solicitud de exportación.
type CreateExportInput struct {
	ResourceID int64
	Quantity   int64
	Reason     string
	Notes      string
	Requester  string
}

// Create registra la solicitud en estado PENDING con su número generado.
func (uc *ExportUseCase) Create(ctx context.Context, in CreateExportInput) (*entity.ExportRequest, error) {
	if in.ResourceID <= 0 || in.Quantity <= 0 || in.Requester == "" || len(in.Reason) > maxReasonLen {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	req := &entity.ExportRequest{
		RequestNumber:     entity.NewExportNumber(now),
		ResourceID:        in.ResourceID,
		RequestedQuantity: in.Quantity,
		Status:            entity.ExportStatusPending,
		Reason:            in.Reason,
		Notes:             in.Notes,
		RequestedBy:       in.Requester,
		RequestedAt:       now,
	}
	err := uc.txRunner.RunExport(ctx, func(requests repository.ExportRequestRepository, _ repository.StockLedgerRepository, _ repository.StockTransactionRepository) error {
		return requests.Create(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Approve aprueba una solicitud PENDING. Verifica la disponibilidad actual de
// forma informativa: la verificación definitiva ocurre al emitir.
func (uc *ExportUseCase) Approve(ctx context.Context, id int64, reviewNotes, reviewer string) (*entity.ExportRequest, error) {
	if reviewer == "" || len(reviewNotes) > maxReasonLen {
		return nil, domain.ErrInvalidInput
	}
	var result *entity.ExportRequest
	err := uc.txRunner.RunExport(ctx, func(requests repository.ExportRequestRepository, ledgers repository.StockLedgerRepository, _ repository.StockTransactionRepository) error {
		req, err := lockedExport(ctx, requests, id)
		if err != nil {
			return err
		}
		if req.Status != entity.ExportStatusPending {
			return domain.ErrInvalidTransition
		}
		ledger, err := ledgers.GetByResource(ctx, req.ResourceID)
		if err != nil {
			return err
		}
		if ledger == nil || ledger.QuantityInStock < req.RequestedQuantity {
			return domain.ErrInsufficientStock
		}
		now := time.Now()
		req.Status = entity.ExportStatusApproved
		req.ReviewedBy = reviewer
		req.ReviewedAt = &now
		req.ReviewNotes = reviewNotes
		if err := requests.Update(ctx, req); err != nil {
			return err
		}
		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Reject rechaza una solicitud PENDING. No toca el stock.
func (uc *ExportUseCase) Reject(ctx context.Context, id int64, reason, reviewer string) (*entity.ExportRequest, error) {
	if reviewer == "" || reason == "" || len(reason) > maxReasonLen {
		return nil, domain.ErrInvalidInput
	}
	var result *entity.ExportRequest
	err := uc.txRunner.RunExport(ctx, func(requests repository.ExportRequestRepository, _ repository.StockLedgerRepository, _ repository.StockTransactionRepository) error {
		req, err := lockedExport(ctx, requests, id)
		if err != nil {
			return err
		}
		if req.Status != entity.ExportStatusPending {
			return domain.ErrInvalidTransition
		}
		now := time.Now()
		req.Status = entity.ExportStatusRejected
		req.ReviewedBy = reviewer
		req.ReviewedAt = &now
		req.ReviewNotes = reason
		if err := requests.Update(ctx, req); err != nil {
			return err
		}
		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Issue emite una solicitud APPROVED: re-verifica la disponibilidad bajo bloqueo
// de fila y descuenta el stock en la misma tx que el cambio de estado. Si no
// alcanza, devuelve domain.ErrInsufficientStock y nada cambia (la solicitud sigue
// APPROVED). issuedQuantity en cero emite la cantidad solicitada completa.
func (uc *ExportUseCase) Issue(ctx context.Context, id, issuedQuantity int64, issuer string) (*entity.ExportRequest, error) {
	if issuer == "" || issuedQuantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	var result *entity.ExportRequest
	err := uc.txRunner.RunExport(ctx, func(requests repository.ExportRequestRepository, ledgers repository.StockLedgerRepository, txlog repository.StockTransactionRepository) error {
		req, err := lockedExport(ctx, requests, id)
		if err != nil {
			return err
		}
		if req.Status != entity.ExportStatusApproved {
			return domain.ErrInvalidTransition
		}
		qty := issuedQuantity
		if qty == 0 {
			qty = req.RequestedQuantity
		}
		if qty > req.RequestedQuantity {
			return domain.ErrInvalidInput
		}
		ok, _, err := inventory.ApplyRemove(ctx, ledgers, txlog, inventory.MutationInput{
			ResourceID:    req.ResourceID,
			Quantity:      qty,
			Reason:        "exportación emitida: " + req.RequestNumber,
			Actor:         issuer,
			ReferenceType: entity.ReferenceTypeExportRequest,
			ReferenceID:   &req.ID,
		})
		if err != nil {
			return err
		}
		if !ok {
			// Falla de negocio: al devolver error la tx completa se revierte y la
			// solicitud permanece APPROVED.
			return domain.ErrInsufficientStock
		}
		now := time.Now()
		req.Status = entity.ExportStatusIssued
		req.IssuedQuantity = &qty
		req.IssuedBy = issuer
		req.IssuedAt = &now
		if err := requests.Update(ctx, req); err != nil {
			return err
		}
		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Réplica en el servicio externo de repuestos, fuera de la tx local: la llamada
	// es best-effort; un fallo se registra y no revierte la emisión ya confirmada.
	if uc.parts != nil && result.IssuedQuantity != nil {
		if err := uc.parts.MirrorDeduction(ctx, result.ResourceID, *result.IssuedQuantity, result.RequestNumber); err != nil {
			uc.log.Warn().
				Err(err).
				Str("request_number", result.RequestNumber).
				Int64("resource_id", result.ResourceID).
				Msg("réplica de salida en servicio de repuestos falló")
		}
	}
	return result, nil
}

// Cancel cancela una solicitud no terminal (PENDING o APPROVED).
func (uc *ExportUseCase) Cancel(ctx context.Context, id int64, reason, actor string) (*entity.ExportRequest, error) {
	if actor == "" || len(reason) > maxReasonLen {
		return nil, domain.ErrInvalidInput
	}
	var result *entity.ExportRequest
	err := uc.txRunner.RunExport(ctx, func(requests repository.ExportRequestRepository, _ repository.StockLedgerRepository, _ repository.StockTransactionRepository) error {
		req, err := lockedExport(ctx, requests, id)
		if err != nil {
			return err
		}
		if req.IsTerminal() {
			return domain.ErrInvalidTransition
		}
		now := time.Now()
		req.Status = entity.ExportStatusCancelled
		req.ReviewedBy = actor
		req.ReviewedAt = &now
		req.ReviewNotes = reason
		if err := requests.Update(ctx, req); err != nil {
			return err
		}
		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Get devuelve una solicitud por ID o domain.ErrNotFound.
func (uc *ExportUseCase) Get(ctx context.Context, id int64) (*entity.ExportRequest, error) {
	req, err := uc.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	return req, nil
}

// List busca solicitudes con filtros y paginación; devuelve también el total.
func (uc *ExportUseCase) List(ctx context.Context, filter repository.RequestFilter, page repository.Page) ([]*entity.ExportRequest, int64, error) {
	page.Normalize()
	return uc.requests.List(ctx, filter, page)
}

// Stats devuelve los conteos de solicitudes por estado.
func (uc *ExportUseCase) Stats(ctx context.Context) (*entity.RequestStats, error) {
	return uc.requests.Stats(ctx)
}

// lockedExport carga la solicitud con bloqueo de fila o devuelve ErrNotFound.
func lockedExport(ctx context.Context, requests repository.ExportRequestRepository, id int64) (*entity.ExportRequest, error) {
	req, err := requests.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	return req, nil
}
