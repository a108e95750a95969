package workflow

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/serviteca/taller-api/internal/application/inventory"
	"github.com/serviteca/taller-api/internal/domain"
	"github.com/serviteca/taller-api/internal/domain/entity"
	"github.com/serviteca/taller-api/internal/domain/repository"
)

const maxReasonLen = 500

// ImportUseCase ciclo de vida de solicitudes de importación de stock.
// Regla deliberada del negocio: el stock entra al aprobar, no al completar.
// Complete solo registra fecha de entrega y factura; volver a sumar ahí duplicaría
// la entrada.
type ImportUseCase struct {
	txRunner ImportTxRunner
	requests repository.ImportRequestRepository // atado al pool, solo lecturas
}

// NewImportUseCase construye el caso de uso.
func NewImportUseCase(txRunner ImportTxRunner, requests repository.ImportRequestRepository) *ImportUseCase {
	return &ImportUseCase{txRunner: txRunner, requests: requests}
}

// CreateImportInput datos para crear una solicitud de importación.
type CreateImportInput struct {
	ResourceID int64
	Quantity   int64
	UnitPrice  decimal.Decimal
	Reason     string
	Notes      string
	Requester  string
}

// Create registra la solicitud en estado PENDING con su número generado.
func (uc *ImportUseCase) Create(ctx context.Context, in CreateImportInput) (*entity.ImportRequest, error) {
	if in.ResourceID <= 0 || in.Quantity <= 0 || in.Requester == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.UnitPrice.IsNegative() || len(in.Reason) > maxReasonLen {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	req := &entity.ImportRequest{
		RequestNumber:     entity.NewImportNumber(now),
		ResourceID:        in.ResourceID,
		RequestedQuantity: in.Quantity,
		UnitPrice:         in.UnitPrice,
		TotalAmount:       in.UnitPrice.Mul(decimal.NewFromInt(in.Quantity)),
		Status:            entity.ImportStatusPending,
		Reason:            in.Reason,
		Notes:             in.Notes,
		RequestedBy:       in.Requester,
		RequestedAt:       now,
	}
	err := uc.txRunner.RunImport(ctx, func(requests repository.ImportRequestRepository, _ repository.StockLedgerRepository, _ repository.StockTransactionRepository) error {
		return requests.Create(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Approve aprueba una solicitud PENDING y suma el stock inmediatamente, en la
// misma transacción que el cambio de estado: o ambos quedan o ninguno.
func (uc *ImportUseCase) Approve(ctx context.Context, id int64, reviewNotes, reviewer string) (*entity.ImportRequest, error) {
	if reviewer == "" || len(reviewNotes) > maxReasonLen {
		return nil, domain.ErrInvalidInput
	}
	var result *entity.ImportRequest
	err := uc.txRunner.RunImport(ctx, func(requests repository.ImportRequestRepository, ledgers repository.StockLedgerRepository, txlog repository.StockTransactionRepository) error {
		req, err := lockedImport(ctx, requests, id)
		if err != nil {
			return err
		}
		if req.Status != entity.ImportStatusPending {
			return domain.ErrInvalidTransition
		}
		now := time.Now()
		req.Status = entity.ImportStatusApproved
		req.ReviewedBy = reviewer
		req.ReviewedAt = &now
		req.ReviewNotes = reviewNotes
		if err := requests.Update(ctx, req); err != nil {
			return err
		}
		// Entrada de stock en el momento de la aprobación (no al completar).
		_, err = inventory.ApplyAdd(ctx, ledgers, txlog, inventory.MutationInput{
			ResourceID:    req.ResourceID,
			Quantity:      req.RequestedQuantity,
			Reason:        "importación aprobada: " + req.RequestNumber,
			Actor:         reviewer,
			ReferenceType: entity.ReferenceTypeImportRequest,
			ReferenceID:   &req.ID,
		})
		if err != nil {
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
func (uc *ImportUseCase) Reject(ctx context.Context, id int64, reason, reviewer string) (*entity.ImportRequest, error) {
	if reviewer == "" || reason == "" || len(reason) > maxReasonLen {
		return nil, domain.ErrInvalidInput
	}
	var result *entity.ImportRequest
	err := uc.txRunner.RunImport(ctx, func(requests repository.ImportRequestRepository, _ repository.StockLedgerRepository, _ repository.StockTransactionRepository) error {
		req, err := lockedImport(ctx, requests, id)
		if err != nil {
			return err
		}
		if req.Status != entity.ImportStatusPending {
			return domain.ErrInvalidTransition
		}
		now := time.Now()
		req.Status = entity.ImportStatusRejected
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

// CompleteImportInput metadatos de entrega registrados al completar.
type CompleteImportInput struct {
	ID            int64
	DeliveryDate  time.Time
	InvoiceNumber string
	Actor         string
}

// Complete registra la entrega de una solicitud APPROVED. No realiza ninguna
// mutación adicional de stock: la cantidad ya entró al aprobar.
func (uc *ImportUseCase) Complete(ctx context.Context, in CompleteImportInput) (*entity.ImportRequest, error) {
	if in.Actor == "" || in.DeliveryDate.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	var result *entity.ImportRequest
	err := uc.txRunner.RunImport(ctx, func(requests repository.ImportRequestRepository, _ repository.StockLedgerRepository, _ repository.StockTransactionRepository) error {
		req, err := lockedImport(ctx, requests, in.ID)
		if err != nil {
			return err
		}
		if req.Status != entity.ImportStatusApproved {
			return domain.ErrInvalidTransition
		}
		now := time.Now()
		req.Status = entity.ImportStatusCompleted
		req.DeliveryDate = &in.DeliveryDate
		req.InvoiceNumber = in.InvoiceNumber
		req.CompletedAt = &now
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

// Cancel cancela una solicitud no terminal (PENDING o APPROVED).
func (uc *ImportUseCase) Cancel(ctx context.Context, id int64, reason, actor string) (*entity.ImportRequest, error) {
	if actor == "" || len(reason) > maxReasonLen {
		return nil, domain.ErrInvalidInput
	}
	var result *entity.ImportRequest
	err := uc.txRunner.RunImport(ctx, func(requests repository.ImportRequestRepository, _ repository.StockLedgerRepository, _ repository.StockTransactionRepository) error {
		req, err := lockedImport(ctx, requests, id)
		if err != nil {
			return err
		}
		if req.IsTerminal() {
			return domain.ErrInvalidTransition
		}
		now := time.Now()
		req.Status = entity.ImportStatusCancelled
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
func (uc *ImportUseCase) Get(ctx context.Context, id int64) (*entity.ImportRequest, error) {
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
func (uc *ImportUseCase) List(ctx context.Context, filter repository.RequestFilter, page repository.Page) ([]*entity.ImportRequest, int64, error) {
	page.Normalize()
	return uc.requests.List(ctx, filter, page)
}

// Stats devuelve los conteos de solicitudes por estado.
func (uc *ImportUseCase) Stats(ctx context.Context) (*entity.RequestStats, error) {
	return uc.requests.Stats(ctx)
}

// lockedImport carga la solicitud con bloqueo de fila o devuelve ErrNotFound.
func lockedImport(ctx context.Context, requests repository.ImportRequestRepository, id int64) (*entity.ImportRequest, error) {
	req, err := requests.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	return req, nil
}
