package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/serviteca/taller-api/internal/domain/entity"
)

// MutateStockRequest body para POST /api/stock/add y /api/stock/remove.
type MutateStockRequest struct {
	ResourceID int64  `json:"resource_id"`
	Quantity   int64  `json:"quantity"`
	Reason     string `json:"reason"`
}

// AdjustStockRequest body para POST /api/stock/adjust (valor absoluto).
type AdjustStockRequest struct {
	ResourceID  int64  `json:"resource_id"`
	NewQuantity int64  `json:"new_quantity"`
	Reason      string `json:"reason"`
}

// ThresholdsRequest body para PUT /api/stock/:resourceId/thresholds.
// Los campos omitidos no se modifican.
type ThresholdsRequest struct {
	Minimum      *int64 `json:"minimum,omitempty"`
	Maximum      *int64 `json:"maximum,omitempty"`
	ReorderPoint *int64 `json:"reorder_point,omitempty"`
}

// LedgerResponse representación HTTP de un ledger con sus predicados derivados.
type LedgerResponse struct {
	ResourceID        int64            `json:"resource_id"`
	QuantityInStock   int64            `json:"quantity_in_stock"`
	MinimumStockLevel int64            `json:"minimum_stock_level"`
	MaximumStockLevel int64            `json:"maximum_stock_level"`
	ReorderPoint      *int64           `json:"reorder_point,omitempty"`
	UnitCost          *decimal.Decimal `json:"unit_cost,omitempty"`
	OutOfStock        bool             `json:"out_of_stock"`
	LowStock          bool             `json:"low_stock"`
	NeedsReorder      bool             `json:"needs_reorder"`
	LastUpdatedBy     string           `json:"last_updated_by"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// LedgerToResponse mapeo explícito entidad -> DTO.
func LedgerToResponse(l *entity.StockLedger) LedgerResponse {
	return LedgerResponse{
		ResourceID:        l.ResourceID,
		QuantityInStock:   l.QuantityInStock,
		MinimumStockLevel: l.MinimumStockLevel,
		MaximumStockLevel: l.MaximumStockLevel,
		ReorderPoint:      l.ReorderPoint,
		UnitCost:          l.UnitCost,
		OutOfStock:        l.IsOutOfStock(),
		LowStock:          l.IsLowStock(),
		NeedsReorder:      l.NeedsReorder(),
		LastUpdatedBy:     l.LastUpdatedBy,
		UpdatedAt:         l.UpdatedAt,
	}
}

// TransactionResponse representación HTTP de una transacción del log.
type TransactionResponse struct {
	ID                int64     `json:"id"`
	TransactionNumber string    `json:"transaction_number"`
	Type              string    `json:"type"`
	ResourceID        int64     `json:"resource_id"`
	QuantityBefore    int64     `json:"quantity_before"`
	QuantityAfter     int64     `json:"quantity_after"`
	QuantityChange    int64     `json:"quantity_change"`
	ReferenceType     string    `json:"reference_type"`
	ReferenceID       *int64    `json:"reference_id,omitempty"`
	Reason            string    `json:"reason"`
	CreatedBy         string    `json:"created_by"`
	CreatedAt         time.Time `json:"created_at"`
}

// TransactionToResponse mapeo explícito entidad -> DTO.
func TransactionToResponse(t *entity.StockTransaction) TransactionResponse {
	return TransactionResponse{
		ID:                t.ID,
		TransactionNumber: t.TransactionNumber,
		Type:              t.Type,
		ResourceID:        t.ResourceID,
		QuantityBefore:    t.QuantityBefore,
		QuantityAfter:     t.QuantityAfter,
		QuantityChange:    t.QuantityChange,
		ReferenceType:     t.ReferenceType,
		ReferenceID:       t.ReferenceID,
		Reason:            t.Reason,
		CreatedBy:         t.CreatedBy,
		CreatedAt:         t.CreatedAt,
	}
}

// TransactionStatsResponse agregados del log de transacciones.
type TransactionStatsResponse struct {
	TotalCount      int64 `json:"total_count"`
	ImportCount     int64 `json:"import_count"`
	ExportCount     int64 `json:"export_count"`
	AdjustmentCount int64 `json:"adjustment_count"`
	TotalImported   int64 `json:"total_imported"`
	TotalExported   int64 `json:"total_exported"`
}
