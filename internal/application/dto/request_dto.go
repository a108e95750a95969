package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/serviteca/taller-api/internal/domain/entity"
)

// CreateImportRequest body para POST /api/imports.
type CreateImportRequest struct {
	ResourceID int64           `json:"resource_id"`
	Quantity   int64           `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Reason     string          `json:"reason"`
	Notes      string          `json:"notes,omitempty"`
}

// CreateExportRequest body para POST /api/exports.
type CreateExportRequest struct {
	ResourceID int64  `json:"resource_id"`
	Quantity   int64  `json:"quantity"`
	Reason     string `json:"reason"`
	Notes      string `json:"notes,omitempty"`
}

// ReviewRequest body para approve/reject/cancel (notes obligatorio al rechazar).
type ReviewRequest struct {
	Notes string `json:"notes"`
}

// CompleteImportRequest body para PUT /api/imports/:id/complete.
type CompleteImportRequest struct {
	DeliveryDate  time.Time `json:"delivery_date"`
	InvoiceNumber string    `json:"invoice_number"`
}

// IssueExportRequest body para PUT /api/exports/:id/issue.
// Quantity en cero emite la cantidad solicitada completa.
type IssueExportRequest struct {
	Quantity int64 `json:"quantity"`
}

// ImportResponse representación HTTP de una solicitud de importación.
type ImportResponse struct {
	ID                int64           `json:"id"`
	RequestNumber     string          `json:"request_number"`
	ResourceID        int64           `json:"resource_id"`
	RequestedQuantity int64           `json:"requested_quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	Status            string          `json:"status"`
	Reason            string          `json:"reason"`
	Notes             string          `json:"notes,omitempty"`
	RequestedBy       string          `json:"requested_by"`
	RequestedAt       time.Time       `json:"requested_at"`
	ReviewedBy        string          `json:"reviewed_by,omitempty"`
	ReviewedAt        *time.Time      `json:"reviewed_at,omitempty"`
	ReviewNotes       string          `json:"review_notes,omitempty"`
	DeliveryDate      *time.Time      `json:"delivery_date,omitempty"`
	InvoiceNumber     string          `json:"invoice_number,omitempty"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty"`
}

// ImportToResponse mapeo explícito entidad -> DTO.
func ImportToResponse(r *entity.ImportRequest) ImportResponse {
	return ImportResponse{
		ID:                r.ID,
		RequestNumber:     r.RequestNumber,
		ResourceID:        r.ResourceID,
		RequestedQuantity: r.RequestedQuantity,
		UnitPrice:         r.UnitPrice,
		TotalAmount:       r.TotalAmount,
		Status:            r.Status,
		Reason:            r.Reason,
		Notes:             r.Notes,
		RequestedBy:       r.RequestedBy,
		RequestedAt:       r.RequestedAt,
		ReviewedBy:        r.ReviewedBy,
		ReviewedAt:        r.ReviewedAt,
		ReviewNotes:       r.ReviewNotes,
		DeliveryDate:      r.DeliveryDate,
		InvoiceNumber:     r.InvoiceNumber,
		CompletedAt:       r.CompletedAt,
	}
}

// ExportResponse representación HTTP de una solicitud de exportación.
type ExportResponse struct {
	ID                int64      `json:"id"`
	RequestNumber     string     `json:"request_number"`
	ResourceID        int64      `json:"resource_id"`
	RequestedQuantity int64      `json:"requested_quantity"`
	IssuedQuantity    *int64     `json:"issued_quantity,omitempty"`
	Status            string     `json:"status"`
	Reason            string     `json:"reason"`
	Notes             string     `json:"notes,omitempty"`
	RequestedBy       string     `json:"requested_by"`
	RequestedAt       time.Time  `json:"requested_at"`
	ReviewedBy        string     `json:"reviewed_by,omitempty"`
	ReviewedAt        *time.Time `json:"reviewed_at,omitempty"`
	ReviewNotes       string     `json:"review_notes,omitempty"`
	IssuedBy          string     `json:"issued_by,omitempty"`
	IssuedAt          *time.Time `json:"issued_at,omitempty"`
}

// ExportToResponse mapeo explícito entidad -> DTO.
func ExportToResponse(r *entity.ExportRequest) ExportResponse {
	return ExportResponse{
		ID:                r.ID,
		RequestNumber:     r.RequestNumber,
		ResourceID:        r.ResourceID,
		RequestedQuantity: r.RequestedQuantity,
		IssuedQuantity:    r.IssuedQuantity,
		Status:            r.Status,
		Reason:            r.Reason,
		Notes:             r.Notes,
		RequestedBy:       r.RequestedBy,
		RequestedAt:       r.RequestedAt,
		ReviewedBy:        r.ReviewedBy,
		ReviewedAt:        r.ReviewedAt,
		ReviewNotes:       r.ReviewNotes,
		IssuedBy:          r.IssuedBy,
		IssuedAt:          r.IssuedAt,
	}
}

// RequestStatsResponse conteos de solicitudes por estado.
type RequestStatsResponse struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Approved  int64 `json:"approved"`
	Rejected  int64 `json:"rejected"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
}

// RequestStatsToResponse mapeo explícito entidad -> DTO.
func RequestStatsToResponse(s *entity.RequestStats) RequestStatsResponse {
	return RequestStatsResponse{
		Total:     s.Total,
		Pending:   s.Pending,
		Approved:  s.Approved,
		Rejected:  s.Rejected,
		Completed: s.Completed,
		Cancelled: s.Cancelled,
	}
}
