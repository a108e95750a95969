package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una solicitud de importación.
// PENDING → {APPROVED, REJECTED}; APPROVED → {COMPLETED, CANCELLED}.
// REJECTED, COMPLETED y CANCELLED son terminales.
const (
	ImportStatusPending   = "PENDING"
	ImportStatusApproved  = "APPROVED"
	ImportStatusRejected  = "REJECTED"
	ImportStatusCompleted = "COMPLETED"
	ImportStatusCancelled = "CANCELLED"
)

// ImportRequest solicitud de entrada de stock sujeta a aprobación.
// Regla de negocio deliberada: el stock se suma al aprobar, no al completar;
// Complete solo registra los datos de entrega.
type ImportRequest struct {
	ID                int64
	RequestNumber     string
	ResourceID        int64
	RequestedQuantity int64
	UnitPrice         decimal.Decimal
	TotalAmount       decimal.Decimal
	Status            string
	Reason            string
	Notes             string
	RequestedBy       string
	RequestedAt       time.Time
	ReviewedBy        string
	ReviewedAt        *time.Time
	ReviewNotes       string
	DeliveryDate      *time.Time
	InvoiceNumber     string
	CompletedAt       *time.Time
}

// IsTerminal indica si la solicitud ya no admite transiciones.
func (r *ImportRequest) IsTerminal() bool {
	switch r.Status {
	case ImportStatusRejected, ImportStatusCompleted, ImportStatusCancelled:
		return true
	}
	return false
}

// RequestStats conteos por estado para solicitudes de importación/exportación.
type RequestStats struct {
	Total     int64
	Pending   int64
	Approved  int64
	Rejected  int64
	Completed int64 // COMPLETED o ISSUED según el tipo de solicitud
	Cancelled int64
}
