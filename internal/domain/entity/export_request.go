package entity

import "time"

// Estados de una solicitud de exportación.
// PENDING → {APPROVED, REJECTED}; APPROVED → {ISSUED, CANCELLED}.
// REJECTED, ISSUED y CANCELLED son terminales.
const (
	ExportStatusPending   = "PENDING"
	ExportStatusApproved  = "APPROVED"
	ExportStatusRejected  = "REJECTED"
	ExportStatusIssued    = "ISSUED"
	ExportStatusCancelled = "CANCELLED"
)

// ExportRequest solicitud de salida de stock sujeta a aprobación.
// La disponibilidad se verifica dos veces: al aprobar (informativa) y al emitir
// (definitiva, bajo bloqueo de fila); la emisión nunca deja el ledger negativo.
type ExportRequest struct {
	ID                int64
	RequestNumber     string
	ResourceID        int64
	RequestedQuantity int64
	IssuedQuantity    *int64
	Status            string
	Reason            string
	Notes             string
	RequestedBy       string
	RequestedAt       time.Time
	ReviewedBy        string
	ReviewedAt        *time.Time
	ReviewNotes       string
	IssuedBy          string
	IssuedAt          *time.Time
}

// IsTerminal indica si la solicitud ya no admite transiciones.
func (r *ExportRequest) IsTerminal() bool {
	switch r.Status {
	case ExportStatusRejected, ExportStatusIssued, ExportStatusCancelled:
		return true
	}
	return false
}
