package entity

import "time"

// Tipos de transacción de stock.
const (
	TransactionTypeImport     = "IMPORT"
	TransactionTypeExport     = "EXPORT"
	TransactionTypeAdjustment = "ADJUSTMENT"
)

// Tipos de referencia: vinculan la transacción con la operación que la originó.
const (
	ReferenceTypeImportRequest = "IMPORT_REQUEST"
	ReferenceTypeExportRequest = "EXPORT_REQUEST"
	ReferenceTypeAdjustment    = "ADJUSTMENT"
	ReferenceTypeTaskExport    = "TASK_EXPORT"
)

// StockTransaction es un registro inmutable de auditoría de un cambio de cantidad.
// Invariante: para un recurso, reproducir todas sus transacciones en orden de creación
// sumando QuantityChange desde 0 reproduce la cantidad actual del ledger.
type StockTransaction struct {
	ID                int64
	TransactionNumber string
	Type              string
	ResourceID        int64
	QuantityBefore    int64
	QuantityAfter     int64
	QuantityChange    int64 // con signo: QuantityAfter - QuantityBefore
	ReferenceType     string
	ReferenceID       *int64
	Reason            string
	CreatedBy         string
	CreatedAt         time.Time
}

// TransactionStats agregados calculados sobre el log (nunca contadores mutables aparte).
type TransactionStats struct {
	TotalCount      int64
	ImportCount     int64
	ExportCount     int64
	AdjustmentCount int64
	TotalImported   int64
	TotalExported   int64
}
