package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Prefijos de números legibles por humanos.
const (
	numberPrefixTransaction = "TXN"
	numberPrefixImport      = "IMP"
	numberPrefixExport      = "EXP"
	numberPrefixTask        = "TSK"
)

// newNumber genera un número legible: PREFIJO-AAAAMMDD-XXXXXXXX.
// El sufijo sale de un UUID v4, suficiente en la práctica bajo escritores
// concurrentes; la unicidad real la respalda el constraint único en la base.
func newNumber(prefix string, now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), suffix)
}

// NewTransactionNumber genera el número de una transacción de stock.
func NewTransactionNumber(now time.Time) string { return newNumber(numberPrefixTransaction, now) }

// NewImportNumber genera el número de una solicitud de importación.
func NewImportNumber(now time.Time) string { return newNumber(numberPrefixImport, now) }

// NewExportNumber genera el número de una solicitud de exportación.
func NewExportNumber(now time.Time) string { return newNumber(numberPrefixExport, now) }

// NewTaskNumber genera el número de una tarea.
func NewTaskNumber(now time.Time) string { return newNumber(numberPrefixTask, now) }
