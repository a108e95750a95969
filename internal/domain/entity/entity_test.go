package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serviteca/taller-api/internal/domain/entity"
)

func TestNewNumber_FormatoYPrefijo(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	cases := map[string]string{
		entity.NewTransactionNumber(now): "TXN-20260315-",
		entity.NewImportNumber(now):      "IMP-20260315-",
		entity.NewExportNumber(now):      "EXP-20260315-",
		entity.NewTaskNumber(now):        "TSK-20260315-",
	}
	for num, prefix := range cases {
		assert.Contains(t, num, prefix)
		require.Len(t, num, len(prefix)+8, "el sufijo debe tener 8 caracteres: %s", num)
	}
}

func TestNewNumber_SufijosDistintos(t *testing.T) {
	now := time.Now()
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		n := entity.NewTransactionNumber(now)
		assert.False(t, seen[n], "número repetido: %s", n)
		seen[n] = true
	}
}

func TestStockLedger_Predicados(t *testing.T) {
	reorder := int64(8)
	l := entity.StockLedger{QuantityInStock: 0, MinimumStockLevel: 5, ReorderPoint: &reorder}
	assert.True(t, l.IsOutOfStock())
	assert.True(t, l.IsLowStock())
	assert.True(t, l.NeedsReorder())

	l.QuantityInStock = 5
	assert.False(t, l.IsOutOfStock())
	assert.True(t, l.IsLowStock(), "en el mínimo exacto sigue siendo stock bajo")

	l.QuantityInStock = 9
	assert.False(t, l.IsLowStock())
	assert.False(t, l.NeedsReorder())

	// Sin umbrales configurados no hay alertas.
	plain := entity.StockLedger{QuantityInStock: 1}
	assert.False(t, plain.IsLowStock())
	assert.False(t, plain.NeedsReorder())
}

func TestImportRequest_IsTerminal(t *testing.T) {
	terminales := []string{entity.ImportStatusRejected, entity.ImportStatusCompleted, entity.ImportStatusCancelled}
	for _, s := range terminales {
		r := entity.ImportRequest{Status: s}
		assert.True(t, r.IsTerminal(), s)
	}
	for _, s := range []string{entity.ImportStatusPending, entity.ImportStatusApproved} {
		r := entity.ImportRequest{Status: s}
		assert.False(t, r.IsTerminal(), s)
	}
}

func TestExportRequest_IsTerminal(t *testing.T) {
	terminales := []string{entity.ExportStatusRejected, entity.ExportStatusIssued, entity.ExportStatusCancelled}
	for _, s := range terminales {
		r := entity.ExportRequest{Status: s}
		assert.True(t, r.IsTerminal(), s)
	}
	for _, s := range []string{entity.ExportStatusPending, entity.ExportStatusApproved} {
		r := entity.ExportRequest{Status: s}
		assert.False(t, r.IsTerminal(), s)
	}
}
