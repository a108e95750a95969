package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLedger representa la existencia actual de un recurso (equipo o repuesto).
// Es la única fuente de verdad de la cantidad en bodega; solo el motor de
// mutaciones la modifica, siempre junto a un StockTransaction en la misma tx.
type StockLedger struct {
	ID                int64
	ResourceID        int64 // referencia al catálogo externo de recursos
	QuantityInStock   int64 // invariante: nunca negativo
	MinimumStockLevel int64
	MaximumStockLevel int64
	ReorderPoint      *int64
	UnitCost          *decimal.Decimal
	LastUpdatedBy     string
	UpdatedAt         time.Time
}

// IsOutOfStock indica si el recurso está agotado.
func (s *StockLedger) IsOutOfStock() bool {
	return s.QuantityInStock == 0
}

// IsLowStock indica si la cantidad cayó al mínimo configurado (0 = sin mínimo).
func (s *StockLedger) IsLowStock() bool {
	return s.MinimumStockLevel > 0 && s.QuantityInStock <= s.MinimumStockLevel
}

// NeedsReorder indica si la cantidad alcanzó el punto de reorden (nil = sin punto).
func (s *StockLedger) NeedsReorder() bool {
	return s.ReorderPoint != nil && s.QuantityInStock <= *s.ReorderPoint
}
