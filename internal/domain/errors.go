package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Las fallas de regla de negocio (transición inválida, stock insuficiente) se devuelven
// tal cual al llamador; nunca se reintentan automáticamente.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrInvalidTransition = errors.New("transición de estado inválida")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrNotTaskOwner      = errors.New("la tarea está asignada a otro técnico")
	ErrExternalService   = errors.New("fallo en servicio externo")
)
