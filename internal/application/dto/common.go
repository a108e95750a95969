package dto

import "github.com/serviteca/taller-api/internal/domain/repository"

// PageRequest paginación y ordenamiento para listados (query params).
type PageRequest struct {
	Page int    `query:"page"`
	Size int    `query:"size"`
	Sort string `query:"sort"`
	Dir  string `query:"dir"`
}

// ToPage convierte a la paginación del dominio con los defaults aplicados.
func (p PageRequest) ToPage() repository.Page {
	page := repository.Page{Number: p.Page, Size: p.Size, SortBy: p.Sort, SortDir: p.Dir}
	page.Normalize()
	return page
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Total int64 `json:"total"`
}

// NewPageResponse arma los metadatos a partir de la página usada y el total.
func NewPageResponse(page repository.Page, total int64) PageResponse {
	return PageResponse{Page: page.Number, Size: page.Size, Total: total}
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
