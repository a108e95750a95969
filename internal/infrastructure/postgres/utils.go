package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/serviteca/taller-api/internal/domain/repository"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// orderClause construye ORDER BY validando la columna contra la lista blanca del
// repositorio; una columna desconocida cae a defaultCol. La dirección ya viene
// normalizada por Page.Normalize.
func orderClause(page repository.Page, allowed map[string]string, defaultCol string) string {
	col, ok := allowed[page.SortBy]
	if !ok {
		col = defaultCol
	}
	dir := "DESC"
	if page.SortDir == repository.SortAsc {
		dir = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s", col, dir)
}
