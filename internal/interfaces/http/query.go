package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/serviteca/taller-api/internal/domain/repository"
)

// requestFilterFromQuery arma el filtro común de solicitudes (importación y exportación).
func requestFilterFromQuery(c *fiber.Ctx) repository.RequestFilter {
	filter := repository.RequestFilter{
		Status:  c.Query("status"),
		Keyword: c.Query("keyword"),
	}
	if v := c.QueryInt("resource_id"); v > 0 {
		id := int64(v)
		filter.ResourceID = &id
	}
	return filter
}

// taskFilterFromQuery arma el filtro de tareas.
func taskFilterFromQuery(c *fiber.Ctx) repository.TaskFilter {
	filter := repository.TaskFilter{
		Status:  c.Query("status"),
		Keyword: c.Query("keyword"),
	}
	if v := c.QueryInt("technician_id"); v > 0 {
		id := int64(v)
		filter.TechnicianID = &id
	}
	return filter
}
