package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/serviteca/taller-api/internal/application/inventory"
	"github.com/serviteca/taller-api/internal/application/taskflow"
	"github.com/serviteca/taller-api/internal/application/workflow"
	"github.com/serviteca/taller-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	StockUC       *inventory.StockUseCase
	TransactionUC *inventory.TransactionQueryUseCase
	ImportUC      *workflow.ImportUseCase
	ExportUC      *workflow.ExportUseCase
	TaskUC        *taskflow.TaskUseCase
	Ledgers       repository.StockLedgerRepository
	JWTSecret     string
}

// Router registra las rutas de la API. Todas las rutas de negocio requieren
// Bearer Token; la emisión de tokens vive en el servicio de autenticación.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Health (público)
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	staff := RequireRole(RoleAdmin, RoleWarehouse)

	// Stock ledger (protegido; mutaciones solo para bodega y admin)
	stock := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.StockUC)
	stock.Post("/add", staff, stockHandler.AddStock)
	stock.Post("/remove", staff, stockHandler.RemoveStock)
	stock.Post("/adjust", RequireRole(RoleAdmin), stockHandler.AdjustStock)
	stock.Put("/:resourceId/thresholds", staff, stockHandler.UpdateThresholds)
	stock.Get("/", stockHandler.Search)
	stock.Get("/:resourceId", stockHandler.Get)

	// Log de transacciones (protegido, solo lectura)
	transactions := protected.Group("/transactions")
	transactionHandler := NewTransactionHandler(deps.TransactionUC, deps.Ledgers)
	transactions.Get("/", transactionHandler.List)
	transactions.Get("/stats", transactionHandler.Stats)
	transactions.Get("/verify/:resourceId", transactionHandler.Verify)
	transactions.Get("/:id", transactionHandler.Get)

	// Solicitudes de importación (protegido; revisión solo para bodega y admin)
	imports := protected.Group("/imports")
	importHandler := NewImportHandler(deps.ImportUC)
	imports.Post("/", importHandler.Create)
	imports.Get("/", importHandler.List)
	imports.Get("/stats", importHandler.Stats)
	imports.Get("/:id", importHandler.Get)
	imports.Put("/:id/approve", staff, importHandler.Approve)
	imports.Put("/:id/reject", staff, importHandler.Reject)
	imports.Put("/:id/complete", staff, importHandler.Complete)
	imports.Put("/:id/cancel", importHandler.Cancel)

	// Solicitudes de exportación (protegido)
	exports := protected.Group("/exports")
	exportHandler := NewExportHandler(deps.ExportUC)
	exports.Post("/", exportHandler.Create)
	exports.Get("/", exportHandler.List)
	exports.Get("/stats", exportHandler.Stats)
	exports.Get("/:id", exportHandler.Get)
	exports.Put("/:id/approve", staff, exportHandler.Approve)
	exports.Put("/:id/reject", staff, exportHandler.Reject)
	exports.Put("/:id/issue", staff, exportHandler.Issue)
	exports.Put("/:id/cancel", exportHandler.Cancel)

	// Tareas de mantenimiento (protegido; acciones del técnico requieren su rol)
	tech := RequireRole(RoleAdmin, RoleTechnician)
	tasks := protected.Group("/tasks")
	taskHandler := NewTaskHandler(deps.TaskUC)
	tasks.Post("/", staff, taskHandler.Create)
	tasks.Get("/", taskHandler.List)
	tasks.Get("/stats", taskHandler.Stats)
	tasks.Get("/technician/:technicianId", taskHandler.ListByTechnician)
	tasks.Get("/:id", taskHandler.Get)
	tasks.Put("/:id/assign", staff, taskHandler.Assign)
	tasks.Put("/:id/accept", tech, taskHandler.Accept)
	tasks.Put("/:id/reject", tech, taskHandler.Reject)
	tasks.Put("/:id/start", tech, taskHandler.Start)
	tasks.Put("/:id/complete", tech, taskHandler.Complete)
	tasks.Put("/:id/status", staff, taskHandler.UpdateStatus)
}
