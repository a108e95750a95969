package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/serviteca/taller-api/internal/application/inventory"
	"github.com/serviteca/taller-api/internal/application/ports"
	"github.com/serviteca/taller-api/internal/application/taskflow"
	"github.com/serviteca/taller-api/internal/application/workflow"
	"github.com/serviteca/taller-api/internal/infrastructure/partsvc"
	"github.com/serviteca/taller-api/internal/infrastructure/postgres"
	httpRouter "github.com/serviteca/taller-api/internal/interfaces/http"
	"github.com/serviteca/taller-api/pkg/config"
	"github.com/serviteca/taller-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repositorios atados al pool: los casos de uso los usan solo para lecturas;
	// las escrituras pasan por el TxRunner con repos atados a la transacción.
	ledgerRepo := postgres.NewStockLedgerRepository(pool)
	txlogRepo := postgres.NewStockTransactionRepository(pool)
	importRepo := postgres.NewImportRequestRepository(pool)
	exportRepo := postgres.NewExportRequestRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	historyRepo := postgres.NewTaskHistoryRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Cliente del servicio de repuestos — solo si hay URL configurada.
	// Sin él, las emisiones y cierres siguen siendo locales.
	var partsClient *partsvc.Client
	if cfg.Parts.BaseURL != "" {
		partsClient = partsvc.New(cfg.Parts.BaseURL, cfg.Parts.Timeout)
	}
	var partsSvc ports.PartsService
	var srCompleter ports.ServiceRequestCompleter
	if partsClient != nil {
		partsSvc = partsClient
		srCompleter = partsClient
	}

	stockUC := inventory.NewStockUseCase(txRunner, ledgerRepo)
	transactionUC := inventory.NewTransactionQueryUseCase(txlogRepo)
	importUC := workflow.NewImportUseCase(txRunner, importRepo)
	exportUC := workflow.NewExportUseCase(txRunner, exportRepo, partsSvc, log)
	taskUC := taskflow.NewTaskUseCase(txRunner, taskRepo, historyRepo, srCompleter, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Taller API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		StockUC:       stockUC,
		TransactionUC: transactionUC,
		ImportUC:      importUC,
		ExportUC:      exportUC,
		TaskUC:        taskUC,
		Ledgers:       ledgerRepo,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
