package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Fiado-api/internal/application/ledger"
	"github.com/jhoicas/Fiado-api/internal/application/report"
	"github.com/jhoicas/Fiado-api/internal/infrastructure/events"
	"github.com/jhoicas/Fiado-api/internal/infrastructure/excel"
	infrapdf "github.com/jhoicas/Fiado-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Fiado-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/Fiado-api/internal/interfaces/http"
	"github.com/jhoicas/Fiado-api/pkg/config"
	"github.com/jhoicas/Fiado-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer store.Close()

	// Eventos del libro: opcionales, solo si hay brokers Kafka configurados.
	var publisher ledger.EventPublisher
	if cfg.Kafka.Enabled() {
		kp := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() {
			if err := kp.Close(); err != nil {
				log.Warn().Err(err).Msg("cerrar publicador Kafka")
			}
		}()
		publisher = kp
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publicación de eventos activa")
	}

	ledgerUC := ledger.NewLedgerUseCase(store.Tx, store.Customers, store.Purchases, store.Payments, ledger.Config{
		AllowCredit: cfg.Ledger.AllowCredit,
		Events:      publisher,
		Logger:      log.Zerolog(),
	})

	// Excel de derecha a izquierda (encabezados en árabe) y PDF del estado de cuenta.
	reportUC := report.NewReportUseCase(
		store.Reports, store.Customers, store.Purchases, store.Payments,
		excel.NewWriter(true), infrapdf.NewMarotoPDFGenerator(cfg.App.Name),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.Swagger.FilePath); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.Swagger.FilePath,
			Path:     "docs",
			Title:    cfg.App.Name,
		}))
	} else {
		log.Warn().Str("file", cfg.Swagger.FilePath).Msg("swagger.json no encontrado, /docs desactivado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "db_driver": cfg.DB.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		LedgerUC: ledgerUC,
		ReportUC: reportUC,
		Logger:   log.Component("http"),
		Metrics:  httpRouter.NewMetrics(),
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
