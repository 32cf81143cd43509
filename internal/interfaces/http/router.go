package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Fiado-api/internal/application/ledger"
	"github.com/jhoicas/Fiado-api/internal/application/report"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LedgerUC *ledger.LedgerUseCase
	ReportUC *report.ReportUseCase
	Logger   zerolog.Logger
	Metrics  *Metrics // nil desactiva /metrics
}

// Router registra middleware y rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(recover.New())
	app.Use(requestid.New())
	if deps.Metrics != nil {
		app.Use(deps.Metrics.Middleware())
		app.Get("/metrics", deps.Metrics.Handler())
	}
	app.Use(RequestLogger(deps.Logger))

	api := app.Group("/api")

	// Customers
	customers := api.Group("/customers")
	customerHandler := NewCustomerHandler(deps.LedgerUC, deps.ReportUC)
	customers.Get("/", customerHandler.List)
	customers.Get("/by-name/:name", customerHandler.GetByName)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Patch("/:id", customerHandler.Rename)
	customers.Delete("/:id", customerHandler.Delete)
	customers.Get("/:id/history", customerHandler.History)
	customers.Get("/:id/verify", customerHandler.Verify)
	customers.Post("/:id/reconcile", customerHandler.Reconcile)
	customers.Get("/:id/statement.pdf", customerHandler.Statement)

	// Purchases
	purchases := api.Group("/purchases")
	purchaseHandler := NewPurchaseHandler(deps.LedgerUC)
	purchases.Post("/", purchaseHandler.Create)
	purchases.Put("/:id", purchaseHandler.Update)
	purchases.Delete("/:id", purchaseHandler.Delete)

	// Payments
	payments := api.Group("/payments")
	paymentHandler := NewPaymentHandler(deps.LedgerUC)
	payments.Post("/", paymentHandler.Create)
	payments.Put("/:id", paymentHandler.Update)
	payments.Delete("/:id", paymentHandler.Delete)

	// Reports
	reports := api.Group("/reports")
	reportHandler := NewReportHandler(deps.ReportUC)
	reports.Get("/dashboard", reportHandler.Dashboard)
	reports.Get("/customers.xlsx", reportHandler.ExportCustomers)
}
