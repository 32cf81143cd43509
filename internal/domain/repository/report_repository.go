package repository

import (
	"context"

	"github.com/jhoicas/Fiado-api/internal/domain/entity"
	"github.com/jhoicas/Fiado-api/internal/domain/money"
)

// LedgerTotals agregados globales para el dashboard.
type LedgerTotals struct {
	CustomerCount  int
	TotalDebt      money.Money
	TotalPurchases money.Money
	TotalPayments  money.Money
}

// CustomerSummary cliente + resumen de sus pagos (listado y exportación).
type CustomerSummary struct {
	Customer      entity.Customer
	PaymentCount  int
	TotalPayments money.Money
	LastPayment   *entity.Payment // nil si no tiene pagos
}

// ReportRepository consultas de solo lectura para reportes (sin bloqueos).
type ReportRepository interface {
	Totals(ctx context.Context) (*LedgerTotals, error)
	// CustomerSummaries ordena por fecha de registro descendente; limit <= 0 devuelve todos.
	CustomerSummaries(ctx context.Context, limit, offset int) ([]CustomerSummary, error)
}
