package dto

import "github.com/jhoicas/Fiado-api/internal/domain/money"

// DashboardDTO respuesta de GET /api/reports/dashboard.
type DashboardDTO struct {
	CustomerCount  int         `json:"customer_count"`
	TotalDebt      money.Money `json:"total_debt"`      // deuda pendiente de todos los clientes
	TotalPurchases money.Money `json:"total_purchases"` // Σ compras registradas
	TotalPayments  money.Money `json:"total_payments"`  // Σ pagos recibidos
	GeneratedAt    string      `json:"generated_at"`
}
