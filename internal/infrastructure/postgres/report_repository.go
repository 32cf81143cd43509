package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Fiado-api/internal/domain/entity"
	"github.com/jhoicas/Fiado-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de solo lectura para el dashboard y la exportación.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador de reportes.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// Totals agregados globales en una sola consulta.
func (r *ReportRepo) Totals(ctx context.Context) (*repository.LedgerTotals, error) {
	const query = `
	SELECT
	    (SELECT COUNT(*)                          FROM customers) AS customer_count,
	    (SELECT COALESCE(SUM(total_debt), 0)      FROM customers) AS total_debt,
	    (SELECT COALESCE(SUM(purchase_total), 0)  FROM purchases) AS total_purchases,
	    (SELECT COALESCE(SUM(amount_paid), 0)     FROM payments)  AS total_payments`

	var (
		count                       int
		debt, purchases, payments decimal.Decimal
	)
	if err := r.q.QueryRow(ctx, query).Scan(&count, &debt, &purchases, &payments); err != nil {
		return nil, fmt.Errorf("reports.Totals: %w", err)
	}

	out := &repository.LedgerTotals{CustomerCount: count}
	var err error
	if out.TotalDebt, err = toMoney(debt, "total_debt"); err != nil {
		return nil, err
	}
	if out.TotalPurchases, err = toMoney(purchases, "total_purchases"); err != nil {
		return nil, err
	}
	if out.TotalPayments, err = toMoney(payments, "total_payments"); err != nil {
		return nil, err
	}
	return out, nil
}

// CustomerSummaries clientes con conteo, suma y último pago, por fecha de registro descendente.
// limit <= 0 devuelve todos (LIMIT NULL).
func (r *ReportRepo) CustomerSummaries(ctx context.Context, limit, offset int) ([]repository.CustomerSummary, error) {
	const query = `
	SELECT
	    c.id, c.name, c.name_key, c.total_debt, c.created_at, c.updated_at,
	    COALESCE(agg.payment_count, 0)    AS payment_count,
	    COALESCE(agg.total_payments, 0)   AS total_payments,
	    lp.id, lp.amount_paid, lp.created_at, lp.updated_at
	FROM customers c
	LEFT JOIN (
	    SELECT customer_id, COUNT(*) AS payment_count, SUM(amount_paid) AS total_payments
	    FROM payments
	    GROUP BY customer_id
	) agg ON agg.customer_id = c.id
	LEFT JOIN LATERAL (
	    SELECT id, amount_paid, created_at, updated_at
	    FROM payments
	    WHERE customer_id = c.id
	    ORDER BY created_at DESC, id DESC
	    LIMIT 1
	) lp ON true
	ORDER BY c.created_at DESC, c.id DESC
	LIMIT $1 OFFSET $2`

	var lim any
	if limit > 0 {
		lim = limit
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.q.Query(ctx, query, lim, offset)
	if err != nil {
		return nil, fmt.Errorf("reports.CustomerSummaries: %w", err)
	}
	defer rows.Close()

	var out []repository.CustomerSummary
	for rows.Next() {
		var (
			s                  repository.CustomerSummary
			debt, total        decimal.Decimal
			lastID             *string
			lastAmount         *decimal.Decimal
			lastAt, lastUpdate *time.Time
		)
		if err := rows.Scan(
			&s.Customer.ID, &s.Customer.Name, &s.Customer.NameKey, &debt,
			&s.Customer.CreatedAt, &s.Customer.UpdatedAt,
			&s.PaymentCount, &total,
			&lastID, &lastAmount, &lastAt, &lastUpdate,
		); err != nil {
			return nil, fmt.Errorf("reports.CustomerSummaries: scan: %w", err)
		}
		if s.Customer.TotalDebt, err = toMoney(debt, "total_debt"); err != nil {
			return nil, err
		}
		if s.TotalPayments, err = toMoney(total, "total_payments"); err != nil {
			return nil, err
		}
		if lastID != nil && lastAmount != nil && lastAt != nil && lastUpdate != nil {
			amount, err := toMoney(*lastAmount, "amount_paid")
			if err != nil {
				return nil, err
			}
			s.LastPayment = &entity.Payment{
				ID: *lastID, CustomerID: s.Customer.ID, AmountPaid: amount,
				CreatedAt: *lastAt, UpdatedAt: *lastUpdate,
			}
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
