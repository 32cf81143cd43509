package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jhoicas/Fiado-api/internal/domain/entity"
	"github.com/jhoicas/Fiado-api/internal/domain/money"
	"github.com/jhoicas/Fiado-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// cents convierte una columna TEXT de dos decimales a centavos enteros para sumar sin float.
func cents(column string) string {
	return "CAST(ROUND(" + column + " * 100) AS INTEGER)"
}

// ReportRepo consultas de solo lectura para reportes.
type ReportRepo struct {
	q querier
}

// Totals agregados globales.
func (r *ReportRepo) Totals(ctx context.Context) (*repository.LedgerTotals, error) {
	query := `
	SELECT
	    (SELECT COUNT(*) FROM customers),
	    (SELECT COALESCE(SUM(` + cents("total_debt") + `), 0) FROM customers),
	    (SELECT COALESCE(SUM(` + cents("purchase_total") + `), 0) FROM purchases),
	    (SELECT COALESCE(SUM(` + cents("amount_paid") + `), 0) FROM payments)`

	var count int
	var debt, purchases, payments int64
	if err := r.q.QueryRowContext(ctx, query).Scan(&count, &debt, &purchases, &payments); err != nil {
		return nil, fmt.Errorf("failed to get totals: %w", err)
	}
	return &repository.LedgerTotals{
		CustomerCount:  count,
		TotalDebt:      money.FromCents(debt),
		TotalPurchases: money.FromCents(purchases),
		TotalPayments:  money.FromCents(payments),
	}, nil
}

// CustomerSummaries clientes con conteo, suma y último pago, por fecha de registro descendente.
// limit <= 0 devuelve todos (LIMIT -1).
func (r *ReportRepo) CustomerSummaries(ctx context.Context, limit, offset int) ([]repository.CustomerSummary, error) {
	query := `
	SELECT c.id, c.name, c.name_key, c.total_debt, c.created_at, c.updated_at,
	       (SELECT COUNT(*) FROM payments p WHERE p.customer_id = c.id),
	       (SELECT COALESCE(SUM(` + cents("p.amount_paid") + `), 0) FROM payments p WHERE p.customer_id = c.id),
	       lp.id, lp.amount_paid, lp.created_at, lp.updated_at
	FROM customers c
	LEFT JOIN payments lp ON lp.id = (
	    SELECT id FROM payments WHERE customer_id = c.id ORDER BY created_at DESC, id DESC LIMIT 1
	)
	ORDER BY c.created_at DESC, c.id DESC
	LIMIT ? OFFSET ?`

	if limit <= 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.q.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize customers: %w", err)
	}
	defer rows.Close()

	var out []repository.CustomerSummary
	for rows.Next() {
		var (
			s                    repository.CustomerSummary
			createdAt, updatedAt int64
			paid                 int64
			lastID               sql.NullString
			lastAmount           money.Money
			lastAt, lastUpdate   sql.NullInt64
		)
		if err := rows.Scan(&s.Customer.ID, &s.Customer.Name, &s.Customer.NameKey, &s.Customer.TotalDebt,
			&createdAt, &updatedAt, &s.PaymentCount, &paid,
			&lastID, &lastAmount, &lastAt, &lastUpdate); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		s.Customer.CreatedAt = fromUnix(createdAt)
		s.Customer.UpdatedAt = fromUnix(updatedAt)
		s.TotalPayments = money.FromCents(paid)
		if lastID.Valid {
			s.LastPayment = &entity.Payment{
				ID:         lastID.String,
				CustomerID: s.Customer.ID,
				AmountPaid: lastAmount,
				CreatedAt:  fromUnix(lastAt.Int64),
				UpdatedAt:  fromUnix(lastUpdate.Int64),
			}
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate summaries: %w", err)
	}
	return out, nil
}
