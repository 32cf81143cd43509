package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Fiado-api/internal/domain"
	"github.com/jhoicas/Fiado-api/internal/domain/entity"
	"github.com/jhoicas/Fiado-api/internal/domain/repository"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

const paymentColumns = `id, customer_id, amount_paid, created_at, updated_at`

// PaymentRepo implementación de PaymentRepository.
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

// Create persiste un pago.
func (r *PaymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	query := `
		INSERT INTO payments (id, customer_id, amount_paid, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.q.Exec(ctx, query, p.ID, p.CustomerID, p.AmountPaid.Decimal(), p.CreatedAt, p.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByID obtiene un pago por ID.
func (r *PaymentRepo) GetByID(ctx context.Context, id string) (*entity.Payment, error) {
	p, err := scanPayment(r.q.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

// Update reemplaza amount_paid y updated_at.
func (r *PaymentRepo) Update(ctx context.Context, p *entity.Payment) error {
	tag, err := r.q.Exec(ctx, `UPDATE payments SET amount_paid = $2, updated_at = $3 WHERE id = $1`,
		p.ID, p.AmountPaid.Decimal(), p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: pago %s", domain.ErrNotFound, p.ID)
	}
	return nil
}

// Delete elimina un pago.
func (r *PaymentRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	return nil
}

// DeleteByCustomer elimina todos los pagos del cliente.
func (r *PaymentRepo) DeleteByCustomer(ctx context.Context, customerID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM payments WHERE customer_id = $1`, customerID); err != nil {
		return fmt.Errorf("delete payments by customer: %w", err)
	}
	return nil
}

// ListByCustomer pagos del cliente, más recientes primero.
func (r *PaymentRepo) ListByCustomer(ctx context.Context, customerID string) ([]*entity.Payment, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE customer_id = $1 ORDER BY created_at DESC, id DESC`,
		customerID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	list := []*entity.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanPayment(row pgx.Row) (*entity.Payment, error) {
	var (
		p      entity.Payment
		amount decimal.Decimal
	)
	if err := row.Scan(&p.ID, &p.CustomerID, &amount, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	m, err := toMoney(amount, "amount_paid")
	if err != nil {
		return nil, err
	}
	p.AmountPaid = m
	return &p, nil
}
