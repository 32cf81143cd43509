package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jhoicas/Fiado-api/internal/domain"
	"github.com/jhoicas/Fiado-api/internal/domain/entity"
	"github.com/jhoicas/Fiado-api/internal/domain/repository"
)

var (
	_ repository.PurchaseRepository = (*PurchaseRepo)(nil)
	_ repository.PaymentRepository  = (*PaymentRepo)(nil)
)

// ── compras ───────────────────────────────────────────────────────────────────

// PurchaseRepo implementación SQLite de PurchaseRepository. Los ítems se guardan como JSON.
type PurchaseRepo struct {
	q querier
}

// Create persiste una compra.
func (r *PurchaseRepo) Create(ctx context.Context, p *entity.Purchase) error {
	items, err := json.Marshal(p.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal items: %w", err)
	}
	_, err = r.q.ExecContext(ctx,
		`INSERT INTO purchases (id, customer_id, items, purchase_total, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.CustomerID, string(items), p.PurchaseTotal, toUnix(p.CreatedAt), toUnix(p.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("failed to insert purchase: %w", err)
	}
	return nil
}

// GetByID obtiene una compra por ID.
func (r *PurchaseRepo) GetByID(ctx context.Context, id string) (*entity.Purchase, error) {
	p, err := scanPurchase(r.q.QueryRowContext(ctx,
		`SELECT id, customer_id, items, purchase_total, created_at, updated_at FROM purchases WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase: %w", err)
	}
	return p, nil
}

// Update reemplaza ítems, total y updated_at.
func (r *PurchaseRepo) Update(ctx context.Context, p *entity.Purchase) error {
	items, err := json.Marshal(p.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal items: %w", err)
	}
	res, err := r.q.ExecContext(ctx,
		`UPDATE purchases SET items = ?, purchase_total = ?, updated_at = ? WHERE id = ?`,
		string(items), p.PurchaseTotal, toUnix(p.UpdatedAt), p.ID)
	if err != nil {
		return fmt.Errorf("failed to update purchase: %w", err)
	}
	return requireRow(res, "compra", p.ID)
}

// Delete elimina una compra.
func (r *PurchaseRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM purchases WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete purchase: %w", err)
	}
	return nil
}

// DeleteByCustomer elimina todas las compras del cliente.
func (r *PurchaseRepo) DeleteByCustomer(ctx context.Context, customerID string) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM purchases WHERE customer_id = ?`, customerID); err != nil {
		return fmt.Errorf("failed to delete purchases: %w", err)
	}
	return nil
}

// ListByCustomer compras del cliente, más recientes primero.
func (r *PurchaseRepo) ListByCustomer(ctx context.Context, customerID string) ([]*entity.Purchase, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, customer_id, items, purchase_total, created_at, updated_at
		 FROM purchases WHERE customer_id = ? ORDER BY created_at DESC, id DESC`, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	defer rows.Close()

	list := []*entity.Purchase{}
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate purchases: %w", err)
	}
	return list, nil
}

func scanPurchase(s scanner) (*entity.Purchase, error) {
	var (
		p                    entity.Purchase
		items                string
		createdAt, updatedAt int64
	)
	if err := s.Scan(&p.ID, &p.CustomerID, &items, &p.PurchaseTotal, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(items), &p.Items); err != nil {
		return nil, fmt.Errorf("items de la compra %s: %w", p.ID, err)
	}
	p.CreatedAt = fromUnix(createdAt)
	p.UpdatedAt = fromUnix(updatedAt)
	return &p, nil
}

// ── pagos ─────────────────────────────────────────────────────────────────────

// PaymentRepo implementación SQLite de PaymentRepository.
type PaymentRepo struct {
	q querier
}

// Create persiste un pago.
func (r *PaymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO payments (id, customer_id, amount_paid, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.CustomerID, p.AmountPaid, toUnix(p.CreatedAt), toUnix(p.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

// GetByID obtiene un pago por ID.
func (r *PaymentRepo) GetByID(ctx context.Context, id string) (*entity.Payment, error) {
	p, err := scanPayment(r.q.QueryRowContext(ctx,
		`SELECT id, customer_id, amount_paid, created_at, updated_at FROM payments WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return p, nil
}

// Update reemplaza amount_paid y updated_at.
func (r *PaymentRepo) Update(ctx context.Context, p *entity.Payment) error {
	res, err := r.q.ExecContext(ctx, `UPDATE payments SET amount_paid = ?, updated_at = ? WHERE id = ?`,
		p.AmountPaid, toUnix(p.UpdatedAt), p.ID)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return requireRow(res, "pago", p.ID)
}

// Delete elimina un pago.
func (r *PaymentRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM payments WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return nil
}

// DeleteByCustomer elimina todos los pagos del cliente.
func (r *PaymentRepo) DeleteByCustomer(ctx context.Context, customerID string) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM payments WHERE customer_id = ?`, customerID); err != nil {
		return fmt.Errorf("failed to delete payments: %w", err)
	}
	return nil
}

// ListByCustomer pagos del cliente, más recientes primero.
func (r *PaymentRepo) ListByCustomer(ctx context.Context, customerID string) ([]*entity.Payment, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, customer_id, amount_paid, created_at, updated_at
		 FROM payments WHERE customer_id = ? ORDER BY created_at DESC, id DESC`, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	list := []*entity.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}
	return list, nil
}

func scanPayment(s scanner) (*entity.Payment, error) {
	var (
		p                    entity.Payment
		createdAt, updatedAt int64
	)
	if err := s.Scan(&p.ID, &p.CustomerID, &p.AmountPaid, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.CreatedAt = fromUnix(createdAt)
	p.UpdatedAt = fromUnix(updatedAt)
	return &p, nil
}
