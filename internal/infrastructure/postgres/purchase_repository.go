package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Fiado-api/internal/domain"
	"github.com/jhoicas/Fiado-api/internal/domain/entity"
	"github.com/jhoicas/Fiado-api/internal/domain/repository"
)

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

const purchaseColumns = `id, customer_id, items, purchase_total, created_at, updated_at`

// PurchaseRepo implementación de PurchaseRepository. Los ítems se guardan como JSONB.
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

// Create persiste una compra.
func (r *PurchaseRepo) Create(ctx context.Context, p *entity.Purchase) error {
	items, err := json.Marshal(p.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	query := `
		INSERT INTO purchases (id, customer_id, items, purchase_total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.q.Exec(ctx, query, p.ID, p.CustomerID, items, p.PurchaseTotal.Decimal(), p.CreatedAt, p.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert purchase: %w", err)
	}
	return nil
}

// GetByID obtiene una compra por ID.
func (r *PurchaseRepo) GetByID(ctx context.Context, id string) (*entity.Purchase, error) {
	p, err := scanPurchase(r.q.QueryRow(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	return p, nil
}

// Update reemplaza ítems, total y updated_at.
func (r *PurchaseRepo) Update(ctx context.Context, p *entity.Purchase) error {
	items, err := json.Marshal(p.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	tag, err := r.q.Exec(ctx,
		`UPDATE purchases SET items = $2, purchase_total = $3, updated_at = $4 WHERE id = $1`,
		p.ID, items, p.PurchaseTotal.Decimal(), p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update purchase: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: compra %s", domain.ErrNotFound, p.ID)
	}
	return nil
}

// Delete elimina una compra.
func (r *PurchaseRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM purchases WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete purchase: %w", err)
	}
	return nil
}

// DeleteByCustomer elimina todas las compras del cliente.
func (r *PurchaseRepo) DeleteByCustomer(ctx context.Context, customerID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM purchases WHERE customer_id = $1`, customerID); err != nil {
		return fmt.Errorf("delete purchases by customer: %w", err)
	}
	return nil
}

// ListByCustomer compras del cliente, más recientes primero.
func (r *PurchaseRepo) ListByCustomer(ctx context.Context, customerID string) ([]*entity.Purchase, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+purchaseColumns+` FROM purchases WHERE customer_id = $1 ORDER BY created_at DESC, id DESC`,
		customerID)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	list := []*entity.Purchase{}
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanPurchase(row pgx.Row) (*entity.Purchase, error) {
	var (
		p     entity.Purchase
		items []byte
		total decimal.Decimal
	)
	if err := row.Scan(&p.ID, &p.CustomerID, &items, &total, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &p.Items); err != nil {
		return nil, fmt.Errorf("items de la compra %s: %w", p.ID, err)
	}
	m, err := toMoney(total, "purchase_total")
	if err != nil {
		return nil, err
	}
	p.PurchaseTotal = m
	return &p, nil
}
