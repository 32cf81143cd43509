package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Fiado-api/internal/domain"
	"github.com/jhoicas/Fiado-api/internal/domain/entity"
	"github.com/jhoicas/Fiado-api/internal/domain/money"
	"github.com/jhoicas/Fiado-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

const customerColumns = `id, name, name_key, total_debt, created_at, updated_at`

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// Create persiste un nuevo cliente. Un name_key existente devuelve ErrDuplicate sin abortar
// la transacción (ON CONFLICT DO NOTHING), así el llamador puede volver a buscarlo.
func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	query := `
		INSERT INTO customers (id, name, name_key, total_debt, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name_key) DO NOTHING`
	tag, err := r.q.Exec(ctx, query, c.ID, c.Name, c.NameKey, c.TotalDebt.Decimal(), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: cliente %q", domain.ErrDuplicate, c.Name)
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: cliente %q", domain.ErrDuplicate, c.Name)
	}
	return nil
}

// GetByID obtiene un cliente por ID.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	return r.getOne(ctx, "get customer", `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
}

// GetForUpdate obtiene el cliente y bloquea la fila para update (SELECT FOR UPDATE).
func (r *CustomerRepo) GetForUpdate(ctx context.Context, id string) (*entity.Customer, error) {
	return r.getOne(ctx, "get customer for update", `SELECT `+customerColumns+` FROM customers WHERE id = $1 FOR UPDATE`, id)
}

// GetByNameKey obtiene un cliente por nombre normalizado.
func (r *CustomerRepo) GetByNameKey(ctx context.Context, nameKey string) (*entity.Customer, error) {
	return r.getOne(ctx, "get customer by name", `SELECT `+customerColumns+` FROM customers WHERE name_key = $1`, nameKey)
}

// SearchByNameKey clientes cuyo name_key contiene fragment. strpos evita interpretar % y _ como comodines.
func (r *CustomerRepo) SearchByNameKey(ctx context.Context, fragment string) ([]*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE strpos(name_key, $1) > 0 ORDER BY name`
	return r.list(ctx, "search customers", query, fragment)
}

// List por fecha de registro descendente con paginación.
func (r *CustomerRepo) List(ctx context.Context, limit, offset int) ([]*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`
	return r.list(ctx, "list customers", query, limit, offset)
}

// UpdateDebt escribe el saldo cacheado.
func (r *CustomerRepo) UpdateDebt(ctx context.Context, id string, totalDebt money.Money, updatedAt time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE customers SET total_debt = $2, updated_at = $3 WHERE id = $1`,
		id, totalDebt.Decimal(), updatedAt)
	if err != nil {
		return fmt.Errorf("update customer debt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: cliente %s", domain.ErrNotFound, id)
	}
	return nil
}

// UpdateName cambia nombre y name_key.
func (r *CustomerRepo) UpdateName(ctx context.Context, id, name, nameKey string, updatedAt time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE customers SET name = $2, name_key = $3, updated_at = $4 WHERE id = $1`,
		id, name, nameKey, updatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: cliente %q", domain.ErrDuplicate, name)
		}
		return fmt.Errorf("update customer name: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: cliente %s", domain.ErrNotFound, id)
	}
	return nil
}

// Delete elimina el cliente.
func (r *CustomerRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

func (r *CustomerRepo) getOne(ctx context.Context, op, query string, arg any) (*entity.Customer, error) {
	c, err := scanCustomer(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

func (r *CustomerRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Customer, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var list []*entity.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func scanCustomer(row pgx.Row) (*entity.Customer, error) {
	var (
		c    entity.Customer
		debt decimal.Decimal
	)
	if err := row.Scan(&c.ID, &c.Name, &c.NameKey, &debt, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	m, err := toMoney(debt, "total_debt")
	if err != nil {
		return nil, err
	}
	c.TotalDebt = m
	return &c, nil
}
