package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Fiado-api/internal/domain"
	"github.com/jhoicas/Fiado-api/internal/domain/entity"
	"github.com/jhoicas/Fiado-api/internal/domain/money"
	"github.com/jhoicas/Fiado-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

const customerColumns = `id, name, name_key, total_debt, created_at, updated_at`

// CustomerRepo implementación SQLite de CustomerRepository.
type CustomerRepo struct {
	q querier
}

// Create persiste un nuevo cliente.
func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO customers (`+customerColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.NameKey, c.TotalDebt, toUnix(c.CreatedAt), toUnix(c.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: cliente %q", domain.ErrDuplicate, c.Name)
		}
		return fmt.Errorf("failed to insert customer: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = ?`, id)
}

// GetForUpdate en SQLite la transacción IMMEDIATE ya tiene el bloqueo de escritura; equivale a GetByID.
func (r *CustomerRepo) GetForUpdate(ctx context.Context, id string) (*entity.Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = ?`, id)
}

// GetByNameKey obtiene un cliente por nombre normalizado.
func (r *CustomerRepo) GetByNameKey(ctx context.Context, nameKey string) (*entity.Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE name_key = ?`, nameKey)
}

// SearchByNameKey clientes cuyo name_key contiene fragment (instr no usa comodines).
func (r *CustomerRepo) SearchByNameKey(ctx context.Context, fragment string) ([]*entity.Customer, error) {
	return r.list(ctx, `SELECT `+customerColumns+` FROM customers WHERE instr(name_key, ?) > 0`, fragment)
}

// List por fecha de registro descendente.
func (r *CustomerRepo) List(ctx context.Context, limit, offset int) ([]*entity.Customer, error) {
	return r.list(ctx,
		`SELECT `+customerColumns+` FROM customers ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		limit, offset)
}

// UpdateDebt escribe el saldo cacheado.
func (r *CustomerRepo) UpdateDebt(ctx context.Context, id string, totalDebt money.Money, updatedAt time.Time) error {
	res, err := r.q.ExecContext(ctx, `UPDATE customers SET total_debt = ?, updated_at = ? WHERE id = ?`,
		totalDebt, toUnix(updatedAt), id)
	if err != nil {
		return fmt.Errorf("failed to update customer debt: %w", err)
	}
	return requireRow(res, "cliente", id)
}

// UpdateName cambia nombre y name_key.
func (r *CustomerRepo) UpdateName(ctx context.Context, id, name, nameKey string, updatedAt time.Time) error {
	res, err := r.q.ExecContext(ctx, `UPDATE customers SET name = ?, name_key = ?, updated_at = ? WHERE id = ?`,
		name, nameKey, toUnix(updatedAt), id)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: cliente %q", domain.ErrDuplicate, name)
		}
		return fmt.Errorf("failed to rename customer: %w", err)
	}
	return requireRow(res, "cliente", id)
}

// Delete elimina el cliente.
func (r *CustomerRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return nil
}

func (r *CustomerRepo) getOne(ctx context.Context, query string, arg any) (*entity.Customer, error) {
	c, err := scanCustomer(r.q.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return c, nil
}

func (r *CustomerRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Customer, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var list []*entity.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate customers: %w", err)
	}
	return list, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCustomer(s scanner) (*entity.Customer, error) {
	var (
		c                    entity.Customer
		createdAt, updatedAt int64
	)
	if err := s.Scan(&c.ID, &c.Name, &c.NameKey, &c.TotalDebt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	c.CreatedAt = fromUnix(createdAt)
	c.UpdatedAt = fromUnix(updatedAt)
	return &c, nil
}

func requireRow(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, what, id)
	}
	return nil
}
