package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Fiado-api/internal/domain/entity"
	"github.com/jhoicas/Fiado-api/internal/domain/money"
)

// CustomerRepository define el puerto de persistencia para Customer.
// Los Get* devuelven (nil, nil) cuando el cliente no existe.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	// GetForUpdate obtiene el cliente y bloquea su fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Customer, error)
	GetByNameKey(ctx context.Context, nameKey string) (*entity.Customer, error)
	// SearchByNameKey busca clientes cuyo name_key contiene fragment (ya normalizado).
	SearchByNameKey(ctx context.Context, fragment string) ([]*entity.Customer, error)
	// List ordena por fecha de registro descendente.
	List(ctx context.Context, limit, offset int) ([]*entity.Customer, error)
	UpdateDebt(ctx context.Context, id string, totalDebt money.Money, updatedAt time.Time) error
	UpdateName(ctx context.Context, id, name, nameKey string, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}
