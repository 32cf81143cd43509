package repository

import (
	"context"

	"github.com/jhoicas/Fiado-api/internal/domain/entity"
)

// PurchaseRepository define el puerto de persistencia para Purchase.
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *entity.Purchase) error
	GetByID(ctx context.Context, id string) (*entity.Purchase, error)
	// Update reemplaza ítems, total y updated_at.
	Update(ctx context.Context, purchase *entity.Purchase) error
	Delete(ctx context.Context, id string) error
	DeleteByCustomer(ctx context.Context, customerID string) error
	// ListByCustomer ordena por created_at descendente (más reciente primero).
	ListByCustomer(ctx context.Context, customerID string) ([]*entity.Purchase, error)
}
