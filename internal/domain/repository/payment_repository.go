package repository

import (
	"context"

	"github.com/jhoicas/Fiado-api/internal/domain/entity"
)

// PaymentRepository define el puerto de persistencia para Payment.
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	GetByID(ctx context.Context, id string) (*entity.Payment, error)
	// Update reemplaza amount_paid y updated_at.
	Update(ctx context.Context, payment *entity.Payment) error
	Delete(ctx context.Context, id string) error
	DeleteByCustomer(ctx context.Context, customerID string) error
	// ListByCustomer ordena por created_at descendente (más reciente primero).
	ListByCustomer(ctx context.Context, customerID string) ([]*entity.Payment, error)
}
