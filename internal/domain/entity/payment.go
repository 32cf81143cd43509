package entity

import (
	"time"

	"github.com/jhoicas/Fiado-api/internal/domain/money"
)

// Payment abono de un cliente contra su deuda.
type Payment struct {
	ID         string
	CustomerID string
	AmountPaid money.Money
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Clone devuelve una copia independiente.
func (p *Payment) Clone() *Payment {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
