package entity

import (
	"time"

	"github.com/jhoicas/Fiado-api/internal/domain/money"
)

// PurchaseItem línea de una compra (nombre del producto y precio).
type PurchaseItem struct {
	Name  string      `json:"name"`
	Price money.Money `json:"price"`
}

// Purchase compra a crédito de un cliente. PurchaseTotal siempre es la suma de Items.
type Purchase struct {
	ID            string
	CustomerID    string
	Items         []PurchaseItem
	PurchaseTotal money.Money
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Clone devuelve una copia independiente (incluye los ítems).
func (p *Purchase) Clone() *Purchase {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Items = append([]PurchaseItem(nil), p.Items...)
	return &cp
}
