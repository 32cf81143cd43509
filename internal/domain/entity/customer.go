package entity

import (
	"time"

	"github.com/jhoicas/Fiado-api/internal/domain/money"
)

// Customer representa un cliente con cuenta de fiado.
// TotalDebt es el saldo cacheado: suma de compras menos suma de pagos.
type Customer struct {
	ID        string
	Name      string
	NameKey   string // nombre normalizado (case folding), único por almacén
	TotalDebt money.Money
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone devuelve una copia independiente.
func (c *Customer) Clone() *Customer {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
