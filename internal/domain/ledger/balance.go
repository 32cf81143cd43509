// Package ledger contiene las reglas puras del saldo de un cliente (servicio de dominio).
//
// Invariante: TotalDebt = Σ PurchaseTotal − Σ AmountPaid.
// Ninguna función de este paquete toca persistencia; el caso de uso las aplica
// dentro de una transacción.
package ledger

import (
	"fmt"
	"strings"

	"github.com/jhoicas/Fiado-api/internal/domain"
	"github.com/jhoicas/Fiado-api/internal/domain/entity"
	"github.com/jhoicas/Fiado-api/internal/domain/money"
)

// ValidateItems limpia los ítems (trim del nombre) y devuelve el total de la compra.
// Falla con ErrValidation si no hay ítems, algún nombre está vacío, algún precio es <= 0
// o el precio o el total superan money.Max.
func ValidateItems(items []entity.PurchaseItem) ([]entity.PurchaseItem, money.Money, error) {
	if len(items) == 0 {
		return nil, money.Zero, fmt.Errorf("%w: la compra debe tener al menos un producto", domain.ErrValidation)
	}
	clean := make([]entity.PurchaseItem, 0, len(items))
	total := money.Zero
	for i, it := range items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			return nil, money.Zero, fmt.Errorf("%w: producto %d sin nombre", domain.ErrValidation, i+1)
		}
		if !it.Price.IsPositive() {
			return nil, money.Zero, fmt.Errorf("%w: el precio de %q debe ser mayor que cero", domain.ErrValidation, name)
		}
		if !it.Price.InRange() {
			return nil, money.Zero, fmt.Errorf("%w: el precio de %q supera el máximo %s", domain.ErrValidation, name, money.Max)
		}
		clean = append(clean, entity.PurchaseItem{Name: name, Price: it.Price})
		next, err := total.CheckedAdd(it.Price)
		if err != nil {
			return nil, money.Zero, fmt.Errorf("%w: el total de la compra supera el máximo %s", domain.ErrValidation, money.Max)
		}
		total = next
	}
	return clean, total, nil
}

// ValidateAmount exige un monto estrictamente positivo y no mayor que money.Max.
func ValidateAmount(amount money.Money) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: el monto debe ser mayor que cero", domain.ErrValidation)
	}
	if !amount.InRange() {
		return fmt.Errorf("%w: el monto supera el máximo %s", domain.ErrValidation, money.Max)
	}
	return nil
}

// CheckPayment aplica la política de no sobrepago: amount <= balance.
func CheckPayment(balance, amount money.Money) error {
	if amount.GreaterThan(balance) {
		return fmt.Errorf("%w: pago %s, deuda %s", domain.ErrInsufficientDebt, amount, balance)
	}
	return nil
}

// ApplyDelta devuelve balance + delta. Si el resultado queda negativo y no se permite
// saldo a favor, falla con ErrInsufficientDebt; si supera money.Max, con ErrValidation.
func ApplyDelta(balance, delta money.Money, allowCredit bool) (money.Money, error) {
	next, err := balance.CheckedAdd(delta)
	if err != nil {
		return balance, fmt.Errorf("%w: el saldo superaría el máximo %s", domain.ErrValidation, money.Max)
	}
	if next.IsNegative() && !allowCredit {
		return balance, fmt.Errorf("%w: el saldo quedaría en %s", domain.ErrInsufficientDebt, next)
	}
	return next, nil
}

// ExpectedBalance recalcula el saldo desde los movimientos.
func ExpectedBalance(purchases []*entity.Purchase, payments []*entity.Payment) money.Money {
	total := money.Zero
	for _, p := range purchases {
		total = total.Add(p.PurchaseTotal)
	}
	for _, p := range payments {
		total = total.Sub(p.AmountPaid)
	}
	return total
}
