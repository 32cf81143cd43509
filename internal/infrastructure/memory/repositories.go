package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/Fiado-api/internal/domain"
	"github.com/jhoicas/Fiado-api/internal/domain/entity"
	"github.com/jhoicas/Fiado-api/internal/domain/money"
	"github.com/jhoicas/Fiado-api/internal/domain/repository"
)

var (
	_ repository.CustomerRepository = (*CustomerRepo)(nil)
	_ repository.PurchaseRepository = (*PurchaseRepo)(nil)
	_ repository.PaymentRepository  = (*PaymentRepo)(nil)
	_ repository.ReportRepository   = (*ReportRepo)(nil)
)

// ── clientes ──────────────────────────────────────────────────────────────────

// CustomerRepo implementación en memoria de CustomerRepository.
type CustomerRepo struct {
	v *view
}

// Create inserta el cliente; ErrDuplicate si el ID o el name_key ya existen.
func (r *CustomerRepo) Create(_ context.Context, customer *entity.Customer) error {
	return r.v.write("customers.Create", func(st *state) error {
		if _, ok := st.customers[customer.ID]; ok {
			return domain.ErrDuplicate
		}
		if findByKey(st, customer.NameKey) != nil {
			return domain.ErrDuplicate
		}
		st.customers[customer.ID] = customer.Clone()
		return nil
	})
}

// GetByID obtiene un cliente por ID.
func (r *CustomerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	var out *entity.Customer
	err := r.v.read("customers.GetByID", func(st *state) error {
		out = st.customers[id].Clone()
		return nil
	})
	return out, err
}

// GetForUpdate en memoria el bloqueo lo da Store.Run; equivale a GetByID.
func (r *CustomerRepo) GetForUpdate(_ context.Context, id string) (*entity.Customer, error) {
	var out *entity.Customer
	err := r.v.read("customers.GetForUpdate", func(st *state) error {
		out = st.customers[id].Clone()
		return nil
	})
	return out, err
}

// GetByNameKey coincidencia exacta del nombre normalizado.
func (r *CustomerRepo) GetByNameKey(_ context.Context, nameKey string) (*entity.Customer, error) {
	var out *entity.Customer
	err := r.v.read("customers.GetByNameKey", func(st *state) error {
		out = findByKey(st, nameKey).Clone()
		return nil
	})
	return out, err
}

// SearchByNameKey clientes cuyo name_key contiene fragment.
func (r *CustomerRepo) SearchByNameKey(_ context.Context, fragment string) ([]*entity.Customer, error) {
	var out []*entity.Customer
	err := r.v.read("customers.SearchByNameKey", func(st *state) error {
		for _, c := range st.customers {
			if strings.Contains(c.NameKey, fragment) {
				out = append(out, c.Clone())
			}
		}
		return nil
	})
	return out, err
}

// List por fecha de registro descendente.
func (r *CustomerRepo) List(_ context.Context, limit, offset int) ([]*entity.Customer, error) {
	var out []*entity.Customer
	err := r.v.read("customers.List", func(st *state) error {
		all := make([]*entity.Customer, 0, len(st.customers))
		for _, c := range st.customers {
			all = append(all, c)
		}
		sort.Slice(all, func(i, j int) bool {
			return newerFirst(all[i].CreatedAt, all[j].CreatedAt, all[i].ID, all[j].ID)
		})
		for i := offset; i < len(all) && len(out) < limit; i++ {
			out = append(out, all[i].Clone())
		}
		return nil
	})
	return out, err
}

// UpdateDebt escribe el saldo cacheado.
func (r *CustomerRepo) UpdateDebt(_ context.Context, id string, totalDebt money.Money, updatedAt time.Time) error {
	return r.v.write("customers.UpdateDebt", func(st *state) error {
		c, ok := st.customers[id]
		if !ok {
			return fmt.Errorf("%w: cliente %s", domain.ErrNotFound, id)
		}
		c.TotalDebt = totalDebt
		c.UpdatedAt = updatedAt
		return nil
	})
}

// UpdateName cambia nombre y name_key; ErrDuplicate si otro cliente ya tiene ese name_key.
func (r *CustomerRepo) UpdateName(_ context.Context, id, name, nameKey string, updatedAt time.Time) error {
	return r.v.write("customers.UpdateName", func(st *state) error {
		c, ok := st.customers[id]
		if !ok {
			return fmt.Errorf("%w: cliente %s", domain.ErrNotFound, id)
		}
		if other := findByKey(st, nameKey); other != nil && other.ID != id {
			return domain.ErrDuplicate
		}
		c.Name = name
		c.NameKey = nameKey
		c.UpdatedAt = updatedAt
		return nil
	})
}

// Delete elimina el cliente (los movimientos se eliminan antes con DeleteByCustomer).
func (r *CustomerRepo) Delete(_ context.Context, id string) error {
	return r.v.write("customers.Delete", func(st *state) error {
		delete(st.customers, id)
		return nil
	})
}

func findByKey(st *state, nameKey string) *entity.Customer {
	for _, c := range st.customers {
		if c.NameKey == nameKey {
			return c
		}
	}
	return nil
}

// ── compras ───────────────────────────────────────────────────────────────────

// PurchaseRepo implementación en memoria de PurchaseRepository.
type PurchaseRepo struct {
	v *view
}

// Create inserta la compra; el cliente debe existir.
func (r *PurchaseRepo) Create(_ context.Context, purchase *entity.Purchase) error {
	return r.v.write("purchases.Create", func(st *state) error {
		if _, ok := st.customers[purchase.CustomerID]; !ok {
			return fmt.Errorf("%w: cliente %s", domain.ErrNotFound, purchase.CustomerID)
		}
		if _, ok := st.purchases[purchase.ID]; ok {
			return domain.ErrDuplicate
		}
		st.purchases[purchase.ID] = purchase.Clone()
		return nil
	})
}

// GetByID obtiene una compra por ID.
func (r *PurchaseRepo) GetByID(_ context.Context, id string) (*entity.Purchase, error) {
	var out *entity.Purchase
	err := r.v.read("purchases.GetByID", func(st *state) error {
		out = st.purchases[id].Clone()
		return nil
	})
	return out, err
}

// Update reemplaza ítems, total y updated_at.
func (r *PurchaseRepo) Update(_ context.Context, purchase *entity.Purchase) error {
	return r.v.write("purchases.Update", func(st *state) error {
		p, ok := st.purchases[purchase.ID]
		if !ok {
			return fmt.Errorf("%w: compra %s", domain.ErrNotFound, purchase.ID)
		}
		p.Items = append([]entity.PurchaseItem(nil), purchase.Items...)
		p.PurchaseTotal = purchase.PurchaseTotal
		p.UpdatedAt = purchase.UpdatedAt
		return nil
	})
}

// Delete elimina una compra.
func (r *PurchaseRepo) Delete(_ context.Context, id string) error {
	return r.v.write("purchases.Delete", func(st *state) error {
		delete(st.purchases, id)
		return nil
	})
}

// DeleteByCustomer elimina todas las compras del cliente.
func (r *PurchaseRepo) DeleteByCustomer(_ context.Context, customerID string) error {
	return r.v.write("purchases.DeleteByCustomer", func(st *state) error {
		for id, p := range st.purchases {
			if p.CustomerID == customerID {
				delete(st.purchases, id)
			}
		}
		return nil
	})
}

// ListByCustomer compras del cliente, más recientes primero.
func (r *PurchaseRepo) ListByCustomer(_ context.Context, customerID string) ([]*entity.Purchase, error) {
	out := []*entity.Purchase{}
	err := r.v.read("purchases.ListByCustomer", func(st *state) error {
		for _, p := range st.purchases {
			if p.CustomerID == customerID {
				out = append(out, p.Clone())
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, err
}

// ── pagos ─────────────────────────────────────────────────────────────────────

// PaymentRepo implementación en memoria de PaymentRepository.
type PaymentRepo struct {
	v *view
}

// Create inserta el pago; el cliente debe existir.
func (r *PaymentRepo) Create(_ context.Context, payment *entity.Payment) error {
	return r.v.write("payments.Create", func(st *state) error {
		if _, ok := st.customers[payment.CustomerID]; !ok {
			return fmt.Errorf("%w: cliente %s", domain.ErrNotFound, payment.CustomerID)
		}
		if _, ok := st.payments[payment.ID]; ok {
			return domain.ErrDuplicate
		}
		st.payments[payment.ID] = payment.Clone()
		return nil
	})
}

// GetByID obtiene un pago por ID.
func (r *PaymentRepo) GetByID(_ context.Context, id string) (*entity.Payment, error) {
	var out *entity.Payment
	err := r.v.read("payments.GetByID", func(st *state) error {
		out = st.payments[id].Clone()
		return nil
	})
	return out, err
}

// Update reemplaza amount_paid y updated_at.
func (r *PaymentRepo) Update(_ context.Context, payment *entity.Payment) error {
	return r.v.write("payments.Update", func(st *state) error {
		p, ok := st.payments[payment.ID]
		if !ok {
			return fmt.Errorf("%w: pago %s", domain.ErrNotFound, payment.ID)
		}
		p.AmountPaid = payment.AmountPaid
		p.UpdatedAt = payment.UpdatedAt
		return nil
	})
}

// Delete elimina un pago.
func (r *PaymentRepo) Delete(_ context.Context, id string) error {
	return r.v.write("payments.Delete", func(st *state) error {
		delete(st.payments, id)
		return nil
	})
}

// DeleteByCustomer elimina todos los pagos del cliente.
func (r *PaymentRepo) DeleteByCustomer(_ context.Context, customerID string) error {
	return r.v.write("payments.DeleteByCustomer", func(st *state) error {
		for id, p := range st.payments {
			if p.CustomerID == customerID {
				delete(st.payments, id)
			}
		}
		return nil
	})
}

// ListByCustomer pagos del cliente, más recientes primero.
func (r *PaymentRepo) ListByCustomer(_ context.Context, customerID string) ([]*entity.Payment, error) {
	out := []*entity.Payment{}
	err := r.v.read("payments.ListByCustomer", func(st *state) error {
		for _, p := range st.payments {
			if p.CustomerID == customerID {
				out = append(out, p.Clone())
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, err
}

// ── reportes ──────────────────────────────────────────────────────────────────

// ReportRepo implementación en memoria de ReportRepository.
type ReportRepo struct {
	v *view
}

// Totals agregados globales.
func (r *ReportRepo) Totals(_ context.Context) (*repository.LedgerTotals, error) {
	out := &repository.LedgerTotals{}
	err := r.v.read("reports.Totals", func(st *state) error {
		out.CustomerCount = len(st.customers)
		for _, c := range st.customers {
			out.TotalDebt = out.TotalDebt.Add(c.TotalDebt)
		}
		for _, p := range st.purchases {
			out.TotalPurchases = out.TotalPurchases.Add(p.PurchaseTotal)
		}
		for _, p := range st.payments {
			out.TotalPayments = out.TotalPayments.Add(p.AmountPaid)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CustomerSummaries clientes con conteo, suma y último pago, por fecha de registro descendente.
func (r *ReportRepo) CustomerSummaries(_ context.Context, limit, offset int) ([]repository.CustomerSummary, error) {
	var out []repository.CustomerSummary
	err := r.v.read("reports.CustomerSummaries", func(st *state) error {
		idx := make(map[string]int, len(st.customers))
		for _, c := range st.customers {
			idx[c.ID] = len(out)
			out = append(out, repository.CustomerSummary{Customer: *c.Clone()})
		}
		for _, p := range st.payments {
			if i, ok := idx[p.CustomerID]; ok {
				out[i].PaymentCount++
				out[i].TotalPayments = out[i].TotalPayments.Add(p.AmountPaid)
				if last := out[i].LastPayment; last == nil || newerFirst(p.CreatedAt, last.CreatedAt, p.ID, last.ID) {
					out[i].LastPayment = p.Clone()
				}
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Customer, out[j].Customer
		return newerFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	if offset >= len(out) {
		return []repository.CustomerSummary{}, err
	}
	if offset > 0 {
		out = out[offset:]
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, err
}

func newerFirst(a, b time.Time, idA, idB string) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return idA > idB
}
