// Package ledger implementa el libro de fiado: compras, pagos y el saldo de cada cliente.
//
// Cada operación que modifica total_debt bloquea la fila del cliente (SELECT FOR UPDATE),
// calcula el nuevo saldo, lo escribe y escribe el movimiento hijo dentro de una sola
// transacción (TxRunner). Nunca hay dos escrituras independientes sin rollback.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Fiado-api/internal/domain"
	"github.com/jhoicas/Fiado-api/internal/domain/entity"
	rules "github.com/jhoicas/Fiado-api/internal/domain/ledger"
	"github.com/jhoicas/Fiado-api/internal/domain/money"
	"github.com/jhoicas/Fiado-api/internal/domain/repository"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Config opciones del libro.
type Config struct {
	// AllowCredit permite que ediciones y eliminaciones dejen el saldo negativo (saldo a favor).
	// Un pago nuevo nunca puede superar la deuda, con o sin esta opción.
	AllowCredit bool
	// Events publicador opcional; nil desactiva la publicación.
	Events EventPublisher
	Logger zerolog.Logger
	// Now reloj inyectable (tests); nil usa time.Now.
	Now func() time.Time
}

// LedgerUseCase casos de uso del libro de fiado.
type LedgerUseCase struct {
	txRunner     TxRunner
	customerRepo repository.CustomerRepository
	purchaseRepo repository.PurchaseRepository
	paymentRepo  repository.PaymentRepository
	cfg          Config
	log          zerolog.Logger
	now          func() time.Time
}

// NewLedgerUseCase construye el caso de uso. Los repositorios sueltos se usan solo para lecturas.
func NewLedgerUseCase(
	txRunner TxRunner,
	customerRepo repository.CustomerRepository,
	purchaseRepo repository.PurchaseRepository,
	paymentRepo repository.PaymentRepository,
	cfg Config,
) *LedgerUseCase {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &LedgerUseCase{
		txRunner:     txRunner,
		customerRepo: customerRepo,
		purchaseRepo: purchaseRepo,
		paymentRepo:  paymentRepo,
		cfg:          cfg,
		log:          cfg.Logger.With().Str("component", "ledger").Logger(),
		now:          now,
	}
}

// RecordPurchaseInput entrada para registrar una compra.
// Si CustomerID está vacío se resuelve el cliente por nombre (sin distinguir mayúsculas)
// y se crea si no existe. OccurredAt vacío = ahora.
type RecordPurchaseInput struct {
	CustomerID   string
	CustomerName string
	Items        []entity.PurchaseItem
	OccurredAt   time.Time
}

// CustomerHistory cliente con sus compras y pagos (más recientes primero).
type CustomerHistory struct {
	Customer  *entity.Customer
	Purchases []*entity.Purchase
	Payments  []*entity.Payment
}

// BalanceCheck resultado de comparar el saldo cacheado con el recalculado.
type BalanceCheck struct {
	Customer   *entity.Customer
	Cached     money.Money
	Expected   money.Money
	Consistent bool
}

// RecordPurchase registra una compra y suma su total a la deuda del cliente.
func (uc *LedgerUseCase) RecordPurchase(ctx context.Context, in RecordPurchaseInput) (*entity.Customer, *entity.Purchase, error) {
	items, total, err := rules.ValidateItems(in.Items)
	if err != nil {
		return nil, nil, err
	}
	customerID := strings.TrimSpace(in.CustomerID)
	name := rules.CleanName(in.CustomerName)
	if customerID == "" && name == "" {
		return nil, nil, fmt.Errorf("%w: se requiere customer_id o nombre del cliente", domain.ErrValidation)
	}

	now := uc.now()
	at := occurred(in.OccurredAt, now)
	purchase := &entity.Purchase{
		ID:            uuid.New().String(),
		Items:         items,
		PurchaseTotal: total,
		CreatedAt:     at,
		UpdatedAt:     now,
	}

	var customer *entity.Customer
	err = uc.txRunner.Run(ctx, func(r Repos) error {
		c, err := uc.resolveCustomer(ctx, r, customerID, name, at)
		if err != nil {
			return err
		}
		newDebt, err := rules.ApplyDelta(c.TotalDebt, total, true)
		if err != nil {
			return err
		}
		if err := r.Customers.UpdateDebt(ctx, c.ID, newDebt, now); err != nil {
			return storageErr("actualizar deuda", err)
		}
		purchase.CustomerID = c.ID
		if err := r.Purchases.Create(ctx, purchase); err != nil {
			return storageErr("insertar compra", err)
		}
		c.TotalDebt = newDebt
		c.UpdatedAt = now
		customer = c
		return nil
	})
	if err != nil {
		return nil, nil, storageErr("transacción", err)
	}

	uc.log.Debug().Str("customer_id", customer.ID).Str("purchase_id", purchase.ID).
		Str("total", total.String()).Str("balance", customer.TotalDebt.String()).Msg("compra registrada")
	uc.publish(ctx, EventPurchaseRecorded, customer, purchase.ID, total)
	return customer, purchase, nil
}

// RecordPayment registra un pago y lo descuenta de la deuda. No se permite pagar más que la deuda.
func (uc *LedgerUseCase) RecordPayment(ctx context.Context, customerID string, amount money.Money, occurredAt time.Time) (*entity.Customer, *entity.Payment, error) {
	if err := rules.ValidateAmount(amount); err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(customerID) == "" {
		return nil, nil, fmt.Errorf("%w: customer_id requerido", domain.ErrValidation)
	}

	now := uc.now()
	payment := &entity.Payment{
		ID:         uuid.New().String(),
		CustomerID: customerID,
		AmountPaid: amount,
		CreatedAt:  occurred(occurredAt, now),
		UpdatedAt:  now,
	}

	var customer *entity.Customer
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		c, err := lockCustomer(ctx, r, customerID)
		if err != nil {
			return err
		}
		if err := rules.CheckPayment(c.TotalDebt, amount); err != nil {
			return err
		}
		newDebt := c.TotalDebt.Sub(amount)
		if err := r.Customers.UpdateDebt(ctx, c.ID, newDebt, now); err != nil {
			return storageErr("actualizar deuda", err)
		}
		if err := r.Payments.Create(ctx, payment); err != nil {
			return storageErr("insertar pago", err)
		}
		c.TotalDebt = newDebt
		c.UpdatedAt = now
		customer = c
		return nil
	})
	if err != nil {
		return nil, nil, storageErr("transacción", err)
	}

	uc.publish(ctx, EventPaymentRecorded, customer, payment.ID, amount)
	return customer, payment, nil
}

// EditPurchase reemplaza los ítems de una compra y aplica (nuevo total − total anterior) a la deuda.
func (uc *LedgerUseCase) EditPurchase(ctx context.Context, purchaseID string, newItems []entity.PurchaseItem) (*entity.Customer, *entity.Purchase, error) {
	items, total, err := rules.ValidateItems(newItems)
	if err != nil {
		return nil, nil, err
	}

	now := uc.now()
	var (
		customer *entity.Customer
		purchase *entity.Purchase
		delta    money.Money
	)
	err = uc.txRunner.Run(ctx, func(r Repos) error {
		p, c, err := lockPurchase(ctx, r, purchaseID)
		if err != nil {
			return err
		}
		delta = total.Sub(p.PurchaseTotal)
		newDebt, err := rules.ApplyDelta(c.TotalDebt, delta, uc.cfg.AllowCredit)
		if err != nil {
			return err
		}
		if err := r.Customers.UpdateDebt(ctx, c.ID, newDebt, now); err != nil {
			return storageErr("actualizar deuda", err)
		}
		p.Items = items
		p.PurchaseTotal = total
		p.UpdatedAt = now
		if err := r.Purchases.Update(ctx, p); err != nil {
			return storageErr("actualizar compra", err)
		}
		c.TotalDebt = newDebt
		c.UpdatedAt = now
		customer, purchase = c, p
		return nil
	})
	if err != nil {
		return nil, nil, storageErr("transacción", err)
	}

	uc.publish(ctx, EventPurchaseEdited, customer, purchase.ID, delta)
	return customer, purchase, nil
}

// EditPayment cambia el monto de un pago; la deuda varía en (monto anterior − monto nuevo).
// Ej.: pago 20 → 5 con deuda 0 deja la deuda en 15.
func (uc *LedgerUseCase) EditPayment(ctx context.Context, paymentID string, newAmount money.Money) (*entity.Customer, *entity.Payment, error) {
	if err := rules.ValidateAmount(newAmount); err != nil {
		return nil, nil, err
	}

	now := uc.now()
	var (
		customer *entity.Customer
		payment  *entity.Payment
		delta    money.Money
	)
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		p, c, err := lockPayment(ctx, r, paymentID)
		if err != nil {
			return err
		}
		delta = p.AmountPaid.Sub(newAmount)
		newDebt, err := rules.ApplyDelta(c.TotalDebt, delta, uc.cfg.AllowCredit)
		if err != nil {
			return err
		}
		if err := r.Customers.UpdateDebt(ctx, c.ID, newDebt, now); err != nil {
			return storageErr("actualizar deuda", err)
		}
		p.AmountPaid = newAmount
		p.UpdatedAt = now
		if err := r.Payments.Update(ctx, p); err != nil {
			return storageErr("actualizar pago", err)
		}
		c.TotalDebt = newDebt
		c.UpdatedAt = now
		customer, payment = c, p
		return nil
	})
	if err != nil {
		return nil, nil, storageErr("transacción", err)
	}

	uc.publish(ctx, EventPaymentEdited, customer, payment.ID, delta)
	return customer, payment, nil
}

// DeletePurchase elimina una compra y resta su total de la deuda.
func (uc *LedgerUseCase) DeletePurchase(ctx context.Context, purchaseID string) (*entity.Customer, error) {
	now := uc.now()
	var (
		customer *entity.Customer
		removed  money.Money
	)
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		p, c, err := lockPurchase(ctx, r, purchaseID)
		if err != nil {
			return err
		}
		newDebt, err := rules.ApplyDelta(c.TotalDebt, p.PurchaseTotal.Neg(), uc.cfg.AllowCredit)
		if err != nil {
			return err
		}
		if err := r.Customers.UpdateDebt(ctx, c.ID, newDebt, now); err != nil {
			return storageErr("actualizar deuda", err)
		}
		if err := r.Purchases.Delete(ctx, p.ID); err != nil {
			return storageErr("eliminar compra", err)
		}
		c.TotalDebt = newDebt
		c.UpdatedAt = now
		customer, removed = c, p.PurchaseTotal
		return nil
	})
	if err != nil {
		return nil, storageErr("transacción", err)
	}

	uc.publish(ctx, EventPurchaseDeleted, customer, purchaseID, removed.Neg())
	return customer, nil
}

// DeletePayment elimina un pago y devuelve su monto a la deuda.
func (uc *LedgerUseCase) DeletePayment(ctx context.Context, paymentID string) (*entity.Customer, error) {
	now := uc.now()
	var (
		customer *entity.Customer
		restored money.Money
	)
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		p, c, err := lockPayment(ctx, r, paymentID)
		if err != nil {
			return err
		}
		newDebt, err := rules.ApplyDelta(c.TotalDebt, p.AmountPaid, uc.cfg.AllowCredit)
		if err != nil {
			return err
		}
		if err := r.Customers.UpdateDebt(ctx, c.ID, newDebt, now); err != nil {
			return storageErr("actualizar deuda", err)
		}
		if err := r.Payments.Delete(ctx, p.ID); err != nil {
			return storageErr("eliminar pago", err)
		}
		c.TotalDebt = newDebt
		c.UpdatedAt = now
		customer, restored = c, p.AmountPaid
		return nil
	})
	if err != nil {
		return nil, storageErr("transacción", err)
	}

	uc.publish(ctx, EventPaymentDeleted, customer, paymentID, restored)
	return customer, nil
}

// DeleteCustomer elimina pagos, compras y el cliente en una sola transacción.
func (uc *LedgerUseCase) DeleteCustomer(ctx context.Context, customerID string) error {
	var deleted *entity.Customer
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		c, err := lockCustomer(ctx, r, customerID)
		if err != nil {
			return err
		}
		if err := r.Payments.DeleteByCustomer(ctx, c.ID); err != nil {
			return storageErr("eliminar pagos", err)
		}
		if err := r.Purchases.DeleteByCustomer(ctx, c.ID); err != nil {
			return storageErr("eliminar compras", err)
		}
		if err := r.Customers.Delete(ctx, c.ID); err != nil {
			return storageErr("eliminar cliente", err)
		}
		deleted = c
		return nil
	})
	if err != nil {
		return storageErr("transacción", err)
	}

	uc.log.Info().Str("customer_id", customerID).Str("balance", deleted.TotalDebt.String()).Msg("cliente eliminado")
	uc.publish(ctx, EventCustomerDeleted, deleted, customerID, money.Zero)
	return nil
}

// RenameCustomer cambia el nombre (solo metadatos; no toca la deuda).
// Falla con ErrDuplicate si otro cliente ya usa ese nombre.
func (uc *LedgerUseCase) RenameCustomer(ctx context.Context, customerID, newName string) (*entity.Customer, error) {
	name := rules.CleanName(newName)
	if name == "" {
		return nil, fmt.Errorf("%w: el nombre no puede estar vacío", domain.ErrValidation)
	}
	key := rules.NormalizeName(name)

	now := uc.now()
	var customer *entity.Customer
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		c, err := lockCustomer(ctx, r, customerID)
		if err != nil {
			return err
		}
		other, err := r.Customers.GetByNameKey(ctx, key)
		if err != nil {
			return storageErr("buscar cliente por nombre", err)
		}
		if other != nil && other.ID != c.ID {
			return fmt.Errorf("%w: ya existe un cliente llamado %q", domain.ErrDuplicate, other.Name)
		}
		if err := r.Customers.UpdateName(ctx, c.ID, name, key, now); err != nil {
			return storageErr("renombrar cliente", err)
		}
		c.Name = name
		c.NameKey = key
		c.UpdatedAt = now
		customer = c
		return nil
	})
	if err != nil {
		return nil, storageErr("transacción", err)
	}

	uc.publish(ctx, EventCustomerRenamed, customer, customer.ID, money.Zero)
	return customer, nil
}

// FindCustomers búsqueda por fragmento del nombre (sin distinguir mayúsculas), ordenada por nombre.
// Una consulta vacía devuelve una lista vacía, no todos los clientes.
func (uc *LedgerUseCase) FindCustomers(ctx context.Context, query string) ([]*entity.Customer, error) {
	fragment := rules.NormalizeName(query)
	if fragment == "" {
		return []*entity.Customer{}, nil
	}
	list, err := uc.customerRepo.SearchByNameKey(ctx, fragment)
	if err != nil {
		return nil, storageErr("buscar clientes", err)
	}
	if list == nil {
		list = []*entity.Customer{}
	}
	rules.SortByName(list)
	return list, nil
}

// GetCustomer obtiene un cliente por ID.
func (uc *LedgerUseCase) GetCustomer(ctx context.Context, customerID string) (*entity.Customer, error) {
	c, err := uc.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, storageErr("obtener cliente", err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: cliente %s", domain.ErrNotFound, customerID)
	}
	return c, nil
}

// GetCustomerByName coincidencia exacta del nombre sin distinguir mayúsculas.
func (uc *LedgerUseCase) GetCustomerByName(ctx context.Context, name string) (*entity.Customer, error) {
	key := rules.NormalizeName(name)
	if key == "" {
		return nil, fmt.Errorf("%w: nombre requerido", domain.ErrValidation)
	}
	c, err := uc.customerRepo.GetByNameKey(ctx, key)
	if err != nil {
		return nil, storageErr("obtener cliente por nombre", err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: cliente %q", domain.ErrNotFound, rules.CleanName(name))
	}
	return c, nil
}

// ListCustomers lista clientes por fecha de registro descendente.
func (uc *LedgerUseCase) ListCustomers(ctx context.Context, limit, offset int) ([]*entity.Customer, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.customerRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, storageErr("listar clientes", err)
	}
	if list == nil {
		list = []*entity.Customer{}
	}
	return list, nil
}

// GetHistory cliente con compras y pagos (más recientes primero).
func (uc *LedgerUseCase) GetHistory(ctx context.Context, customerID string) (*CustomerHistory, error) {
	c, err := uc.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	purchases, err := uc.purchaseRepo.ListByCustomer(ctx, c.ID)
	if err != nil {
		return nil, storageErr("listar compras", err)
	}
	payments, err := uc.paymentRepo.ListByCustomer(ctx, c.ID)
	if err != nil {
		return nil, storageErr("listar pagos", err)
	}
	return &CustomerHistory{Customer: c, Purchases: purchases, Payments: payments}, nil
}

// VerifyBalance compara total_debt con Σ compras − Σ pagos.
// Si no coinciden devuelve el detalle junto con un error ErrInconsistentState.
func (uc *LedgerUseCase) VerifyBalance(ctx context.Context, customerID string) (*BalanceCheck, error) {
	h, err := uc.GetHistory(ctx, customerID)
	if err != nil {
		return nil, err
	}
	check := &BalanceCheck{
		Customer: h.Customer,
		Cached:   h.Customer.TotalDebt,
		Expected: rules.ExpectedBalance(h.Purchases, h.Payments),
	}
	check.Consistent = check.Cached.Equal(check.Expected)
	if !check.Consistent {
		return check, fmt.Errorf("%w: cliente %s tiene %s, movimientos suman %s",
			domain.ErrInconsistentState, customerID, check.Cached, check.Expected)
	}
	return check, nil
}

// ReconcileBalance reescribe total_debt con el saldo recalculado desde los movimientos.
// Sirve para reparar clientes dañados por escrituras no atómicas del sistema anterior.
func (uc *LedgerUseCase) ReconcileBalance(ctx context.Context, customerID string) (*BalanceCheck, error) {
	now := uc.now()
	var check *BalanceCheck
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		c, err := lockCustomer(ctx, r, customerID)
		if err != nil {
			return err
		}
		purchases, err := r.Purchases.ListByCustomer(ctx, c.ID)
		if err != nil {
			return storageErr("listar compras", err)
		}
		payments, err := r.Payments.ListByCustomer(ctx, c.ID)
		if err != nil {
			return storageErr("listar pagos", err)
		}
		expected := rules.ExpectedBalance(purchases, payments)
		check = &BalanceCheck{Customer: c, Cached: c.TotalDebt, Expected: expected, Consistent: c.TotalDebt.Equal(expected)}
		if check.Consistent {
			return nil
		}
		if err := r.Customers.UpdateDebt(ctx, c.ID, expected, now); err != nil {
			return storageErr("actualizar deuda", err)
		}
		c.TotalDebt = expected
		c.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, storageErr("transacción", err)
	}
	if !check.Consistent {
		uc.log.Warn().Str("customer_id", customerID).
			Str("cached", check.Cached.String()).Str("expected", check.Expected.String()).
			Msg("saldo reconciliado")
		uc.publish(ctx, EventBalanceReconciled, check.Customer, customerID, check.Expected.Sub(check.Cached))
	}
	return check, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

// resolveCustomer bloquea el cliente por ID, o lo busca por nombre y lo crea si no existe.
// Si otra transacción crea el mismo nombre entre la búsqueda y el INSERT, Create devuelve
// ErrDuplicate y se vuelve a buscar una vez.
func (uc *LedgerUseCase) resolveCustomer(ctx context.Context, r Repos, customerID, name string, at time.Time) (*entity.Customer, error) {
	if customerID != "" {
		return lockCustomer(ctx, r, customerID)
	}
	key := rules.NormalizeName(name)
	existing, err := r.Customers.GetByNameKey(ctx, key)
	if err != nil {
		return nil, storageErr("buscar cliente por nombre", err)
	}
	if existing != nil {
		return lockCustomer(ctx, r, existing.ID)
	}
	c, err := uc.createCustomer(ctx, r, name, key, at)
	if !errors.Is(err, domain.ErrDuplicate) {
		return c, err
	}
	existing, err = r.Customers.GetByNameKey(ctx, key)
	if err != nil {
		return nil, storageErr("buscar cliente por nombre", err)
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: cliente %q", domain.ErrDuplicate, name)
	}
	return lockCustomer(ctx, r, existing.ID)
}

func (uc *LedgerUseCase) createCustomer(ctx context.Context, r Repos, name, key string, at time.Time) (*entity.Customer, error) {
	c := &entity.Customer{
		ID:        uuid.New().String(),
		Name:      name,
		NameKey:   key,
		TotalDebt: money.Zero,
		CreatedAt: at,
		UpdatedAt: at,
	}
	if err := r.Customers.Create(ctx, c); err != nil {
		return nil, storageErr("crear cliente", err)
	}
	uc.log.Info().Str("customer_id", c.ID).Str("name", c.Name).Msg("cliente creado")
	return c, nil
}

// lockCustomer SELECT FOR UPDATE del cliente; ErrNotFound si no existe.
func lockCustomer(ctx context.Context, r Repos, customerID string) (*entity.Customer, error) {
	c, err := r.Customers.GetForUpdate(ctx, customerID)
	if err != nil {
		return nil, storageErr("bloquear cliente", err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: cliente %s", domain.ErrNotFound, customerID)
	}
	return c, nil
}

// lockPurchase bloquea al dueño de la compra y vuelve a leer la compra ya con el bloqueo tomado.
func lockPurchase(ctx context.Context, r Repos, purchaseID string) (*entity.Purchase, *entity.Customer, error) {
	p, err := r.Purchases.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, nil, storageErr("obtener compra", err)
	}
	if p == nil {
		return nil, nil, fmt.Errorf("%w: compra %s", domain.ErrNotFound, purchaseID)
	}
	c, err := lockCustomer(ctx, r, p.CustomerID)
	if err != nil {
		return nil, nil, err
	}
	p, err = r.Purchases.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, nil, storageErr("obtener compra", err)
	}
	if p == nil || p.CustomerID != c.ID {
		return nil, nil, fmt.Errorf("%w: compra %s", domain.ErrNotFound, purchaseID)
	}
	return p, c, nil
}

// lockPayment igual que lockPurchase para pagos.
func lockPayment(ctx context.Context, r Repos, paymentID string) (*entity.Payment, *entity.Customer, error) {
	p, err := r.Payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, nil, storageErr("obtener pago", err)
	}
	if p == nil {
		return nil, nil, fmt.Errorf("%w: pago %s", domain.ErrNotFound, paymentID)
	}
	c, err := lockCustomer(ctx, r, p.CustomerID)
	if err != nil {
		return nil, nil, err
	}
	p, err = r.Payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, nil, storageErr("obtener pago", err)
	}
	if p == nil || p.CustomerID != c.ID {
		return nil, nil, fmt.Errorf("%w: pago %s", domain.ErrNotFound, paymentID)
	}
	return p, c, nil
}

// publish envía el evento; una falla solo se registra, la operación ya está confirmada.
func (uc *LedgerUseCase) publish(ctx context.Context, typ string, c *entity.Customer, entityID string, amount money.Money) {
	if uc.cfg.Events == nil {
		return
	}
	ev := LedgerEvent{
		Type:       typ,
		CustomerID: c.ID,
		EntityID:   entityID,
		Amount:     amount,
		Balance:    c.TotalDebt,
		OccurredAt: uc.now(),
	}
	if err := uc.cfg.Events.Publish(ctx, ev); err != nil {
		uc.log.Warn().Err(err).Str("event", typ).Str("customer_id", c.ID).Msg("no se pudo publicar el evento")
	}
}

// storageErr deja pasar errores de dominio y envuelve el resto como StorageError.
func storageErr(op string, err error) error {
	if err == nil || domain.IsDomain(err) {
		return err
	}
	return &domain.StorageError{Op: op, Err: err}
}

func occurred(at, now time.Time) time.Time {
	if at.IsZero() {
		return now
	}
	return at
}
