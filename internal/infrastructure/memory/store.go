// Package memory implementa los repositorios del libro en memoria.
// Se usa en tests y con DB_DRIVER=memory para demos sin base de datos.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/Fiado-api/internal/application/ledger"
	"github.com/jhoicas/Fiado-api/internal/domain/entity"
)

// state datos de la tienda. Los valores se guardan como copias propias (Clone).
type state struct {
	customers map[string]*entity.Customer
	purchases map[string]*entity.Purchase
	payments  map[string]*entity.Payment
}

func newState() *state {
	return &state{
		customers: make(map[string]*entity.Customer),
		purchases: make(map[string]*entity.Purchase),
		payments:  make(map[string]*entity.Payment),
	}
}

func (s *state) clone() *state {
	out := newState()
	for id, c := range s.customers {
		out.customers[id] = c.Clone()
	}
	for id, p := range s.purchases {
		out.purchases[id] = p.Clone()
	}
	for id, p := range s.payments {
		out.payments[id] = p.Clone()
	}
	return out
}

// Store almacén en memoria con transacciones por copia: Run trabaja sobre una copia del
// estado confirmado y la publica solo si fn termina sin error.
type Store struct {
	txMu sync.Mutex // una transacción a la vez (equivale al bloqueo por fila de Postgres)

	mu        sync.RWMutex
	committed *state
	faults    map[string]error
}

var _ ledger.TxRunner = (*Store)(nil)

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{committed: newState(), faults: make(map[string]error)}
}

// FailOn hace que la operación op (p. ej. "purchases.Create") devuelva err.
// err nil quita la falla. Solo para tests de rollback.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

func (s *Store) fault(op string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err, ok := s.faults[op]; ok {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Run ejecuta fn con repos atados a una copia del estado; confirma o descarta al terminar.
func (s *Store) Run(ctx context.Context, fn func(repos ledger.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	work := s.committed.clone()
	s.mu.RUnlock()

	v := &view{store: s, tx: work}
	if err := fn(ledger.Repos{
		Customers: &CustomerRepo{v: v},
		Purchases: &PurchaseRepo{v: v},
		Payments:  &PaymentRepo{v: v},
	}); err != nil {
		return err
	}
	if err := s.fault("commit"); err != nil {
		return err
	}

	s.mu.Lock()
	s.committed = work
	s.mu.Unlock()
	return nil
}

// Customers repositorio de clientes fuera de transacción.
func (s *Store) Customers() *CustomerRepo { return &CustomerRepo{v: &view{store: s}} }

// Purchases repositorio de compras fuera de transacción.
func (s *Store) Purchases() *PurchaseRepo { return &PurchaseRepo{v: &view{store: s}} }

// Payments repositorio de pagos fuera de transacción.
func (s *Store) Payments() *PaymentRepo { return &PaymentRepo{v: &view{store: s}} }

// Reports repositorio de reportes.
func (s *Store) Reports() *ReportRepo { return &ReportRepo{v: &view{store: s}} }

// view resuelve sobre qué estado opera un repo: la copia de la tx o el estado confirmado.
type view struct {
	store *Store
	tx    *state
}

func (v *view) read(op string, fn func(st *state) error) error {
	if err := v.store.fault(op); err != nil {
		return err
	}
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	return fn(v.store.committed)
}

func (v *view) write(op string, fn func(st *state) error) error {
	if err := v.store.fault(op); err != nil {
		return err
	}
	if v.tx != nil {
		return fn(v.tx)
	}
	// Fuera de Run también se espera a la transacción en curso, que reemplazaría el estado.
	v.store.txMu.Lock()
	defer v.store.txMu.Unlock()
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.committed)
}
