package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Fiado-api/internal/application/ledger"
	"github.com/jhoicas/Fiado-api/internal/domain"
	"github.com/jhoicas/Fiado-api/internal/domain/entity"
	"github.com/jhoicas/Fiado-api/internal/domain/money"
	"github.com/jhoicas/Fiado-api/internal/infrastructure/sqlite"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "data", "fiado.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newLedger(store *sqlite.Store) *ledger.LedgerUseCase {
	var mu sync.Mutex
	now := time.Date(2024, 2, 20, 10, 0, 0, 0, time.UTC)
	return ledger.NewLedgerUseCase(store, store.Customers(), store.Purchases(), store.Payments(), ledger.Config{
		Logger: zerolog.Nop(),
		Now: func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			now = now.Add(time.Second)
			return now
		},
	})
}

func items(pairs ...string) []entity.PurchaseItem {
	out := make([]entity.PurchaseItem, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, entity.PurchaseItem{Name: pairs[i], Price: money.MustParse(pairs[i+1])})
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios
// ──────────────────────────────────────────────────────────────────────────────

func TestCustomerRepo_GetInexistenteDevuelveNil(t *testing.T) {
	store := openStore(t)

	c, err := store.Customers().GetByID(context.Background(), "no-existe")
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = store.Customers().GetByNameKey(context.Background(), "nadie")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestCustomerRepo_NameKeyDuplicado(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.Customers().Create(ctx, &entity.Customer{ID: "c1", Name: "Ali", NameKey: "ali", CreatedAt: now, UpdatedAt: now}))
	err := store.Customers().Create(ctx, &entity.Customer{ID: "c2", Name: "ALI", NameKey: "ali", CreatedAt: now, UpdatedAt: now})

	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCustomerRepo_UpdateDebtInexistente(t *testing.T) {
	store := openStore(t)

	err := store.Customers().UpdateDebt(context.Background(), "no-existe", money.MustParse("1"), time.Now())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPurchaseRepo_ConservaItemsYMontos(t *testing.T) {
	store := openStore(t)
	uc := newLedger(store)
	ctx := context.Background()

	_, p, err := uc.RecordPurchase(ctx, ledger.RecordPurchaseInput{CustomerName: "Ali", Items: items("خبز", "1.10", "حليب", "14.00")})
	require.NoError(t, err)

	got, err := store.Purchases().GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "15.10", got.PurchaseTotal.String())
	require.Len(t, got.Items, 2)
	assert.Equal(t, "خبز", got.Items[0].Name)
	assert.Equal(t, "1.10", got.Items[0].Price.String())
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt))
}

// ──────────────────────────────────────────────────────────────────────────────
// Libro completo sobre SQLite
// ──────────────────────────────────────────────────────────────────────────────

func TestLedger_FlujoCompletoSobreSQLite(t *testing.T) {
	store := openStore(t)
	uc := newLedger(store)
	ctx := context.Background()

	c, _, err := uc.RecordPurchase(ctx, ledger.RecordPurchaseInput{CustomerName: "Ali", Items: items("A", "10", "B", "5")})
	require.NoError(t, err)
	assert.Equal(t, "15.00", c.TotalDebt.String())

	_, pay, err := uc.RecordPayment(ctx, c.ID, money.MustParse("20"), time.Time{})
	require.ErrorIs(t, err, domain.ErrInsufficientDebt)
	assert.Nil(t, pay)

	c, pay, err = uc.RecordPayment(ctx, c.ID, money.MustParse("15"), time.Time{})
	require.NoError(t, err)
	assert.True(t, c.TotalDebt.IsZero())

	c, err = uc.DeletePayment(ctx, pay.ID)
	require.NoError(t, err)
	assert.Equal(t, "15.00", c.TotalDebt.String())

	check, err := uc.VerifyBalance(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, check.Consistent)

	h, err := uc.GetHistory(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, h.Purchases, 1)
	assert.Empty(t, h.Payments)
}

func TestLedger_BuscarYBorrarClienteEnCascada(t *testing.T) {
	store := openStore(t)
	uc := newLedger(store)
	ctx := context.Background()

	for _, name := range []string{"Khalid Ali", "alice", "Bob"} {
		_, _, err := uc.RecordPurchase(ctx, ledger.RecordPurchaseInput{CustomerName: name, Items: items("x", "2")})
		require.NoError(t, err)
	}

	found, err := uc.FindCustomers(ctx, "ALI")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "alice", found[0].Name)
	assert.Equal(t, "Khalid Ali", found[1].Name)

	require.NoError(t, uc.DeleteCustomer(ctx, found[0].ID))

	purchases, err := store.Purchases().ListByCustomer(ctx, found[0].ID)
	require.NoError(t, err)
	assert.Empty(t, purchases)

	list, err := uc.ListCustomers(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Bob", list[0].Name, "más reciente primero")
}

func TestLedger_ErrorEnTransaccionNoDejaEscriturasParciales(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.Run(ctx, func(r ledger.Repos) error {
		now := time.Now().UTC()
		if err := r.Customers.Create(ctx, &entity.Customer{ID: "c1", Name: "Ali", NameKey: "ali", CreatedAt: now, UpdatedAt: now}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	c, err := store.Customers().GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestReportRepo_TotalesEnCentavos(t *testing.T) {
	store := openStore(t)
	uc := newLedger(store)
	ctx := context.Background()

	a, _, err := uc.RecordPurchase(ctx, ledger.RecordPurchaseInput{CustomerName: "Ali", Items: items("A", "0.10", "B", "0.20")})
	require.NoError(t, err)
	_, _, err = uc.RecordPurchase(ctx, ledger.RecordPurchaseInput{CustomerName: "Sara", Items: items("C", "9.70")})
	require.NoError(t, err)
	_, _, err = uc.RecordPayment(ctx, a.ID, money.MustParse("0.30"), time.Time{})
	require.NoError(t, err)

	totals, err := store.Reports().Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, totals.CustomerCount)
	assert.Equal(t, "9.70", totals.TotalDebt.String())
	assert.Equal(t, "10.00", totals.TotalPurchases.String())
	assert.Equal(t, "0.30", totals.TotalPayments.String())

	rows, err := store.Reports().CustomerSummaries(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Sara", rows[0].Customer.Name)
	assert.Equal(t, 0, rows[0].PaymentCount)
	assert.Nil(t, rows[0].LastPayment)
	assert.Equal(t, 1, rows[1].PaymentCount)
	assert.Equal(t, "0.30", rows[1].TotalPayments.String())
}

func TestReportRepo_UltimoPagoYPaginacion(t *testing.T) {
	store := openStore(t)
	uc := newLedger(store)
	ctx := context.Background()
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	a, _, err := uc.RecordPurchase(ctx, ledger.RecordPurchaseInput{CustomerName: "Ali", Items: items("A", "20"), OccurredAt: day})
	require.NoError(t, err)
	_, _, err = uc.RecordPurchase(ctx, ledger.RecordPurchaseInput{CustomerName: "Sara", Items: items("B", "1"), OccurredAt: day.Add(time.Hour)})
	require.NoError(t, err)
	_, _, err = uc.RecordPayment(ctx, a.ID, money.MustParse("3"), day.Add(48*time.Hour))
	require.NoError(t, err)
	_, last, err := uc.RecordPayment(ctx, a.ID, money.MustParse("7.50"), day.Add(72*time.Hour))
	require.NoError(t, err)

	page, err := store.Reports().CustomerSummaries(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	got := page[0]
	assert.Equal(t, "Ali", got.Customer.Name)
	assert.Equal(t, 2, got.PaymentCount)
	assert.Equal(t, "10.50", got.TotalPayments.String())
	require.NotNil(t, got.LastPayment)
	assert.Equal(t, last.ID, got.LastPayment.ID)
	assert.Equal(t, "7.50", got.LastPayment.AmountPaid.String())
	assert.True(t, got.LastPayment.CreatedAt.Equal(day.Add(72*time.Hour)))
}
