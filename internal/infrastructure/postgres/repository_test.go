package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Fiado-api/internal/application/ledger"
	"github.com/jhoicas/Fiado-api/internal/domain"
	"github.com/jhoicas/Fiado-api/internal/domain/entity"
	"github.com/jhoicas/Fiado-api/internal/domain/money"
	"github.com/jhoicas/Fiado-api/pkg/config"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("timeout")))
}

func TestToMoney_RechazaTresDecimales(t *testing.T) {
	m, err := toMoney(decimal.RequireFromString("12.50"), "x")
	require.NoError(t, err)
	assert.Equal(t, "12.50", m.String())

	_, err = toMoney(decimal.RequireFromString("1.005"), "x")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ──────────────────────────────────────────────────────────────────────────────
// Integración: requiere FIADO_TEST_DATABASE_URL (se omite si no está definida)
// ──────────────────────────────────────────────────────────────────────────────

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("FIADO_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("FIADO_TEST_DATABASE_URL no definida")
	}
	ctx := context.Background()
	pool, err := NewPool(ctx, config.DBConfig{DatabaseURL: url, AutoMigrate: true})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	_, err = pool.Exec(ctx, `TRUNCATE payments, purchases, customers`)
	require.NoError(t, err)
	return pool
}

func TestPostgres_LedgerCompleto(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	uc := ledger.NewLedgerUseCase(NewTxRunner(pool), NewCustomerRepository(pool), NewPurchaseRepository(pool),
		NewPaymentRepository(pool), ledger.Config{Logger: zerolog.Nop()})

	c, p, err := uc.RecordPurchase(ctx, ledger.RecordPurchaseInput{
		CustomerName: "Ali",
		Items: []entity.PurchaseItem{
			{Name: "A", Price: money.MustParse("10")},
			{Name: "B", Price: money.MustParse("5")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "15.00", c.TotalDebt.String())

	same, _, err := uc.RecordPurchase(ctx, ledger.RecordPurchaseInput{
		CustomerName: "ali", Items: []entity.PurchaseItem{{Name: "C", Price: money.MustParse("0.10")}},
	})
	require.NoError(t, err)
	assert.Equal(t, c.ID, same.ID)
	assert.Equal(t, "15.10", same.TotalDebt.String())

	_, _, err = uc.RecordPayment(ctx, c.ID, money.MustParse("20"), time.Time{})
	assert.ErrorIs(t, err, domain.ErrInsufficientDebt)

	_, pay, err := uc.RecordPayment(ctx, c.ID, money.MustParse("15.10"), time.Time{})
	require.NoError(t, err)

	got, _, err := uc.EditPayment(ctx, pay.ID, money.MustParse("5"))
	require.NoError(t, err)
	assert.Equal(t, "10.10", got.TotalDebt.String())

	h, err := uc.GetHistory(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, h.Purchases, 2)
	assert.Equal(t, p.Items, h.Purchases[1].Items)

	check, err := uc.VerifyBalance(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, check.Consistent)

	totals, err := NewReportRepository(pool).Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, totals.CustomerCount)
	assert.Equal(t, "15.10", totals.TotalPurchases.String())

	require.NoError(t, uc.DeleteCustomer(ctx, c.ID))
	_, err = uc.GetCustomer(ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostgres_NombreUnico(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewCustomerRepository(pool)
	now := time.Now()

	require.NoError(t, repo.Create(ctx, &entity.Customer{ID: uuid.NewString(), Name: "Ali", NameKey: "ali", CreatedAt: now, UpdatedAt: now}))
	err := repo.Create(ctx, &entity.Customer{ID: uuid.NewString(), Name: "ALI", NameKey: "ali", CreatedAt: now, UpdatedAt: now})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

// Primeras compras simultáneas de un nombre nuevo: una crea el cliente, las demás lo reutilizan.
func TestPostgres_PrimerasComprasConcurrentesMismoNombre(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	uc := ledger.NewLedgerUseCase(NewTxRunner(pool), NewCustomerRepository(pool), NewPurchaseRepository(pool),
		NewPaymentRepository(pool), ledger.Config{Logger: zerolog.Nop()})

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = uc.RecordPurchase(ctx, ledger.RecordPurchaseInput{
				CustomerName: "Nuevo", Items: []entity.PurchaseItem{{Name: "A", Price: money.MustParse("1")}},
			})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	c, err := uc.GetCustomerByName(ctx, "nuevo")
	require.NoError(t, err)
	assert.Equal(t, "8.00", c.TotalDebt.String())
}

// El máximo del libro cabe en NUMERIC(14,2); un centavo más se rechaza antes de llegar a la BD.
func TestPostgres_MontoMaximo(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	uc := ledger.NewLedgerUseCase(NewTxRunner(pool), NewCustomerRepository(pool), NewPurchaseRepository(pool),
		NewPaymentRepository(pool), ledger.Config{Logger: zerolog.Nop()})

	c, _, err := uc.RecordPurchase(ctx, ledger.RecordPurchaseInput{
		CustomerName: "Grande", Items: []entity.PurchaseItem{{Name: "A", Price: money.Max}},
	})
	require.NoError(t, err)
	assert.True(t, c.TotalDebt.Equal(money.Max))

	_, _, err = uc.RecordPurchase(ctx, ledger.RecordPurchaseInput{
		CustomerID: c.ID, Items: []entity.PurchaseItem{{Name: "B", Price: money.MustParse("0.01")}},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
	var se *domain.StorageError
	assert.False(t, errors.As(err, &se))
}
