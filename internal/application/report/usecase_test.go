package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Fiado-api/internal/application/ledger"
	"github.com/jhoicas/Fiado-api/internal/application/report"
	"github.com/jhoicas/Fiado-api/internal/domain"
	"github.com/jhoicas/Fiado-api/internal/domain/entity"
	"github.com/jhoicas/Fiado-api/internal/domain/money"
	"github.com/jhoicas/Fiado-api/internal/infrastructure/memory"
)

type captureSheet struct{ got report.Sheet }

func (c *captureSheet) Write(_ context.Context, s report.Sheet) ([]byte, error) {
	c.got = s
	return []byte("xlsx"), nil
}

type capturePDF struct{ got *report.Statement }

func (c *capturePDF) GenerateStatementPDF(_ context.Context, st *report.Statement) ([]byte, error) {
	c.got = st
	return []byte("%PDF"), nil
}

func setup(t *testing.T) (*ledger.LedgerUseCase, *report.ReportUseCase, *captureSheet, *capturePDF) {
	t.Helper()
	store := memory.NewStore()
	lg := ledger.NewLedgerUseCase(store, store.Customers(), store.Purchases(), store.Payments(), ledger.Config{Logger: zerolog.Nop()})
	sheets := &captureSheet{}
	pdf := &capturePDF{}
	rep := report.NewReportUseCase(store.Reports(), store.Customers(), store.Purchases(), store.Payments(), sheets, pdf).
		WithClock(func() time.Time { return time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC) })
	return lg, rep, sheets, pdf
}

func purchase(t *testing.T, lg *ledger.LedgerUseCase, name, price string, at time.Time) *entity.Customer {
	t.Helper()
	c, _, err := lg.RecordPurchase(context.Background(), ledger.RecordPurchaseInput{
		CustomerName: name,
		Items:        []entity.PurchaseItem{{Name: "item", Price: money.MustParse(price)}},
		OccurredAt:   at,
	})
	require.NoError(t, err)
	return c
}

func TestDashboard_Totales(t *testing.T) {
	lg, rep, _, _ := setup(t)
	ctx := context.Background()
	ali := purchase(t, lg, "Ali", "15", time.Time{})
	purchase(t, lg, "Omar", "4.50", time.Time{})
	_, _, err := lg.RecordPayment(ctx, ali.ID, money.MustParse("5"), time.Time{})
	require.NoError(t, err)

	d, err := rep.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, d.CustomerCount)
	assert.Equal(t, "14.50", d.TotalDebt.String())
	assert.Equal(t, "19.50", d.TotalPurchases.String())
	assert.Equal(t, "5.00", d.TotalPayments.String())
}

func TestExportCustomers_FilasYNombreDeArchivo(t *testing.T) {
	lg, rep, sheets, _ := setup(t)
	ctx := context.Background()
	ali := purchase(t, lg, "Ali", "15", time.Date(2024, 1, 7, 10, 0, 0, 0, time.UTC))
	purchase(t, lg, "Omar", "4.5", time.Date(2024, 2, 20, 10, 0, 0, 0, time.UTC))
	_, _, err := lg.RecordPayment(ctx, ali.ID, money.MustParse("5"), time.Time{})
	require.NoError(t, err)
	_, _, err = lg.RecordPayment(ctx, ali.ID, money.MustParse("2.25"), time.Time{})
	require.NoError(t, err)

	data, filename, err := rep.ExportCustomers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("xlsx"), data)
	assert.Equal(t, "عملاء_2024-03-05.xlsx", filename)

	s := sheets.got
	assert.Equal(t, "العملاء", s.Name)
	assert.Len(t, s.Headers, 5)
	require.Len(t, s.Rows, 2)
	assert.Equal(t, []any{"Omar", "4.50", 0, "0.00", "20 فبراير 2024"}, s.Rows[0], "más reciente primero")
	assert.Equal(t, []any{"Ali", "7.75", 2, "7.25", "7 يناير 2024"}, s.Rows[1])
}

func TestCustomerOverview_UltimoPagoYPaginacion(t *testing.T) {
	lg, rep, _, _ := setup(t)
	ctx := context.Background()
	ali := purchase(t, lg, "Ali", "15", time.Date(2024, 1, 7, 10, 0, 0, 0, time.UTC))
	purchase(t, lg, "Omar", "4.5", time.Date(2024, 2, 20, 10, 0, 0, 0, time.UTC))
	_, _, err := lg.RecordPayment(ctx, ali.ID, money.MustParse("5"), time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, last, err := lg.RecordPayment(ctx, ali.ID, money.MustParse("2.25"), time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	rows, err := rep.CustomerOverview(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Omar", rows[0].Name)
	assert.Equal(t, 0, rows[0].PaymentCount)
	assert.Nil(t, rows[0].LastPayment)

	assert.Equal(t, 2, rows[1].PaymentCount)
	assert.Equal(t, "7.25", rows[1].TotalPayments.String())
	require.NotNil(t, rows[1].LastPayment)
	assert.Equal(t, last.ID, rows[1].LastPayment.ID)
	assert.Equal(t, "2.25", rows[1].LastPayment.AmountPaid.String())

	page, err := rep.CustomerOverview(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Ali", page[0].Name)

	empty, err := rep.CustomerOverview(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCustomerStatement(t *testing.T) {
	lg, rep, _, pdf := setup(t)
	ctx := context.Background()
	ali := purchase(t, lg, "Ali", "15", time.Time{})
	purchase(t, lg, "Ali", "5", time.Time{})
	_, _, err := lg.RecordPayment(ctx, ali.ID, money.MustParse("8"), time.Time{})
	require.NoError(t, err)

	data, filename, err := rep.CustomerStatement(ctx, ali.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), data)
	assert.Equal(t, "estado_cuenta_"+ali.ID+".pdf", filename)
	require.NotNil(t, pdf.got)
	assert.Len(t, pdf.got.Purchases, 2)
	assert.Len(t, pdf.got.Payments, 1)
	assert.Equal(t, "20.00", pdf.got.TotalPurchases.String())
	assert.Equal(t, "8.00", pdf.got.TotalPayments.String())
	assert.Equal(t, "12.00", pdf.got.Customer.TotalDebt.String())

	_, _, err = rep.CustomerStatement(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
