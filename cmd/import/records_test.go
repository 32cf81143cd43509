package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/Fiado-api/internal/application/ledger"
	"github.com/jhoicas/Fiado-api/internal/infrastructure/memory"
)

const sample = `type,customer,date,amount,items
payment,Ali,2024-01-05,4,
purchase,Ali,2024-01-02,,"A:10|B:5"
purchase,Sara,2024-01-03 10:30:00,7.25,
`

func TestReadRecords_OrdenaPorFechaYArmaItems(t *testing.T) {
	recs, err := readRecords(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, kindPurchase, recs[0].Kind)
	assert.Equal(t, "Ali", recs[0].Customer)
	require.Len(t, recs[0].Items, 2)
	assert.Equal(t, "5.00", recs[0].Items[1].Price.String())

	assert.Equal(t, "Sara", recs[1].Customer)
	require.Len(t, recs[1].Items, 1)
	assert.Equal(t, "7.25", recs[1].Items[0].Price.String())

	assert.Equal(t, kindPayment, recs[2].Kind)
	assert.Equal(t, "4.00", recs[2].Amount.String())
}

func TestReadRecords_ReportaTodasLasFilasMalas(t *testing.T) {
	in := `type,customer,date,amount,items
refund,Ali,2024-01-01,1,
purchase,,2024-01-01,1,
payment,Ali,ayer,1,
purchase,Ali,2024-01-01,,"A-sin-precio"
`
	_, err := readRecords(strings.NewReader(in))
	require.Error(t, err)
	for _, line := range []string{"línea 2", "línea 3", "línea 4", "línea 5"} {
		assert.Contains(t, err.Error(), line)
	}
}

func TestReadRecords_FaltaColumna(t *testing.T) {
	_, err := readRecords(strings.NewReader("type,customer,date\n"))

	assert.ErrorContains(t, err, `"amount"`)
}

func TestDecodeInput_Windows1256(t *testing.T) {
	encoded, err := charmap.Windows1256.NewEncoder().String("type,customer,date,amount,items\npurchase,محمد,2024-01-01,3,\n")
	require.NoError(t, err)

	r, err := decodeInput(strings.NewReader(encoded), "windows-1256")
	require.NoError(t, err)
	recs, err := readRecords(r)
	require.NoError(t, err)

	require.Len(t, recs, 1)
	assert.Equal(t, "محمد", recs[0].Customer)
}

func TestDecodeInput_QuitaBOM(t *testing.T) {
	r, err := decodeInput(bytes.NewReader(append([]byte("\xef\xbb\xbf"), "x"...)), "")
	require.NoError(t, err)

	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "x", string(b))
}

func TestReplay_SaldosConsistentes(t *testing.T) {
	store := memory.NewStore()
	uc := ledger.NewLedgerUseCase(store, store.Customers(), store.Purchases(), store.Payments(), ledger.Config{Logger: zerolog.Nop()})
	recs, err := readRecords(strings.NewReader(sample + "payment,Nadie,2024-02-01,1,\n"))
	require.NoError(t, err)

	s := replay(context.Background(), uc, recs, zerolog.Nop())

	assert.Equal(t, summary{Purchases: 2, Payments: 1, Failed: 1}, s)
	ali, err := uc.GetCustomerByName(context.Background(), "ali")
	require.NoError(t, err)
	assert.Equal(t, "11.00", ali.TotalDebt.String())
	assert.Equal(t, 2024, ali.CreatedAt.Year(), "conserva la fecha original")
	check, err := uc.VerifyBalance(context.Background(), ali.ID)
	require.NoError(t, err)
	assert.True(t, check.Consistent)
}
