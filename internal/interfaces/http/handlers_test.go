package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Fiado-api/internal/application/dto"
	"github.com/jhoicas/Fiado-api/internal/application/ledger"
	"github.com/jhoicas/Fiado-api/internal/application/report"
	"github.com/jhoicas/Fiado-api/internal/domain/money"
	"github.com/jhoicas/Fiado-api/internal/infrastructure/excel"
	"github.com/jhoicas/Fiado-api/internal/infrastructure/memory"
	"github.com/jhoicas/Fiado-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/Fiado-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type testServer struct {
	app   *fiber.App
	store *memory.Store
}

// newTestServer arma la app completa sobre el almacén en memoria.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	ledgerUC := ledger.NewLedgerUseCase(store, store.Customers(), store.Purchases(), store.Payments(), ledger.Config{
		Logger: zerolog.Nop(),
	})
	reportUC := report.NewReportUseCase(store.Reports(), store.Customers(), store.Purchases(), store.Payments(),
		excel.NewWriter(true), pdf.NewMarotoPDFGenerator("Tienda"))

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	apphttp.Router(app, apphttp.RouterDeps{
		LedgerUC: ledgerUC,
		ReportUC: reportUC,
		Logger:   zerolog.Nop(),
		Metrics:  apphttp.NewMetrics(),
	})
	return &testServer{app: app, store: store}
}

func (s *testServer) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (s *testServer) buy(t *testing.T, body string) dto.PurchaseResult {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/purchases", body)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	return decode[dto.PurchaseResult](t, resp)
}

// ──────────────────────────────────────────────────────────────────────────────
// Compras y pagos
// ──────────────────────────────────────────────────────────────────────────────

func TestPurchases_CreaClientePorNombre(t *testing.T) {
	s := newTestServer(t)

	out := s.buy(t, `{"customer_name":"Ali","items":[{"name":"A","price":"10"},{"name":"B","price":5}]}`)

	assert.Equal(t, "Ali", out.Customer.Name)
	assert.Equal(t, "15.00", out.Customer.TotalDebt.String())
	assert.Equal(t, "15.00", out.Purchase.PurchaseTotal.String())
	assert.Len(t, out.Purchase.Items, 2)
}

func TestPurchases_Validacion(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"sin ítems", `{"customer_name":"Ali","items":[]}`},
		{"sin cliente", `{"items":[{"name":"A","price":"1"}]}`},
		{"precio negativo", `{"customer_name":"Ali","items":[{"name":"A","price":"-1"}]}`},
		{"tres decimales", `{"customer_name":"Ali","items":[{"name":"A","price":"1.005"}]}`},
		{"precio sobre el máximo", `{"customer_name":"Ali","items":[{"name":"A","price":"1000000000000"}]}`},
		{"json roto", `{"customer_name":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := s.do(t, http.MethodPost, "/api/purchases", tc.body)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, apphttp.CodeValidation, decode[dto.ErrorResponse](t, resp).Code)
		})
	}
}

func TestPayments_PagoMayorALaDeudaEs409(t *testing.T) {
	s := newTestServer(t)
	out := s.buy(t, `{"customer_name":"Ali","items":[{"name":"A","price":"10"}]}`)

	resp := s.do(t, http.MethodPost, "/api/payments", `{"customer_id":"`+out.Customer.ID+`","amount":"10.01"}`)

	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, apphttp.CodeInsufficientDebt, decode[dto.ErrorResponse](t, resp).Code)
}

func TestPayments_RegistrarEditarYBorrar(t *testing.T) {
	s := newTestServer(t)
	out := s.buy(t, `{"customer_name":"Ali","items":[{"name":"A","price":"20"}]}`)

	resp := s.do(t, http.MethodPost, "/api/payments", `{"customer_id":"`+out.Customer.ID+`","amount":"20"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	paid := decode[dto.PaymentResult](t, resp)
	assert.True(t, paid.Customer.TotalDebt.IsZero())

	resp = s.do(t, http.MethodPut, "/api/payments/"+paid.Payment.ID, `{"amount":"5"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	edited := decode[dto.PaymentResult](t, resp)
	assert.Equal(t, "15.00", edited.Customer.TotalDebt.String())

	resp = s.do(t, http.MethodDelete, "/api/payments/"+paid.Payment.ID, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "20.00", decode[dto.CustomerResponse](t, resp).TotalDebt.String())
}

func TestPurchases_EditarYBorrar(t *testing.T) {
	s := newTestServer(t)
	out := s.buy(t, `{"customer_name":"Ali","items":[{"name":"A","price":"10"}]}`)

	resp := s.do(t, http.MethodPut, "/api/purchases/"+out.Purchase.ID, `{"items":[{"name":"A","price":"7.50"}]}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "7.50", decode[dto.PurchaseResult](t, resp).Customer.TotalDebt.String())

	resp = s.do(t, http.MethodDelete, "/api/purchases/"+out.Purchase.ID, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, decode[dto.CustomerResponse](t, resp).TotalDebt.IsZero())

	resp = s.do(t, http.MethodDelete, "/api/purchases/"+out.Purchase.ID, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Clientes
// ──────────────────────────────────────────────────────────────────────────────

func TestCustomers_NoEncontrado(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodGet, "/api/customers/no-existe", "")

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, apphttp.CodeNotFound, decode[dto.ErrorResponse](t, resp).Code)
}

func TestCustomers_BuscarYListar(t *testing.T) {
	s := newTestServer(t)
	for _, name := range []string{"Khalid Ali", "alice", "Bob"} {
		s.buy(t, `{"customer_name":"`+name+`","items":[{"name":"x","price":"1"}]}`)
	}

	resp := s.do(t, http.MethodGet, "/api/customers?q=ALI", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	found := decode[dto.CustomerListResponse](t, resp)
	require.Len(t, found.Items, 2)
	assert.Equal(t, "alice", found.Items[0].Name)
	assert.Nil(t, found.Page)

	resp = s.do(t, http.MethodGet, "/api/customers?q=", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[dto.CustomerListResponse](t, resp).Items)

	resp = s.do(t, http.MethodGet, "/api/customers?limit=2", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	page := decode[dto.CustomerSummaryListResponse](t, resp)
	require.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.Page.Limit)
	assert.Equal(t, 0, page.Items[0].PaymentCount)
	assert.Nil(t, page.Items[0].LastPayment)

	resp = s.do(t, http.MethodGet, "/api/customers?limit=500", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCustomers_ListadoConUltimoPago(t *testing.T) {
	s := newTestServer(t)
	out := s.buy(t, `{"customer_name":"Ali","items":[{"name":"A","price":"20"}]}`)
	for _, p := range []string{`"amount":"3","occurred_at":"2024-04-01T10:00:00Z"`, `"amount":"4.50","occurred_at":"2024-04-03T10:00:00Z"`} {
		resp := s.do(t, http.MethodPost, "/api/payments", `{"customer_id":"`+out.Customer.ID+`",`+p+`}`)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}

	resp := s.do(t, http.MethodGet, "/api/customers", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	list := decode[dto.CustomerSummaryListResponse](t, resp)

	require.Len(t, list.Items, 1)
	row := list.Items[0]
	assert.Equal(t, "Ali", row.Name)
	assert.Equal(t, "12.50", row.TotalDebt.String())
	assert.Equal(t, 2, row.PaymentCount)
	assert.Equal(t, "7.50", row.TotalPayments.String())
	require.NotNil(t, row.LastPayment)
	assert.Equal(t, "4.50", row.LastPayment.AmountPaid.String())
	assert.Equal(t, 3, row.LastPayment.CreatedAt.Day())
}

func TestCustomers_PorNombreArabe(t *testing.T) {
	s := newTestServer(t)
	out := s.buy(t, `{"customer_name":"محمد","items":[{"name":"خبز","price":"2"}]}`)

	resp := s.do(t, http.MethodGet, "/api/customers/by-name/"+url.PathEscape("محمد"), "")

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, out.Customer.ID, decode[dto.CustomerResponse](t, resp).ID)
}

func TestCustomers_RenombrarDuplicadoEs409(t *testing.T) {
	s := newTestServer(t)
	s.buy(t, `{"customer_name":"Ali","items":[{"name":"x","price":"1"}]}`)
	bob := s.buy(t, `{"customer_name":"Bob","items":[{"name":"x","price":"1"}]}`)

	resp := s.do(t, http.MethodPatch, "/api/customers/"+bob.Customer.ID, `{"name":"ALI"}`)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, apphttp.CodeDuplicate, decode[dto.ErrorResponse](t, resp).Code)

	resp = s.do(t, http.MethodPatch, "/api/customers/"+bob.Customer.ID, `{"name":"Roberto"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Roberto", decode[dto.CustomerResponse](t, resp).Name)
}

func TestCustomers_HistorialYBorradoEnCascada(t *testing.T) {
	s := newTestServer(t)
	out := s.buy(t, `{"customer_name":"Ali","items":[{"name":"x","price":"4"}]}`)
	s.do(t, http.MethodPost, "/api/payments", `{"customer_id":"`+out.Customer.ID+`","amount":"1"}`)

	resp := s.do(t, http.MethodGet, "/api/customers/"+out.Customer.ID+"/history", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	hist := decode[dto.CustomerHistoryResponse](t, resp)
	assert.Len(t, hist.Purchases, 1)
	assert.Len(t, hist.Payments, 1)
	assert.Equal(t, "3.00", hist.Customer.TotalDebt.String())

	resp = s.do(t, http.MethodDelete, "/api/customers/"+out.Customer.ID, "")
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/customers/"+out.Customer.ID+"/history", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCustomers_VerificarYReconciliar(t *testing.T) {
	s := newTestServer(t)
	out := s.buy(t, `{"customer_name":"Ali","items":[{"name":"x","price":"10"}]}`)

	resp := s.do(t, http.MethodGet, "/api/customers/"+out.Customer.ID+"/verify", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, decode[dto.BalanceCheckResponse](t, resp).Consistent)

	// Saldo dañado por una escritura externa.
	require.NoError(t, s.store.Customers().UpdateDebt(context.Background(), out.Customer.ID, money.MustParse("3"), time.Now()))

	resp = s.do(t, http.MethodGet, "/api/customers/"+out.Customer.ID+"/verify", "")
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, apphttp.CodeInconsistentState, decode[dto.ErrorResponse](t, resp).Code)

	resp = s.do(t, http.MethodPost, "/api/customers/"+out.Customer.ID+"/reconcile", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	check := decode[dto.BalanceCheckResponse](t, resp)
	assert.False(t, check.Consistent)
	assert.Equal(t, "3.00", check.Cached.String())
	assert.Equal(t, "10.00", check.Balance.String())
}

// ──────────────────────────────────────────────────────────────────────────────
// Reportes y métricas
// ──────────────────────────────────────────────────────────────────────────────

func TestReports_DashboardYExport(t *testing.T) {
	s := newTestServer(t)
	s.buy(t, `{"customer_name":"Ali","items":[{"name":"x","price":"10"}]}`)

	resp := s.do(t, http.MethodGet, "/api/reports/dashboard", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	dash := decode[dto.DashboardDTO](t, resp)
	assert.Equal(t, 1, dash.CustomerCount)
	assert.Equal(t, "10.00", dash.TotalDebt.String())

	resp = s.do(t, http.MethodGet, "/api/reports/customers.xlsx", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "spreadsheetml")
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "attachment")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "PK"), "un xlsx es un zip")
}

func TestCustomers_EstadoDeCuentaPDF(t *testing.T) {
	s := newTestServer(t)
	out := s.buy(t, `{"customer_name":"Ali","items":[{"name":"x","price":"10"}]}`)

	resp := s.do(t, http.MethodGet, "/api/customers/"+out.Customer.ID+"/statement.pdf", "")

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "%PDF"))
}

func TestMetrics_CuentaPeticionesPorRuta(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/api/customers/no-existe", "")

	resp := s.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `fiado_http_requests_total{method="GET",route="/api/customers/:id",status="404"} 1`)
}

func TestErrors_InternoNoExponeDetalle(t *testing.T) {
	s := newTestServer(t)
	s.store.FailOn("customers.GetByID", errors.New(`numeric field overflow (SQLSTATE 22003)`))

	resp := s.do(t, http.MethodGet, "/api/customers/cualquiera", "")

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, apphttp.CodeInternal, body.Code)
	assert.NotContains(t, body.Message, "numeric")
	assert.NotContains(t, body.Message, "SQLSTATE")
}

func TestRouter_RutaInexistenteEs404JSON(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodGet, "/api/nada", "")

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, apphttp.CodeNotFound, decode[dto.ErrorResponse](t, resp).Code)
}
