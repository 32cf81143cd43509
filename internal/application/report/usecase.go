// Package report contiene los reportes de solo lectura del libro de fiado:
// dashboard, exportación de clientes a Excel y estado de cuenta en PDF.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Fiado-api/internal/application/dto"
	"github.com/jhoicas/Fiado-api/internal/domain"
	"github.com/jhoicas/Fiado-api/internal/domain/money"
	"github.com/jhoicas/Fiado-api/internal/domain/repository"
)

const exportSheetName = "العملاء"

const (
	defaultOverviewLimit = 20
	maxOverviewLimit     = 100
)

// exportHeaders columnas de la exportación, en el orden de Sheet.Rows.
var exportHeaders = []string{
	"اسم العميل",            // nombre
	"إجمالي المبلغ المستحق", // deuda total
	"عدد الأقساط",           // cantidad de pagos
	"إجمالي المدفوعات",      // total pagado
	"تاريخ التسجيل",         // fecha de registro
}

// ReportUseCase reportes de negocio.
type ReportUseCase struct {
	reportRepo   repository.ReportRepository
	customerRepo repository.CustomerRepository
	purchaseRepo repository.PurchaseRepository
	paymentRepo  repository.PaymentRepository
	sheets       SpreadsheetWriter
	pdf          StatementPDFGenerator
	now          func() time.Time
}

// NewReportUseCase construye el caso de uso inyectando todas sus dependencias.
func NewReportUseCase(
	reportRepo repository.ReportRepository,
	customerRepo repository.CustomerRepository,
	purchaseRepo repository.PurchaseRepository,
	paymentRepo repository.PaymentRepository,
	sheets SpreadsheetWriter,
	pdf StatementPDFGenerator,
) *ReportUseCase {
	return &ReportUseCase{
		reportRepo:   reportRepo,
		customerRepo: customerRepo,
		purchaseRepo: purchaseRepo,
		paymentRepo:  paymentRepo,
		sheets:       sheets,
		pdf:          pdf,
		now:          time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *ReportUseCase) WithClock(now func() time.Time) *ReportUseCase {
	uc.now = now
	return uc
}

// Dashboard totales globales: clientes, deuda pendiente, compras y pagos.
func (uc *ReportUseCase) Dashboard(ctx context.Context) (*dto.DashboardDTO, error) {
	totals, err := uc.reportRepo.Totals(ctx)
	if err != nil {
		return nil, &domain.StorageError{Op: "dashboard: totales", Err: err}
	}
	return &dto.DashboardDTO{
		CustomerCount:  totals.CustomerCount,
		TotalDebt:      totals.TotalDebt,
		TotalPurchases: totals.TotalPurchases,
		TotalPayments:  totals.TotalPayments,
		GeneratedAt:    uc.now().Format(time.RFC3339),
	}, nil
}

// CustomerOverview página de clientes (registro más reciente primero) con cantidad de pagos,
// total pagado y último pago. limit se acota a [1, 100].
func (uc *ReportUseCase) CustomerOverview(ctx context.Context, limit, offset int) ([]dto.CustomerSummaryResponse, error) {
	if limit <= 0 {
		limit = defaultOverviewLimit
	}
	if limit > maxOverviewLimit {
		limit = maxOverviewLimit
	}
	if offset < 0 {
		offset = 0
	}
	summaries, err := uc.reportRepo.CustomerSummaries(ctx, limit, offset)
	if err != nil {
		return nil, &domain.StorageError{Op: "listado: resumen de clientes", Err: err}
	}
	return dto.FromSummaries(summaries), nil
}

// ExportCustomers genera el .xlsx con una fila por cliente (más recientes primero).
//
// Retorna:
//   - (xlsxBytes, filename, nil) si todo sale bien; filename = "عملاء_YYYY-MM-DD.xlsx".
//   - *domain.StorageError si falla la lectura.
func (uc *ReportUseCase) ExportCustomers(ctx context.Context) ([]byte, string, error) {
	summaries, err := uc.reportRepo.CustomerSummaries(ctx, 0, 0)
	if err != nil {
		return nil, "", &domain.StorageError{Op: "exportar: resumen de clientes", Err: err}
	}

	sheet := Sheet{Name: exportSheetName, Headers: exportHeaders, Rows: make([][]any, 0, len(summaries))}
	for _, s := range summaries {
		sheet.Rows = append(sheet.Rows, []any{
			s.Customer.Name,
			s.Customer.TotalDebt.String(),
			s.PaymentCount,
			s.TotalPayments.String(),
			arabicDate(s.Customer.CreatedAt),
		})
	}

	data, err := uc.sheets.Write(ctx, sheet)
	if err != nil {
		return nil, "", fmt.Errorf("exportar: generar xlsx: %w", err)
	}
	return data, fmt.Sprintf("عملاء_%s.xlsx", uc.now().Format("2006-01-02")), nil
}

// CustomerStatement genera el estado de cuenta (historial + saldo) en PDF.
func (uc *ReportUseCase) CustomerStatement(ctx context.Context, customerID string) ([]byte, string, error) {
	// ── 1. Cargar cliente ─────────────────────────────────────────────────────
	customer, err := uc.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, "", &domain.StorageError{Op: "estado de cuenta: obtener cliente", Err: err}
	}
	if customer == nil {
		return nil, "", fmt.Errorf("%w: cliente %s", domain.ErrNotFound, customerID)
	}

	// ── 2. Cargar movimientos ─────────────────────────────────────────────────
	purchases, err := uc.purchaseRepo.ListByCustomer(ctx, customer.ID)
	if err != nil {
		return nil, "", &domain.StorageError{Op: "estado de cuenta: compras", Err: err}
	}
	payments, err := uc.paymentRepo.ListByCustomer(ctx, customer.ID)
	if err != nil {
		return nil, "", &domain.StorageError{Op: "estado de cuenta: pagos", Err: err}
	}

	st := &Statement{
		Customer:    customer,
		Purchases:   purchases,
		Payments:    payments,
		GeneratedAt: uc.now().Format("02/01/2006 15:04"),
	}
	for _, p := range purchases {
		st.TotalPurchases = st.TotalPurchases.Add(p.PurchaseTotal)
	}
	st.TotalPayments = money.Zero
	for _, p := range payments {
		st.TotalPayments = st.TotalPayments.Add(p.AmountPaid)
	}

	// ── 3. Generar PDF ────────────────────────────────────────────────────────
	pdfBytes, err := uc.pdf.GenerateStatementPDF(ctx, st)
	if err != nil {
		return nil, "", fmt.Errorf("estado de cuenta: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("estado_cuenta_%s.pdf", customer.ID), nil
}
