package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Fiado-api/internal/application/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler maneja los endpoints de reportes (solo lectura).
type ReportHandler struct {
	uc *report.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *report.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// Dashboard devuelve el resumen global del libro.
// GET /api/reports/dashboard
//
// Respuesta: DashboardDTO (customer_count, total_debt, total_purchases,
// total_payments, generated_at).
func (h *ReportHandler) Dashboard(c *fiber.Ctx) error {
	out, err := h.uc.Dashboard(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ExportCustomers GET /api/reports/customers.xlsx
func (h *ReportHandler) ExportCustomers(c *fiber.Ctx) error {
	file, filename, err := h.uc.ExportCustomers(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, xlsxContentType)
	return c.Send(file)
}
