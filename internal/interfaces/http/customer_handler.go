package http

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Fiado-api/internal/application/dto"
	"github.com/jhoicas/Fiado-api/internal/application/ledger"
	"github.com/jhoicas/Fiado-api/internal/application/report"
)

// CustomerHandler maneja las peticiones HTTP de clientes.
type CustomerHandler struct {
	uc      *ledger.LedgerUseCase
	reports *report.ReportUseCase
}

// NewCustomerHandler construye el handler.
func NewCustomerHandler(uc *ledger.LedgerUseCase, reports *report.ReportUseCase) *CustomerHandler {
	return &CustomerHandler{uc: uc, reports: reports}
}

// List godoc
// @Summary      Listar o buscar clientes
// @Description  Con ?q= busca por fragmento del nombre (orden alfabético, dto.CustomerListResponse);
// @Description  sin q lista por fecha de registro con cantidad de pagos y último pago.
// @Tags         customers
// @Produce      json
// @Param        q       query  string  false  "Fragmento del nombre"
// @Param        limit   query  int     false  "Límite"   default(20)
// @Param        offset  query  int     false  "Offset"   default(0)
// @Success      200     {object}  dto.CustomerSummaryListResponse
// @Router       /api/customers [get]
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	if c.Context().QueryArgs().Has("q") {
		list, err := h.uc.FindCustomers(c.UserContext(), c.Query("q"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(dto.CustomerListResponse{Items: dto.FromCustomers(list)})
	}

	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: CodeValidation, Message: "limit/offset inválidos"})
	}
	page.DefaultPage()
	if err := validateStruct(&page); err != nil {
		return writeError(c, err)
	}
	rows, err := h.reports.CustomerOverview(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.CustomerSummaryListResponse{
		Items: rows,
		Page:  &dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// GetByID GET /api/customers/:id
func (h *CustomerHandler) GetByID(c *fiber.Ctx) error {
	customer, err := h.uc.GetCustomer(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromCustomer(customer))
}

// GetByName GET /api/customers/by-name/:name (coincidencia exacta sin distinguir mayúsculas)
func (h *CustomerHandler) GetByName(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: CodeValidation, Message: "nombre mal codificado"})
	}
	customer, err := h.uc.GetCustomerByName(c.UserContext(), name)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromCustomer(customer))
}

// History godoc
// @Summary      Historial del cliente
// @Tags         customers
// @Produce      json
// @Param        id   path  string  true  "ID del cliente"
// @Success      200  {object}  dto.CustomerHistoryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/customers/{id}/history [get]
func (h *CustomerHandler) History(c *fiber.Ctx) error {
	hist, err := h.uc.GetHistory(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	out := dto.CustomerHistoryResponse{
		Customer:  dto.FromCustomer(hist.Customer),
		Purchases: make([]dto.PurchaseResponse, 0, len(hist.Purchases)),
		Payments:  make([]dto.PaymentResponse, 0, len(hist.Payments)),
	}
	for _, p := range hist.Purchases {
		out.Purchases = append(out.Purchases, dto.FromPurchase(p))
	}
	for _, p := range hist.Payments {
		out.Payments = append(out.Payments, dto.FromPayment(p))
	}
	return c.JSON(out)
}

// Rename PATCH /api/customers/:id
func (h *CustomerHandler) Rename(c *fiber.Ctx) error {
	var in dto.RenameCustomerRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	customer, err := h.uc.RenameCustomer(c.UserContext(), c.Params("id"), in.Name)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromCustomer(customer))
}

// Delete DELETE /api/customers/:id (borra también compras y pagos)
func (h *CustomerHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.DeleteCustomer(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Verify GET /api/customers/:id/verify
// Responde 200 si el saldo cacheado coincide con los movimientos; 409 INCONSISTENT_STATE si no.
func (h *CustomerHandler) Verify(c *fiber.Ctx) error {
	check, err := h.uc.VerifyBalance(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(balanceCheck(check))
}

// Reconcile POST /api/customers/:id/reconcile
func (h *CustomerHandler) Reconcile(c *fiber.Ctx) error {
	check, err := h.uc.ReconcileBalance(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(balanceCheck(check))
}

// Statement GET /api/customers/:id/statement.pdf
func (h *CustomerHandler) Statement(c *fiber.Ctx) error {
	pdf, filename, err := h.reports.CustomerStatement(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(pdf)
}

func balanceCheck(check *ledger.BalanceCheck) dto.BalanceCheckResponse {
	return dto.BalanceCheckResponse{
		CustomerID: check.Customer.ID,
		Cached:     check.Cached,
		Expected:   check.Expected,
		Consistent: check.Consistent,
		Balance:    check.Customer.TotalDebt,
	}
}
