package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Fiado-api/internal/application/dto"
	"github.com/jhoicas/Fiado-api/internal/application/ledger"
)

// PaymentHandler maneja los pagos (abonos) de clientes.
type PaymentHandler struct {
	uc *ledger.LedgerUseCase
}

// NewPaymentHandler construye el handler.
func NewPaymentHandler(uc *ledger.LedgerUseCase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar pago
// @Description  Descuenta el monto de la deuda. Falla con 409 si supera la deuda pendiente.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordPaymentRequest  true  "Pago"
// @Success      201   {object}  dto.PaymentResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/payments [post]
func (h *PaymentHandler) Create(c *fiber.Ctx) error {
	var in dto.RecordPaymentRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	var at time.Time
	if in.OccurredAt != nil {
		at = *in.OccurredAt
	}
	customer, payment, err := h.uc.RecordPayment(c.UserContext(), in.CustomerID, in.Amount, at)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.PaymentResult{
		Customer: dto.FromCustomer(customer),
		Payment:  dto.FromPayment(payment),
	})
}

// Update PUT /api/payments/:id
func (h *PaymentHandler) Update(c *fiber.Ctx) error {
	var in dto.EditPaymentRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	customer, payment, err := h.uc.EditPayment(c.UserContext(), c.Params("id"), in.Amount)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.PaymentResult{
		Customer: dto.FromCustomer(customer),
		Payment:  dto.FromPayment(payment),
	})
}

// Delete DELETE /api/payments/:id
func (h *PaymentHandler) Delete(c *fiber.Ctx) error {
	customer, err := h.uc.DeletePayment(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromCustomer(customer))
}
