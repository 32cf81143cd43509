package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Fiado-api/internal/application/dto"
	"github.com/jhoicas/Fiado-api/internal/application/ledger"
)

// PurchaseHandler maneja las compras a crédito.
type PurchaseHandler struct {
	uc *ledger.LedgerUseCase
}

// NewPurchaseHandler construye el handler.
func NewPurchaseHandler(uc *ledger.LedgerUseCase) *PurchaseHandler {
	return &PurchaseHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar compra
// @Description  Suma el total a la deuda del cliente. Si se envía customer_name y no existe, se crea.
// @Tags         purchases
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordPurchaseRequest  true  "Compra"
// @Success      201   {object}  dto.PurchaseResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/purchases [post]
func (h *PurchaseHandler) Create(c *fiber.Ctx) error {
	var in dto.RecordPurchaseRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	input := ledger.RecordPurchaseInput{
		CustomerID:   in.CustomerID,
		CustomerName: in.CustomerName,
		Items:        dto.ToItems(in.Items),
	}
	if in.OccurredAt != nil {
		input.OccurredAt = *in.OccurredAt
	}
	customer, purchase, err := h.uc.RecordPurchase(c.UserContext(), input)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.PurchaseResult{
		Customer: dto.FromCustomer(customer),
		Purchase: dto.FromPurchase(purchase),
	})
}

// Update PUT /api/purchases/:id (reemplaza los ítems y ajusta la deuda por la diferencia)
func (h *PurchaseHandler) Update(c *fiber.Ctx) error {
	var in dto.EditPurchaseRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	customer, purchase, err := h.uc.EditPurchase(c.UserContext(), c.Params("id"), dto.ToItems(in.Items))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.PurchaseResult{
		Customer: dto.FromCustomer(customer),
		Purchase: dto.FromPurchase(purchase),
	})
}

// Delete DELETE /api/purchases/:id; devuelve el cliente con el saldo resultante.
func (h *PurchaseHandler) Delete(c *fiber.Ctx) error {
	customer, err := h.uc.DeletePurchase(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromCustomer(customer))
}
