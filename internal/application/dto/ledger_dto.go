package dto

import (
	"time"

	"github.com/jhoicas/Fiado-api/internal/domain/entity"
	"github.com/jhoicas/Fiado-api/internal/domain/money"
	"github.com/jhoicas/Fiado-api/internal/domain/repository"
)

// PurchaseItemDTO línea de compra (producto y precio).
type PurchaseItemDTO struct {
	Name  string      `json:"name" validate:"required,max=200"`
	Price money.Money `json:"price"`
}

// RecordPurchaseRequest body para POST /api/purchases.
// Se identifica al cliente por customer_id o por customer_name (se crea si no existe).
type RecordPurchaseRequest struct {
	CustomerID   string            `json:"customer_id,omitempty" validate:"omitempty,max=64"`
	CustomerName string            `json:"customer_name,omitempty" validate:"required_without=CustomerID,max=200"`
	Items        []PurchaseItemDTO `json:"items" validate:"required,min=1,dive"`
	OccurredAt   *time.Time        `json:"occurred_at,omitempty"`
}

// EditPurchaseRequest body para PUT /api/purchases/:id.
type EditPurchaseRequest struct {
	Items []PurchaseItemDTO `json:"items" validate:"required,min=1,dive"`
}

// RecordPaymentRequest body para POST /api/payments.
type RecordPaymentRequest struct {
	CustomerID string      `json:"customer_id" validate:"required,max=64"`
	Amount     money.Money `json:"amount"`
	OccurredAt *time.Time  `json:"occurred_at,omitempty"`
}

// EditPaymentRequest body para PUT /api/payments/:id.
type EditPaymentRequest struct {
	Amount money.Money `json:"amount"`
}

// RenameCustomerRequest body para PATCH /api/customers/:id.
type RenameCustomerRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// CustomerResponse cliente en respuestas.
type CustomerResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	TotalDebt money.Money `json:"total_debt"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// PurchaseResponse compra en respuestas.
type PurchaseResponse struct {
	ID            string            `json:"id"`
	CustomerID    string            `json:"customer_id"`
	Items         []PurchaseItemDTO `json:"items"`
	PurchaseTotal money.Money       `json:"purchase_total"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// PaymentResponse pago en respuestas.
type PaymentResponse struct {
	ID         string      `json:"id"`
	CustomerID string      `json:"customer_id"`
	AmountPaid money.Money `json:"amount_paid"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// PurchaseResult respuesta de registrar/editar una compra: el movimiento y el saldo resultante.
type PurchaseResult struct {
	Customer CustomerResponse `json:"customer"`
	Purchase PurchaseResponse `json:"purchase"`
}

// PaymentResult respuesta de registrar/editar un pago.
type PaymentResult struct {
	Customer CustomerResponse `json:"customer"`
	Payment  PaymentResponse  `json:"payment"`
}

// CustomerListResponse respuesta de GET /api/customers.
type CustomerListResponse struct {
	Items []CustomerResponse `json:"items"`
	Page  *PageResponse      `json:"page,omitempty"`
}

// CustomerSummaryResponse fila de GET /api/customers: cliente + resumen de sus pagos.
type CustomerSummaryResponse struct {
	CustomerResponse
	PaymentCount  int              `json:"payment_count"`
	TotalPayments money.Money      `json:"total_payments"`
	LastPayment   *PaymentResponse `json:"last_payment"`
}

// CustomerSummaryListResponse respuesta paginada de GET /api/customers (sin q).
type CustomerSummaryListResponse struct {
	Items []CustomerSummaryResponse `json:"items"`
	Page  *PageResponse             `json:"page,omitempty"`
}

// CustomerHistoryResponse cliente con compras y pagos (más recientes primero).
type CustomerHistoryResponse struct {
	Customer  CustomerResponse   `json:"customer"`
	Purchases []PurchaseResponse `json:"purchases"`
	Payments  []PaymentResponse  `json:"payments"`
}

// BalanceCheckResponse resultado de verify/reconcile.
type BalanceCheckResponse struct {
	CustomerID string      `json:"customer_id"`
	Cached     money.Money `json:"cached_balance"`
	Expected   money.Money `json:"expected_balance"`
	Consistent bool        `json:"consistent"`
	Balance    money.Money `json:"balance"`
}

// ToItems convierte ítems del request a entidades.
func ToItems(in []PurchaseItemDTO) []entity.PurchaseItem {
	out := make([]entity.PurchaseItem, 0, len(in))
	for _, it := range in {
		out = append(out, entity.PurchaseItem{Name: it.Name, Price: it.Price})
	}
	return out
}

// FromCustomer mapea entidad → respuesta.
func FromCustomer(c *entity.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		TotalDebt: c.TotalDebt,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// FromCustomers mapea una lista; nunca devuelve nil.
func FromCustomers(list []*entity.Customer) []CustomerResponse {
	out := make([]CustomerResponse, 0, len(list))
	for _, c := range list {
		out = append(out, FromCustomer(c))
	}
	return out
}

// FromPurchase mapea entidad → respuesta.
func FromPurchase(p *entity.Purchase) PurchaseResponse {
	items := make([]PurchaseItemDTO, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, PurchaseItemDTO{Name: it.Name, Price: it.Price})
	}
	return PurchaseResponse{
		ID:            p.ID,
		CustomerID:    p.CustomerID,
		Items:         items,
		PurchaseTotal: p.PurchaseTotal,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// FromPayment mapea entidad → respuesta.
func FromPayment(p *entity.Payment) PaymentResponse {
	return PaymentResponse{
		ID:         p.ID,
		CustomerID: p.CustomerID,
		AmountPaid: p.AmountPaid,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// FromSummaries mapea resúmenes de clientes; nunca devuelve nil.
func FromSummaries(list []repository.CustomerSummary) []CustomerSummaryResponse {
	out := make([]CustomerSummaryResponse, 0, len(list))
	for i := range list {
		s := &list[i]
		row := CustomerSummaryResponse{
			CustomerResponse: FromCustomer(&s.Customer),
			PaymentCount:     s.PaymentCount,
			TotalPayments:    s.TotalPayments,
		}
		if s.LastPayment != nil {
			last := FromPayment(s.LastPayment)
			row.LastPayment = &last
		}
		out = append(out, row)
	}
	return out
}
