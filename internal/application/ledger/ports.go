package ledger

import (
	"context"
	"time"

	"github.com/jhoicas/Fiado-api/internal/domain/money"
	"github.com/jhoicas/Fiado-api/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción.
type Repos struct {
	Customers repository.CustomerRepository
	Purchases repository.PurchaseRepository
	Payments  repository.PaymentRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD con repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit. Garantiza que el saldo del
// cliente y el movimiento (compra/pago) se escriben juntos o no se escriben.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repos) error) error
}

// Tipos de evento publicados tras cada commit.
const (
	EventPurchaseRecorded  = "purchase.recorded"
	EventPurchaseEdited    = "purchase.edited"
	EventPurchaseDeleted   = "purchase.deleted"
	EventPaymentRecorded   = "payment.recorded"
	EventPaymentEdited     = "payment.edited"
	EventPaymentDeleted    = "payment.deleted"
	EventCustomerRenamed   = "customer.renamed"
	EventCustomerDeleted   = "customer.deleted"
	EventBalanceReconciled = "balance.reconciled"
)

// LedgerEvent notificación de un cambio ya confirmado en la BD.
// Amount es el monto del movimiento (o el delta aplicado en ediciones); Balance el saldo resultante.
type LedgerEvent struct {
	Type       string      `json:"type"`
	CustomerID string      `json:"customer_id"`
	EntityID   string      `json:"entity_id,omitempty"`
	Amount     money.Money `json:"amount"`
	Balance    money.Money `json:"balance"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// EventPublisher puerto de salida para eventos del libro (Kafka u otro).
type EventPublisher interface {
	Publish(ctx context.Context, event LedgerEvent) error
}
