package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Fiado-api/internal/application/ledger"
	"github.com/jhoicas/Fiado-api/internal/domain/money"
)

func TestToMessage_ClaveYCabecera(t *testing.T) {
	at := time.Date(2024, 2, 20, 10, 0, 0, 0, time.UTC)
	ev := ledger.LedgerEvent{
		Type:       ledger.EventPaymentRecorded,
		CustomerID: "c-1",
		EntityID:   "p-1",
		Amount:     money.MustParse("5"),
		Balance:    money.MustParse("10.50"),
		OccurredAt: at,
	}

	msg, err := toMessage(ev)
	require.NoError(t, err)

	assert.Equal(t, "c-1", string(msg.Key))
	assert.Equal(t, at, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "payment.recorded", string(msg.Headers[0].Value))

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "10.50", body["balance"])
	assert.Equal(t, "5.00", body["amount"])
}

func TestPublish_SinBrokerFalla(t *testing.T) {
	p := NewKafkaPublisher([]string{"127.0.0.1:1"}, "fiado-test")
	defer p.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := p.Publish(ctx, ledger.LedgerEvent{Type: ledger.EventPurchaseRecorded, CustomerID: "c-1"})

	assert.Error(t, err)
}
