// Package events publica los eventos del libro en Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/Fiado-api/internal/application/ledger"
)

var _ ledger.EventPublisher = (*KafkaPublisher)(nil)

// KafkaPublisher implementa ledger.EventPublisher con kafka-go.
// La clave del mensaje es el ID del cliente: los eventos de un cliente quedan en la misma partición y en orden.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher construye el publicador para el topic indicado.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

// Publish serializa el evento en JSON y lo escribe.
func (p *KafkaPublisher) Publish(ctx context.Context, event ledger.LedgerEvent) error {
	msg, err := toMessage(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: publicar %s: %w", event.Type, err)
	}
	return nil
}

func toMessage(event ledger.LedgerEvent) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("kafka: serializar evento: %w", err)
	}
	return kafka.Message{
		Key:     []byte(event.CustomerID),
		Value:   data,
		Time:    event.OccurredAt,
		Headers: []kafka.Header{{Key: "type", Value: []byte(event.Type)}},
	}, nil
}

// Close vacía el buffer y cierra las conexiones.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
