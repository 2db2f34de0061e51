package events

import (
	"context"
	"encoding/json"
	"time"

	"storefront-be/internal/logger"
	"storefront-be/internal/order"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// Publisher emits order lifecycle events to Kafka for downstream consumers
// (back-office views, analytics). Publishing is best effort and shares the
// notification policy: failures are logged, never surfaced.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(broker, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(broker),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

type orderCreatedEvent struct {
	Type          string    `json:"type"`
	OrderNumber   string    `json:"orderNumber"`
	TotalAmount   float64   `json:"totalAmount"`
	PaymentStatus string    `json:"paymentStatus"`
	ItemCount     int       `json:"itemCount"`
	OccurredAt    time.Time `json:"occurredAt"`
}

func (p *Publisher) OrderCreated(ctx context.Context, o *order.Order) {
	log := logger.FromCtx(ctx).With(zap.String("order_number", o.OrderNumber))

	event := orderCreatedEvent{
		Type:          "order.created",
		OrderNumber:   o.OrderNumber,
		TotalAmount:   o.TotalAmount,
		PaymentStatus: string(o.PaymentStatus),
		ItemCount:     len(o.Items),
		OccurredAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Error("failed to encode order event", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(o.OrderNumber),
		Value: data,
	})
	if err != nil {
		log.Warn("failed to publish order event", zap.Error(err))
		return
	}

	log.Debug("order event published")
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
