package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"storefront-backend/internal/domain"
)

const (
	TopicOrderPlaced = "orders.placed"
	TopicOrderPaid   = "orders.paid"
)

// OrderPlacedEvent is published after a checkout persists an order.
type OrderPlacedEvent struct {
	OrderID    string    `json:"orderId"`
	UserID     string    `json:"userId"`
	TotalCents int64     `json:"totalCents"`
	Currency   string    `json:"currency"`
	CreatedAt  time.Time `json:"createdAt"`
}

// OrderPaidEvent is published after a payment reconciliation succeeds.
type OrderPaidEvent struct {
	OrderID       string    `json:"orderId"`
	TransactionID string    `json:"transactionId"`
	PaidAt        time.Time `json:"paidAt"`
}

// Publisher produces order lifecycle events for downstream consumers
// (fulfillment, notifications). A nil *Publisher publishes nothing.
type Publisher struct {
	client *kgo.Client
}

func NewPublisher(brokers []string) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("init kafka client: %w", err)
	}
	return &Publisher{client: client}, nil
}

func (p *Publisher) OrderPlaced(ctx context.Context, order domain.Order) error {
	if p == nil {
		return nil
	}
	return p.produce(ctx, TopicOrderPlaced, order.ID, OrderPlacedEvent{
		OrderID:    order.ID,
		UserID:     order.UserID,
		TotalCents: order.TotalCents,
		Currency:   order.Currency,
		CreatedAt:  order.CreatedAt,
	})
}

func (p *Publisher) OrderPaid(ctx context.Context, order domain.Order) error {
	if p == nil {
		return nil
	}
	evt := OrderPaidEvent{OrderID: order.ID}
	if order.PaymentResult != nil {
		evt.TransactionID = order.PaymentResult.TransactionID
	}
	if order.PaidAt != nil {
		evt.PaidAt = *order.PaidAt
	}
	return p.produce(ctx, TopicOrderPaid, order.ID, evt)
}

func (p *Publisher) produce(ctx context.Context, topic, key string, payload interface{}) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}
	record := &kgo.Record{Topic: topic, Key: []byte(key), Value: value}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", topic, err)
	}
	return nil
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.client.Close()
}
