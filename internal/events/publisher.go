package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/latta-clothing/storefront/internal/config"
	"github.com/latta-clothing/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type EventType string

const (
	EventTypeOrderCreated       EventType = "order.created"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
	EventTypeOrderCancelled     EventType = "order.cancelled"
)

// OrderEvent is the envelope published for every order lifecycle change.
type OrderEvent struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	OrderID   string          `json:"order_id"`
	UserID    string          `json:"user_id"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// Publisher emits order events for downstream consumers (fulfilment,
// analytics). Publishing is best-effort; callers never fail an order
// operation because an event could not be written.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, order *models.Order) error
	PublishOrderStatusChanged(ctx context.Context, order *models.Order, previousStatus models.OrderStatus) error
	PublishOrderCancelled(ctx context.Context, order *models.Order, reason string) error
	Close() error
}

type kafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(cfg *config.Kafka) Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.OrdersTopic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	return &kafkaPublisher{writer: writer}
}

func (p *kafkaPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {

	data, err := json.Marshal(order)
	if err != nil {
		return err
	}

	return p.publish(ctx, newEvent(EventTypeOrderCreated, order, data))
}

func (p *kafkaPublisher) PublishOrderStatusChanged(ctx context.Context, order *models.Order, previousStatus models.OrderStatus) error {

	payload := struct {
		Order          *models.Order      `json:"order"`
		PreviousStatus models.OrderStatus `json:"previous_status"`
		NewStatus      models.OrderStatus `json:"new_status"`
	}{
		Order:          order,
		PreviousStatus: previousStatus,
		NewStatus:      order.Status,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.publish(ctx, newEvent(EventTypeOrderStatusChanged, order, data))
}

func (p *kafkaPublisher) PublishOrderCancelled(ctx context.Context, order *models.Order, reason string) error {

	payload := struct {
		Order  *models.Order `json:"order"`
		Reason string        `json:"reason"`
	}{
		Order:  order,
		Reason: reason,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.publish(ctx, newEvent(EventTypeOrderCancelled, order, data))
}

func newEvent(eventType EventType, order *models.Order, data []byte) *OrderEvent {
	return &OrderEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		OrderID:   order.ID.String(),
		UserID:    order.UserID.String(),
		Data:      data,
		Timestamp: time.Now(),
	}
}

func (p *kafkaPublisher) publish(ctx context.Context, event *OrderEvent) error {

	eventData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: eventData,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		slog.Error("Failed to publish order event",
			slog.String("event_id", event.ID),
			slog.String("event_type", string(event.Type)),
			slog.String("order_id", event.OrderID),
			slog.String("error", err.Error()))
		return err
	}

	slog.Info("Order event published",
		slog.String("event_id", event.ID),
		slog.String("event_type", string(event.Type)),
		slog.String("order_id", event.OrderID))

	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher discards events. Used when Kafka is not configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderCreated(context.Context, *models.Order) error {
	return nil
}

func (NopPublisher) PublishOrderStatusChanged(context.Context, *models.Order, models.OrderStatus) error {
	return nil
}

func (NopPublisher) PublishOrderCancelled(context.Context, *models.Order, string) error {
	return nil
}

func (NopPublisher) Close() error {
	return nil
}
