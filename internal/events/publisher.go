package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// Event types for the stock lifecycle stream
const (
	EventTypeStockReserved = "stock_reserved"
	EventTypeStockReleased = "stock_released"
	EventTypeStockExpired  = "stock_expired"
)

// StockEvent is published after each stock mutation. Downstream
// consumers (order workflow, analytics) observe the stream; the
// reservation engine never depends on it.
type StockEvent struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	ProductID      string    `json:"product_id"`
	Quantity       int       `json:"quantity"`
	ReservationID  string    `json:"reservation_id,omitempty"`
	OrderID        string    `json:"order_id,omitempty"`
	AvailableAfter int       `json:"available_after"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewStockEvent builds an event with a fresh identifier and timestamp.
func NewStockEvent(eventType, productID string, quantity, availableAfter int) *StockEvent {
	return &StockEvent{
		EventID:        uuid.New().String(),
		EventType:      eventType,
		ProductID:      productID,
		Quantity:       quantity,
		AvailableAfter: availableAfter,
		Timestamp:      time.Now().UTC(),
	}
}

// Publisher handles publishing stock events to Kafka
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a Kafka publisher for the stock events topic.
// The hash balancer keys messages by product ID so ordering is
// preserved per product.
func NewPublisher(brokers []string, topic string) *Publisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Async:                  false,
		AllowAutoTopicCreation: true,

		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
	}

	return &Publisher{writer: writer}
}

// Publish sends a stock event. Failures are the caller's to log; the
// engine's result is already committed by the time events go out.
func (p *Publisher) Publish(ctx context.Context, event *StockEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal stock event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(event.ProductID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.EventType)},
			{Key: "event-id", Value: []byte(event.EventID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to publish stock event: %w", err)
	}

	log.Debug().
		Str("event_type", event.EventType).
		Str("product_id", event.ProductID).
		Str("event_id", event.EventID).
		Msg("Published stock event")

	return nil
}

// PublishAsync fires the event from a goroutine with a bounded
// timeout, logging on failure. Used on the request path so publishing
// never delays a response.
func (p *Publisher) PublishAsync(event *StockEvent) {
	if p == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := p.Publish(ctx, event); err != nil {
			log.Error().Err(err).
				Str("event_type", event.EventType).
				Str("product_id", event.ProductID).
				Msg("Failed to publish stock event")
		}
	}()
}

// Close closes the underlying writer.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
