// Package events forwards user events to a RabbitMQ topic exchange so other
// services can react to ledger changes.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/growlify/growlify-api/internal/websocket"
)

const publishTimeout = 5 * time.Second

// Message is the broker envelope of an event
type Message struct {
	UserID    uuid.UUID       `json:"userId"`
	Type      string          `json:"type"`
	Entity    string          `json:"entity"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// channel is the subset of *amqp091.Channel used for publishing
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// AMQPPublisher implements websocket.EventPublisher on a topic exchange.
// The routing key is the event type, e.g. "transaction.created".
type AMQPPublisher struct {
	conn     *amqp091.Connection
	channel  channel
	exchange string
	logger   zerolog.Logger
	mu       sync.Mutex
}

var _ websocket.EventPublisher = (*AMQPPublisher)(nil)

// NewAMQPPublisher dials the broker and declares a durable topic exchange
func NewAMQPPublisher(url, exchange string, logger zerolog.Logger) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &AMQPPublisher{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		logger:   logger.With().Str("component", "amqp_publisher").Logger(),
	}, nil
}

// Publish sends the event to the exchange. Failures are logged, not returned,
// so a broker outage never fails the request that produced the event.
func (p *AMQPPublisher) Publish(userID uuid.UUID, event websocket.Event) {
	body, err := encodeMessage(userID, event)
	if err != nil {
		p.logger.Error().Err(err).Str("event_type", event.Type).Msg("Failed to encode event")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	p.mu.Lock()
	err = p.channel.PublishWithContext(
		ctx,
		p.exchange, // exchange
		event.Type, // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    event.Timestamp,
			MessageId:    uuid.NewString(),
			Body:         body,
		},
	)
	p.mu.Unlock()
	if err != nil {
		p.logger.Warn().
			Err(err).
			Str("user_id", userID.String()).
			Str("event_type", event.Type).
			Msg("Failed to publish event")
		return
	}

	p.logger.Debug().
		Str("user_id", userID.String()).
		Str("event_type", event.Type).
		Str("exchange", p.exchange).
		Msg("Published event")
}

// Close closes the channel and the connection
func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func encodeMessage(userID uuid.UUID, event websocket.Event) ([]byte, error) {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return json.Marshal(Message{
		UserID:    userID,
		Type:      event.Type,
		Entity:    string(event.Entity),
		Payload:   payload,
		Timestamp: event.Timestamp,
	})
}
