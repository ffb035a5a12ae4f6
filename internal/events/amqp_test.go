package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growlify/growlify-api/internal/websocket"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp091.Publishing
	calls    int
	err      error
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	f.calls++
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func (f *fakeChannel) Close() error { return nil }

func newTestPublisher(ch channel) *AMQPPublisher {
	return &AMQPPublisher{channel: ch, exchange: "growlify.events", logger: zerolog.Nop()}
}

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := newTestPublisher(ch)
	userID := uuid.New()

	evt := websocket.Event{
		Type:      "transaction.created",
		Entity:    websocket.EntityTypeTransaction,
		Payload:   map[string]any{"amountCents": 1500},
		Timestamp: time.Date(2026, 2, 16, 12, 0, 0, 0, time.UTC),
	}
	p.Publish(userID, evt)

	require.Equal(t, 1, ch.calls)
	assert.Equal(t, "growlify.events", ch.exchange)
	assert.Equal(t, "transaction.created", ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp091.Persistent, ch.msg.DeliveryMode)

	var decoded Message
	require.NoError(t, json.Unmarshal(ch.msg.Body, &decoded))
	assert.Equal(t, userID, decoded.UserID)
	assert.Equal(t, "transaction", decoded.Entity)
	assert.JSONEq(t, `{"amountCents":1500}`, string(decoded.Payload))
}

func TestAMQPPublisher_PublishErrorIsSwallowed(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := newTestPublisher(ch)

	assert.NotPanics(t, func() {
		p.Publish(uuid.New(), websocket.CategoryDeleted(map[string]any{"id": "x"}))
	})
	assert.Equal(t, 1, ch.calls)
}

func TestAMQPPublisher_UnencodablePayloadIsSkipped(t *testing.T) {
	ch := &fakeChannel{}
	p := newTestPublisher(ch)

	p.Publish(uuid.New(), websocket.CategoryDeleted(make(chan int)))
	assert.Equal(t, 0, ch.calls)
}
