package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"recharge-service/internal/domain/event"
	"recharge-service/pkg/logger"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisher(w, zaptest.NewLogger(t))
	ctx := logger.WithUser(logger.WithRequestID(context.Background(), "req-1"), 7, "sess-7")

	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	err := p.Publish(ctx, event.Event{
		Name:       event.RechargeSucceeded,
		Key:        "TXN123",
		UserID:     9,
		Payload:    map[string]any{"amount": 299.0},
		OccurredAt: at,
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "recharge.succeeded-TXN123", string(msg.Key))
	assert.Equal(t, at, msg.Time)
	assert.Contains(t, msg.Headers, kafka.Header{Key: "event", Value: []byte(event.RechargeSucceeded)})
	assert.Contains(t, msg.Headers, kafka.Header{Key: "request_id", Value: []byte("req-1")})
	assert.Contains(t, msg.Headers, kafka.Header{Key: "session_id", Value: []byte("sess-7")})

	var decoded event.Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, int64(9), decoded.UserID)
	assert.Equal(t, 299.0, decoded.Payload["amount"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := NewKafkaPublisher(w, zaptest.NewLogger(t))

	err := p.Publish(context.Background(), event.Event{Name: event.TopupFailed, Key: "TXN1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestNewKafkaWriter(t *testing.T) {
	w := NewKafkaWriter([]string{"localhost:9092"}, "recharge-events", zap.NewNop())
	assert.Equal(t, "recharge-events", w.Topic)
	assert.True(t, w.Async)
	assert.NotNil(t, w.Completion)
}

func TestLogPublisher(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := NewLogPublisher(zap.New(core))

	require.NoError(t, p.Publish(context.Background(), event.Event{Name: event.UserRegistered, Key: "1", UserID: 1}))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, event.UserRegistered, logs.All()[0].ContextMap()["event"])
	assert.NoError(t, p.Close())
}
