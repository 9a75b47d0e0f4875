package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"fxconvert/internal/domain"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs     []kafka.Message
	err      error
	deadline bool
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	_, w.deadline = ctx.Deadline()
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

func TestConversionPublisher_PublishConversion(t *testing.T) {
	writer := &fakeWriter{}
	p := &ConversionPublisher{writer: writer, writeTimeout: time.Second}

	c := domain.Conversion{
		ID:        uuid.New(),
		UserID:    "u1",
		From:      "USD",
		To:        "EUR",
		Amount:    100,
		Result:    92.34,
		Rate:      0.9234,
		CreatedAt: time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC),
	}

	require.NoError(t, p.PublishConversion(context.Background(), c))
	require.Len(t, writer.msgs, 1)
	require.True(t, writer.deadline)

	msg := writer.msgs[0]
	require.Equal(t, []byte("u1"), msg.Key)

	var event ConversionEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	require.Equal(t, c.ID.String(), event.ID)
	require.Equal(t, "USD", event.From)
	require.Equal(t, "EUR", event.To)
	require.Equal(t, 92.34, event.Result)
	require.True(t, c.CreatedAt.Equal(event.CreatedAt))
}

func TestConversionPublisher_WriteError(t *testing.T) {
	brokerErr := errors.New("leader not available")
	p := &ConversionPublisher{writer: &fakeWriter{err: brokerErr}, writeTimeout: time.Second}

	err := p.PublishConversion(context.Background(), domain.Conversion{ID: uuid.New(), UserID: "u1"})
	require.ErrorIs(t, err, brokerErr)
}

func TestConversionPublisher_Close(t *testing.T) {
	writer := &fakeWriter{}
	p := &ConversionPublisher{writer: writer}

	require.NoError(t, p.Close())
	require.True(t, writer.closed)
}

func TestNewConversionPublisher_DefaultTimeout(t *testing.T) {
	p := NewConversionPublisher([]string{"localhost:9092"}, "conversions", 0)
	require.Equal(t, defaultWriteTimeout, p.writeTimeout)

	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	require.Equal(t, "conversions", w.Topic)
}
