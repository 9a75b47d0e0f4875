package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"fxconvert/internal/domain"
	"time"

	"github.com/segmentio/kafka-go"
)

const defaultWriteTimeout = 5 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ConversionEvent is the payload published for every recorded conversion.
type ConversionEvent struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Amount    float64   `json:"amount"`
	Result    float64   `json:"result"`
	Rate      float64   `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
}

type ConversionPublisher struct {
	writer       messageWriter
	writeTimeout time.Duration
}

func (p *ConversionPublisher) PublishConversion(ctx context.Context, c domain.Conversion) error {
	value, err := json.Marshal(ConversionEvent{
		ID:        c.ID.String(),
		UserID:    c.UserID,
		From:      c.From,
		To:        c.To,
		Amount:    c.Amount,
		Result:    c.Result,
		Rate:      c.Rate,
		CreatedAt: c.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal conversion event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.writeTimeout)
	defer cancel()

	if err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(c.UserID),
		Value: value,
		Time:  time.Now(),
	}); err != nil {
		return fmt.Errorf("failed to publish conversion %s: %w", c.ID, err)
	}
	return nil
}

func (p *ConversionPublisher) Close() error {
	return p.writer.Close()
}

func NewConversionPublisher(brokers []string, topic string, writeTimeout time.Duration) *ConversionPublisher {
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	return &ConversionPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
		writeTimeout: writeTimeout,
	}
}
