// Package events mirrors the in-process session bus onto Kafka so external
// consumers (navigation chrome, analytics) can resync on auth and cart
// changes without polling.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Skotchmaster/storefront_gateway/internal/session"
)

const (
	TopicAuth = "auth_events"
	TopicCart = "cart_events"

	publishTimeout = 5 * time.Second
)

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *Producer) PublishEvent(ctx context.Context, topic, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: marshal event: %w", err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
	}); err != nil {
		return fmt.Errorf("kafka: write message: %w", err)
	}
	return nil
}

// Attach subscribes the producer to the bus. Publish failures are logged,
// never propagated: the event mirror must not fail a user request.
func (p *Producer) Attach(bus *session.Bus, log *slog.Logger) {
	bus.Subscribe(func(e session.Event) {
		topic := TopicAuth
		if e.Type == session.CartChanged {
			topic = TopicCart
		}
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := p.PublishEvent(ctx, topic, fmt.Sprint(e.UserID), e); err != nil {
			log.Error("kafka publish error", "topic", topic, "error", err)
		}
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
