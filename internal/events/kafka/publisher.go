package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"github.com/shopkit/go-shop-api-server/internal/events"
)

// Envelope is the wire form of a published domain event.
type Envelope struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Key        string          `json:"key"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Publisher delivers domain events to a Kafka topic. Failures are logged, not
// returned: the emitting operation has already committed.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
}

// NewPublisher dials the brokers with a synchronous, idempotent producer.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return &Publisher{producer: producer, topic: topic, logger: logger}, nil
}

// Publish marshals the event into an envelope and sends it. Fire-and-forget.
func (p *Publisher) Publish(_ context.Context, event events.Event) {
	if event == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		p.logError("marshal event", event, err)
		return
	}
	envelope := Envelope{
		ID:         uuid.NewString(),
		Name:       event.EventName(),
		Key:        event.EventKey(),
		OccurredAt: event.OccurredAt(),
		Payload:    payload,
	}
	value, err := json.Marshal(envelope)
	if err != nil {
		p.logError("marshal envelope", event, err)
		return
	}
	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(event.EventKey()),
		Value:     sarama.ByteEncoder(value),
		Timestamp: event.OccurredAt(),
	}
	if _, _, err := p.producer.SendMessage(msg); err != nil {
		p.logError("send event", event, err)
	}
}

// Close shuts the underlying producer down.
func (p *Publisher) Close() error {
	return p.producer.Close()
}

func (p *Publisher) logError(msg string, event events.Event, err error) {
	if p.logger == nil {
		return
	}
	p.logger.Error(msg,
		slog.String("topic", p.topic),
		slog.String("event", event.EventName()),
		slog.String("key", event.EventKey()),
		slog.String("error", err.Error()))
}

var _ events.Publisher = (*Publisher)(nil)
