// Command event-logger tails the domain event topic and logs every envelope.
// Useful for verifying what the API publishes without a full consumer stack.
package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/IBM/sarama"

	eventskafka "github.com/shopkit/go-shop-api-server/internal/events/kafka"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	brokers := splitBrokers(os.Getenv("KAFKA_BROKERS"))
	if len(brokers) == 0 {
		log.Fatal("KAFKA_BROKERS is required")
	}
	topic := envDefault("KAFKA_TOPIC", "shop.events")
	group := envDefault("KAFKA_GROUP", "shop-event-logger")

	config := sarama.NewConfig()
	config.Consumer.Offsets.Initial = sarama.OffsetOldest

	consumer, err := sarama.NewConsumerGroup(brokers, group, config)
	if err != nil {
		log.Fatalf("create consumer group: %v", err)
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("consuming domain events", slog.String("topic", topic), slog.String("group", group))
	handler := &logHandler{logger: logger}
	for ctx.Err() == nil {
		if err := consumer.Consume(ctx, []string{topic}, handler); err != nil {
			logger.Error("consume failed", slog.String("error", err.Error()))
		}
	}
}

type logHandler struct {
	logger *slog.Logger
}

func (h *logHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *logHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *logHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		var envelope eventskafka.Envelope
		if err := json.Unmarshal(message.Value, &envelope); err != nil {
			h.logger.Warn("skipping malformed envelope",
				slog.Int64("offset", message.Offset),
				slog.String("error", err.Error()))
			session.MarkMessage(message, "")
			continue
		}
		h.logger.Info("event",
			slog.String("id", envelope.ID),
			slog.String("name", envelope.Name),
			slog.String("key", envelope.Key),
			slog.Time("occurred_at", envelope.OccurredAt),
			slog.String("payload", string(envelope.Payload)))
		session.MarkMessage(message, "")
	}
	return nil
}

func splitBrokers(raw string) []string {
	var brokers []string
	for _, broker := range strings.Split(raw, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return brokers
}

func envDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
