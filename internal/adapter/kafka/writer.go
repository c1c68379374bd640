package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/gnss-harvest/internal/config"
	"github.com/couchcryptid/gnss-harvest/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes file events to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured event topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes and writes one file event. Events for the same source
// file share a key and land on the same partition.
func (w *Writer) Publish(ctx context.Context, event domain.FileEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish file event: %w", err)
	}
	w.logger.Debug("published file event", "id", event.ID, "path", event.SourcePath)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a FileEvent into a Kafka message.
func serializeToMessage(event domain.FileEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize file event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.Receiver + event.SourcePath),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte("gnss_file")},
			{Key: "outcome", Value: []byte(event.Outcome)},
			{Key: "completed_at", Value: []byte(event.CompletedAt.Format(time.RFC3339))},
		},
	}, nil
}
